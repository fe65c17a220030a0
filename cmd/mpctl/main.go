// Command mpctl is the operator CLI for the Mercado Pago gateway.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "mpctl",
		Short:        "Operate the Mercado Pago checkout gateway",
		Version:      Version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("log-level", "", "override LOG_LEVEL")

	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(resyncCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(previewCmd())
	rootCmd.AddCommand(signCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
