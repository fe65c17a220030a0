package main

import (
	"fmt"
	"sort"

	"MercadoPagoGateway/internal/domain/checkout"

	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "categories [name...]",
		Short: "Show the shop to Mercado Pago category table, or resolve names",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := checkout.LoadCategories(file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) > 0 {
				for _, name := range args {
					fmt.Fprintf(out, "%s\t%s\n", name, table.Lookup(name))
				}
				return nil
			}

			names := make([]string, 0, len(table.Categories))
			for name := range table.Categories {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(out, "%s\t%s\n", name, table.Categories[name])
			}
			fmt.Fprintf(out, "*\t%s\n", table.Default)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML table (defaults to the embedded one)")
	return cmd
}
