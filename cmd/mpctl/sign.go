package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"MercadoPagoGateway/internal/domain/ipn"

	"github.com/spf13/cobra"
)

func signCmd() *cobra.Command {
	var secret, requestID, dataID string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Print an x-signature header for replaying a notification by hand",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := ipn.NewSignatureVerifier(secret, 0)
			if !v.Enabled() {
				return errors.New("--secret is required")
			}
			ts := strconv.FormatInt(time.Now().Unix(), 10)
			fmt.Fprintf(cmd.OutOrStdout(), "x-signature: %s\nx-request-id: %s\n", v.Sign(requestID, dataID, ts), requestID)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "webhook secret (MP_WEBHOOK_SECRET)")
	cmd.Flags().StringVar(&requestID, "request-id", "manual-replay", "x-request-id to sign")
	cmd.Flags().StringVar(&dataID, "data-id", "", "payment id the notification refers to")
	return cmd
}
