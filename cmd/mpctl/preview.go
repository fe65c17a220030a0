package main

import (
	"encoding/json"
	"fmt"
	"os"

	"MercadoPagoGateway/internal/domain/checkout"
	"MercadoPagoGateway/internal/domain/currency"
	"MercadoPagoGateway/internal/domain/payment"
	"MercadoPagoGateway/pkg/logger"

	"github.com/spf13/cobra"
)

func previewCmd() *cobra.Command {
	var (
		policy     string
		categories string
		baseURL    string
	)

	cmd := &cobra.Command{
		Use:   "preview <snapshot.json>",
		Short: "Print the preference request built from a cart snapshot without sending it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var snap checkout.Snapshot
			if err := json.Unmarshal(raw, &snap); err != nil {
				return fmt.Errorf("decode snapshot: %w", err)
			}

			p, err := currency.PolicyByName(policy)
			if err != nil {
				return err
			}
			table, err := checkout.LoadCategories(categories)
			if err != nil {
				return err
			}

			b := checkout.NewBuilder(checkout.Config{
				Settings:   payment.Settings{Active: true},
				Policy:     p,
				Categories: table,
				URLs:       checkout.NewCallbackURLs(baseURL),
			}, nil, logger.NewNop())

			req, err := b.Build(&snap)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), req)
		},
	}

	cmd.Flags().StringVar(&policy, "policy", currency.PolicyPreserve, "currency policy: preserve or legacy")
	cmd.Flags().StringVarP(&categories, "categories", "c", "", "YAML category table")
	cmd.Flags().StringVar(&baseURL, "base-url", "https://gateway.example.com", "public base URL for callbacks")
	return cmd
}
