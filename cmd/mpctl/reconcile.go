package main

import (
	"context"
	"errors"

	"MercadoPagoGateway/internal/app"
	"MercadoPagoGateway/internal/domain/ipn"
	"MercadoPagoGateway/internal/domain/payment"
	"MercadoPagoGateway/pkg/correlation"

	"github.com/spf13/cobra"
)

func reconcileCmd() *cobra.Command {
	var paymentID string

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Apply a payment to its order as if its notification had arrived",
		Long: `Fetch the payment from Mercado Pago and apply the matching order
transition. Running it twice for the same payment changes nothing the
second time.

Examples:
  mpctl reconcile --payment-id 1234567890`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if paymentID == "" {
				return errors.New("--payment-id is required")
			}
			return withComponents(cmd, func(ctx context.Context, c *app.Components) error {
				ctx = correlation.WithID(ctx, correlation.NewID())
				out := c.Processor.Process(ctx, map[string]any{
					"topic": payment.TypePayment,
					"id":    paymentID,
				})
				return printOutcome(cmd, paymentID, out)
			})
		},
	}

	cmd.Flags().StringVar(&paymentID, "payment-id", "", "Mercado Pago payment id")
	return cmd
}

func resyncCmd() *cobra.Command {
	var orderID string

	cmd := &cobra.Command{
		Use:   "resync",
		Short: "Look up the latest payment of an order and apply it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if orderID == "" {
				return errors.New("--order-id is required")
			}
			return withComponents(cmd, func(ctx context.Context, c *app.Components) error {
				ctx = correlation.WithID(ctx, correlation.NewID())
				return printOutcome(cmd, orderID, c.Reconciler.ReconcileOrder(ctx, orderID))
			})
		},
	}

	cmd.Flags().StringVar(&orderID, "order-id", "", "order id (the preference external_reference)")
	return cmd
}

func printOutcome(cmd *cobra.Command, id string, out ipn.Outcome) error {
	return printJSON(cmd.OutOrStdout(), map[string]any{
		"id":      id,
		"outcome": out,
		"mutated": out.Mutated(),
	})
}
