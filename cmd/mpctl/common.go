package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"MercadoPagoGateway/config"
	"MercadoPagoGateway/internal/app"
	"MercadoPagoGateway/pkg/logger"

	"github.com/spf13/cobra"
)

func loadConfig(cmd *cobra.Command) (config.Config, *logger.Logger, error) {
	cfg, err := config.New()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, logger.NewWithWriter(cfg.LogLevel, cmd.ErrOrStderr()), nil
}

func withComponents(cmd *cobra.Command, fn func(ctx context.Context, c *app.Components) error) error {
	cfg, l, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c, err := app.NewComponents(ctx, cfg, l)
	if err != nil {
		return err
	}
	defer c.Close()

	return fn(ctx, c)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
