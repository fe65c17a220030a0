package main

import (
	"log"

	"MercadoPagoGateway/config"
	"MercadoPagoGateway/internal/app"
	"MercadoPagoGateway/pkg/metrics"
)

// Version is stamped at build time with -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	metrics.SetBuildInfo(Version)
	app.Run(cfg)
}
