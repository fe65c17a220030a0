package app

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MercadoPagoGateway/config"
	"MercadoPagoGateway/internal/controller/rest"
	"MercadoPagoGateway/internal/controller/rest/handlers"
	"MercadoPagoGateway/internal/domain/ipn"
	"MercadoPagoGateway/pkg/logger"
	"MercadoPagoGateway/pkg/telemetry"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName        = "mercadopago-gateway"
	signatureTolerance = 5 * time.Minute
	shutdownTimeout    = 10 * time.Second
)

//go:embed migrations/*.sql
var MIGRATION_FS embed.FS

func Run(cfg config.Config) {
	l := logger.New(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:  serviceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OtelEndpoint,
		SampleRate:   cfg.OtelSampleRate,
	})
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - telemetry.Initialize: %w", err))
	}

	if err = ApplyMigrations(cfg.PgURL, MIGRATION_FS); err != nil {
		l.Fatal(fmt.Errorf("app - Run - ApplyMigrations: %w", err))
	}

	c, err := NewComponents(ctx, cfg, l)
	if err != nil {
		l.Fatal(fmt.Errorf("app - Run - NewComponents: %w", err))
	}
	defer c.Close()

	engine := NewHTTPHandler(cfg, c, l)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info("Gateway HTTP server started: port=%d sandbox=%t signature_check=%t",
			cfg.Port, c.Settings.Sandbox, c.Verifier.Enabled())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("Shutting down gateway...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			l.Error("Server shutdown error: %v", err)
		}
		if err := tel.Shutdown(shutdownCtx); err != nil {
			l.Error("Telemetry shutdown error: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		l.Error("Gateway stopped with error: %v", err)
		return
	}
	l.Info("Gateway stopped")
}

// NewHTTPHandler builds the gin engine with every gateway route mounted.
func NewHTTPHandler(cfg config.Config, c *Components, l *logger.Logger) *gin.Engine {
	var audit ipn.AuditReader
	if c.Audit != nil {
		audit = c.Audit
	}

	engine := NewGinEngine(l)
	rest.NewRouter(
		handlers.NewIPNHandler(c.Processor, c.Verifier, l),
		handlers.NewCheckoutHandler(c.Checkout, c.Orders, handlers.ShopURLs{
			Cart:    cfg.ShopCartURL,
			Success: cfg.ShopSuccessURL,
		}, l),
		handlers.NewOrderHandler(c.Orders, c.Reconciler, audit),
		c.Health,
		cfg.AdminToken,
	).SetUp(engine)
	return engine
}
