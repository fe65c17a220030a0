package app

import (
	"context"
	"fmt"

	"MercadoPagoGateway/config"
	"MercadoPagoGateway/internal/domain/checkout"
	"MercadoPagoGateway/internal/domain/currency"
	"MercadoPagoGateway/internal/domain/ipn"
	"MercadoPagoGateway/internal/domain/order"
	"MercadoPagoGateway/internal/domain/payment"
	"MercadoPagoGateway/internal/external/kafka"
	"MercadoPagoGateway/internal/external/mercadopago"
	"MercadoPagoGateway/internal/external/opensearch"
	"MercadoPagoGateway/internal/messaging"
	order_repo "MercadoPagoGateway/internal/repo/order"
	"MercadoPagoGateway/pkg/health"
	"MercadoPagoGateway/pkg/logger"
	"MercadoPagoGateway/pkg/postgres"
)

// Components is the wired object graph shared by the server and mpctl.
type Components struct {
	Settings   payment.Settings
	Postgres   *postgres.Postgres
	Client     *mercadopago.Client
	Orders     *order.OrderService
	Checkout   *checkout.Builder
	Reconciler *ipn.Reconciler
	Processor  *ipn.Processor
	Verifier   *ipn.SignatureVerifier
	Audit      *opensearch.AuditSink
	Health     *health.Registry

	publisher *kafka.Publisher
}

func NewComponents(ctx context.Context, cfg config.Config, l logger.Interface) (*Components, error) {
	settings := payment.ParseSettings(cfg.Settings())
	if !settings.Active {
		l.Warn("Mercado Pago checkout is disabled (MP_ACTIVE=false)")
	}
	if _, err := settings.Credentials(); err != nil {
		l.Warn("MP_ACCESS_TOKEN is empty; preferences and notifications will be refused")
	}

	policy, err := currency.PolicyByName(cfg.CurrencyPolicy)
	if err != nil {
		return nil, fmt.Errorf("app - currency policy: %w", err)
	}

	categories := checkout.DefaultCategories()
	if cfg.CategoriesFile != "" {
		if categories, err = checkout.LoadCategories(cfg.CategoriesFile); err != nil {
			return nil, fmt.Errorf("app - categories: %w", err)
		}
	}

	pg, err := postgres.New(cfg.PgURL, postgres.MaxPoolSize(cfg.PgPoolMax))
	if err != nil {
		return nil, fmt.Errorf("app - postgres.New: %w", err)
	}

	c := &Components{
		Settings: settings,
		Postgres: pg,
		Health:   health.NewRegistry().Critical(health.NewPingChecker("postgres", pg.Pool)),
	}

	var events order.EventPublisher = order.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		c.publisher = kafka.NewPublisher(l, cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
		events = messaging.NewOrderEvents(c.publisher)
		c.Health.Optional(health.NewKafkaChecker(cfg.KafkaBrokers, cfg.KafkaOrdersTopic))
		l.Info("Order events enabled: brokers=%v topic=%s", cfg.KafkaBrokers, cfg.KafkaOrdersTopic)
	}

	var audit ipn.AuditSink = ipn.NoopAuditSink{}
	if len(cfg.OpensearchUrls) > 0 {
		sink, err := opensearch.NewAuditSink(ctx, cfg.OpensearchUrls, cfg.OpensearchIndexIPN)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("app - opensearch: %w", err)
		}
		c.Audit = sink
		audit = sink
		c.Health.Optional(health.NewPingChecker("opensearch", sink))
	}

	c.Client = mercadopago.New(mercadopago.Config{
		BaseURL: cfg.MPBaseURL,
		Timeout: cfg.MPHTTPTimeout,
	})
	c.Health.Optional(health.NewPingChecker("mercadopago", c.Client))

	orderRepo := order_repo.NewPgOrderRepo(pg)
	c.Orders = order.NewOrderService(orderRepo, events, l)
	c.Checkout = checkout.NewBuilder(checkout.Config{
		Settings:            settings,
		Policy:              policy,
		Categories:          categories,
		URLs:                checkout.NewCallbackURLs(cfg.PublicBaseURL),
		MaxInstallments:     cfg.MPMaxInstallments,
		StatementDescriptor: cfg.MPStatementDescriptor,
	}, c.Client, l)
	c.Reconciler = ipn.NewReconciler(settings, c.Client, orderRepo, events, l, ipn.Timeouts{
		Fetch: cfg.IPNFetchTimeout,
		Sink:  cfg.IPNSinkTimeout,
	})
	c.Processor = ipn.NewProcessor(c.Reconciler, audit, l, cfg.IPNSinkTimeout)
	c.Verifier = ipn.NewSignatureVerifier(cfg.MPWebhookSecret, signatureTolerance)

	return c, nil
}

func (c *Components) Close() {
	if c.publisher != nil {
		_ = c.publisher.Close()
	}
	if c.Client != nil {
		_ = c.Client.Close()
	}
	if c.Postgres != nil {
		c.Postgres.Close()
	}
}
