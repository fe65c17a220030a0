package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port      int    `env:"PORT" envDefault:"3000"`
	PgURL     string `env:"PG_URL,required,notEmpty"`
	PgPoolMax int    `env:"PG_POOL_MAX" envDefault:"10"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	// Public URL the processor uses for notifications and back_urls.
	PublicBaseURL  string `env:"PUBLIC_BASE_URL,required,notEmpty"`
	ShopCartURL    string `env:"SHOP_CART_URL" envDefault:"/checkout/cart"`
	ShopSuccessURL string `env:"SHOP_SUCCESS_URL" envDefault:"/checkout/onepage/success"`

	// Gateway settings, read through payment.ParseSettings.
	MPAccessToken         string `env:"MP_ACCESS_TOKEN"`
	MPPublicKey           string `env:"MP_PUBLIC_KEY"`
	MPSandbox             string `env:"MP_SANDBOX" envDefault:"true"`
	MPActive              string `env:"MP_ACTIVE" envDefault:"true"`
	MPSort                string `env:"MP_SORT" envDefault:"1"`
	MPTitle               string `env:"MP_TITLE" envDefault:"Mercado Pago"`
	MPBaseURL             string `env:"MP_BASE_URL" envDefault:"https://api.mercadopago.com"`
	MPMaxInstallments     int    `env:"MP_MAX_INSTALLMENTS" envDefault:"12"`
	MPStatementDescriptor string `env:"MP_STATEMENT_DESCRIPTOR"`
	MPWebhookSecret       string `env:"MP_WEBHOOK_SECRET"`

	MPHTTPTimeout   time.Duration `env:"MP_HTTP_TIMEOUT" envDefault:"5s"`
	IPNFetchTimeout time.Duration `env:"IPN_FETCH_TIMEOUT" envDefault:"8s"`
	// Bounds the order event publish and the audit write on the IPN path.
	IPNSinkTimeout  time.Duration `env:"IPN_SINK_TIMEOUT" envDefault:"2s"`

	// Bearer token for the /admin routes. Empty disables them.
	AdminToken string `env:"ADMIN_TOKEN"`

	// "preserve" keeps minor units, "legacy" sends whole positive numbers.
	CurrencyPolicy string `env:"CURRENCY_POLICY" envDefault:"preserve"`
	// Optional YAML file overriding the embedded category table.
	CategoriesFile string `env:"CATEGORIES_FILE"`

	// Order events are published only when brokers are set.
	KafkaBrokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaOrdersTopic string   `env:"KAFKA_ORDERS_TOPIC" envDefault:"orders.events"`

	// IPN audit trail is written only when URLs are set.
	OpensearchUrls     []string `env:"OPENSEARCH_URLS" envSeparator:","`
	OpensearchIndexIPN string   `env:"OPENSEARCH_INDEX_IPN" envDefault:"ipn-deliveries"`

	OtelEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`
	Environment    string  `env:"ENVIRONMENT" envDefault:"development"`
}

// Settings returns the flat gateway settings map.
func (c Config) Settings() map[string]string {
	return map[string]string{
		"access_token": c.MPAccessToken,
		"public_key":   c.MPPublicKey,
		"sandbox":      c.MPSandbox,
		"active":       c.MPActive,
		"sort":         c.MPSort,
		"title":        c.MPTitle,
	}
}

func New() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}
