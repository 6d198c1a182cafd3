package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	WebhookModeSync  = "sync"
	WebhookModeKafka = "kafka"

	EventMirrorNone       = "none"
	EventMirrorOpenSearch = "opensearch"
)

type Log struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

type Kafka struct {
	KafkaBrokers             []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaOrdersTopic         string   `env:"KAFKA_ORDERS_TOPIC" envDefault:"webhooks.orders"`
	KafkaOrdersConsumerGroup string   `env:"KAFKA_ORDERS_CONSUMER_GROUP" envDefault:"orderdesk-orders"`
}

// Config is the configuration of the full service (webhooks + dashboard).
type Config struct {
	Log
	Kafka

	Port      int    `env:"PORT" envDefault:"3000"`
	PgURL     string `env:"PG_URL,required,notEmpty"`
	PgPoolMax int    `env:"PG_POOL_MAX" envDefault:"10"`

	// Orders older than this are hidden from the dashboard list.
	DashboardWindow time.Duration `env:"DASHBOARD_WINDOW" envDefault:"720h"`

	// Webhook processing mode: "sync" (write directly) or "kafka" (consume intents published by ingest)
	WebhookMode         string `env:"WEBHOOK_MODE" envDefault:"sync"`
	WebhookMaxBodyBytes int64  `env:"WEBHOOK_MAX_BODY_BYTES" envDefault:"1048576"`

	EventMirror                string   `env:"EVENT_MIRROR" envDefault:"none"`
	OpensearchUrls             []string `env:"OPENSEARCH_URLS" envSeparator:","`
	OpensearchIndexOrderEvents string   `env:"OPENSEARCH_INDEX_ORDER_EVENTS" envDefault:"order-events"`
}

func (c Config) Validate() error {
	switch c.WebhookMode {
	case WebhookModeSync:
	case WebhookModeKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when WEBHOOK_MODE=%s", WebhookModeKafka)
		}
	default:
		return fmt.Errorf("unsupported WEBHOOK_MODE %q", c.WebhookMode)
	}

	switch c.EventMirror {
	case EventMirrorNone:
	case EventMirrorOpenSearch:
		if len(c.OpensearchUrls) == 0 {
			return fmt.Errorf("OPENSEARCH_URLS is required when EVENT_MIRROR=%s", EventMirrorOpenSearch)
		}
	default:
		return fmt.Errorf("unsupported EVENT_MIRROR %q", c.EventMirror)
	}

	if c.DashboardWindow <= 0 {
		return fmt.Errorf("DASHBOARD_WINDOW must be positive, got %s", c.DashboardWindow)
	}
	return nil
}

func New() (Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// IngestConfig configures the webhook-only gateway that publishes to Kafka.
type IngestConfig struct {
	Log
	Kafka

	Port                int   `env:"PORT" envDefault:"3001"`
	WebhookMaxBodyBytes int64 `env:"WEBHOOK_MAX_BODY_BYTES" envDefault:"1048576"`
}

func NewIngestConfig() (IngestConfig, error) {
	c, err := env.ParseAs[IngestConfig]()
	if err != nil {
		return IngestConfig{}, err
	}
	if len(c.KafkaBrokers) == 0 {
		return IngestConfig{}, fmt.Errorf("KAFKA_BROKERS is required for the ingest service")
	}
	return c, nil
}
