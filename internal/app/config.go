package app

import (
	"net"
	"os"
	"slices"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:3001"

// Config holds the service configuration, loadable from ORDERS_ environment
// variables, flags, or YAML files.
type Config struct {
	Addr      string `default:"0.0.0.0:3001" usage:"API server listen address"`
	Storage   StorageConfig
	Notifier  NotifierConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// StorageConfig selects and configures the order store.
type StorageConfig struct {
	Driver          string        `default:"mongo" usage:"Order store: mongo, postgres or memory"`
	MongoURL        string        `default:"mongodb://localhost:27017" usage:"MongoDB URL (MONGODB_URL is honoured)" flag:"mongo-url"`
	MongoDatabase   string        `default:"db_orders" usage:"MongoDB database" flag:"mongo-database"`
	MongoCollection string        `default:"orders" usage:"MongoDB collection" flag:"mongo-collection"`
	DatabaseURL     string        `usage:"PostgreSQL URL (DATABASE_URL is honoured)" flag:"database-url"`
	Timeout         time.Duration `default:"5s" usage:"Per-operation store timeout"`
}

// NotifierConfig selects and configures where notifications go.
type NotifierConfig struct {
	Driver       string   `default:"log" usage:"Notifier: log, nats, kafka, redis or none"`
	NATSURL      string   `default:"nats://localhost:4222" usage:"NATS server URL" flag:"nats-url"`
	Subject      string   `default:"orders.notifications" usage:"NATS subject"`
	KafkaBrokers []string `default:"localhost:9092" usage:"Kafka bootstrap brokers" flag:"kafka-brokers"`
	Topic        string   `default:"orders.notifications" usage:"Kafka topic"`
	RedisAddr    string   `default:"localhost:6379" usage:"Redis address" flag:"redis-addr"`
	Stream       string   `default:"orders:notifications" usage:"Redis stream"`
	StreamMaxLen int64    `default:"10000" usage:"Approximate Redis stream cap, 0 for unbounded" flag:"stream-max-len"`
}

// RateLimitConfig controls the per-client rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

var (
	storageDrivers  = []string{"mongo", "postgres", "memory"}
	notifierDrivers = []string{"log", "nats", "kafka", "redis", "none"}
)

// LoadConfig loads configuration from the environment, flags and YAML files,
// then applies platform defaults and validates the result.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "ORDERS",
		Files:     []string{"config.yaml", "/etc/orders/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(acfg aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, acfg).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the unprefixed variables used by hosting
// platforms and the original deployment (MONGODB_URL, DATABASE_URL, PORT).
func (c *Config) applyPlatformDefaults() {
	if v := os.Getenv("MONGODB_URL"); v != "" && c.Storage.MongoURL == "mongodb://localhost:27017" {
		c.Storage.MongoURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" && c.Storage.DatabaseURL == "" {
		c.Storage.DatabaseURL = v
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = net.JoinHostPort("0.0.0.0", port)
	}
}

// Validate checks driver names and the settings each driver needs.
func (c *Config) Validate() error {
	if !slices.Contains(storageDrivers, c.Storage.Driver) {
		return errors.Errorf("unknown storage driver %q, want one of %v", c.Storage.Driver, storageDrivers)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DatabaseURL == "" {
		return errors.New("database URL is required for postgres: set ORDERS_STORAGE_DATABASE_URL or DATABASE_URL")
	}
	if !slices.Contains(notifierDrivers, c.Notifier.Driver) {
		return errors.Errorf("unknown notifier driver %q, want one of %v", c.Notifier.Driver, notifierDrivers)
	}
	if c.Notifier.Driver == "kafka" && len(c.Notifier.KafkaBrokers) == 0 {
		return errors.New("kafka notifier needs at least one broker")
	}
	return nil
}
