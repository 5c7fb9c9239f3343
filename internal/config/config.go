package config

import (
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores service settings.
type Config struct {
	Port     int
	Log      Log
	Storage  string
	DB       DB
	Kafka    Kafka
	Delivery Delivery
}

// Log selects the logging backend and level.
type Log struct {
	Level   string
	Backend string // slog | zap
}

// DB stores postgres connection settings.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN returns a postgres connection URL.
func (d DB) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Pass),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// Kafka stores broker and topic settings.
type Kafka struct {
	Brokers     []string
	GroupID     string
	StatusTopic string
	NotifyTopic string
}

// Enabled reports whether any broker is configured.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

// Delivery stores assignment and reconciliation settings.
type Delivery struct {
	SweepInterval    time.Duration
	SweepConcurrency int
	ETAMin           int
	ETAMax           int
	OperationTimeout time.Duration
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs is Load with explicit command line arguments.
func LoadArgs(args []string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := &Config{
		Port:     DefaultPort(),
		Log:      DefaultLog(),
		Storage:  StoragePostgres,
		DB:       DefaultDB(),
		Kafka:    DefaultKafka(),
		Delivery: DefaultDelivery(),
	}

	if err := fromEnv(cfg); err != nil {
		return nil, err
	}

	fs := pflag.NewFlagSet("food-dispatch", pflag.ContinueOnError)
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	fs.StringVar(&cfg.Storage, "storage", cfg.Storage, "storage driver: postgres|memory")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level")
	fs.StringVar(&cfg.Log.Backend, "log-backend", cfg.Log.Backend, "log backend: slog|zap")
	fs.DurationVar(&cfg.Delivery.SweepInterval, "sweep-interval", cfg.Delivery.SweepInterval, "reconciliation sweep interval")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromEnv(cfg *Config) error {
	var err error

	if v := os.Getenv("PORT"); v != "" {
		if cfg.Port, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
	}
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Backend, "LOG_BACKEND")
	setString(&cfg.Storage, "STORAGE_DRIVER")

	setString(&cfg.DB.Host, "POSTGRES_HOST")
	setString(&cfg.DB.Port, "POSTGRES_PORT")
	setString(&cfg.DB.User, "POSTGRES_USER")
	setString(&cfg.DB.Pass, "POSTGRES_PASSWORD")
	setString(&cfg.DB.Name, "POSTGRES_DB")
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		return fmt.Errorf("invalid POSTGRES_PORT %q: %w", cfg.DB.Port, err)
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
	setString(&cfg.Kafka.GroupID, "KAFKA_GROUP_ID")
	setString(&cfg.Kafka.StatusTopic, "KAFKA_STATUS_TOPIC")
	setString(&cfg.Kafka.NotifyTopic, "KAFKA_NOTIFY_TOPIC")

	if err := setDuration(&cfg.Delivery.SweepInterval, "DELIVERY_SWEEP_INTERVAL"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Delivery.OperationTimeout, "DELIVERY_OPERATION_TIMEOUT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Delivery.SweepConcurrency, "DELIVERY_SWEEP_CONCURRENCY"); err != nil {
		return err
	}
	if err := setInt(&cfg.Delivery.ETAMin, "DELIVERY_ETA_MIN"); err != nil {
		return err
	}
	return setInt(&cfg.Delivery.ETAMax, "DELIVERY_ETA_MAX")
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.Storage {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("invalid storage driver: %q", c.Storage)
	}
	switch c.Log.Backend {
	case "slog", "zap":
	default:
		return fmt.Errorf("invalid log backend: %q", c.Log.Backend)
	}
	d := c.Delivery
	if d.SweepInterval <= 0 {
		return fmt.Errorf("invalid sweep interval: %s", d.SweepInterval)
	}
	if d.SweepConcurrency <= 0 {
		return fmt.Errorf("invalid sweep concurrency: %d", d.SweepConcurrency)
	}
	if d.ETAMin <= 0 || d.ETAMax < d.ETAMin {
		return fmt.Errorf("invalid eta range: %d..%d", d.ETAMin, d.ETAMax)
	}
	if d.OperationTimeout <= 0 {
		return fmt.Errorf("invalid operation timeout: %s", d.OperationTimeout)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
