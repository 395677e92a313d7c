// Package config loads service settings from the environment, an optional
// .env file and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	PublisherKafka = "kafka"
	PublisherRiver = "river"
	PublisherLog   = "log"
)

// Config holds all application configuration.
type Config struct {
	Port      string
	Database  DatabaseConfig
	Events    EventsConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Log       LogConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig selects and locates the store.
type DatabaseConfig struct {
	Driver string // sqlite or postgres
	Path   string // SQLite file, ":memory:" allowed
	URL    string // PostgreSQL connection string
}

// EventsConfig selects the domain event publisher.
type EventsConfig struct {
	Publisher string // kafka, river or log
}

type KafkaConfig struct {
	Brokers      []string
	CreateTopics bool
	// SetupTimeout bounds topic creation at startup.
	SetupTimeout time.Duration
}

// AuthConfig holds the static Basic auth users as "name:bcrypt-hash:ROLE".
type AuthConfig struct {
	Enabled bool
	Users   []string
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // console or json
}

type TelemetryConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Exporter       string // stdout, otlp or none
}

// Load reads configuration. Priority, highest first: environment variables,
// a .env file in the working directory, config.yaml, built-in defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/franchiseapi")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port: v.GetString("port"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("database.driver")),
			Path:   v.GetString("database.path"),
			URL:    v.GetString("database.url"),
		},
		Events: EventsConfig{
			Publisher: strings.ToLower(v.GetString("events.publisher")),
		},
		Kafka: KafkaConfig{
			Brokers:      stringList(v, "kafka.brokers"),
			CreateTopics: v.GetBool("kafka.create_topics"),
			SetupTimeout: v.GetDuration("kafka.setup_timeout"),
		},
		Auth: AuthConfig{
			Enabled: v.GetBool("auth.enabled"),
			Users:   stringList(v, "auth.users"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:    v.GetString("otel.service_name"),
			ServiceVersion: v.GetString("otel.service_version"),
			Environment:    v.GetString("otel.environment"),
			Exporter:       v.GetString("otel.exporter"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.path", "franchiseapi.db")
	v.SetDefault("database.url", "")
	v.SetDefault("events.publisher", PublisherLog)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.create_topics", true)
	v.SetDefault("kafka.setup_timeout", "15s")
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.users", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("otel.service_name", "franchiseapi")
	v.SetDefault("otel.service_version", "0.1.0")
	v.SetDefault("otel.environment", "development")
	v.SetDefault("otel.exporter", "stdout")
}

// stringList accepts either a YAML list or a comma separated string.
func stringList(v *viper.Viper, key string) []string {
	raw, ok := v.Get(key).(string)
	if !ok {
		return v.GetStringSlice(key)
	}

	var out []string
	for item := range strings.SplitSeq(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			errs = append(errs, errors.New("database path is required for sqlite"))
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database url is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}

	switch c.Events.Publisher {
	case PublisherKafka:
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("kafka publisher requires at least one broker"))
		}
	case PublisherRiver, PublisherLog:
	default:
		errs = append(errs, fmt.Errorf("unknown events publisher %q", c.Events.Publisher))
	}
	if c.Kafka.CreateTopics && c.Kafka.SetupTimeout <= 0 {
		errs = append(errs, errors.New("kafka setup timeout must be positive"))
	}

	if c.Auth.Enabled && len(c.Auth.Users) == 0 {
		errs = append(errs, errors.New("auth is enabled but no users are configured"))
	}

	if !slices.Contains([]string{"console", "json"}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if !slices.Contains([]string{"stdout", "otlp", "none"}, c.Telemetry.Exporter) {
		errs = append(errs, fmt.Errorf("unknown otel exporter %q", c.Telemetry.Exporter))
	}

	return errors.Join(errs...)
}
