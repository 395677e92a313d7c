package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neomorfeo/franchiseapi/internal/config"
)

// inTempDir runs the test from an empty directory so no stray .env or
// config.yaml is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "franchiseapi.db", cfg.Database.Path)
	assert.Equal(t, config.PublisherLog, cfg.Events.Publisher)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.CreateTopics)
	assert.Equal(t, 15*time.Second, cfg.Kafka.SetupTimeout)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "franchiseapi", cfg.Telemetry.ServiceName)
	assert.Equal(t, "stdout", cfg.Telemetry.Exporter)
}

func TestLoad_Environment(t *testing.T) {
	inTempDir(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://app@localhost/app")
	t.Setenv("EVENTS_PUBLISHER", "kafka")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("KAFKA_CREATE_TOPICS", "false")
	t.Setenv("KAFKA_SETUP_TIMEOUT", "3s")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("OTEL_EXPORTER", "none")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, config.DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "postgres://app@localhost/app", cfg.Database.URL)
	assert.Equal(t, config.PublisherKafka, cfg.Events.Publisher)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Kafka.CreateTopics)
	assert.Equal(t, 3*time.Second, cfg.Kafka.SetupTimeout)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "none", cfg.Telemetry.Exporter)
}

func TestLoad_DotEnvAndYAML(t *testing.T) {
	dir := inTempDir(t)

	yaml := "port: \"7070\"\nlog:\n  level: debug\nauth:\n  users:\n    - alice:$2a$04$abc:ADMIN\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_PATH=from-dotenv.db\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("DATABASE_PATH") })

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "from-dotenv.db", cfg.Database.Path)
	assert.Equal(t, []string{"alice:$2a$04$abc:ADMIN"}, cfg.Auth.Users)
}

func TestLoad_EnvironmentOverridesYAML(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("port: \"7070\"\n"), 0o600))
	t.Setenv("PORT", "6060")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "6060", cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	inTempDir(t)
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown database driver "mysql"`)
}

func validConfig() config.Config {
	return config.Config{
		Port:      "8080",
		Database:  config.DatabaseConfig{Driver: config.DriverSQLite, Path: ":memory:"},
		Events:    config.EventsConfig{Publisher: config.PublisherLog},
		Log:       config.LogConfig{Level: "info", Format: "console"},
		Telemetry: config.TelemetryConfig{Exporter: "none"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"postgres without url", func(c *config.Config) { c.Database.Driver = config.DriverPostgres }, "database url is required"},
		{"unknown publisher", func(c *config.Config) { c.Events.Publisher = "nats" }, `unknown events publisher "nats"`},
		{"kafka without brokers", func(c *config.Config) { c.Events.Publisher = config.PublisherKafka }, "at least one broker"},
		{"river", func(c *config.Config) { c.Events.Publisher = config.PublisherRiver }, ""},
		{"topic creation without timeout", func(c *config.Config) { c.Kafka.CreateTopics = true }, "setup timeout must be positive"},
		{"topic creation with timeout", func(c *config.Config) {
			c.Kafka.CreateTopics = true
			c.Kafka.SetupTimeout = time.Second
		}, ""},
		{"auth without users", func(c *config.Config) { c.Auth.Enabled = true }, "no users"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "unknown log format"},
		{"bad exporter", func(c *config.Config) { c.Telemetry.Exporter = "jaeger" }, "unknown otel exporter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
