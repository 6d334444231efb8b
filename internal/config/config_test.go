package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultValues(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotNil(t, cfg)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "postgres", cfg.Database.User)
	assert.Equal(t, "sistema", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)

	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "alertsystem/alerts", cfg.MQTT.Topic)

	assert.Equal(t, 30, cfg.Monitor.CheckInterval)
	assert.Equal(t, 1, cfg.Monitor.ReadingWindowMinutes)
	assert.Equal(t, 10, cfg.Monitor.SendTimeout)
	assert.Equal(t, "sistema_info", cfg.Monitor.ReadingsTable)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval())
	assert.Equal(t, time.Minute, cfg.Monitor.Window())

	assert.Equal(t, ":5555", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.False(t, cfg.EmailJS.Configured())
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	os.Clearenv()
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_NAME", "test-db")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("CHECK_INTERVAL", "5")
	t.Setenv("READING_WINDOW_MINUTES", "3")
	t.Setenv("EMAILJS_SERVICE_ID", "svc")
	t.Setenv("EMAILJS_TEMPLATE_ID", "tpl")
	t.Setenv("EMAILJS_PUBLIC_KEY", "pub")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "test-db", cfg.Database.Database)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 5, cfg.Monitor.CheckInterval)
	assert.Equal(t, 3*time.Minute, cfg.Monitor.Window())
	assert.True(t, cfg.EmailJS.Configured())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFileThenEnv(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	path := filepath.Join(dir, "alertsystem.yaml")
	content := []byte(`
database:
  host: yaml-host
monitor:
  check_interval: 60
  readings_table: readings
emailjs:
  service_id: yaml-service
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CHECK_INTERVAL", "15")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "yaml-host", cfg.Database.Host)
	assert.Equal(t, "readings", cfg.Monitor.ReadingsTable)
	assert.Equal(t, "yaml-service", cfg.EmailJS.ServiceID)
	// environment wins over the file
	assert.Equal(t, 15, cfg.Monitor.CheckInterval)
	// untouched keys keep defaults
	assert.Equal(t, 5432, cfg.Database.Port)
}

func TestLoad_InvalidValues(t *testing.T) {
	os.Clearenv()
	t.Setenv("READINGS_TABLE", "sistema_info; DROP TABLE alert_rules")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid readings table name")

	os.Clearenv()
	t.Setenv("CHECK_INTERVAL", "0")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check interval")
}

func TestLoad_MissingConfigFile(t *testing.T) {
	os.Clearenv()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestGetDSN(t *testing.T) {
	cfg := Default()
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=sistema sslmode=disable",
		cfg.Database.GetDSN(),
	)
}

func TestGetEnv(t *testing.T) {
	os.Clearenv()
	assert.Equal(t, "default-value", getEnv("TEST_KEY", "default-value"))

	t.Setenv("TEST_KEY", "env-value")
	assert.Equal(t, "env-value", getEnv("TEST_KEY", "default-value"))
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 7, parseInt("", 7))
	assert.Equal(t, 7, parseInt("abc", 7))
	assert.Equal(t, 12, parseInt("12", 7))

	assert.True(t, parseBool("", true))
	assert.True(t, parseBool("nope", true))
	assert.False(t, parseBool("false", true))
}
