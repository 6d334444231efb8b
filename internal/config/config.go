package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DatabaseConfig PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int    `yaml:"max_conns"`
	MaxIdle  int    `yaml:"max_idle"`
}

// GetDSN returns the lib/pq connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis settings (cooldown cache and alert stream)
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQTTConfig MQTT settings (alert event publishing)
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

// EmailJSConfig EmailJS credentials
type EmailJSConfig struct {
	APIURL     string `yaml:"api_url"`
	ServiceID  string `yaml:"service_id"`
	TemplateID string `yaml:"template_id"`
	PublicKey  string `yaml:"public_key"`
	PrivateKey string `yaml:"private_key"`
}

// Configured reports whether enough credentials are present to attempt a send.
// The private key is optional for EmailJS accounts without strict mode.
func (c EmailJSConfig) Configured() bool {
	return c.ServiceID != "" && c.TemplateID != "" && c.PublicKey != ""
}

// MonitorConfig evaluation loop settings
type MonitorConfig struct {
	CheckInterval        int    `yaml:"check_interval"`         // seconds between tick starts
	ReadingWindowMinutes int    `yaml:"reading_window_minutes"` // trailing window of readings
	SendTimeout          int    `yaml:"send_timeout"`           // seconds per notifier call
	ReadingsTable        string `yaml:"readings_table"`
	AdminAddr            string `yaml:"admin_addr"`
	CooldownCache        bool   `yaml:"cooldown_cache"`
	CooldownKeyPrefix    string `yaml:"cooldown_key_prefix"`
	AlertStream          string `yaml:"alert_stream"`
}

// Config AlertSystem configuration shared by the monitor and the API
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	EmailJS  EmailJSConfig  `yaml:"emailjs"`
	Monitor  MonitorConfig  `yaml:"monitor"`

	HTTP struct {
		Addr      string `yaml:"addr"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"http"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Default returns the built-in defaults
func Default() *Config {
	cfg := &Config{}

	cfg.Database.Host = "localhost"
	cfg.Database.Port = 5432
	cfg.Database.User = "postgres"
	cfg.Database.Password = "postgres"
	cfg.Database.Database = "sistema"
	cfg.Database.SSLMode = "disable"
	cfg.Database.MaxConns = 10
	cfg.Database.MaxIdle = 2

	cfg.Redis.Addr = "localhost:6379"

	cfg.MQTT.Broker = "tcp://localhost:1883"
	cfg.MQTT.ClientID = "alertsystem"
	cfg.MQTT.Topic = "alertsystem/alerts"
	cfg.MQTT.QoS = 1

	cfg.EmailJS.APIURL = "https://api.emailjs.com/api/v1.0/email/send"

	cfg.Monitor.CheckInterval = 30
	cfg.Monitor.ReadingWindowMinutes = 1
	cfg.Monitor.SendTimeout = 10
	cfg.Monitor.ReadingsTable = "sistema_info"
	cfg.Monitor.AdminAddr = ":9091"
	cfg.Monitor.CooldownKeyPrefix = "alertsystem:cooldown:"
	cfg.Monitor.AlertStream = "alertsystem:alerts"

	cfg.HTTP.Addr = ":5555"
	cfg.HTTP.StaticDir = "dist"

	cfg.Log.Level = "info"
	cfg.Log.Format = "json"

	return cfg
}

// Load builds the configuration: defaults, then the optional CONFIG_FILE yaml,
// then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile overlays a yaml file onto cfg
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() {
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = parseInt(getEnv("DB_PORT", ""), c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Database = getEnv("DB_NAME", c.Database.Database)
	c.Database.SSLMode = getEnv("DB_SSLMODE", c.Database.SSLMode)

	c.Redis.Enabled = parseBool(getEnv("REDIS_ENABLED", ""), c.Redis.Enabled)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = parseInt(getEnv("REDIS_DB", ""), c.Redis.DB)

	c.MQTT.Enabled = parseBool(getEnv("MQTT_ENABLED", ""), c.MQTT.Enabled)
	c.MQTT.Broker = getEnv("MQTT_BROKER", c.MQTT.Broker)
	c.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", c.MQTT.ClientID)
	c.MQTT.Username = getEnv("MQTT_USERNAME", c.MQTT.Username)
	c.MQTT.Password = getEnv("MQTT_PASSWORD", c.MQTT.Password)
	c.MQTT.Topic = getEnv("MQTT_TOPIC", c.MQTT.Topic)

	c.EmailJS.APIURL = getEnv("EMAILJS_API_URL", c.EmailJS.APIURL)
	c.EmailJS.ServiceID = getEnv("EMAILJS_SERVICE_ID", c.EmailJS.ServiceID)
	c.EmailJS.TemplateID = getEnv("EMAILJS_TEMPLATE_ID", c.EmailJS.TemplateID)
	c.EmailJS.PublicKey = getEnv("EMAILJS_PUBLIC_KEY", c.EmailJS.PublicKey)
	c.EmailJS.PrivateKey = getEnv("EMAILJS_PRIVATE_KEY", c.EmailJS.PrivateKey)

	c.Monitor.CheckInterval = parseInt(getEnv("CHECK_INTERVAL", ""), c.Monitor.CheckInterval)
	c.Monitor.ReadingWindowMinutes = parseInt(getEnv("READING_WINDOW_MINUTES", ""), c.Monitor.ReadingWindowMinutes)
	c.Monitor.SendTimeout = parseInt(getEnv("EMAIL_SEND_TIMEOUT", ""), c.Monitor.SendTimeout)
	c.Monitor.ReadingsTable = getEnv("READINGS_TABLE", c.Monitor.ReadingsTable)
	c.Monitor.AdminAddr = getEnv("MONITOR_ADMIN_ADDR", c.Monitor.AdminAddr)
	c.Monitor.CooldownCache = parseBool(getEnv("COOLDOWN_CACHE_ENABLED", ""), c.Monitor.CooldownCache)
	c.Monitor.AlertStream = getEnv("ALERT_STREAM", c.Monitor.AlertStream)

	c.HTTP.Addr = getEnv("HTTP_ADDR", c.HTTP.Addr)
	c.HTTP.StaticDir = getEnv("STATIC_DIR", c.HTTP.StaticDir)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate rejects settings the monitor cannot run with
func (c *Config) Validate() error {
	if c.Monitor.CheckInterval <= 0 {
		return fmt.Errorf("check interval must be positive, got %d", c.Monitor.CheckInterval)
	}
	if c.Monitor.ReadingWindowMinutes <= 0 {
		return fmt.Errorf("reading window must be positive, got %d", c.Monitor.ReadingWindowMinutes)
	}
	if c.Monitor.SendTimeout <= 0 {
		return fmt.Errorf("send timeout must be positive, got %d", c.Monitor.SendTimeout)
	}
	if !identifierPattern.MatchString(c.Monitor.ReadingsTable) {
		return fmt.Errorf("invalid readings table name: %q", c.Monitor.ReadingsTable)
	}
	return nil
}

// Interval returns the tick interval
func (m MonitorConfig) Interval() time.Duration {
	return time.Duration(m.CheckInterval) * time.Second
}

// Window returns the trailing readings window
func (m MonitorConfig) Window() time.Duration {
	return time.Duration(m.ReadingWindowMinutes) * time.Minute
}

// Timeout returns the per-send notifier timeout
func (m MonitorConfig) Timeout() time.Duration {
	return time.Duration(m.SendTimeout) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func parseBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
