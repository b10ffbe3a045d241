package config

import (
	"fmt"
	"os"

	"boxrental-backend/internal/domain"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Notify    NotifyConfig    `yaml:"notify"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Rental    RentalConfig    `yaml:"rental"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StoreConfig selects the entity store. Driver is "postgres" or "memory".
type StoreConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

// SMTPConfig contains email service settings
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// NotifyConfig selects the notification provider and sizes the effect queue
type NotifyConfig struct {
	Provider       string `yaml:"provider"` // "smtp", "sendgrid" or "log"
	FromName       string `yaml:"from_name"`
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	Workers        int    `yaml:"workers"`
	QueueSize      int    `yaml:"queue_size"`
	MaxRetries     int    `yaml:"max_retries"`
	RetryBackoffMS int    `yaml:"retry_backoff_ms"`
}

// JWTConfig contains JWT token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// RentalConfig contains occupancy engine settings
type RentalConfig struct {
	DeletePolicy domain.DeletePolicy `yaml:"delete_policy"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ReconcileOccupancy string `yaml:"reconcile_occupancy"`
	RepairDrift        bool   `yaml:"repair_drift"`
}

// RateLimitConfig limits login attempts per client IP
type RateLimitConfig struct {
	LoginPerMinute int `yaml:"login_per_minute"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a configuration from YAML bytes, applying environment
// overrides and defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Store
	if val := os.Getenv("STORE_DRIVER"); val != "" {
		c.Store.Driver = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Store.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Store.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Store.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Store.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Store.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Store.SSLMode = val
	}

	// SMTP
	if val := os.Getenv("SMTP_HOST"); val != "" {
		c.SMTP.Host = val
	}
	if val := os.Getenv("SMTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.SMTP.Port)
	}
	if val := os.Getenv("SMTP_USER"); val != "" {
		c.SMTP.User = val
	}
	if val := os.Getenv("SMTP_PASSWORD"); val != "" {
		c.SMTP.Password = val
	}
	if val := os.Getenv("SMTP_FROM"); val != "" {
		c.SMTP.From = val
	}

	// Notify
	if val := os.Getenv("NOTIFY_PROVIDER"); val != "" {
		c.Notify.Provider = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Notify.SendGridAPIKey = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Rental
	if val := os.Getenv("RENTAL_DELETE_POLICY"); val != "" {
		c.Rental.DeletePolicy = domain.DeletePolicy(val)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Store validation
	if c.Store.Driver == "" {
		c.Store.Driver = "postgres"
	}
	switch c.Store.Driver {
	case "postgres":
		if c.Store.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Store.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Store.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Store.Port == 0 {
			c.Store.Port = 5432
		}
		if c.Store.SSLMode == "" {
			c.Store.SSLMode = "disable"
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Store.Driver)
	}

	// Notify validation
	if c.Notify.Provider == "" {
		c.Notify.Provider = "log"
	}
	switch c.Notify.Provider {
	case "smtp":
		if c.SMTP.Host == "" {
			return fmt.Errorf("SMTP host is required")
		}
		if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
			return fmt.Errorf("invalid SMTP port: %d", c.SMTP.Port)
		}
		if c.SMTP.From == "" {
			return fmt.Errorf("SMTP from address is required")
		}
	case "sendgrid":
		if c.Notify.SendGridAPIKey == "" {
			return fmt.Errorf("SendGrid API key is required")
		}
		if c.SMTP.From == "" {
			return fmt.Errorf("from address is required")
		}
	case "log":
	default:
		return fmt.Errorf("unsupported notify provider: %s", c.Notify.Provider)
	}
	if c.Notify.FromName == "" {
		c.Notify.FromName = "Box Rental"
	}
	if c.Notify.Workers <= 0 {
		c.Notify.Workers = 2
	}
	if c.Notify.QueueSize <= 0 {
		c.Notify.QueueSize = 100
	}
	if c.Notify.MaxRetries < 0 {
		c.Notify.MaxRetries = 0
	}
	if c.Notify.RetryBackoffMS <= 0 {
		c.Notify.RetryBackoffMS = 1000
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Rental defaults
	if c.Rental.DeletePolicy == "" {
		c.Rental.DeletePolicy = domain.DeletePolicyReleaseIfActive
	}
	if !c.Rental.DeletePolicy.Valid() {
		return fmt.Errorf("invalid rental delete policy: %s", c.Rental.DeletePolicy)
	}

	// Scheduler defaults
	if c.Scheduler.ReconcileOccupancy == "" {
		c.Scheduler.ReconcileOccupancy = "0 0 * * * *" // Hourly, on the hour
	}

	if c.RateLimit.LoginPerMinute <= 0 {
		c.RateLimit.LoginPerMinute = 10
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Store.User,
		c.Store.Password,
		c.Store.Host,
		c.Store.Port,
		c.Store.Database,
		c.Store.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
