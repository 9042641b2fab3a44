package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Store          StoreConfig          `yaml:"store"`
	Database       DatabaseConfig       `yaml:"database"`
	Log            LogConfig            `yaml:"log"`
	Email          EmailConfig          `yaml:"email"`
	Push           PushConfig           `yaml:"push"`
	Recommendation RecommendationConfig `yaml:"recommendation"`
	Scheduler      SchedulerConfig      `yaml:"scheduler"`
}

// StoreConfig selects the repository backend
type StoreConfig struct {
	Type string `yaml:"type"` // "memory" or "postgres"
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// EmailConfig contains patron e-mail settings
type EmailConfig struct {
	Provider  string `yaml:"provider"` // "log" or "sendgrid"
	APIKey    string `yaml:"api_key"`
	FromEmail string `yaml:"from_email"`
	FromName  string `yaml:"from_name"`
}

// PushConfig contains Firebase Cloud Messaging settings
type PushConfig struct {
	Enabled         bool   `yaml:"enabled"`
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

// RecommendationConfig contains recommendation defaults
type RecommendationConfig struct {
	DefaultStrategy string `yaml:"default_strategy"` // "author" or "popularity"
	DefaultLimit    int    `yaml:"default_limit"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireReservationHolds string `yaml:"expire_reservation_holds"`
	SendOverdueReminders   string `yaml:"send_overdue_reminders"`
	RefreshPopularity      string `yaml:"refresh_popularity"`
}

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	EmailProviderLog      = "log"
	EmailProviderSendGrid = "sendgrid"
)

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Config from YAML, applies environment overrides and validates it.
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
	if val := os.Getenv("STORE_TYPE"); val != "" {
		c.Store.Type = val
	}

	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Email
	if val := os.Getenv("EMAIL_PROVIDER"); val != "" {
		c.Email.Provider = val
	}
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.APIKey = val
	}
	if val := os.Getenv("EMAIL_FROM"); val != "" {
		c.Email.FromEmail = val
	}

	// Push
	if val := os.Getenv("PUSH_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Push.Enabled = enabled
		}
	}
	if val := os.Getenv("FIREBASE_PROJECT_ID"); val != "" {
		c.Push.ProjectID = val
	}
	if val := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); val != "" {
		c.Push.CredentialsFile = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
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
	switch c.Store.Type {
	case "":
		c.Store.Type = StoreMemory
	case StoreMemory:
	case StorePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.Port < 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port: %d", c.Database.Port)
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unknown store type %q", c.Store.Type)
	}

	switch c.Email.Provider {
	case "":
		c.Email.Provider = EmailProviderLog
	case EmailProviderLog:
	case EmailProviderSendGrid:
		if c.Email.APIKey == "" {
			return fmt.Errorf("SendGrid API key is required")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("sender email is required")
		}
	default:
		return fmt.Errorf("unknown email provider %q", c.Email.Provider)
	}
	if c.Email.FromName == "" {
		c.Email.FromName = "The Library"
	}

	if c.Push.Enabled && c.Push.ProjectID == "" {
		return fmt.Errorf("firebase project id is required when push is enabled")
	}

	// Recommendation defaults
	switch c.Recommendation.DefaultStrategy {
	case "":
		c.Recommendation.DefaultStrategy = "author"
	case "author", "popularity":
	default:
		return fmt.Errorf("unknown recommendation strategy %q", c.Recommendation.DefaultStrategy)
	}
	if c.Recommendation.DefaultLimit < 0 {
		return fmt.Errorf("invalid recommendation limit: %d", c.Recommendation.DefaultLimit)
	}
	if c.Recommendation.DefaultLimit == 0 {
		c.Recommendation.DefaultLimit = 5
	}

	// Scheduler defaults
	if c.Scheduler.ExpireReservationHolds == "" {
		c.Scheduler.ExpireReservationHolds = "0 0 * * * *" // Hourly
	}
	if c.Scheduler.SendOverdueReminders == "" {
		c.Scheduler.SendOverdueReminders = "0 0 8 * * *" // 8 AM UTC
	}
	if c.Scheduler.RefreshPopularity == "" {
		c.Scheduler.RefreshPopularity = "0 30 2 * * *" // 2:30 AM UTC
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
