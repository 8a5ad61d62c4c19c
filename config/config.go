package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime settings, read from the environment (and an optional .env file).
type Config struct {
	Port    string `mapstructure:"PORT"`
	Env     string `mapstructure:"APP_ENV"`
	GinMode string `mapstructure:"GIN_MODE"`

	// StoreDriver selects the persistence backend: "postgres" or "memory".
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DatabaseURL string `mapstructure:"DB_URL"`
	DBLogLevel  string `mapstructure:"DB_LOG_LEVEL"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	JWTSecret       string `mapstructure:"JWT_SECRET"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`
	SessionCookie   string `mapstructure:"SESSION_COOKIE"`
	CookieSecure    bool   `mapstructure:"COOKIE_SECURE"`
	AllowedOrigins  string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	HostelName     string `mapstructure:"HOSTEL_NAME"`
	Timezone       string `mapstructure:"HOSTEL_TIMEZONE"`
	CheckInHour    int    `mapstructure:"HOSTEL_CHECKIN_HOUR"`
	LoginRateLimit int    `mapstructure:"LOGIN_RATE_PER_MINUTE"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
	MailWorkers  int    `mapstructure:"MAIL_WORKERS"`

	CloudinaryCloudName string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `mapstructure:"CLOUDINARY_FOLDER"`

	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`
}

// Load reads configuration from environment variables.
// Every key gets a default so viper's Unmarshal picks up env overrides.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("GIN_MODE", "debug")

	v.SetDefault("STORE_DRIVER", "postgres")
	v.SetDefault("DB_URL", "")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("REDIS_URL", "")

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL_HOURS", 12)
	v.SetDefault("SESSION_COOKIE", "hostel_session")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	v.SetDefault("HOSTEL_NAME", "Hostal")
	v.SetDefault("HOSTEL_TIMEZONE", "America/Santiago")
	v.SetDefault("HOSTEL_CHECKIN_HOUR", 14)
	v.SetDefault("LOGIN_RATE_PER_MINUTE", 5)

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("MAIL_FROM", "reservas@hostal.local")
	v.SetDefault("MAIL_WORKERS", 2)

	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("CLOUDINARY_FOLDER", "hostel/check-ins")

	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "hostel-server")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DB_URL is required when STORE_DRIVER=postgres")
		}
	case "memory":
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if c.SessionTTLHours <= 0 {
		return fmt.Errorf("config: SESSION_TTL_HOURS must be positive")
	}
	if c.CheckInHour < 0 || c.CheckInHour > 23 {
		return fmt.Errorf("config: HOSTEL_CHECKIN_HOUR must be between 0 and 23")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: HOSTEL_TIMEZONE: %w", err)
	}
	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SessionTTL returns the lifetime of a login session.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// Location returns the hostel's time zone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Origins splits CORS_ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// MailEnabled reports whether SMTP delivery is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

// CloudinaryEnabled reports whether check-in document photos can be uploaded.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}
