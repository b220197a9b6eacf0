package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// Config holds the configuration for the mealtrack server.
type Config struct {
	// Listen is the address the mealtrack server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the public base URL of the mealtrack server.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// SessionKey is the key used to sign the session cookie.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionMaxAge is the maximum age of a session in seconds.
	SessionMaxAge int `yaml:"session_max_age" mapstructure:"session_max_age"`
	// SessionCleanupSchedule is the cron schedule for purging expired sessions.
	SessionCleanupSchedule string `yaml:"session_cleanup_schedule" mapstructure:"session_cleanup_schedule"`
	// Timezone is the IANA timezone used for calendar based views like the dashboard.
	// Empty means the local timezone of the server.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
	// Database holds the database configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Cache holds the session cache configuration.
	Cache *CacheConfig `yaml:"cache" mapstructure:"cache"`
	// Auth holds the optional external authentication configuration.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`
	// Email holds the smtp configuration used for reminders.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// Reminders holds the meal reminder job configuration.
	Reminders *RemindersConfig `yaml:"reminders" mapstructure:"reminders"`
	// Gravatar holds the optional avatar configuration.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`

	location *time.Location
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the path to the sqlite database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// CacheConfig holds the cache engine configuration.
type CacheConfig struct {
	// Type is the cache backend, either "memory" or "redis".
	Type CacheType `yaml:"type" mapstructure:"type"`
	// RedisURL is the address of the redis server (host:port).
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// TTL is how long a resolved session stays cached, in seconds.
	TTL int `yaml:"ttl" mapstructure:"ttl"`
}

// AuthConfig holds the external authentication configuration.
type AuthConfig struct {
	// OIDC holds the OpenID Connect configuration.
	OIDC *OIDCConfig `yaml:"oidc" mapstructure:"oidc"`
}

// OIDCConfig holds the OpenID Connect configuration.
type OIDCConfig struct {
	// Enabled indicates whether OIDC authentication is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Name is the display name for the OIDC provider.
	Name string `yaml:"name" mapstructure:"name"`
	// Issuer is the OIDC issuer URL.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// ClientID is the OIDC client ID.
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	// ClientSecret is the OIDC client secret.
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret"`
	// RedirectURL is the redirect URL for the oidc flow.
	RedirectURL string `yaml:"redirect_url" mapstructure:"redirect_url"`
}

// EmailConfig holds the email notification configuration.
type EmailConfig struct {
	// Enabled indicates whether email notifications are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which notifications are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which notifications are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use SSL for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// RemindersConfig holds the configuration of the meal reminder job.
type RemindersConfig struct {
	// Enabled indicates whether reminders are sent at all.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Schedule is the cron schedule on which due reminders are evaluated.
	Schedule string `yaml:"schedule" mapstructure:"schedule"`
	// Concurrency limits how many reminders are sent in parallel.
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// GravatarConfig holds the Gravatar avatar configuration.
type GravatarConfig struct {
	// Enabled indicates whether user responses carry a Gravatar URL.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the fallback image (404, mp, identicon, monsterid, wavatar, retro, robohash, blank).
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating (g, pg, r, x).
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the image size in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
// A missing config file is not an error, defaults and environment variables are used instead.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("failed to load .env file", "error", err)
	}

	v := viper.New()

	// Set default values
	setDefaults(v)

	// Configure Viper
	v.SetConfigType("yaml")
	v.SetEnvPrefix("MEALTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var configFileFound bool
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.mealtrack")
		v.AddConfigPath("/etc/mealtrack")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileFound = true
	}

	if configFileFound {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
		log.Debug("Environment variables with the MEALTRACK_ prefix override config file values")
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:3000")
	v.SetDefault("server_url", "http://localhost:3000")
	v.SetDefault("session_key", "")
	v.SetDefault("session_max_age", 604800) // 7 days
	v.SetDefault("session_cleanup_schedule", "0 * * * *")
	v.SetDefault("timezone", "")

	// Database defaults
	v.SetDefault("database.path", "./data/mealtrack.db")

	// Cache defaults
	v.SetDefault("cache.type", CacheTypeMemory)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 300)

	// Auth defaults
	v.SetDefault("auth.oidc.enabled", false)
	v.SetDefault("auth.oidc.name", "OIDC")
	v.SetDefault("auth.oidc.issuer", "")
	v.SetDefault("auth.oidc.client_id", "")
	v.SetDefault("auth.oidc.client_secret", "")
	v.SetDefault("auth.oidc.redirect_url", "")

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_email", "")
	v.SetDefault("email.from_name", "Mealtrack")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.insecure_skip_verify", false)

	// Reminder defaults
	v.SetDefault("reminders.enabled", false)
	v.SetDefault("reminders.schedule", "*/15 * * * *")
	v.SetDefault("reminders.concurrency", 4)

	// Gravatar defaults
	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "mp")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)
}

// sanitizeConfig normalizes values that are easy to get subtly wrong.
func sanitizeConfig(c *Config) {
	c.ServerURL = strings.TrimSuffix(strings.TrimSpace(c.ServerURL), "/")
	if c.Cache != nil {
		c.Cache.Type = CacheType(strings.ToLower(string(c.Cache.Type)))
	}
	if c.Reminders != nil && c.Reminders.Concurrency < 1 {
		c.Reminders.Concurrency = 1
	}
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing config")
	}

	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}

	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("session_max_age must be positive")
	}

	if c.SessionKey == "" {
		key, err := randomKey()
		if err != nil {
			return fmt.Errorf("failed to generate session key: %w", err)
		}
		c.SessionKey = key
		log.Warn("No session_key configured, generated a random one. Sessions will not survive a restart.")
	} else if len(c.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters long")
	}

	// time.LoadLocation("") would yield UTC, keep the server zone instead
	if c.Timezone != "" {
		loc, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
		c.location = loc
	}

	if c.Database == nil || c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Cache == nil {
		return fmt.Errorf("missing cache config")
	}
	switch c.Cache.Type {
	case CacheTypeMemory:
	case CacheTypeRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("redis URL is required when the redis cache is used")
		}
	default:
		return fmt.Errorf("unknown cache type %q", c.Cache.Type)
	}

	if c.Auth != nil && c.Auth.OIDC != nil && c.Auth.OIDC.Enabled {
		if c.Auth.OIDC.Issuer == "" {
			return fmt.Errorf("OIDC issuer is required when OIDC is enabled")
		}
		if c.Auth.OIDC.ClientID == "" {
			return fmt.Errorf("OIDC client ID is required when OIDC is enabled")
		}
		if c.Auth.OIDC.ClientSecret == "" {
			return fmt.Errorf("OIDC client secret is required when OIDC is enabled")
		}
		if c.Auth.OIDC.RedirectURL == "" {
			return fmt.Errorf("OIDC redirect URL is required when OIDC is enabled")
		}
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email is enabled")
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("from email is required when email is enabled")
		}
	}

	if c.Reminders != nil && c.Reminders.Enabled && (c.Email == nil || !c.Email.Enabled) {
		log.Warn("Reminders are enabled but email is not, no reminders will be delivered")
	}

	return nil
}

func randomKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Location returns the timezone used for calendar based computations.
// Configs that were not loaded through Load resolve Timezone on every call.
func (c *Config) Location() *time.Location {
	if c.location != nil {
		return c.location
	}
	if c.Timezone != "" {
		if loc, err := time.LoadLocation(c.Timezone); err == nil {
			return loc
		}
	}
	return time.Local
}

// IsOIDCEnabled returns true if OIDC login is configured.
func (c *Config) IsOIDCEnabled() bool {
	return c.Auth != nil && c.Auth.OIDC != nil && c.Auth.OIDC.Enabled
}

// RemindersEnabled returns true if reminders can actually be delivered.
func (c *Config) RemindersEnabled() bool {
	return c.Reminders != nil && c.Reminders.Enabled && c.Email != nil && c.Email.Enabled
}

// SessionTTL returns the configured session lifetime.
func (c *Config) SessionTTL() time.Duration {
	if c.SessionMaxAge <= 0 {
		return 7 * 24 * time.Hour
	}
	return time.Duration(c.SessionMaxAge) * time.Second
}

// CacheTTL returns how long resolved sessions stay cached.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache == nil || c.Cache.TTL <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Cache.TTL) * time.Second
}
