package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// legacyEnv maps configuration keys to the bare environment names used by
// existing deployments
var legacyEnv = map[string]string{
	"mailgun.api_key":             "MAILGUN_API_KEY",
	"mailgun.domain":              "MAILGUN_DOMAIN",
	"mailgun.from":                "MAILGUN_FROM",
	"mailgun.webhook_signing_key": "MAILGUN_WEBHOOK_SIGNING_KEY",
	"slack.api_token":             "SLACK_API_TOKEN",
	"responder.cooldown_minutes":  "TIME_BETWEEN_RESPONSES_MINUTES",
	"server.listen_address":       "LISTEN_ADDRESS_PORT",
}

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/mail-relay/")
	v.AddConfigPath("$HOME/.mail-relay")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	bindEnv(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func bindEnv(v *viper.Viper) {
	v.AutomaticEnv()
	v.SetEnvPrefix("MAIL_RELAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, name := range legacyEnv {
		_ = v.BindEnv(key, "MAIL_RELAY_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), name)
	}
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:8080")
	v.SetDefault("server.max_body_bytes", 2<<20)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Outbound HTTP defaults
	v.SetDefault("http.client_timeout", "30s")

	// Email defaults
	v.SetDefault("email.provider", "mailgun")

	// Mailgun defaults
	v.SetDefault("mailgun.api_base", "")
	v.SetDefault("mailgun.max_signature_age", "0s")

	// SMTP defaults
	v.SetDefault("smtp.address", "localhost:25")
	v.SetDefault("smtp.helo", "localhost")
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.templates_dir", "./templates")
	v.SetDefault("smtp.timeout", "30s")

	// Slack defaults
	v.SetDefault("slack.api_url", "")
	v.SetDefault("slack.max_body_size", 35000)

	// Responder defaults
	v.SetDefault("responder.atomic_dedup", false)
	v.SetDefault("responder.suppressed", []string{})

	// Summary defaults
	v.SetDefault("summary.provider", "none")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 200)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 200)
	v.SetDefault("gemini.temperature", 0.2)
	v.SetDefault("gemini.max_body_size", 4096)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 200)
	v.SetDefault("openai.temperature", 0.2)
	v.SetDefault("openai.max_body_size", 4096)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// IsSet reports whether key has a value from any source other than defaults
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}

// duration returns the parsed duration at key, or zero when it is malformed.
// Validate reports malformed durations.
func (c *Config) duration(key string) time.Duration {
	d, err := c.GetDuration(key)
	if err != nil {
		return 0
	}
	return d
}
