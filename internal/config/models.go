package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ServerConfig represents the configuration for the webhook listener
type ServerConfig struct {
	ListenAddress   string
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// HTTPConfig represents the configuration for outbound HTTP clients
type HTTPConfig struct {
	ClientTimeout time.Duration
}

// EmailConfig represents the configuration for the reply dispatcher
type EmailConfig struct {
	Provider string
}

// MailgunConfig represents the configuration for Mailgun
type MailgunConfig struct {
	APIKey            string
	Domain            string
	APIBase           string
	From              string
	WebhookSigningKey string
	MaxSignatureAge   time.Duration
}

// SMTPConfig represents the configuration for the SMTP relay
type SMTPConfig struct {
	Address      string
	Helo         string
	Username     string
	Password     string
	From         string
	TemplatesDir string
	Timeout      time.Duration
}

// SlackConfig represents the configuration for Slack
type SlackConfig struct {
	APIToken    string
	APIURL      string
	MaxBodySize int
}

// ResponderConfig represents the configuration for auto-replies
type ResponderConfig struct {
	CooldownMinutes int64
	AtomicDedup     bool
	Suppressed      []string
}

// SummaryConfig represents the configuration for notification summaries
type SummaryConfig struct {
	Provider string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	MaxBodySize int
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		MaxBodyBytes:    c.GetInt64("server.max_body_bytes"),
		ReadTimeout:     c.duration("server.read_timeout"),
		WriteTimeout:    c.duration("server.write_timeout"),
		ShutdownTimeout: c.duration("server.shutdown_timeout"),
	}
}

// GetHTTP returns the outbound HTTP configuration
func (c *Config) GetHTTP() HTTPConfig {
	return HTTPConfig{
		ClientTimeout: c.duration("http.client_timeout"),
	}
}

// GetEmail returns the email dispatcher configuration
func (c *Config) GetEmail() EmailConfig {
	return EmailConfig{
		Provider: strings.ToLower(c.GetString("email.provider")),
	}
}

// GetMailgun returns the Mailgun configuration. The webhook signing key
// falls back to the API key when unset.
func (c *Config) GetMailgun() MailgunConfig {
	signingKey := c.GetString("mailgun.webhook_signing_key")
	if signingKey == "" {
		signingKey = c.GetString("mailgun.api_key")
	}
	return MailgunConfig{
		APIKey:            c.GetString("mailgun.api_key"),
		Domain:            c.GetString("mailgun.domain"),
		APIBase:           c.GetString("mailgun.api_base"),
		From:              c.GetString("mailgun.from"),
		WebhookSigningKey: signingKey,
		MaxSignatureAge:   c.duration("mailgun.max_signature_age"),
	}
}

// GetSMTP returns the SMTP configuration. From falls back to mailgun.from.
func (c *Config) GetSMTP() SMTPConfig {
	from := c.GetString("smtp.from")
	if from == "" {
		from = c.GetString("mailgun.from")
	}
	return SMTPConfig{
		Address:      c.GetString("smtp.address"),
		Helo:         c.GetString("smtp.helo"),
		Username:     c.GetString("smtp.username"),
		Password:     c.GetString("smtp.password"),
		From:         from,
		TemplatesDir: c.GetString("smtp.templates_dir"),
		Timeout:      c.duration("smtp.timeout"),
	}
}

// GetSlack returns the Slack configuration
func (c *Config) GetSlack() SlackConfig {
	return SlackConfig{
		APIToken:    c.GetString("slack.api_token"),
		APIURL:      c.GetString("slack.api_url"),
		MaxBodySize: c.GetInt("slack.max_body_size"),
	}
}

// GetResponder returns the auto-reply configuration
func (c *Config) GetResponder() ResponderConfig {
	return ResponderConfig{
		CooldownMinutes: c.GetInt64("responder.cooldown_minutes"),
		AtomicDedup:     c.GetBool("responder.atomic_dedup"),
		Suppressed:      c.GetStringSlice("responder.suppressed"),
	}
}

// GetSummary returns the summary configuration
func (c *Config) GetSummary() SummaryConfig {
	return SummaryConfig{
		Provider: strings.ToLower(c.GetString("summary.provider")),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// Validate reports every missing or malformed value needed to start the relay
func (c *Config) Validate() error {
	var errs []error
	require := func(key string) {
		if strings.TrimSpace(c.GetString(key)) == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}

	require("server.listen_address")
	require("slack.api_token")

	raw := strings.TrimSpace(c.GetString("responder.cooldown_minutes"))
	if raw == "" {
		errs = append(errs, errors.New("responder.cooldown_minutes is required"))
	} else if n, err := strconv.ParseInt(raw, 10, 64); err != nil || n < 0 {
		errs = append(errs, fmt.Errorf("responder.cooldown_minutes must be a non-negative integer, got %q", raw))
	}

	if c.GetMailgun().WebhookSigningKey == "" {
		errs = append(errs, errors.New("mailgun.webhook_signing_key or mailgun.api_key is required"))
	}

	switch c.GetEmail().Provider {
	case "mailgun":
		require("mailgun.api_key")
		require("mailgun.domain")
		require("mailgun.from")
	case "smtp":
		require("smtp.address")
		require("smtp.templates_dir")
		if c.GetSMTP().From == "" {
			errs = append(errs, errors.New("smtp.from or mailgun.from is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported email provider: %s", c.GetString("email.provider")))
	}

	switch c.GetSummary().Provider {
	case "", "none", "bedrock":
	case "openai":
		require("openai.api_key")
	case "gemini":
		require("gemini.api_key")
	default:
		errs = append(errs, fmt.Errorf("unsupported summary provider: %s", c.GetString("summary.provider")))
	}

	for _, key := range []string{
		"server.read_timeout",
		"server.write_timeout",
		"server.shutdown_timeout",
		"http.client_timeout",
		"mailgun.max_signature_age",
		"smtp.timeout",
	} {
		if _, err := c.GetDuration(key); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid duration %q", key, c.GetString(key)))
		}
	}

	if c.GetInt64("server.max_body_bytes") <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}

	return errors.Join(errs...)
}
