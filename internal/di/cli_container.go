package di

import (
	"flag"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-relay/internal/adapters/webhook"
	"github.com/mikey/mail-relay/internal/config"
	"github.com/mikey/mail-relay/internal/core"
	"github.com/mikey/mail-relay/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Target flags
	URL      string
	Mode     string
	Template string
	Channel  string
	Encoding string
	Timeout  time.Duration

	// Signing flags
	SigningKey string

	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile bool
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Target flags
	flag.StringVar(&flags.URL, "url", "http://localhost:8080", "Base URL of the relay")
	flag.StringVar(&flags.Mode, "mode", "respond", "Route to post to (respond, forward)")
	flag.StringVar(&flags.Template, "template", "", "Reply template for respond mode")
	flag.StringVar(&flags.Channel, "channel", "", "Slack channel id for forward mode")
	flag.StringVar(&flags.Encoding, "encoding", string(webhook.EncodingURLEncoded), "Body encoding (urlencoded, multipart)")
	flag.DurationVar(&flags.Timeout, "timeout", 30*time.Second, "Request timeout")

	// Signing flags
	flag.StringVar(&flags.SigningKey, "signing-key", "", "Webhook signing key (defaults to configuration)")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.BoolVar(&flags.ConfigFile, "config", false, "Read the signing key from the relay configuration")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register signature verifier
	if err := container.Provide(func(cfg *config.Config) (*core.Verifier, error) {
		return core.NewVerifier(cfg.GetMailgun().WebhookSigningKey, 0)
	}); err != nil {
		return nil, err
	}

	// Register webhook client
	if err := container.Provide(func(flags *CLIFlags) *webhook.Client {
		httpClient := &http.Client{
			Timeout:   flags.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
		return webhook.NewClient(flags.URL, httpClient, webhook.Encoding(flags.Encoding))
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()
	v.Set("mailgun.webhook_signing_key", flags.SigningKey)
	return config.NewFromViper(v)
}
