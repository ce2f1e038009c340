package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/mail-relay/internal/adapters/responselog"
	"github.com/mikey/mail-relay/internal/config"
	"github.com/mikey/mail-relay/internal/core"
	"github.com/mikey/mail-relay/internal/factory"
	"github.com/mikey/mail-relay/internal/logging"
	"github.com/mikey/mail-relay/internal/suppress"
	"github.com/mikey/mail-relay/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		cfg, err := config.New()
		if err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideRelay(container); err != nil {
		return nil, err
	}

	// Register webhook server
	if err := container.Provide(factory.NewServer); err != nil {
		return nil, err
	}

	return container, nil
}

// provideRelay registers everything the relay service needs, given a
// config and logger already in the container
func provideRelay(container *dig.Container) error {
	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return err
	}

	// Register outbound HTTP client
	if err := container.Provide(factory.NewHTTPClient); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewDispatcherFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewSummaryFactory); err != nil {
		return err
	}

	// Register email dispatcher
	if err := container.Provide(func(f *factory.DispatcherFactory) (core.EmailDispatcher, error) {
		return f.CreateDispatcher()
	}); err != nil {
		return err
	}

	// Register summarizer; nil when disabled
	if err := container.Provide(func(f *factory.SummaryFactory) (core.Summarizer, error) {
		return f.CreateSummarizer()
	}); err != nil {
		return err
	}

	// Register chat client
	if err := container.Provide(factory.NewChatClient); err != nil {
		return err
	}

	// Register response log
	if err := container.Provide(factory.NewResponseLog); err != nil {
		return err
	}
	if err := container.Provide(func(l *responselog.MemoryLog) core.ResponseLog {
		return l
	}); err != nil {
		return err
	}

	// Register suppression list
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.SuppressionChecker {
		entries := cfg.GetResponder().Suppressed
		if len(entries) > 0 {
			logger.Info("Loaded suppressed addresses", zap.Strings("entries", entries))
		}
		return suppress.NewChecker(entries, logger)
	}); err != nil {
		return err
	}

	// Register signature verifier
	if err := container.Provide(func(cfg *config.Config) (*core.Verifier, error) {
		mgCfg := cfg.GetMailgun()
		return core.NewVerifier(mgCfg.WebhookSigningKey, mgCfg.MaxSignatureAge)
	}); err != nil {
		return err
	}

	// Register chat forwarder
	if err := container.Provide(func(
		cfg *config.Config,
		chat core.ChatClient,
		summarizer core.Summarizer,
		textProcessor *utils.TextProcessor,
		logger *zap.Logger,
	) *core.Forwarder {
		return core.NewForwarder(chat, summarizer, textProcessor, cfg.GetSlack().MaxBodySize, logger)
	}); err != nil {
		return err
	}

	// Register relay service
	if err := container.Provide(func(
		cfg *config.Config,
		verifier *core.Verifier,
		responseLog core.ResponseLog,
		dispatcher core.EmailDispatcher,
		forwarder *core.Forwarder,
		suppression core.SuppressionChecker,
		logger *zap.Logger,
	) *core.RelayService {
		return core.NewRelayService(verifier, responseLog, dispatcher, forwarder, suppression, logger,
			core.RelayOptions{AtomicDedup: cfg.GetResponder().AtomicDedup})
	}); err != nil {
		return err
	}

	return nil
}
