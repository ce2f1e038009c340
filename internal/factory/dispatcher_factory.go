package factory

import (
	"fmt"
	"net/http"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/mikey/mail-relay/internal/adapters/smtp"
	"github.com/mikey/mail-relay/internal/config"
	"github.com/mikey/mail-relay/internal/core"
	"go.uber.org/zap"

	mailgunadapter "github.com/mikey/mail-relay/internal/adapters/mailgun"
)

// DispatcherFactory creates email dispatchers based on configuration
type DispatcherFactory struct {
	cfg        *config.Config
	logger     *zap.Logger
	httpClient *http.Client
}

// NewDispatcherFactory creates a new dispatcher factory
func NewDispatcherFactory(cfg *config.Config, logger *zap.Logger, httpClient *http.Client) *DispatcherFactory {
	return &DispatcherFactory{
		cfg:        cfg,
		logger:     logger,
		httpClient: httpClient,
	}
}

// CreateDispatcher creates an email dispatcher based on the configuration
func (f *DispatcherFactory) CreateDispatcher() (core.EmailDispatcher, error) {
	provider := f.cfg.GetEmail().Provider

	switch provider {
	case "mailgun":
		mgCfg := f.cfg.GetMailgun()
		mg := mailgun.NewMailgun(mgCfg.Domain, mgCfg.APIKey)
		mg.SetClient(f.httpClient)
		if mgCfg.APIBase != "" {
			mg.SetAPIBase(mgCfg.APIBase)
		}
		f.logger.Info("Using Mailgun dispatcher", zap.String("domain", mgCfg.Domain))
		return mailgunadapter.NewDispatcher(mg, mgCfg.From, f.logger), nil
	case "smtp":
		smtpCfg := f.cfg.GetSMTP()
		f.logger.Info("Using SMTP dispatcher", zap.String("address", smtpCfg.Address))
		dispatcher, err := smtp.NewDispatcher(smtp.Options{
			Address:      smtpCfg.Address,
			Helo:         smtpCfg.Helo,
			Username:     smtpCfg.Username,
			Password:     smtpCfg.Password,
			From:         smtpCfg.From,
			TemplatesDir: smtpCfg.TemplatesDir,
			Timeout:      smtpCfg.Timeout,
		}, f.logger)
		if err != nil {
			return nil, err
		}
		return dispatcher, nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", provider)
	}
}
