package factory

import (
	"github.com/mikey/mail-relay/internal/adapters/webhook"
	"github.com/mikey/mail-relay/internal/config"
	"github.com/mikey/mail-relay/internal/core"
	"github.com/mikey/mail-relay/internal/ports"
	"go.uber.org/zap"
)

// NewServer creates the webhook server for the relay service
func NewServer(cfg *config.Config, logger *zap.Logger, service *core.RelayService) ports.Server {
	serverCfg := cfg.GetServer()
	return webhook.NewServer(service, logger, webhook.Options{
		ListenAddress:   serverCfg.ListenAddress,
		MaxBodyBytes:    serverCfg.MaxBodyBytes,
		ReadTimeout:     serverCfg.ReadTimeout,
		WriteTimeout:    serverCfg.WriteTimeout,
		ShutdownTimeout: serverCfg.ShutdownTimeout,
	})
}
