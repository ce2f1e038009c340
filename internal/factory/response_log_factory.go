package factory

import (
	"github.com/mikey/mail-relay/internal/adapters/responselog"
	"github.com/mikey/mail-relay/internal/config"
	"go.uber.org/zap"
)

// NewResponseLog creates the in-memory deduplication log
func NewResponseLog(cfg *config.Config, logger *zap.Logger) *responselog.MemoryLog {
	responderCfg := cfg.GetResponder()
	logger.Info("Auto-reply cooldown configured",
		zap.Int64("cooldown_minutes", responderCfg.CooldownMinutes),
		zap.Bool("atomic_dedup", responderCfg.AtomicDedup))
	return responselog.NewMemoryLog(responderCfg.CooldownMinutes, logger)
}
