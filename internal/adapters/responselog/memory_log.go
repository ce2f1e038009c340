package responselog

import (
	"sort"
	"time"

	"github.com/mikey/mail-relay/internal/core"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// MemoryLog is an in-memory implementation of the ResponseLog interface.
// Entries are keyed by normalized address; stale entries are swept on every send.
type MemoryLog struct {
	entries         *xsync.MapOf[string, time.Time]
	cooldownMinutes int64
	logger          *zap.Logger
	Now             func() time.Time
}

// NewMemoryLog creates a new in-memory response log
func NewMemoryLog(cooldownMinutes int64, logger *zap.Logger) *MemoryLog {
	return &MemoryLog{
		entries:         xsync.NewMapOf[string, time.Time](),
		cooldownMinutes: cooldownMinutes,
		logger:          logger,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// isTooOld counts whole elapsed minutes, so an entry becomes stale only once
// more than cooldownMinutes full minutes have passed.
func (l *MemoryLog) isTooOld(sentAt time.Time) bool {
	return int64(l.Now().Sub(sentAt)/time.Minute) > l.cooldownMinutes
}

// CanSend reports whether address has no entry or its entry is stale
func (l *MemoryLog) CanSend(address string) bool {
	sentAt, ok := l.entries.Load(address)
	if !ok {
		return true
	}
	return l.isTooOld(sentAt)
}

// LogSend removes stale entries, then records a reply to address
func (l *MemoryLog) LogSend(address string) {
	l.clearOld()
	l.entries.Store(address, l.Now().UTC())
}

// TryReserve records a reply to address only if CanSend would allow it
func (l *MemoryLog) TryReserve(address string) bool {
	l.clearOld()
	now := l.Now().UTC()
	reserved := false
	l.entries.Compute(address, func(sentAt time.Time, loaded bool) (time.Time, bool) {
		if loaded && !l.isTooOld(sentAt) {
			return sentAt, false
		}
		reserved = true
		return now, false
	})
	return reserved
}

// CooldownMinutes returns the configured cooldown window
func (l *MemoryLog) CooldownMinutes() int64 {
	return l.cooldownMinutes
}

// Len returns the number of tracked addresses
func (l *MemoryLog) Len() int {
	return l.entries.Size()
}

// Entries returns a snapshot of the log sorted by address
func (l *MemoryLog) Entries() []core.DedupEntry {
	entries := make([]core.DedupEntry, 0, l.entries.Size())
	l.entries.Range(func(address string, sentAt time.Time) bool {
		entries = append(entries, core.DedupEntry{Address: address, LastSent: sentAt})
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Address < entries[j].Address
	})
	return entries
}

func (l *MemoryLog) clearOld() {
	removed := 0
	l.entries.Range(func(address string, sentAt time.Time) bool {
		if !l.isTooOld(sentAt) {
			return true
		}
		// Re-check under the bucket lock so a concurrent LogSend is not lost
		l.entries.Compute(address, func(current time.Time, loaded bool) (time.Time, bool) {
			stale := loaded && l.isTooOld(current)
			if stale {
				removed++
			}
			return current, stale
		})
		return true
	})

	if removed > 0 {
		l.logger.Info("Cleared old entries from response log",
			zap.Int("removed", removed),
			zap.Int("remaining", l.entries.Size()))
	}
}

// Stop logs the final size of the log; entries are not persisted
func (l *MemoryLog) Stop() {
	l.logger.Info("Response log stopped", zap.Int("entries", l.entries.Size()))
}
