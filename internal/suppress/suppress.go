package suppress

import (
	"strings"

	"go.uber.org/zap"
)

// Checker decides which senders never receive an auto-reply.
// Entries containing "@" match a full address, anything else (or "@domain")
// matches a domain.
type Checker struct {
	addresses map[string]struct{}
	domains   map[string]struct{}
	logger    *zap.Logger
}

// NewChecker creates a new suppression checker
func NewChecker(entries []string, logger *zap.Logger) *Checker {
	c := &Checker{
		addresses: make(map[string]struct{}),
		domains:   make(map[string]struct{}),
		logger:    logger,
	}
	for _, entry := range entries {
		entry = strings.ToLower(strings.TrimSpace(entry))
		switch {
		case entry == "":
		case strings.HasPrefix(entry, "@"):
			c.domains[entry[1:]] = struct{}{}
		case strings.Contains(entry, "@"):
			c.addresses[entry] = struct{}{}
		default:
			c.domains[entry] = struct{}{}
		}
	}

	if c.Len() > 0 && logger != nil {
		logger.Info("Initialized suppression list",
			zap.Int("addresses", len(c.addresses)),
			zap.Int("domains", len(c.domains)))
	}
	return c
}

// Len returns the number of suppression entries
func (c *Checker) Len() int {
	return len(c.addresses) + len(c.domains)
}

// IsSuppressed checks a normalized address against the suppression list
func (c *Checker) IsSuppressed(address string) bool {
	if c.Len() == 0 {
		return false
	}
	address = strings.ToLower(strings.TrimSpace(address))

	if _, ok := c.addresses[address]; ok {
		c.debug("Address is suppressed", address)
		return true
	}

	at := strings.LastIndex(address, "@")
	if at < 0 {
		return false
	}
	if _, ok := c.domains[address[at+1:]]; ok {
		c.debug("Domain is suppressed", address)
		return true
	}
	return false
}

func (c *Checker) debug(msg, address string) {
	if c.logger != nil {
		c.logger.Debug(msg, zap.String("email", address))
	}
}
