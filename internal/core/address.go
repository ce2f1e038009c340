package core

import (
	"net/mail"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeAddress reduces a From header value to the key used by the response log
func NormalizeAddress(from string) string {
	address := strings.TrimSpace(from)
	if parsed, err := mail.ParseAddress(address); err == nil {
		address = parsed.Address
	}
	return norm.NFC.String(strings.ToLower(address))
}
