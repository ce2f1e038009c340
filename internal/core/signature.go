package core

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Verifier checks that inbound notifications were signed by the email provider
type Verifier struct {
	signingKey []byte
	maxAge     time.Duration
	Now        func() time.Time
}

// NewVerifier creates a verifier for the given webhook signing key.
// A zero maxAge disables the timestamp freshness check.
func NewVerifier(signingKey string, maxAge time.Duration) (*Verifier, error) {
	signingKey = strings.TrimSpace(signingKey)
	if signingKey == "" {
		return nil, fmt.Errorf("webhook signing key is required")
	}
	return &Verifier{
		signingKey: []byte(signingKey),
		maxAge:     maxAge,
		Now:        time.Now,
	}, nil
}

// Sign returns the hex HMAC-SHA256 of timestamp followed by token
func (v *Verifier) Sign(timestamp int64, token string) string {
	mac := hmac.New(sha256.New, v.signingKey)
	_, _ = mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	_, _ = mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify rejects an email whose signature does not match its timestamp and token
func (v *Verifier) Verify(email *ReceivedEmail) error {
	signature, err := hex.DecodeString(strings.TrimSpace(email.Signature))
	if err != nil {
		return SignatureInvalid("signature is not valid hex")
	}

	mac := hmac.New(sha256.New, v.signingKey)
	_, _ = mac.Write([]byte(strconv.FormatInt(email.Timestamp, 10)))
	_, _ = mac.Write([]byte(email.Token))
	if !hmac.Equal(mac.Sum(nil), signature) {
		return SignatureInvalid("signature verification failed")
	}

	if v.maxAge > 0 {
		age := v.Now().Sub(time.Unix(email.Timestamp, 0))
		if age < 0 {
			age = -age
		}
		if age > v.maxAge {
			return SignatureInvalid(fmt.Sprintf("signature timestamp is older than %s", v.maxAge))
		}
	}
	return nil
}
