package core

import (
	"context"
)

// EmailDispatcher sends templated replies through the outbound email provider
type EmailDispatcher interface {
	// Send delivers the reply and returns the provider's acknowledgement
	Send(ctx context.Context, tpl *EmailTemplate) (string, error)
}

// ChatClient posts messages to the chat provider
type ChatClient interface {
	// SendMessage posts a single message and returns its thread anchor
	SendMessage(ctx context.Context, msg *ChatMessage) (*ChatResponse, error)
}

// ResponseLog tracks when each address last received an auto-reply
type ResponseLog interface {
	// CanSend reports whether the cooldown for an address has elapsed
	CanSend(address string) bool

	// LogSend sweeps stale entries and records a reply to address now
	LogSend(address string)

	// TryReserve atomically records a reply if CanSend would have allowed it
	TryReserve(address string) bool

	// CooldownMinutes returns the configured cooldown window
	CooldownMinutes() int64
}

// Summarizer produces a one-line summary of a received email
type Summarizer interface {
	Summarize(ctx context.Context, email *ReceivedEmail) (string, error)
}

// SuppressionChecker decides whether an address must never get an auto-reply
type SuppressionChecker interface {
	IsSuppressed(address string) bool
}
