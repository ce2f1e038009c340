package core

import (
	"time"
)

// ReceivedEmail represents an inbound-email notification from the email provider
type ReceivedEmail struct {
	Sender         string
	From           string
	Subject        string
	BodyPlain      string
	Timestamp      int64
	Token          string
	Signature      string
	MessageHeaders string
}

// EmailTemplate represents an outbound templated reply
type EmailTemplate struct {
	Recipient  string
	Subject    string
	Template   string
	InReplyTo  string
	References string
}

// ChatMessage represents a single chat post
type ChatMessage struct {
	Channel  string
	Text     string
	ThreadTS string
	AsUser   bool
}

// ChatResponse carries the identifiers returned for a posted chat message
type ChatResponse struct {
	Channel string
	TS      string
}

// DedupEntry records when an address last received an auto-reply
type DedupEntry struct {
	Address  string
	LastSent time.Time
}

// Outcome describes how an auto-reply request was resolved
type Outcome string

const (
	OutcomeSent       Outcome = "sent"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeSuppressed Outcome = "suppressed"
)
