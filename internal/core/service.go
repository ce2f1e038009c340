package core

import (
	"context"

	"go.uber.org/zap"
)

// RelayOptions tunes the relay service
type RelayOptions struct {
	// AtomicDedup reserves the cooldown slot with a single check-and-set
	// instead of CanSend followed by LogSend
	AtomicDedup bool
}

// RelayService verifies inbound notifications and performs the requested action
type RelayService struct {
	verifier    *Verifier
	responseLog ResponseLog
	dispatcher  EmailDispatcher
	forwarder   *Forwarder
	suppression SuppressionChecker
	logger      *zap.Logger
	options     RelayOptions
}

// NewRelayService creates a new relay service. suppression may be nil.
func NewRelayService(
	verifier *Verifier,
	responseLog ResponseLog,
	dispatcher EmailDispatcher,
	forwarder *Forwarder,
	suppression SuppressionChecker,
	logger *zap.Logger,
	options RelayOptions,
) *RelayService {
	return &RelayService{
		verifier:    verifier,
		responseLog: responseLog,
		dispatcher:  dispatcher,
		forwarder:   forwarder,
		suppression: suppression,
		logger:      logger,
		options:     options,
	}
}

// AutoReply sends a templated no-reply acknowledgement to the email's From address,
// at most once per cooldown window
func (s *RelayService) AutoReply(ctx context.Context, template string, email *ReceivedEmail) (Outcome, error) {
	if err := s.verifier.Verify(email); err != nil {
		return "", err
	}

	messageID, err := MessageID(email.MessageHeaders)
	if err != nil {
		return "", err
	}

	address := NormalizeAddress(email.From)
	if s.suppression != nil && s.suppression.IsSuppressed(address) {
		s.logger.Info("Address is suppressed, skipping auto-reply",
			zap.String("from", address),
			zap.String("action", "suppressed"))
		return OutcomeSuppressed, nil
	}

	// CanSend followed by LogSend is not atomic; two concurrent requests for the
	// same address may both reply. Set AtomicDedup to close the window.
	if !s.reserve(address) {
		s.logger.Info("Already responded within the cooldown window, skipping",
			zap.String("from", address),
			zap.Int64("cooldown_minutes", s.responseLog.CooldownMinutes()),
			zap.String("action", "duplicate"))
		return OutcomeDuplicate, nil
	}

	ack, err := s.dispatcher.Send(ctx, &EmailTemplate{
		Recipient:  email.From,
		Subject:    "Re: " + email.Subject,
		Template:   template,
		InReplyTo:  messageID,
		References: messageID,
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("Sent auto-reply",
		zap.String("from", address),
		zap.String("template", template),
		zap.String("provider_ack", ack))
	return OutcomeSent, nil
}

// Forward posts the email to a chat channel
func (s *RelayService) Forward(ctx context.Context, channel string, email *ReceivedEmail) error {
	if err := s.verifier.Verify(email); err != nil {
		return err
	}

	resp, err := s.forwarder.Forward(ctx, channel, email)
	if err != nil {
		return err
	}

	s.logger.Info("Forwarded email to chat",
		zap.String("channel", channel),
		zap.String("sender", email.Sender),
		zap.String("thread_ts", resp.TS))
	return nil
}

func (s *RelayService) reserve(address string) bool {
	if s.options.AtomicDedup {
		return s.responseLog.TryReserve(address)
	}
	if !s.responseLog.CanSend(address) {
		return false
	}
	s.responseLog.LogSend(address)
	return true
}
