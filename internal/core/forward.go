package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/mail-relay/internal/utils"
	"go.uber.org/zap"
)

// ForwardStage names one of the two chat posts made when forwarding an email
type ForwardStage string

const (
	StageNotification ForwardStage = "notification"
	StageDetail       ForwardStage = "detail"
)

// ForwardError reports which stage of a forward failed
type ForwardError struct {
	Stage ForwardStage
	Err   error
}

func (e *ForwardError) Error() string {
	return fmt.Sprintf("forward %s message: %v", e.Stage, e.Err)
}

func (e *ForwardError) Unwrap() error {
	return e.Err
}

// Forwarder posts a received email to a chat channel as a notification
// followed by a threaded reply carrying the body
type Forwarder struct {
	chat          ChatClient
	summarizer    Summarizer
	textProcessor *utils.TextProcessor
	maxBodySize   int
	logger        *zap.Logger
}

// NewForwarder creates a new chat forwarder. summarizer may be nil.
func NewForwarder(
	chat ChatClient,
	summarizer Summarizer,
	textProcessor *utils.TextProcessor,
	maxBodySize int,
	logger *zap.Logger,
) *Forwarder {
	return &Forwarder{
		chat:          chat,
		summarizer:    summarizer,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
		logger:        logger,
	}
}

// Forward runs the notification and detail stages. The detail stage only
// runs after the notification was posted.
func (f *Forwarder) Forward(ctx context.Context, channel string, email *ReceivedEmail) (*ChatResponse, error) {
	notification, err := f.chat.SendMessage(ctx, &ChatMessage{
		Channel: channel,
		Text:    f.notificationText(ctx, email),
		AsUser:  true,
	})
	if err != nil {
		return nil, &ForwardError{Stage: StageNotification, Err: err}
	}

	detail, err := f.chat.SendMessage(ctx, &ChatMessage{
		Channel:  channel,
		Text:     f.detailText(email),
		ThreadTS: notification.TS,
		AsUser:   true,
	})
	if err != nil {
		return nil, &ForwardError{Stage: StageDetail, Err: err}
	}

	return detail, nil
}

func (f *Forwarder) notificationText(ctx context.Context, email *ReceivedEmail) string {
	text := "Email Received: " + email.Subject
	if f.summarizer == nil {
		return text
	}

	summary, err := f.summarizer.Summarize(ctx, email)
	if err != nil {
		f.logger.Warn("Failed to summarize email, posting subject only",
			zap.String("sender", email.Sender),
			zap.Error(err))
		return text
	}
	if summary = strings.TrimSpace(summary); summary != "" {
		text += "\n> " + summary
	}
	return text
}

func (f *Forwarder) detailText(email *ReceivedEmail) string {
	body := f.textProcessor.PrepareBody(email.BodyPlain, f.maxBodySize)
	return fmt.Sprintf("```%s```\n(from: %s)", body, email.Sender)
}
