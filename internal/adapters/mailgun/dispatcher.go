package mailgun

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/mikey/mail-relay/internal/core"
	"go.uber.org/zap"
)

const providerName = "mailgun"

// Sender is the subset of the Mailgun client used to send replies
type Sender interface {
	NewMessage(from, subject, text string, to ...string) *mailgun.Message
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// Dispatcher is an implementation of the EmailDispatcher interface using Mailgun stored templates
type Dispatcher struct {
	client Sender
	from   string
	logger *zap.Logger
}

// NewDispatcher creates a new Mailgun dispatcher
func NewDispatcher(client Sender, from string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		from:   from,
		logger: logger,
	}
}

// Send sends tpl as a templated message threaded to the original email
func (d *Dispatcher) Send(ctx context.Context, tpl *core.EmailTemplate) (string, error) {
	message := d.client.NewMessage(d.from, tpl.Subject, "", tpl.Recipient)
	message.SetTemplate(tpl.Template)
	message.AddHeader("In-Reply-To", tpl.InReplyTo)
	message.AddHeader("References", tpl.References)

	status, id, err := d.client.Send(ctx, message)
	if err != nil {
		return "", classifyError(err)
	}

	d.logger.Debug("Mailgun accepted message",
		zap.String("id", id),
		zap.String("status", status),
		zap.String("template", tpl.Template))
	return id, nil
}

func classifyError(err error) error {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return core.MalformedProviderResponse(err, "mailgun returned an unreadable response")
	}

	if status := mailgun.GetStatusFromErr(err); status > 0 {
		return core.ProviderError(err, providerName, fmt.Sprintf("mailgun rejected message (status %d): %v", status, err))
	}
	return core.ProviderError(err, providerName, fmt.Sprintf("mailgun send failed: %v", err))
}
