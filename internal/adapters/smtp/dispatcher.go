package smtp

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/mail-relay/internal/core"
	"go.uber.org/zap"
)

const providerName = "smtp"

// Options configures the SMTP relay used for replies
type Options struct {
	Address      string
	Helo         string
	Username     string
	Password     string
	From         string
	TemplatesDir string
	Timeout      time.Duration
}

// Dispatcher is an implementation of the EmailDispatcher interface that relays
// locally rendered replies through an SMTP server
type Dispatcher struct {
	opts   Options
	from   *mail.Address
	logger *zap.Logger
}

// NewDispatcher creates a new SMTP dispatcher
func NewDispatcher(opts Options, logger *zap.Logger) (*Dispatcher, error) {
	from, err := mail.ParseAddress(opts.From)
	if err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", opts.From, err)
	}
	if opts.Helo == "" {
		opts.Helo = "localhost"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Dispatcher{
		opts:   opts,
		from:   from,
		logger: logger,
	}, nil
}

// Send renders the named template and relays the reply
func (d *Dispatcher) Send(ctx context.Context, tpl *core.EmailTemplate) (string, error) {
	body, err := d.render(tpl)
	if err != nil {
		return "", core.ProviderError(err, providerName, fmt.Sprintf("render template %q: %v", tpl.Template, err))
	}

	recipient, err := mail.ParseAddress(tpl.Recipient)
	if err != nil {
		return "", core.ProviderError(err, providerName, fmt.Sprintf("invalid recipient %q", tpl.Recipient))
	}

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("From", []*mail.Address{d.from})
	h.SetAddressList("To", []*mail.Address{recipient})
	h.SetSubject(tpl.Subject)
	h.Set("In-Reply-To", tpl.InReplyTo)
	h.Set("References", tpl.References)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return "", core.ProviderError(err, providerName, "generate message id")
	}
	messageID, _ := h.MessageID()

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return "", core.ProviderError(err, providerName, "build message")
	}
	if _, err := w.Write(body); err != nil {
		w.Close()
		return "", core.ProviderError(err, providerName, "build message")
	}
	if err := w.Close(); err != nil {
		return "", core.ProviderError(err, providerName, "build message")
	}

	if err := d.relay(ctx, recipient.Address, buf.Bytes()); err != nil {
		return "", core.ProviderError(err, providerName, fmt.Sprintf("smtp relay failed: %v", err))
	}

	d.logger.Debug("Relayed reply over SMTP",
		zap.String("message_id", messageID),
		zap.String("relay", d.opts.Address))
	return messageID, nil
}

func (d *Dispatcher) render(tpl *core.EmailTemplate) ([]byte, error) {
	name := filepath.Base(tpl.Template)
	if name == "." || name == string(filepath.Separator) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("invalid template name")
	}
	raw, err := os.ReadFile(filepath.Join(d.opts.TemplatesDir, name+".txt"))
	if err != nil {
		return nil, err
	}
	parsed, err := template.New(name).Parse(string(raw))
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := parsed.Execute(&out, tpl); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// relay delivers data to the configured SMTP server
func (d *Dispatcher) relay(ctx context.Context, recipient string, data []byte) error {
	dialer := net.Dialer{Timeout: d.opts.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", d.opts.Address)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	deadline := time.Now().Add(d.opts.Timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(d.opts.Helo); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if d.opts.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", d.opts.Username, d.opts.Password)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}
	if err := c.Mail(d.from.Address, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if err := c.Rcpt(recipient, nil); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		d.logger.Warn("QUIT command failed", zap.Error(err))
	}
	return nil
}
