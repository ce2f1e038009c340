// Package emlfile turns RFC 5322 message files into provider-style notifications.
package emlfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/mikey/mail-relay/internal/core"
)

// noTextBody replaces the body of messages without a text/plain part
const noTextBody = "[No text content found in message]"

// Read parses a message and returns it as an unsigned ReceivedEmail. Header
// order is kept in MessageHeaders; the body is the concatenated text/plain parts.
func Read(r io.Reader) (*core.ReceivedEmail, error) {
	mr, err := mail.CreateReader(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	defer mr.Close()

	headers, err := headerPairs(mr.Header)
	if err != nil {
		return nil, err
	}

	subject, err := mr.Header.Subject()
	if err != nil {
		subject = mr.Header.Get("Subject")
	}

	body, err := textBody(mr)
	if err != nil {
		return nil, err
	}

	from := mr.Header.Get("From")
	return &core.ReceivedEmail{
		Sender:         senderAddress(mr.Header, from),
		From:           from,
		Subject:        subject,
		BodyPlain:      body,
		MessageHeaders: headers,
	}, nil
}

// headerPairs encodes the header as a JSON array of [name, value] pairs
func headerPairs(h mail.Header) (string, error) {
	pairs := make([][]string, 0, h.Len())
	fields := h.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		pairs = append(pairs, []string{fields.Key(), value})
	}

	data, err := json.Marshal(pairs)
	if err != nil {
		return "", fmt.Errorf("failed to encode headers: %w", err)
	}
	return string(data), nil
}

// senderAddress prefers the Sender header, then the bare From address
func senderAddress(h mail.Header, from string) string {
	for _, key := range []string{"Sender", "From"} {
		addrs, err := h.AddressList(key)
		if err == nil && len(addrs) > 0 {
			return addrs[0].Address
		}
	}
	return from
}

func textBody(mr *mail.Reader) (string, error) {
	var text bytes.Buffer
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !message.IsUnknownCharset(err) {
			if text.Len() > 0 {
				break
			}
			return "", fmt.Errorf("failed to read message part: %w", err)
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType, _, _ := inline.ContentType()
		if contentType != "" && !strings.EqualFold(contentType, "text/plain") {
			continue
		}

		data, err := io.ReadAll(part.Body)
		if err != nil {
			return "", fmt.Errorf("failed to read message body: %w", err)
		}
		if text.Len() > 0 {
			text.WriteString("\n")
		}
		text.Write(data)
	}

	if text.Len() == 0 {
		return noTextBody, nil
	}
	return text.String(), nil
}
