package webhook

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/mikey/mail-relay/internal/core"
)

// Encoding selects how a notification is posted
type Encoding string

const (
	EncodingURLEncoded Encoding = "urlencoded"
	EncodingMultipart  Encoding = "multipart"
)

// Reply is the relay's answer to a posted notification
type Reply struct {
	Status int
	Body   string
}

// Client posts provider-style notifications to a running relay
type Client struct {
	baseURL    string
	httpClient *http.Client
	encoding   Encoding
}

// NewClient creates a webhook client for the relay at baseURL
func NewClient(baseURL string, httpClient *http.Client, encoding Encoding) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if encoding == "" {
		encoding = EncodingURLEncoded
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		encoding:   encoding,
	}
}

// Respond posts email to the responder route for template
func (c *Client) Respond(ctx context.Context, template string, email *core.ReceivedEmail) (*Reply, error) {
	return c.post(ctx, "/emails/responder/"+url.PathEscape(template), email)
}

// ForwardSlack posts email to the chat forward route for channel
func (c *Client) ForwardSlack(ctx context.Context, channel string, email *core.ReceivedEmail) (*Reply, error) {
	return c.post(ctx, "/emails/forward/slack/"+url.PathEscape(channel), email)
}

func (c *Client) post(ctx context.Context, path string, email *core.ReceivedEmail) (*Reply, error) {
	body, contentType, err := encodeBody(c.encoding, EncodeValues(email))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to post notification: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return &Reply{Status: resp.StatusCode, Body: string(data)}, nil
}

func encodeBody(encoding Encoding, values map[string]string) (io.Reader, string, error) {
	switch encoding {
	case EncodingURLEncoded:
		form := url.Values{}
		for k, v := range values {
			form.Set(k, v)
		}
		return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil
	case EncodingMultipart:
		names := make([]string, 0, len(values))
		for k := range values {
			names = append(names, k)
		}
		sort.Strings(names)

		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, name := range names {
			if err := w.WriteField(name, values[name]); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", name, err)
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
		}
		return &buf, w.FormDataContentType(), nil
	default:
		return nil, "", fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
