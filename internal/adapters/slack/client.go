package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mikey/mail-relay/internal/core"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

const providerName = "slack"

// Poster is the subset of the Slack API client used to post messages
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Client is an implementation of the ChatClient interface using Slack
type Client struct {
	api    Poster
	logger *zap.Logger
}

// NewClient creates a new Slack chat client
func NewClient(api Poster, logger *zap.Logger) *Client {
	return &Client{
		api:    api,
		logger: logger,
	}
}

// SendMessage posts msg and returns the message timestamp used as a thread anchor
func (c *Client) SendMessage(ctx context.Context, msg *core.ChatMessage) (*core.ChatResponse, error) {
	options := []slack.MsgOption{
		slack.MsgOptionText(msg.Text, false),
		slack.MsgOptionAsUser(msg.AsUser),
	}
	if msg.ThreadTS != "" {
		options = append(options, slack.MsgOptionTS(msg.ThreadTS))
	}

	channel, ts, err := c.api.PostMessageContext(ctx, msg.Channel, options...)
	if err != nil {
		return nil, classifyError(err)
	}
	if ts == "" {
		return nil, core.MalformedProviderResponse(nil, "slack response did not include a message timestamp")
	}

	c.logger.Debug("Posted Slack message",
		zap.String("channel", channel),
		zap.String("ts", ts),
		zap.Bool("threaded", msg.ThreadTS != ""))
	return &core.ChatResponse{Channel: channel, TS: ts}, nil
}

func classifyError(err error) error {
	var slackErr slack.SlackErrorResponse
	if errors.As(err, &slackErr) {
		return core.ProviderError(err, providerName, "slack: "+slackErr.Err)
	}

	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		return core.ProviderError(err, providerName, fmt.Sprintf("slack: unexpected status %d", statusErr.Code))
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return core.MalformedProviderResponse(err, "slack returned an unreadable response")
	}

	return core.ProviderError(err, providerName, fmt.Sprintf("slack: %v", err))
}
