package summary

import (
	"context"
	"fmt"

	"github.com/mikey/mail-relay/internal/core"
	"github.com/mikey/mail-relay/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAISummarizer summarizes emails with OpenAI chat completions
type OpenAISummarizer struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAISummarizer creates a new OpenAI summarizer
func NewOpenAISummarizer(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAISummarizer {
	return &OpenAISummarizer{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Summarize returns a one-line summary of email
func (s *OpenAISummarizer) Summarize(ctx context.Context, email *core.ReceivedEmail) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You summarize emails in one short line.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(s.textProcessor, email, s.maxBodySize),
			},
		},
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	summary := cleanSummary(resp.Choices[0].Message.Content)
	s.logger.Debug("Summarized email", zap.String("model", s.modelName), zap.String("response_id", resp.ID))
	return summary, nil
}
