package summary

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/mail-relay/internal/core"
	"github.com/mikey/mail-relay/internal/utils"
	"go.uber.org/zap"
)

// anthropicVersion is the required API version for Claude on Bedrock
const anthropicVersion = "bedrock-2023-05-31"

// BedrockInvoker abstracts Bedrock model invocation
type BedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockSummarizer summarizes emails with Claude models on Amazon Bedrock
type BedrockSummarizer struct {
	client        BedrockInvoker
	modelID       string
	maxTokens     int
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Messages         []claudeMessage `json:"messages"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewBedrockSummarizer creates a new Bedrock summarizer
func NewBedrockSummarizer(
	client BedrockInvoker,
	modelID string,
	maxTokens int,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *BedrockSummarizer {
	return &BedrockSummarizer{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Summarize returns a one-line summary of email
func (s *BedrockSummarizer) Summarize(ctx context.Context, email *core.ReceivedEmail) (string, error) {
	payload, err := json.Marshal(claudeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        s.maxTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: buildPrompt(s.textProcessor, email, s.maxBodySize)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(s.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var parsed claudeResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse Bedrock response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty response from Bedrock")
	}

	summary := cleanSummary(parsed.Content[0].Text)
	s.logger.Debug("Summarized email", zap.String("model", s.modelID), zap.Int("length", len(summary)))
	return summary, nil
}
