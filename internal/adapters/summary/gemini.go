package summary

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/mail-relay/internal/core"
	"github.com/mikey/mail-relay/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiSummarizer summarizes emails with Google Gemini
type GeminiSummarizer struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiSummarizer creates a new Gemini summarizer
func NewGeminiSummarizer(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiSummarizer{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (s *GeminiSummarizer) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Summarize returns a one-line summary of email
func (s *GeminiSummarizer) Summarize(ctx context.Context, email *core.ReceivedEmail) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(buildPrompt(s.textProcessor, email, s.maxBodySize)))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	summary := cleanSummary(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	s.logger.Debug("Summarized email", zap.String("model", s.modelName))
	return summary, nil
}
