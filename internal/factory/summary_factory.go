package factory

import (
	"context"
	"fmt"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/mail-relay/internal/adapters/summary"
	"github.com/mikey/mail-relay/internal/config"
	"github.com/mikey/mail-relay/internal/core"
	"github.com/mikey/mail-relay/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// SummaryFactory creates notification summarizers
type SummaryFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	httpClient    *http.Client
	textProcessor *utils.TextProcessor
}

// NewSummaryFactory creates a new summary factory
func NewSummaryFactory(
	cfg *config.Config,
	logger *zap.Logger,
	httpClient *http.Client,
	textProcessor *utils.TextProcessor,
) *SummaryFactory {
	return &SummaryFactory{
		cfg:           cfg,
		logger:        logger,
		httpClient:    httpClient,
		textProcessor: textProcessor,
	}
}

// CreateSummarizer creates a summarizer based on the configuration.
// It returns nil when summaries are disabled.
func (f *SummaryFactory) CreateSummarizer() (core.Summarizer, error) {
	provider := f.cfg.GetSummary().Provider

	switch provider {
	case "", "none":
		return nil, nil
	case "bedrock":
		return f.createBedrock()
	case "openai":
		return f.createOpenAI()
	case "gemini":
		return f.createGemini()
	default:
		return nil, fmt.Errorf("unsupported summary provider: %s", provider)
	}
}

func (f *SummaryFactory) createBedrock() (core.Summarizer, error) {
	bedrockCfg := f.cfg.GetBedrock()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(bedrockCfg.Region),
		awsconfig.WithHTTPClient(f.httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	f.logger.Info("Using Bedrock summarizer", zap.String("model", bedrockCfg.ModelID))
	return summary.NewBedrockSummarizer(
		bedrockruntime.NewFromConfig(awsCfg),
		bedrockCfg.ModelID,
		bedrockCfg.MaxTokens,
		bedrockCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}

func (f *SummaryFactory) createOpenAI() (core.Summarizer, error) {
	openaiCfg := f.cfg.GetOpenAI()
	if openaiCfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	clientCfg := openai.DefaultConfig(openaiCfg.APIKey)
	clientCfg.HTTPClient = f.httpClient

	f.logger.Info("Using OpenAI summarizer", zap.String("model", openaiCfg.ModelName))
	return summary.NewOpenAISummarizer(
		openai.NewClientWithConfig(clientCfg),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}

func (f *SummaryFactory) createGemini() (core.Summarizer, error) {
	geminiCfg := f.cfg.GetGemini()
	if geminiCfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	f.logger.Info("Using Gemini summarizer", zap.String("model", geminiCfg.ModelName))
	summarizer, err := summary.NewGeminiSummarizer(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	)
	if err != nil {
		return nil, err
	}
	return summarizer, nil
}
