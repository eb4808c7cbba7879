package llm

import (
	"context"
	"fmt"
	"strings"

	"bedrock-chatter/internal/config"
)

// Factory creates models and gateways from configuration.
type Factory struct {
	Provider config.LLMProvider

	BedrockProfile string
	BedrockRegion  string
	BedrockModelID string
	MaxTokens      int64

	OpenaiAPIKey       string
	OpenaiBaseURL      string
	OpenaiModel        string
	OpenRouterReferrer string
	OpenRouterTitle    string

	GeminiAPIKey string
	GeminiModel  string

	YandexOAuthToken string
	YandexFolderID   string

	// newModel replaces backend construction in tests.
	newModel func(ctx context.Context) (Model, error)
}

func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		Provider:           cfg.LLMProvider,
		BedrockProfile:     cfg.BedrockProfile,
		BedrockRegion:      cfg.BedrockRegion,
		BedrockModelID:     cfg.BedrockModelID,
		MaxTokens:          cfg.MaxTokens,
		OpenaiAPIKey:       cfg.OpenAIAPIKey,
		OpenaiBaseURL:      cfg.OpenAIBaseURL,
		OpenaiModel:        cfg.OpenAIModel,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		GeminiAPIKey:       cfg.GeminiAPIKey,
		GeminiModel:        cfg.GeminiModel,
		YandexOAuthToken:   cfg.YandexOAuth,
		YandexFolderID:     cfg.YandexFolderID,
	}
}

// NewStaticFactory returns a factory whose gateways all use m.
func NewStaticFactory(m Model) *Factory {
	return &Factory{newModel: func(context.Context) (Model, error) { return m, nil }}
}

func (f *Factory) NewModel(ctx context.Context) (Model, error) {
	if f.newModel != nil {
		return f.newModel(ctx)
	}
	switch config.LLMProvider(strings.ToLower(string(f.Provider))) {
	case config.ProviderBedrock:
		return NewBedrock(ctx, f.BedrockProfile, f.BedrockRegion, f.BedrockModelID, f.MaxTokens)
	case config.ProviderOpenAI:
		return NewOpenAI(f.OpenaiAPIKey, f.OpenaiBaseURL, f.OpenaiModel, f.OpenRouterReferrer, f.OpenRouterTitle), nil
	case config.ProviderGemini:
		return NewGemini(ctx, f.GeminiAPIKey, f.GeminiModel)
	case config.ProviderYandex:
		return NewYandex(f.YandexOAuthToken, f.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", f.Provider)
	}
}

// NewGateway builds the pipeline for the given system instruction.
func (f *Factory) NewGateway(ctx context.Context, systemPrompt string) (*Gateway, error) {
	m, err := f.NewModel(ctx)
	if err != nil {
		return nil, err
	}
	return NewGateway(NewPrompt(systemPrompt), m), nil
}
