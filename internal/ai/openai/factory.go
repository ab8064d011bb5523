package openai

import (
	"context"

	"github.com/thomas-vilte/issuedigest/internal/ai"
	"github.com/thomas-vilte/issuedigest/internal/config"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
)

// ProviderFactory builds OpenAI completers from the configuration.
type ProviderFactory struct{}

func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

func (f *ProviderFactory) CreateCompleter(_ context.Context, cfg *config.Config) (ai.Completer, error) {
	completer, err := NewCompleter(cfg.AIConfig.OpenAIAPIKey, string(cfg.AIConfig.Model), string(cfg.AIConfig.LargeModel))
	if err != nil {
		return nil, err
	}
	return completer, nil
}

func (f *ProviderFactory) ValidateConfig(cfg *config.Config) error {
	if cfg.AIConfig.OpenAIAPIKey == "" {
		return domainErrors.ErrAPIKeyMissing.WithContext("provider", ProviderName)
	}
	return nil
}

func (f *ProviderFactory) Name() string {
	return ProviderName
}
