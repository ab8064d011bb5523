package gemini

import (
	"context"

	"github.com/thomas-vilte/issuedigest/internal/ai"
	"github.com/thomas-vilte/issuedigest/internal/config"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
)

// ProviderFactory builds Gemini completers from the configuration.
type ProviderFactory struct{}

func NewProviderFactory() *ProviderFactory {
	return &ProviderFactory{}
}

func (f *ProviderFactory) CreateCompleter(ctx context.Context, cfg *config.Config) (ai.Completer, error) {
	completer, err := NewCompleter(ctx, cfg.AIConfig.GeminiAPIKey, string(cfg.AIConfig.Model), string(cfg.AIConfig.LargeModel))
	if err != nil {
		return nil, err
	}
	return completer, nil
}

func (f *ProviderFactory) ValidateConfig(cfg *config.Config) error {
	if cfg.AIConfig.GeminiAPIKey == "" {
		return domainErrors.ErrAPIKeyMissing.WithContext("provider", ProviderName)
	}
	return nil
}

func (f *ProviderFactory) Name() string {
	return ProviderName
}
