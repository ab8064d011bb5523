package openai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/issuedigest/internal/ai"
	"github.com/thomas-vilte/issuedigest/internal/config"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
)

func TestProviderFactory(t *testing.T) {
	factory := NewProviderFactory()

	t.Run("Name", func(t *testing.T) {
		assert.Equal(t, "openai", factory.Name())
	})

	t.Run("ValidateConfig - Missing API Key", func(t *testing.T) {
		err := factory.ValidateConfig(config.Default())

		assert.ErrorIs(t, err, domainErrors.ErrAPIKeyMissing)
	})

	t.Run("CreateCompleter - Default tiers", func(t *testing.T) {
		cfg := config.Default()
		cfg.AIConfig.OpenAIAPIKey = "sk-test"

		require.NoError(t, factory.ValidateConfig(cfg))
		completer, err := factory.CreateCompleter(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, "gpt-3.5-turbo", completer.ModelFor(ai.TierStandard))
		assert.Equal(t, "gpt-3.5-turbo-16k", completer.ModelFor(ai.TierLarge))
	})
}
