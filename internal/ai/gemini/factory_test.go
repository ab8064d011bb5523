package gemini

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
		assert.Equal(t, "gemini", factory.Name())
	})

	t.Run("ValidateConfig - Valid", func(t *testing.T) {
		cfg := config.Default()
		cfg.AIConfig.GeminiAPIKey = "test-key"

		assert.NoError(t, factory.ValidateConfig(cfg))
	})

	t.Run("ValidateConfig - Missing API Key", func(t *testing.T) {
		err := factory.ValidateConfig(config.Default())

		assert.ErrorIs(t, err, domainErrors.ErrAPIKeyMissing)
	})

	t.Run("CreateCompleter - Missing API Key", func(t *testing.T) {
		_, err := factory.CreateCompleter(context.Background(), config.Default())

		assert.ErrorIs(t, err, domainErrors.ErrAPIKeyMissing)
	})

	t.Run("CreateCompleter - Configured models", func(t *testing.T) {
		cfg := config.Default()
		cfg.AIConfig.GeminiAPIKey = "test-key"
		cfg.AIConfig.Model = config.ModelGeminiV25FlashLite

		completer, err := factory.CreateCompleter(context.Background(), cfg)

		require.NoError(t, err)
		assert.Equal(t, "gemini-2.5-flash-lite", completer.ModelFor(ai.TierStandard))
		assert.Equal(t, DefaultLargeModel, completer.ModelFor(ai.TierLarge))
	})
}
