package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/issuedigest/internal/ai"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
	"google.golang.org/genai"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(text, genai.RoleModel)}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     100,
			CandidatesTokenCount: 40,
			TotalTokenCount:      140,
		},
	}
}

func TestCompleter_Complete(t *testing.T) {
	req := ai.CompletionRequest{
		SessionKey:   "issue_12",
		Prompt:       "summarize this",
		SystemPrompt: "You are a helpful assistant.",
		Tier:         ai.TierStandard,
		Temperature:  0.7,
		MaxTokens:    256,
		Restart:      true,
	}

	t.Run("should return the first candidate text with usage", func(t *testing.T) {
		// Arrange
		gen := new(MockContentGenerator)
		gen.On("GenerateContent", mock.Anything, DefaultModel,
			mock.MatchedBy(func(c []*genai.Content) bool {
				return len(c) == 1 && c[0].Parts[0].Text == "summarize this"
			}),
			mock.MatchedBy(func(cfg *genai.GenerateContentConfig) bool {
				return *cfg.Temperature == 0.7 && cfg.MaxOutputTokens == 256
			}),
		).Return(textResponse(`{"ConciseSummary": "done"}`), nil)
		c := NewCompleterWithGenerator(gen, "", "")

		// Act
		resp, err := c.Complete(context.Background(), req)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, `{"ConciseSummary": "done"}`, resp.Choice)
		assert.Equal(t, 140, resp.Usage.TotalTokens)
		assert.Equal(t, DefaultModel, resp.Usage.Model)
		gen.AssertExpectations(t)
	})

	t.Run("should use the large model for the large tier", func(t *testing.T) {
		gen := new(MockContentGenerator)
		gen.On("GenerateContent", mock.Anything, "big", mock.Anything, mock.Anything).
			Return(textResponse("ok"), nil)
		c := NewCompleterWithGenerator(gen, "small", "big")

		large := req
		large.Tier = ai.TierLarge
		_, err := c.Complete(context.Background(), large)

		require.NoError(t, err)
		gen.AssertExpectations(t)
	})

	t.Run("should continue the session when not restarted", func(t *testing.T) {
		gen := new(MockContentGenerator)
		gen.On("GenerateContent", mock.Anything, mock.Anything,
			mock.MatchedBy(func(c []*genai.Content) bool { return len(c) == 1 }), mock.Anything,
		).Return(textResponse("first"), nil).Once()
		gen.On("GenerateContent", mock.Anything, mock.Anything,
			mock.MatchedBy(func(c []*genai.Content) bool { return len(c) == 3 }), mock.Anything,
		).Return(textResponse("second"), nil).Once()
		c := NewCompleterWithGenerator(gen, "", "")

		_, err := c.Complete(context.Background(), req)
		require.NoError(t, err)

		follow := req
		follow.Restart = false
		resp, err := c.Complete(context.Background(), follow)

		require.NoError(t, err)
		assert.Equal(t, "second", resp.Choice)
		gen.AssertExpectations(t)
	})

	t.Run("should report an empty completion", func(t *testing.T) {
		gen := new(MockContentGenerator)
		gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(&genai.GenerateContentResponse{}, nil)
		c := NewCompleterWithGenerator(gen, "", "")

		_, err := c.Complete(context.Background(), req)

		assert.ErrorIs(t, err, domainErrors.ErrEmptyCompletion)
	})

	t.Run("should classify API failures", func(t *testing.T) {
		gen := new(MockContentGenerator)
		gen.On("GenerateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("rate limit reached"))
		c := NewCompleterWithGenerator(gen, "", "")

		_, err := c.Complete(context.Background(), req)

		assert.ErrorIs(t, err, domainErrors.ErrQuotaExceeded)
	})
}

func TestNewCompleter(t *testing.T) {
	t.Run("should require an API key", func(t *testing.T) {
		_, err := NewCompleter(context.Background(), "", "", "")

		assert.ErrorIs(t, err, domainErrors.ErrAPIKeyMissing)
	})

	t.Run("should expose provider metadata", func(t *testing.T) {
		c := NewCompleterWithGenerator(new(MockContentGenerator), "", "")

		assert.Equal(t, "gemini", c.ProviderName())
		assert.Equal(t, DefaultModel, c.ModelFor(ai.TierStandard))
		assert.Equal(t, DefaultLargeModel, c.ModelFor(ai.TierLarge))
	})
}
