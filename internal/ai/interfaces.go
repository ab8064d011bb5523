package ai

import (
	"context"

	"github.com/thomas-vilte/issuedigest/internal/models"
)

// Tier is the size class of the model used for a completion.
type Tier string

const (
	// TierStandard is the default model.
	TierStandard Tier = "standard"
	// TierLarge is the model with the larger context window.
	TierLarge Tier = "large"
)

// CompletionRequest is a single chat completion call.
type CompletionRequest struct {
	// SessionKey identifies the conversation, e.g. "issue_42".
	SessionKey   string
	Prompt       string
	SystemPrompt string
	Tier         Tier
	Temperature  float32
	MaxTokens    int
	// Restart starts a fresh conversation instead of continuing SessionKey's.
	Restart bool
}

// CompletionResponse is the single text choice returned by the model.
type CompletionResponse struct {
	Choice string
	Usage  *models.TokenUsage
}

// Completer defines the language-model completion collaborator.
type Completer interface {
	// Complete sends the request and returns the first choice.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
	// ProviderName returns the name of the provider (e.g.: "openai", "gemini")
	ProviderName() string
	// ModelFor returns the model name the provider uses for a tier.
	ModelFor(tier Tier) string
}
