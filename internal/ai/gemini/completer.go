package gemini

import (
	"context"

	"github.com/thomas-vilte/issuedigest/internal/ai"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
	"github.com/thomas-vilte/issuedigest/internal/logger"
	"google.golang.org/genai"
)

const (
	ProviderName = "gemini"

	DefaultModel      = "gemini-2.5-flash"
	DefaultLargeModel = "gemini-2.5-pro"
)

// ContentGenerator is the part of genai.Models the completer uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Completer sends completions to the Gemini API.
type Completer struct {
	models     ContentGenerator
	model      string
	largeModel string
	sessions   *ai.Sessions[*genai.Content]
}

var _ ai.Completer = (*Completer)(nil)

// NewCompleter creates a Gemini client for apiKey. Empty model names fall back to
// the defaults.
func NewCompleter(ctx context.Context, apiKey, model, largeModel string) (*Completer, error) {
	if apiKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeAI, "error creating AI client", err)
	}

	return NewCompleterWithGenerator(client.Models, model, largeModel), nil
}

// NewCompleterWithGenerator builds a completer over an existing generator.
func NewCompleterWithGenerator(models ContentGenerator, model, largeModel string) *Completer {
	if model == "" {
		model = DefaultModel
	}
	if largeModel == "" {
		largeModel = DefaultLargeModel
	}
	return &Completer{
		models:     models,
		model:      model,
		largeModel: largeModel,
		sessions:   ai.NewSessions[*genai.Content](),
	}
}

func (c *Completer) ProviderName() string {
	return ProviderName
}

func (c *Completer) ModelFor(tier ai.Tier) string {
	if tier == ai.TierLarge {
		return c.largeModel
	}
	return c.model
}

func (c *Completer) Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error) {
	log := logger.FromContext(ctx)
	modelName := c.ModelFor(req.Tier)

	prompt := genai.NewContentFromText(req.Prompt, genai.RoleUser)
	contents := append(c.sessions.Begin(req.SessionKey, req.Restart), prompt)

	log.Debug("calling gemini API",
		"model", modelName,
		"session", req.SessionKey,
		"prompt_length", len(req.Prompt))

	config := newGenerateConfig(req.SystemPrompt, req.Temperature, req.MaxTokens)
	resp, err := c.models.GenerateContent(ctx, modelName, contents, config)
	if err != nil {
		log.Error("gemini API call failed",
			"error", err,
			"model", modelName)
		return ai.CompletionResponse{}, classifyError(err)
	}

	text := formatResponse(resp)
	if text == "" {
		return ai.CompletionResponse{}, domainErrors.ErrEmptyCompletion.
			WithContext("model", modelName).
			WithContext("session", req.SessionKey)
	}

	c.sessions.Record(req.SessionKey, prompt, genai.NewContentFromText(text, genai.RoleModel))

	return ai.CompletionResponse{
		Choice: text,
		Usage:  extractUsage(resp, modelName),
	}, nil
}
