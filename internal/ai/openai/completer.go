package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/thomas-vilte/issuedigest/internal/ai"
	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
	"github.com/thomas-vilte/issuedigest/internal/logger"
	"github.com/thomas-vilte/issuedigest/internal/models"
)

const (
	ProviderName = "openai"

	DefaultModel      = openai.GPT3Dot5Turbo
	DefaultLargeModel = openai.GPT3Dot5Turbo16K
)

// ChatClient is the part of *openai.Client the completer uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Completer sends chat completions to the OpenAI API.
type Completer struct {
	client     ChatClient
	model      string
	largeModel string
	sessions   *ai.Sessions[openai.ChatCompletionMessage]
}

var _ ai.Completer = (*Completer)(nil)

// NewCompleter creates an OpenAI client for apiKey. Empty model names fall back to
// gpt-3.5-turbo and its 16k-context sibling.
func NewCompleter(apiKey, model, largeModel string) (*Completer, error) {
	if apiKey == "" {
		return nil, domainErrors.ErrAPIKeyMissing
	}
	return NewCompleterWithClient(openai.NewClient(apiKey), model, largeModel), nil
}

// NewCompleterWithClient builds a completer over an existing chat client.
func NewCompleterWithClient(client ChatClient, model, largeModel string) *Completer {
	if model == "" {
		model = DefaultModel
	}
	if largeModel == "" {
		largeModel = DefaultLargeModel
	}
	return &Completer{
		client:     client,
		model:      model,
		largeModel: largeModel,
		sessions:   ai.NewSessions[openai.ChatCompletionMessage](),
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

	prompt := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt}
	history := c.sessions.Begin(req.SessionKey, req.Restart)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, history...)
	messages = append(messages, prompt)

	log.Debug("calling openai API",
		"model", modelName,
		"session", req.SessionKey,
		"messages", len(messages))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       modelName,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		User:        req.SessionKey,
	})
	if err != nil {
		log.Error("openai API call failed",
			"error", err,
			"model", modelName)
		return ai.CompletionResponse{}, classifyError(err)
	}

	if len(resp.Choices) == 0 {
		return ai.CompletionResponse{}, domainErrors.ErrEmptyCompletion.
			WithContext("model", modelName).
			WithContext("session", req.SessionKey)
	}

	reply := resp.Choices[0].Message
	c.sessions.Record(req.SessionKey, prompt, reply)

	return ai.CompletionResponse{
		Choice: reply.Content,
		Usage: &models.TokenUsage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
			Model:        modelName,
		},
	}, nil
}

// classifyError maps an OpenAI API failure onto the AI error sentinels.
func classifyError(err error) error {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domainErrors.ErrAIAuth.WithError(err)
	case http.StatusTooManyRequests:
		return domainErrors.ErrQuotaExceeded.WithError(err)
	default:
		return domainErrors.ErrAIGeneration.WithError(err)
	}
}
