package gemini

import (
	"errors"
	"net/http"
	"strings"

	domainErrors "github.com/thomas-vilte/issuedigest/internal/errors"
	"github.com/thomas-vilte/issuedigest/internal/models"
	"google.golang.org/genai"
)

// extractUsage extracts usage metadata from the Gemini response
func extractUsage(resp *genai.GenerateContentResponse, model string) *models.TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return &models.TokenUsage{Model: model}
	}
	return &models.TokenUsage{
		InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		Model:        model,
	}
}

// newGenerateConfig builds the generation settings of one completion.
func newGenerateConfig(systemPrompt string, temperature float32, maxTokens int) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: float32Ptr(temperature),
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	return config
}

func float32Ptr(f float32) *float32 {
	return &f
}

// formatResponse joins the text parts of the first candidate, skipping thoughts.
func formatResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	cand := resp.Candidates[0]
	if cand.Content == nil {
		return ""
	}

	var formattedContent strings.Builder
	for _, part := range cand.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		formattedContent.WriteString(part.Text)
	}
	return formattedContent.String()
}

// classifyError maps a Gemini API failure onto the AI error sentinels.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return domainErrors.ErrAIAuth.WithError(err)
		case http.StatusTooManyRequests:
			return domainErrors.ErrQuotaExceeded.WithError(err)
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "quota") ||
		strings.Contains(errMsg, "rate limit") ||
		strings.Contains(errMsg, "resource exhausted") {
		return domainErrors.ErrQuotaExceeded.WithError(err)
	}

	if strings.Contains(errMsg, "api key") ||
		strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "permission denied") {
		return domainErrors.ErrAIAuth.WithError(err)
	}

	return domainErrors.ErrAIGeneration.WithError(err)
}
