package routing

import "github.com/thomas-vilte/issuedigest/internal/ai"

// LargeContextThreshold is the narrative length, in characters, above which the
// large-context model is used.
const LargeContextThreshold = 12000

type ModelSelector struct {
	threshold int
}

func NewModelSelector() *ModelSelector {
	return &ModelSelector{threshold: LargeContextThreshold}
}

// SelectTier picks the model tier for a prompt of the given character length.
//
// Routing Strategy:
//   - Up to 12,000 characters: standard model (4k context is enough)
//   - Longer narratives: large-context model (16k context)
func (m *ModelSelector) SelectTier(charLen int) ai.Tier {
	threshold := m.threshold
	if threshold <= 0 {
		threshold = LargeContextThreshold
	}
	if charLen > threshold {
		return ai.TierLarge
	}
	return ai.TierStandard
}

// GetRationale returns the translation key that explains why a tier was chosen
func (m *ModelSelector) GetRationale(tier ai.Tier) string {
	switch tier {
	case ai.TierLarge:
		return "routing.reason_large"
	default:
		return "routing.reason_default"
	}
}
