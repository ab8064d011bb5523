package config

type AI string

const (
	AIGemini AI = "gemini"
	AIOpenAI AI = "openai"
)

type Model string

const (
	ModelGeminiV25Pro       Model = "gemini-2.5-pro"
	ModelGeminiV25Flash     Model = "gemini-2.5-flash"
	ModelGeminiV25FlashLite Model = "gemini-2.5-flash-lite"

	ModelGPT35Turbo    Model = "gpt-3.5-turbo"
	ModelGPT35Turbo16K Model = "gpt-3.5-turbo-16k"
	ModelGPTV4o        Model = "gpt-4o"
	ModelGPTV4oMini    Model = "gpt-4o-mini"
)

func SupportedAIs() []AI {
	return []AI{
		AIOpenAI,
		AIGemini,
	}
}

func ModelsForAI(ai AI) []Model {
	switch ai {
	case AIGemini:
		return []Model{
			ModelGeminiV25Flash,
			ModelGeminiV25Pro,
			ModelGeminiV25FlashLite,
		}
	case AIOpenAI:
		return []Model{
			ModelGPT35Turbo,
			ModelGPT35Turbo16K,
			ModelGPTV4o,
			ModelGPTV4oMini,
		}
	default:
		return []Model{}
	}
}

// DefaultModelForAI returns the model used for narratives that fit the standard
// context window.
func DefaultModelForAI(ai AI) Model {
	models := ModelsForAI(ai)
	if len(models) == 0 {
		return ""
	}
	return models[0]
}

// LargeModelForAI returns the model used for long narratives.
func LargeModelForAI(ai AI) Model {
	models := ModelsForAI(ai)
	if len(models) < 2 {
		return ""
	}
	return models[1]
}

func IsSupportedAI(ai AI) bool {
	for _, a := range SupportedAIs() {
		if a == ai {
			return true
		}
	}
	return false
}
