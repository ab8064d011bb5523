package cost

import (
	"fmt"
	"strings"
)

type PricingTable struct {
	InputPricePerMillion  float64
	OutputPricePerMillion float64
}

type ProviderPricing map[string]map[string]PricingTable

// https://ai.google.dev/gemini-api/docs/pricing
// https://openai.com/api/pricing
func defaultPricing() ProviderPricing {
	return ProviderPricing{
		"gemini": {
			"gemini-2.5-flash":      {InputPricePerMillion: 0.30, OutputPricePerMillion: 2.50},
			"gemini-2.5-flash-lite": {InputPricePerMillion: 0.10, OutputPricePerMillion: 0.40},
			"gemini-2.5-pro":        {InputPricePerMillion: 1.25, OutputPricePerMillion: 10.00},
		},
		"openai": {
			"gpt-3.5-turbo":     {InputPricePerMillion: 0.50, OutputPricePerMillion: 1.50},
			"gpt-3.5-turbo-16k": {InputPricePerMillion: 3.00, OutputPricePerMillion: 4.00},
			"gpt-4o":            {InputPricePerMillion: 2.50, OutputPricePerMillion: 10.00},
			"gpt-4o-mini":       {InputPricePerMillion: 0.15, OutputPricePerMillion: 0.60},
		},
	}
}

// Calculator estimates the USD cost of a completion from its token usage.
type Calculator struct {
	pricing ProviderPricing
}

func NewCalculator() *Calculator {
	return &Calculator{pricing: defaultPricing()}
}

// EstimateCost returns the estimated cost, or 0 for unknown models. A dated model
// name such as "gpt-4o-mini-2024-07-18" is priced as the longest known prefix.
func (c *Calculator) EstimateCost(provider, model string, inputTokens, outputTokens int) float64 {
	prices, ok := c.lookup(provider, model)
	if !ok {
		return 0
	}

	inputCost := (float64(inputTokens) / 1_000_000) * prices.InputPricePerMillion
	outputCost := (float64(outputTokens) / 1_000_000) * prices.OutputPricePerMillion

	return inputCost + outputCost
}

// GetPricing returns the exact pricing entry for a provider and model.
func (c *Calculator) GetPricing(provider, model string) (PricingTable, error) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	providerPricing, exists := c.pricing[provider]
	if !exists {
		return PricingTable{}, fmt.Errorf("provider %s not found", provider)
	}

	modelPricing, exists := providerPricing[model]
	if !exists {
		return PricingTable{}, fmt.Errorf("model %s not found for provider %s", model, provider)
	}

	return modelPricing, nil
}

// AddPricing registers or replaces a model's prices.
func (c *Calculator) AddPricing(provider, model string, table PricingTable) {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	if _, exists := c.pricing[provider]; !exists {
		c.pricing[provider] = make(map[string]PricingTable)
	}
	c.pricing[provider][model] = table
}

func (c *Calculator) lookup(provider, model string) (PricingTable, bool) {
	providerPricing, exists := c.pricing[strings.ToLower(provider)]
	if !exists {
		return PricingTable{}, false
	}

	model = strings.ToLower(model)
	if prices, ok := providerPricing[model]; ok {
		return prices, true
	}

	var best string
	for name := range providerPricing {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return PricingTable{}, false
	}
	return providerPricing[best], true
}
