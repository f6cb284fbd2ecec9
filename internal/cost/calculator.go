// Package cost estimates the spend of research calls from token usage.
package cost

// Rates holds per-provider pricing configuration.
type Rates struct {
	Gemini     map[string]ModelRate `yaml:"gemini" mapstructure:"gemini"`
	Anthropic  map[string]ModelRate `yaml:"anthropic" mapstructure:"anthropic"`
	Perplexity PerplexityRate       `yaml:"perplexity" mapstructure:"perplexity"`
}

// ModelRate holds per-model token pricing (USD per million tokens).
type ModelRate struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// PerplexityRate holds Perplexity pricing: a flat request fee plus token
// pricing per model.
type PerplexityRate struct {
	PerQuery float64              `yaml:"per_query" mapstructure:"per_query"`
	Models   map[string]ModelRate `yaml:"models" mapstructure:"models"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Gemini computes the cost of one grounded Gemini call.
func (c *Calculator) Gemini(model string, input, output int64) float64 {
	return tokens(c.rates.Gemini, model, input, output)
}

// Claude computes the cost of one Claude call.
func (c *Calculator) Claude(model string, input, output int64) float64 {
	return tokens(c.rates.Anthropic, model, input, output)
}

// Perplexity computes the cost of one Perplexity query, request fee included.
func (c *Calculator) Perplexity(model string, input, output int64) float64 {
	return c.rates.Perplexity.PerQuery + tokens(c.rates.Perplexity.Models, model, input, output)
}

// tokens prices input/output tokens; unknown models cost 0.
func tokens(rates map[string]ModelRate, model string, input, output int64) float64 {
	rate, ok := rates[model]
	if !ok {
		return 0
	}
	return (float64(input)/1e6)*rate.Input + (float64(output)/1e6)*rate.Output
}

// DefaultRates returns the default pricing rates.
func DefaultRates() Rates {
	return Rates{
		Gemini: map[string]ModelRate{
			"gemini-2.5-flash": {Input: 0.30, Output: 2.50},
			"gemini-2.5-pro":   {Input: 1.25, Output: 10.00},
		},
		Anthropic: map[string]ModelRate{
			"claude-haiku-4-5-20251001":  {Input: 1.00, Output: 5.00},
			"claude-sonnet-4-5-20250929": {Input: 3.00, Output: 15.00},
		},
		Perplexity: PerplexityRate{
			PerQuery: 0.005,
			Models: map[string]ModelRate{
				"sonar":     {Input: 1.00, Output: 1.00},
				"sonar-pro": {Input: 3.00, Output: 15.00},
			},
		},
	}
}
