package cost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testRates() Rates {
	return Rates{
		Gemini: map[string]ModelRate{
			"flash": {Input: 0.30, Output: 2.50},
		},
		Anthropic: map[string]ModelRate{
			"sonnet": {Input: 3.00, Output: 15.00},
		},
		Perplexity: PerplexityRate{
			PerQuery: 0.005,
			Models:   map[string]ModelRate{"sonar-pro": {Input: 3.00, Output: 15.00}},
		},
	}
}

func TestClaude(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(testRates())

	tests := []struct {
		name   string
		model  string
		input  int64
		output int64
		want   float64
	}{
		{name: "sonnet", model: "sonnet", input: 1_000_000, output: 100_000, want: 3.00 + 1.50},
		{name: "zero", model: "sonnet", want: 0},
		{name: "unknown model", model: "opus", input: 1_000_000, output: 1_000_000, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, calc.Claude(tt.model, tt.input, tt.output), 1e-9)
		})
	}
}

func TestGemini(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(testRates())
	assert.InDelta(t, 0.30+2.50, calc.Gemini("flash", 1_000_000, 1_000_000), 1e-9)
	assert.InDelta(t, 0.0, calc.Gemini("pro", 1_000_000, 1_000_000), 1e-9)
}

func TestPerplexity(t *testing.T) {
	t.Parallel()
	calc := NewCalculator(testRates())
	assert.InDelta(t, 0.005+0.003+0.015, calc.Perplexity("sonar-pro", 1000, 1000), 1e-9)
	// The request fee applies even when the model has no token pricing.
	assert.InDelta(t, 0.005, calc.Perplexity("sonar-deep", 1000, 1000), 1e-9)
}

func TestDefaultRates(t *testing.T) {
	t.Parallel()
	r := DefaultRates()
	assert.Contains(t, r.Gemini, "gemini-2.5-flash")
	assert.Contains(t, r.Anthropic, "claude-sonnet-4-5-20250929")
	assert.Contains(t, r.Perplexity.Models, "sonar-pro")
	assert.Greater(t, r.Perplexity.PerQuery, 0.0)
}
