package research

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/uav-enrich/internal/config"
	"github.com/sells-group/uav-enrich/internal/cost"
	"github.com/sells-group/uav-enrich/pkg/gemini"
)

// Gemini researches with Google Search grounding.
type Gemini struct {
	client      gemini.Client
	model       string
	temperature float32
	calc        *cost.Calculator
}

// NewGemini creates a Gemini researcher from configuration.
func NewGemini(ctx context.Context, cfg config.GeminiConfig) (*Gemini, error) {
	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:  cfg.Key,
		Model:   cfg.Model,
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	g := NewGeminiWithClient(client, cfg.Temperature)
	g.model = cfg.Model
	return g, nil
}

// NewGeminiWithClient wraps an existing client.
func NewGeminiWithClient(client gemini.Client, temperature float64) *Gemini {
	return &Gemini{
		client:      client,
		temperature: float32(temperature),
		calc:        cost.NewCalculator(cost.DefaultRates()),
	}
}

// Research implements Researcher.
func (g *Gemini) Research(ctx context.Context, companyName string) (*Result, error) {
	temp := g.temperature
	resp, err := g.client.Generate(ctx, gemini.Request{
		Prompt:      BuildPrompt(companyName),
		Temperature: &temp,
		Search:      true,
	})
	if err != nil {
		return nil, Classify(ProviderGemini, gemini.StatusCode(err), err)
	}

	zap.L().Debug("research: gemini answered",
		zap.String("company", companyName),
		zap.Int("sources", len(resp.Sources)),
		zap.Strings("queries", resp.WebSearchQueries),
	)

	res, err := newResult(ProviderGemini, resp.Text, resp.Sources)
	if err != nil {
		return nil, err
	}
	res.CostUSD = g.calc.Gemini(g.model, resp.InputTokens, resp.OutputTokens)
	return res, nil
}
