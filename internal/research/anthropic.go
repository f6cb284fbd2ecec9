package research

import (
	"context"

	"github.com/sells-group/uav-enrich/internal/config"
	"github.com/sells-group/uav-enrich/internal/cost"
	"github.com/sells-group/uav-enrich/pkg/anthropic"
)

const researchSystemPrompt = "You are a research analyst covering the UAV and drone industry. Answer only with the requested labeled lines."

// Anthropic researches with Claude. It returns text only; Sources stay empty.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	calc      *cost.Calculator
}

// NewAnthropic creates an Anthropic researcher from configuration.
func NewAnthropic(cfg config.AnthropicConfig) *Anthropic {
	return NewAnthropicWithClient(anthropic.NewClient(cfg.Key), cfg.Model, cfg.MaxTokens)
}

// NewAnthropicWithClient wraps an existing client.
func NewAnthropicWithClient(client anthropic.Client, model string, maxTokens int) *Anthropic {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Anthropic{
		client:    client,
		model:     model,
		maxTokens: int64(maxTokens),
		calc:      cost.NewCalculator(cost.DefaultRates()),
	}
}

// Research implements Researcher.
func (a *Anthropic) Research(ctx context.Context, companyName string) (*Result, error) {
	temp := 0.1
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      []anthropic.SystemBlock{{Text: researchSystemPrompt}},
		Messages:    []anthropic.Message{{Role: "user", Content: BuildPrompt(companyName)}},
		Temperature: &temp,
	})
	if err != nil {
		rerr := Classify(ProviderAnthropic, anthropic.StatusCode(err), err)
		rerr.RetryAfter = parseRetryAfter(anthropic.RetryAfter(err))
		return nil, rerr
	}

	resp.Usage.LogCost(a.model, companyName)
	res, err := newResult(ProviderAnthropic, resp.Text(), nil)
	if err != nil {
		return nil, err
	}
	res.CostUSD = a.calc.Claude(a.model, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return res, nil
}
