package research

import (
	"context"
	"errors"

	"github.com/sells-group/uav-enrich/internal/config"
	"github.com/sells-group/uav-enrich/internal/cost"
	"github.com/sells-group/uav-enrich/pkg/perplexity"
)

// Perplexity researches through the Perplexity chat completions API.
type Perplexity struct {
	client perplexity.Client
	model  string
	calc   *cost.Calculator
}

// NewPerplexity creates a Perplexity researcher from configuration.
func NewPerplexity(cfg config.PerplexityConfig) *Perplexity {
	var opts []perplexity.Option
	if cfg.BaseURL != "" {
		opts = append(opts, perplexity.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, perplexity.WithModel(cfg.Model))
	}
	return NewPerplexityWithClient(perplexity.NewClient(cfg.Key, opts...), cfg.Model)
}

// NewPerplexityWithClient wraps an existing client.
func NewPerplexityWithClient(client perplexity.Client, model string) *Perplexity {
	return &Perplexity{client: client, model: model, calc: cost.NewCalculator(cost.DefaultRates())}
}

// Research implements Researcher.
func (p *Perplexity) Research(ctx context.Context, companyName string) (*Result, error) {
	temp := 0.1
	resp, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Model:       p.model,
		Messages:    []perplexity.Message{{Role: "user", Content: BuildPrompt(companyName)}},
		Temperature: &temp,
	})
	if err != nil {
		rerr := Classify(ProviderPerplexity, perplexityStatus(err), err)
		var se *perplexity.StatusError
		if errors.As(err, &se) {
			rerr.RetryAfter = parseRetryAfter(se.RetryAfter)
		}
		return nil, rerr
	}

	res, err := newResult(ProviderPerplexity, resp.Text(), resp.SourceURLs())
	if err != nil {
		return nil, err
	}
	res.CostUSD = p.calc.Perplexity(p.model, int64(resp.Usage.PromptTokens), int64(resp.Usage.CompletionTokens))
	return res, nil
}

func perplexityStatus(err error) int {
	var se *perplexity.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
