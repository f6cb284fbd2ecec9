// Package research asks a search-grounded language model about one company
// and returns the raw labeled answer plus the web sources it was grounded on.
package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/uav-enrich/internal/config"
)

// Researcher answers the fixed company research question.
type Researcher interface {
	Research(ctx context.Context, companyName string) (*Result, error)
}

// Result is a successful research answer.
type Result struct {
	// Body is the raw labeled text. It is never empty.
	Body string
	// Sources are grounding URLs, deduplicated in first-seen order.
	Sources []string
	// CostUSD is the estimated spend of the call, 0 when unpriced.
	CostUSD float64
}

const promptTemplate = `Research the company "%s".
Find and provide exactly these details in the following text format:
Website: [URL]
Category: [Brief description of what they sell/do]
Size: [Number of employees or size range from LinkedIn]
Countries: [List of countries where they have offices or major presence]
UAV Type: [Specify if they work with "Small UAVs", "Big UAVs", "Both", or "N/A"]
Launch Recovery: [Specify if they require "Launchers", "Parachute Recovery", "Both", or "N/A"]
Services: [Specify if they require "Design", "Simulation", "Software Integration", or a combination. Write "N/A" if none]
Manufacturing: [Specify "Yes" if they are a candidate for Precision Manufacturing services, otherwise "No"]
Composites: [Specify "Yes" if they are a candidate for Advanced Composites services, otherwise "No"]
Email: [Generic or contact email if public]
Phone: [Contact phone number]
LinkedIn: [Company LinkedIn page URL]

Use web search to find specific technical details related to their UAV/Drone operations and engineering requirements. If a specific field is not found, write "N/A".`

// BuildPrompt renders the research question for companyName. The name is
// embedded verbatim.
func BuildPrompt(companyName string) string {
	return fmt.Sprintf(promptTemplate, companyName)
}

// New builds the Researcher selected by cfg.Research.Provider.
func New(ctx context.Context, cfg *config.Config) (Researcher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Research.Provider)) {
	case "", ProviderGemini:
		g, err := NewGemini(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderPerplexity:
		return NewPerplexity(cfg.Perplexity), nil
	case ProviderAnthropic:
		return NewAnthropic(cfg.Anthropic), nil
	case ProviderStub:
		return &StubResearcher{}, nil
	default:
		return nil, eris.Errorf("research: unknown provider %q", cfg.Research.Provider)
	}
}

// Provider names accepted by New.
const (
	ProviderGemini     = "gemini"
	ProviderPerplexity = "perplexity"
	ProviderAnthropic  = "anthropic"
	ProviderStub       = "stub"
)

// dedupeSources drops blanks and repeats, keeping first-seen order.
func dedupeSources(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// newResult validates body and assembles a Result.
func newResult(provider, body string, sources []string) (*Result, error) {
	if strings.TrimSpace(body) == "" {
		return nil, EmptyResponse(provider)
	}
	return &Result{Body: body, Sources: dedupeSources(sources)}, nil
}
