// Package gemini wraps google.golang.org/genai for search-grounded text generation.
package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/rotisserie/eris"
	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

// Client generates text with Google Search grounding.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Request is one grounded generation call.
type Request struct {
	Prompt      string
	Temperature *float32
	// Search enables the GoogleSearch grounding tool.
	Search bool
}

// Response carries the generated text and the grounding metadata.
type Response struct {
	Text             string
	Sources          []string
	WebSearchQueries []string
	InputTokens      int64
	OutputTokens     int64
}

// Config configures the client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string
}

type sdkClient struct {
	client *genai.Client
	model  string
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, eris.New("gemini: api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		cc.HTTPOptions.BaseURL = base
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, eris.Wrap(err, "gemini: create client")
	}
	return &sdkClient{client: client, model: model}, nil
}

func (c *sdkClient) Generate(ctx context.Context, req Request) (*Response, error) {
	gc := &genai.GenerateContentConfig{
		CandidateCount: 1,
		Temperature:    req.Temperature,
	}
	if req.Search {
		gc.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), gc)
	if err != nil {
		return nil, err
	}

	out := &Response{
		Text:             resp.Text(),
		Sources:          extractSources(resp),
		WebSearchQueries: extractWebSearchQueries(resp),
	}
	if u := resp.UsageMetadata; u != nil {
		out.InputTokens = int64(u.PromptTokenCount)
		out.OutputTokens = int64(u.CandidatesTokenCount)
	}
	return out, nil
}

// StatusCode returns the HTTP status code of a genai API error, or 0.
func StatusCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

func extractSources(resp *genai.GenerateContentResponse) []string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	c := resp.Candidates[0]
	if c.GroundingMetadata == nil {
		return nil
	}

	var out []string
	for _, chunk := range c.GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil {
			continue
		}
		out = append(out, chunk.Web.URI)
	}
	return dedupePreserveOrder(out)
}

func extractWebSearchQueries(resp *genai.GenerateContentResponse) []string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	c := resp.Candidates[0]
	if c.GroundingMetadata == nil {
		return nil
	}
	return dedupePreserveOrder(c.GroundingMetadata.WebSearchQueries)
}

func dedupePreserveOrder(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
