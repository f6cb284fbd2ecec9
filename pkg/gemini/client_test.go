package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{APIKey: "  "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is required")
}

func TestNewClient_DefaultModel(t *testing.T) {
	c, err := NewClient(context.Background(), Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, defaultModel, c.(*sdkClient).model)
}

func TestGenerate_GroundedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.Contains(r.URL.Path, "generateContent"), "path %s", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Website: https://acme.example\nPhone: N/A"}]},
				"groundingMetadata": {
					"webSearchQueries": ["Acme drones"],
					"groundingChunks": [
						{"web": {"uri": "https://acme.example", "title": "Acme"}},
						{"web": {"uri": "https://acme.example", "title": "Acme again"}},
						{"web": {"uri": "https://news.example/acme", "title": "News"}}
					]
				}
			}],
			"usageMetadata": {"promptTokenCount": 120, "candidatesTokenCount": 40}
		}`))
	}))
	defer srv.Close()

	c, err := NewClient(context.Background(), Config{APIKey: "test-key", Model: "gemini-test", BaseURL: srv.URL})
	require.NoError(t, err)

	temp := float32(0.1)
	resp, err := c.Generate(context.Background(), Request{Prompt: "Research Acme", Temperature: &temp, Search: true})
	require.NoError(t, err)
	assert.Equal(t, "Website: https://acme.example\nPhone: N/A", resp.Text)
	assert.Equal(t, []string{"https://acme.example", "https://news.example/acme"}, resp.Sources)
	assert.Equal(t, []string{"Acme drones"}, resp.WebSearchQueries)
	assert.Equal(t, int64(120), resp.InputTokens)
	assert.Equal(t, int64(40), resp.OutputTokens)
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want int
	}{
		{name: "nil", in: nil, want: 0},
		{name: "api_429", in: genai.APIError{Code: 429}, want: 429},
		{name: "api_503", in: genai.APIError{Code: 503}, want: 503},
		{name: "plain", in: errors.New("boom"), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.in))
		})
	}
}

func TestExtractSources(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{URI: "https://b.example"}},
					nil,
					{Web: nil},
					{Web: &genai.GroundingChunkWeb{URI: "  "}},
					{Web: &genai.GroundingChunkWeb{URI: "https://a.example"}},
					{Web: &genai.GroundingChunkWeb{URI: "https://b.example"}},
				},
			},
		}},
	}

	assert.Equal(t, []string{"https://b.example", "https://a.example"}, extractSources(resp))
	assert.Nil(t, extractSources(nil))
	assert.Nil(t, extractSources(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}
