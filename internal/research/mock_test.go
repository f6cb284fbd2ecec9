package research

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/uav-enrich/pkg/anthropic"
	"github.com/sells-group/uav-enrich/pkg/gemini"
	"github.com/sells-group/uav-enrich/pkg/perplexity"
)

// --- Gemini Mock ---

type mockGeminiClient struct {
	mock.Mock
}

func (m *mockGeminiClient) Generate(ctx context.Context, req gemini.Request) (*gemini.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gemini.Response), args.Error(1)
}

// --- Perplexity Mock ---

type mockPerplexityClient struct {
	mock.Mock
}

func (m *mockPerplexityClient) ChatCompletion(ctx context.Context, req perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*perplexity.ChatCompletionResponse), args.Error(1)
}

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}
