package llm

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// LLMClientFactory is the interface for creating LLM clients by model name.
// Use this interface for dependency injection and testing.
type LLMClientFactory interface {
	CreateForModel(model string) (LLMClient, error)
}

// ClientFactory creates LLM clients, routing by model name prefix:
// "claude-*" models go to Anthropic, everything else to OpenAI.
type ClientFactory struct {
	openAIAPIKey    string
	anthropicAPIKey string
	logger          *zap.Logger
}

// NewClientFactory creates a new factory.
func NewClientFactory(openAIAPIKey, anthropicAPIKey string, logger *zap.Logger) *ClientFactory {
	return &ClientFactory{
		openAIAPIKey:    openAIAPIKey,
		anthropicAPIKey: anthropicAPIKey,
		logger:          logger,
	}
}

// CreateForModel creates a client for the given model name.
func (f *ClientFactory) CreateForModel(model string) (LLMClient, error) {
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	if strings.HasPrefix(model, "claude-") {
		client, err := NewAnthropicClient(f.anthropicAPIKey, model, f.logger)
		if err != nil {
			return nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return client, nil
	}

	client, err := NewOpenAIClient(f.openAIAPIKey, model, f.logger)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return client, nil
}

// Ensure ClientFactory implements LLMClientFactory at compile time.
var _ LLMClientFactory = (*ClientFactory)(nil)
