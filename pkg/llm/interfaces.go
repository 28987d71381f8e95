// Package llm provides chat completion clients for the analysis pipeline.
// OpenAI and Anthropic models are supported behind one interface so the GEO
// positioning tests can fan a query across providers.
package llm

import (
	"context"
)

// LLMClient defines the interface for chat completion operations.
// Use this interface for dependency injection to enable mocking in tests.
type LLMClient interface {
	// GenerateResponse generates a chat completion response.
	GenerateResponse(ctx context.Context, prompt string, systemMessage string, temperature float64) (string, error)

	// GetModel returns the configured model name.
	GetModel() string

	// GetProvider returns the provider name ("openai" or "anthropic").
	GetProvider() string
}

// Ensure both clients implement LLMClient at compile time.
var (
	_ LLMClient = (*OpenAIClient)(nil)
	_ LLMClient = (*AnthropicClient)(nil)
)
