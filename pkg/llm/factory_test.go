package llm

import (
	"testing"

	"go.uber.org/zap"
)

func TestClientFactory_CreateForModel(t *testing.T) {
	factory := NewClientFactory("openai-key", "anthropic-key", zap.NewNop())

	tests := []struct {
		model        string
		wantProvider string
	}{
		{"gpt-4o-mini", "openai"},
		{"gpt-4o", "openai"},
		{"claude-3-5-haiku-latest", "anthropic"},
		{"claude-sonnet-4-5", "anthropic"},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			client, err := factory.CreateForModel(tt.model)
			if err != nil {
				t.Fatalf("CreateForModel(%q) failed: %v", tt.model, err)
			}
			if client.GetProvider() != tt.wantProvider {
				t.Errorf("provider = %q, want %q", client.GetProvider(), tt.wantProvider)
			}
			if client.GetModel() != tt.model {
				t.Errorf("model = %q, want %q", client.GetModel(), tt.model)
			}
		})
	}
}

func TestClientFactory_CreateForModel_EmptyModel(t *testing.T) {
	factory := NewClientFactory("openai-key", "anthropic-key", zap.NewNop())

	if _, err := factory.CreateForModel(""); err == nil {
		t.Error("expected error for empty model")
	}
}

func TestClientFactory_CreateForModel_MissingKey(t *testing.T) {
	factory := NewClientFactory("", "", zap.NewNop())

	if _, err := factory.CreateForModel("gpt-4o-mini"); err == nil {
		t.Error("expected error when OpenAI key is missing")
	}
	if _, err := factory.CreateForModel("claude-3-5-haiku-latest"); err == nil {
		t.Error("expected error when Anthropic key is missing")
	}
}
