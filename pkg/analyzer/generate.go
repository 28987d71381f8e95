package analyzer

import (
	"context"

	"github.com/brandlens-inc/brandlens-engine/pkg/llm"
	"github.com/brandlens-inc/brandlens-engine/pkg/retry"
)

// generate calls the model, retrying transient provider failures with
// backoff. Auth and model errors surface immediately.
func generate(ctx context.Context, client llm.LLMClient, prompt, system string, temperature float64) (string, error) {
	return retry.DoWithResult(ctx, retry.LLMConfig(), func() (string, error) {
		return client.GenerateResponse(ctx, prompt, system, temperature)
	})
}
