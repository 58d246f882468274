package llm

import "context"

// Gateway is the uniform interface over a named generative backend. It is a
// pure pass-through: no retries, no output shaping. Transport or backend
// failures wrap errx.ErrModelInvocation so callers can apply their own
// single-shot fallback policy.
type Gateway interface {
	Invoke(ctx context.Context, modelID, prompt string, temperature float32, maxTokens int) (string, error)
}

// Embedder turns text into the vector representation the retrieval index
// stores.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
