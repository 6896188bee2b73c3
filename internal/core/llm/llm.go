// Package llm defines the generation and embedding service interfaces.
package llm

import "context"

// Generator produces text for a prompt. Calls may be slow or fail; the
// pipeline treats a failure as a degraded turn, never as a dropped one.
type Generator interface {
	// Generate returns generated text for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder maps text to a fixed-length numeric vector.
type Embedder interface {
	// Embed returns the embedding vector for text.
	Embed(ctx context.Context, text string) ([]float32, error)
}
