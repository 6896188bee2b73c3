// Package openai provides the OpenAI-backed generation and embedding clients.
package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const systemRolePrompt = "You are a helpful assistant."

// Config holds OpenAI client configuration.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint for self-hosted gateways. Optional.
	BaseURL string
	// Model is the chat completion model, e.g. "gpt-4o-mini".
	Model string
	// EmbeddingModel is the embedding model, e.g. "text-embedding-3-small".
	EmbeddingModel string
}

// Client implements both llm.Generator and llm.Embedder.
type Client struct {
	api            *openai.Client
	model          string
	embeddingModel openai.EmbeddingModel
}

// NewClient creates a new OpenAI client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	embeddingModel := openai.EmbeddingModel(cfg.EmbeddingModel)
	if embeddingModel == "" {
		embeddingModel = openai.SmallEmbedding3
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		api:            openai.NewClientWithConfig(apiCfg),
		model:          model,
		embeddingModel: embeddingModel,
	}, nil
}

// Generate returns generated text for the prompt via chat completion.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemRolePrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding request returned no data")
	}
	return resp.Data[0].Embedding, nil
}
