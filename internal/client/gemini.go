package client

import (
	"context"

	"google.golang.org/genai"
)

// GeminiClient wraps the Google Vertex AI Gemini client. It serves as the
// fallback chat provider when Mistral is unavailable.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini client using Vertex AI.
func NewGeminiClient(ctx context.Context, projectID, location string) (*GeminiClient, error) {
	cfg := &genai.ClientConfig{
		Project:  projectID,
		Location: location,
		Backend:  genai.BackendVertexAI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &GeminiClient{
		client: client,
		model:  "gemini-2.0-flash",
	}, nil
}

// WithModel overrides the default model.
func (c *GeminiClient) WithModel(model string) *GeminiClient {
	if model != "" {
		c.model = model
	}
	return c
}

// Close closes the client.
func (c *GeminiClient) Close() {
	// No explicit close needed for the genai SDK
}

// Chat sends a chat message and returns the response.
func (c *GeminiClient) Chat(ctx context.Context, system, message string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: system}},
			},
		}
	}
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(message), cfg)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// Complete generates a completion for the given prompt.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.Chat(ctx, "", prompt)
}
