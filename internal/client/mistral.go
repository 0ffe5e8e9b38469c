package client

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// MistralClient wraps the Mistral chat API, which is OpenAI-compatible, via
// the go-openai client pointed at the Mistral base URL.
type MistralClient struct {
	client *openai.Client
	model  string
}

// NewMistralClient creates a new Mistral client.
func NewMistralClient(apiKey, baseURL, model string) *MistralClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "mistral-small-latest"
	}
	return &MistralClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Chat sends a chat message with a system prompt and returns the response.
func (c *MistralClient) Chat(ctx context.Context, system, message string) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Complete generates a completion for the given prompt.
func (c *MistralClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.Chat(ctx, "", prompt)
}
