package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/floktl/XploreED-sub002/internal/client"
	"github.com/floktl/XploreED-sub002/internal/errors"
)

// AIService routes chat requests to the configured providers. Mistral is the
// primary provider; Gemini serves as fallback when Mistral is unavailable.
type AIService struct {
	mistralClient *client.MistralClient
	geminiClient  *client.GeminiClient
}

// NewAIService creates a new AI service. Either client may be nil.
func NewAIService(mistralClient *client.MistralClient, geminiClient *client.GeminiClient) *AIService {
	return &AIService{
		mistralClient: mistralClient,
		geminiClient:  geminiClient,
	}
}

// Available reports whether at least one provider is configured.
func (s *AIService) Available() bool {
	return s.mistralClient != nil || s.geminiClient != nil
}

// Chat sends a chat message to the given provider ("mistral", "gemini", or
// empty for the default order).
func (s *AIService) Chat(ctx context.Context, system, message, provider string) (string, error) {
	switch provider {
	case "mistral":
		if s.mistralClient == nil {
			return "", errors.New(errors.ErrAIService, "Mistral client not configured")
		}
		return s.mistralClient.Chat(ctx, system, message)

	case "gemini":
		if s.geminiClient == nil {
			return "", errors.New(errors.ErrAIService, "Gemini client not configured")
		}
		return s.geminiClient.Chat(ctx, system, message)

	default:
		if s.mistralClient != nil {
			reply, err := s.mistralClient.Chat(ctx, system, message)
			if err == nil {
				return reply, nil
			}
			if s.geminiClient == nil {
				return "", errors.Wrap(errors.ErrAIService, "mistral request failed", err)
			}
			// fall through to Gemini
		}
		if s.geminiClient != nil {
			return s.geminiClient.Chat(ctx, system, message)
		}
		return "", errors.New(errors.ErrAIService, "no AI provider configured")
	}
}

// Complete generates a completion for the given prompt with the default
// provider order.
func (s *AIService) Complete(ctx context.Context, prompt string) (string, error) {
	return s.Chat(ctx, "", prompt, "")
}

const readingSystemPrompt = `You are a German language teacher writing short reading texts.
Write 4-6 sentences of German prose appropriate for the requested level. Respond with the text only.`

// GenerateReading produces a short German reading text for a topic and level.
func (s *AIService) GenerateReading(ctx context.Context, topic string, skillLevel int) (string, error) {
	if !s.Available() {
		return "", errors.New(errors.ErrAIService, "reading generation requires an AI provider")
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "everyday life"
	}

	prompt := fmt.Sprintf(
		"Write a short German reading text about %q for a learner at skill level %d (0=beginner, 10=advanced).",
		topic, skillLevel,
	)
	text, err := s.Chat(ctx, readingSystemPrompt, prompt, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// stripJSONFences removes markdown code fences models often wrap JSON in.
func stripJSONFences(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}
