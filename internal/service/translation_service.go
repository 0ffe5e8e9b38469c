package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/client"
	"github.com/floktl/XploreED-sub002/internal/errors"
)

// TranslationService translates text via DeepL, falling back to the AI
// providers when DeepL is not configured or fails.
type TranslationService struct {
	deeplClient *client.DeepLClient
	aiService   *AIService
	logger      zerolog.Logger
}

// NewTranslationService creates a new TranslationService. The DeepL client
// may be nil.
func NewTranslationService(deeplClient *client.DeepLClient, aiService *AIService, logger zerolog.Logger) *TranslationService {
	return &TranslationService{
		deeplClient: deeplClient,
		aiService:   aiService,
		logger:      logger.With().Str("service", "translation").Logger(),
	}
}

// Translate translates text between the given languages ("DE", "EN", ...).
func (s *TranslationService) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.Validation("text is required")
	}
	if len(text) > 5000 {
		return "", errors.Validation("text exceeds 5000 characters")
	}

	if s.deeplClient != nil {
		translated, err := s.deeplClient.Translate(ctx, text, sourceLang, targetLang)
		if err == nil {
			return translated, nil
		}
		s.logger.Warn().Err(err).Msg("DeepL translation failed, falling back to AI")
	}

	if s.aiService == nil || !s.aiService.Available() {
		return "", errors.New(errors.ErrTranslationService, "no translation provider configured")
	}

	prompt := fmt.Sprintf(
		"Translate the following text from %s to %s. Respond with the translation only, no explanations.\n\n%s",
		languageName(sourceLang), languageName(targetLang), text,
	)
	translated, err := s.aiService.Complete(ctx, prompt)
	if err != nil {
		return "", errors.Wrap(errors.ErrTranslationService, "translation failed", err)
	}
	return strings.TrimSpace(translated), nil
}

func languageName(code string) string {
	switch strings.ToUpper(code) {
	case "DE":
		return "German"
	case "EN":
		return "English"
	default:
		return code
	}
}
