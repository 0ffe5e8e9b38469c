package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/client"
	"github.com/floktl/XploreED-sub002/internal/errors"
)

// TTSService turns German text into speech and serves it from object storage.
type TTSService struct {
	ttsClient     *client.ElevenLabsClient
	storageClient *client.StorageClient
	logger        zerolog.Logger
}

// NewTTSService creates a new TTSService. Both clients must be configured for
// the service to be available.
func NewTTSService(ttsClient *client.ElevenLabsClient, storageClient *client.StorageClient, logger zerolog.Logger) *TTSService {
	return &TTSService{
		ttsClient:     ttsClient,
		storageClient: storageClient,
		logger:        logger.With().Str("service", "tts").Logger(),
	}
}

// Available reports whether synthesis and storage are both configured.
func (s *TTSService) Available() bool {
	return s.ttsClient != nil && s.storageClient != nil
}

// SynthesizeResult points at a stored audio clip.
type SynthesizeResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// Synthesize renders text as speech, uploads the MP3 and returns its URL.
func (s *TTSService) Synthesize(ctx context.Context, userID uuid.UUID, text string) (*SynthesizeResult, error) {
	if !s.Available() {
		return nil, errors.New(errors.ErrStorageService, "text-to-speech not configured")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("text is required")
	}
	if len(text) > 1000 {
		return nil, errors.Validation("text exceeds 1000 characters")
	}

	audio, err := s.ttsClient.Synthesize(ctx, text)
	if err != nil {
		return nil, errors.Wrap(errors.ErrAIService, "speech synthesis failed", err)
	}

	key := fmt.Sprintf("tts/%s/%d-%s.mp3", userID, time.Now().Unix(), uuid.New().String()[:8])
	if err := s.storageClient.Upload(ctx, key, audio, "audio/mpeg"); err != nil {
		return nil, errors.Wrap(errors.ErrStorageService, "failed to store audio", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("key", key).
		Int("bytes", len(audio)).
		Msg("Audio clip stored")
	return &SynthesizeResult{URL: s.storageClient.PublicURL(key), Key: key}, nil
}
