package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/client"
	"github.com/floktl/XploreED-sub002/internal/errors"
	"github.com/floktl/XploreED-sub002/internal/repository"
)

const (
	feedbackResultKeyPrefix  = "feedback:result:"
	feedbackPendingKeyPrefix = "feedback:pending:"
	feedbackResultTTL        = 10 * time.Minute
	// Poll window stays under the server write timeout.
	feedbackPollTimeout     = 10 * time.Second
	feedbackGenerateTimeout = 2 * time.Minute
)

// Feedback result statuses.
const (
	FeedbackStatusDone    = "done"
	FeedbackStatusPending = "pending"
	FeedbackStatusError   = "error"
)

const feedbackSystemPrompt = `You are a supportive German teacher reviewing a learner's exercise results.
Write short, encouraging feedback in English: name what went well, explain the
mistakes in plain terms, and suggest one thing to practice next. No markdown.`

// FeedbackQueue is the result exchange backend; Redis in production.
type FeedbackQueue interface {
	RPush(ctx context.Context, key string, value interface{}) error
	SetExpiry(ctx context.Context, key string, ttl time.Duration) error
	BLPop(ctx context.Context, timeout time.Duration, key string) ([]byte, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// FeedbackChat is the slice of the AI service feedback generation needs.
type FeedbackChat interface {
	Available() bool
	Chat(ctx context.Context, system, message, provider string) (string, error)
}

// FeedbackService generates AI feedback on exercise results asynchronously
// and stores support messages users send to the maintainers.
//
// Feedback generation is a two-step exchange: RequestFeedback starts a
// background generation and returns a request ID; the result is pushed to a
// Redis list the client polls via GetFeedback.
type FeedbackService struct {
	feedbackRepo repository.FeedbackRepository
	queue        FeedbackQueue
	chat         FeedbackChat
	logger       zerolog.Logger
}

// NewFeedbackService creates a new FeedbackService.
func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	queue FeedbackQueue,
	chat FeedbackChat,
	logger zerolog.Logger,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		queue:        queue,
		chat:         chat,
		logger:       logger.With().Str("service", "feedback").Logger(),
	}
}

// FeedbackResult is the payload delivered through the Redis queue.
type FeedbackResult struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"` // done, pending, or error
	Feedback  string `json:"feedback,omitempty"`
	Error     string `json:"error,omitempty"`
}

// RequestFeedback starts background feedback generation for a graded
// submission and returns the request ID to poll with.
func (s *FeedbackService) RequestFeedback(ctx context.Context, userID uuid.UUID, submission *SubmitResponse) (string, error) {
	if s.queue == nil {
		return "", errors.Internal("feedback queue not configured")
	}
	if s.chat == nil || !s.chat.Available() {
		return "", errors.New(errors.ErrAIService, "feedback requires an AI provider")
	}
	if submission == nil || len(submission.Outcomes) == 0 {
		return "", errors.Validation("submission has no outcomes")
	}

	requestID := uuid.New().String()

	// The pending marker lets GetFeedback tell an in-flight generation apart
	// from an unknown or expired request.
	if err := s.queue.SetJSON(ctx, feedbackPendingKeyPrefix+requestID, true, feedbackGenerateTimeout); err != nil {
		return "", errors.InternalWrap("failed to mark feedback pending", err)
	}

	go func() {
		genCtx, cancel := context.WithTimeout(context.Background(), feedbackGenerateTimeout)
		defer cancel()
		s.generate(genCtx, requestID, userID, submission)
	}()

	return requestID, nil
}

func (s *FeedbackService) generate(ctx context.Context, requestID string, userID uuid.UUID, submission *SubmitResponse) {
	result := FeedbackResult{RequestID: requestID, Status: FeedbackStatusDone}

	feedback, err := s.chat.Chat(ctx, feedbackSystemPrompt, buildFeedbackPrompt(submission), "")
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID).Msg("Feedback generation failed")
		result.Status = FeedbackStatusError
		result.Error = "feedback generation failed"
	} else {
		result.Feedback = strings.TrimSpace(feedback)
	}

	key := feedbackResultKeyPrefix + requestID
	if err := s.queue.RPush(ctx, key, result); err != nil {
		s.logger.Error().Err(err).Str("request_id", requestID).Msg("Failed to queue feedback result")
		return
	}
	if err := s.queue.SetExpiry(ctx, key, feedbackResultTTL); err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID).Msg("Failed to set feedback result TTL")
	}
	// Cleared after the push so a poll that just missed the result still sees
	// the request as pending and retries.
	if err := s.queue.Del(ctx, feedbackPendingKeyPrefix+requestID); err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID).Msg("Failed to clear pending marker")
	}

	s.logger.Info().
		Str("request_id", requestID).
		Str("user_id", userID.String()).
		Str("status", result.Status).
		Msg("Feedback result queued")
}

func buildFeedbackPrompt(submission *SubmitResponse) string {
	var b strings.Builder
	b.WriteString("The learner just completed an exercise block.\n")
	for _, outcome := range submission.Outcomes {
		verdict := "correct"
		if !outcome.Correct {
			verdict = "incorrect"
		}
		b.WriteString("- ")
		b.WriteString(verdict)
		if outcome.Topic != "" {
			b.WriteString(" (" + outcome.Topic + ")")
		}
		b.WriteString(": answered " + strings.TrimSpace(outcome.Answer))
		if !outcome.Correct {
			b.WriteString(", expected " + outcome.CorrectAnswer)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// GetFeedback blocks until the result for a request arrives or the poll
// window elapses. While generation is still running it returns a pending
// result so clients keep retrying; an unknown or expired request is NotFound.
func (s *FeedbackService) GetFeedback(ctx context.Context, requestID string) (*FeedbackResult, error) {
	if s.queue == nil {
		return nil, errors.Internal("feedback queue not configured")
	}
	if _, err := uuid.Parse(requestID); err != nil {
		return nil, errors.Validation("invalid request id")
	}

	data, err := s.queue.BLPop(ctx, feedbackPollTimeout, feedbackResultKeyPrefix+requestID)
	if err != nil {
		if err == client.ErrCacheMiss {
			pending, existsErr := s.queue.Exists(ctx, feedbackPendingKeyPrefix+requestID)
			if existsErr != nil {
				return nil, errors.InternalWrap("failed to check pending feedback", existsErr)
			}
			if pending {
				return &FeedbackResult{RequestID: requestID, Status: FeedbackStatusPending}, nil
			}
			return nil, errors.NotFound("feedback result")
		}
		return nil, errors.InternalWrap("failed to poll feedback result", err)
	}

	var result FeedbackResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.InternalWrap("failed to decode feedback result", err)
	}
	if result.Status == FeedbackStatusError {
		return nil, errors.New(errors.ErrAIService, result.Error)
	}
	return &result, nil
}

// SubmitSupport stores a support message from a user.
func (s *FeedbackService) SubmitSupport(ctx context.Context, userID *uuid.UUID, message string) (*repository.SupportFeedback, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, errors.Validation("message is required")
	}
	if len(message) > 4000 {
		return nil, errors.Validation("message exceeds 4000 characters")
	}

	fb := &repository.SupportFeedback{UserID: userID, Message: message}
	if err := s.feedbackRepo.Create(ctx, fb); err != nil {
		return nil, errors.InternalWrap("failed to store feedback", err)
	}
	return fb, nil
}

// ListSupport returns all support messages for the admin view.
func (s *FeedbackService) ListSupport(ctx context.Context) ([]repository.SupportFeedback, error) {
	messages, err := s.feedbackRepo.List(ctx)
	if err != nil {
		return nil, errors.InternalWrap("failed to list feedback", err)
	}
	return messages, nil
}
