package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/floktl/XploreED-sub002/internal/errors"
	"github.com/floktl/XploreED-sub002/internal/repository"
	"github.com/floktl/XploreED-sub002/pkg/sm2"
)

// TopicMemoryService tracks how well a user has internalized grammar topics.
type TopicMemoryService struct {
	topicRepo repository.TopicMemoryRepository
}

// NewTopicMemoryService creates a new TopicMemoryService.
func NewTopicMemoryService(topicRepo repository.TopicMemoryRepository) *TopicMemoryService {
	return &TopicMemoryService{topicRepo: topicRepo}
}

// List returns all of the user's topic rows.
func (s *TopicMemoryService) List(ctx context.Context, userID uuid.UUID) ([]repository.TopicMemory, error) {
	topics, err := s.topicRepo.List(ctx, userID)
	if err != nil {
		return nil, errors.InternalWrap("failed to list topic memory", err)
	}
	return topics, nil
}

// Weakest returns the user's weakest topics (lowest ease factor first).
func (s *TopicMemoryService) Weakest(ctx context.Context, userID uuid.UUID, limit int) ([]repository.TopicMemory, error) {
	if limit <= 0 || limit > 20 {
		limit = 5
	}
	topics, err := s.topicRepo.Weakest(ctx, userID, limit)
	if err != nil {
		return nil, errors.InternalWrap("failed to load weakest topics", err)
	}
	return topics, nil
}

// Review applies one SM-2 review to a topic row.
func (s *TopicMemoryService) Review(ctx context.Context, userID uuid.UUID, id int, quality sm2.Quality) (*repository.TopicMemory, error) {
	tm, err := s.topicRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, errors.InternalWrap("failed to load topic memory", err)
	}
	if tm == nil {
		return nil, errors.NotFound("topic")
	}

	tm.SM2 = sm2.Review(tm.SM2, quality, time.Now())
	if err := s.topicRepo.UpdateSM2(ctx, userID, id, tm.SM2); err != nil {
		return nil, errors.InternalWrap("failed to update topic memory", err)
	}
	return tm, nil
}

// RecordOutcome feeds an exercise outcome into the topic's schedule: a correct
// answer counts as a perfect review, an incorrect one as a near miss.
func (s *TopicMemoryService) RecordOutcome(ctx context.Context, userID uuid.UUID, topic string, skillLevel int, correct bool) error {
	if topic == "" {
		return nil
	}

	now := time.Now()
	tm, err := s.topicRepo.GetOrCreate(ctx, userID, topic, skillLevel, now)
	if err != nil {
		return errors.InternalWrap("failed to load topic memory", err)
	}

	quality := sm2.QualityIncorrectFamiliar
	if correct {
		quality = sm2.QualityPerfect
	}
	tm.SM2 = sm2.Review(tm.SM2, quality, now)

	if err := s.topicRepo.UpdateSM2(ctx, userID, tm.ID, tm.SM2); err != nil {
		return errors.InternalWrap("failed to update topic memory", err)
	}
	return nil
}
