package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/errors"
	"github.com/floktl/XploreED-sub002/internal/repository"
	"github.com/floktl/XploreED-sub002/pkg/htmlblock"
)

// LessonService manages lesson content and per-block reading progress.
type LessonService struct {
	lessonRepo repository.LessonRepository
	logger     zerolog.Logger
}

// NewLessonService creates a new LessonService.
func NewLessonService(lessonRepo repository.LessonRepository, logger zerolog.Logger) *LessonService {
	return &LessonService{
		lessonRepo: lessonRepo,
		logger:     logger.With().Str("service", "lesson").Logger(),
	}
}

// CreateLessonRequest is the admin payload for creating a lesson.
type CreateLessonRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	SkillLevel  int    `json:"skill_level"`
	Published   bool   `json:"published"`
	AIGenerated bool   `json:"ai_generated"`
}

// Validate checks required fields.
func (r *CreateLessonRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.Validation("title is required")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.Validation("content is required")
	}
	if r.SkillLevel < 0 || r.SkillLevel > 10 {
		return errors.Validation("skill_level must be between 0 and 10")
	}
	return nil
}

// Create stores a new lesson. Block IDs are injected into the content so
// progress can be tracked per block.
func (s *LessonService) Create(ctx context.Context, req CreateLessonRequest) (*repository.Lesson, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	content, blockIDs, err := htmlblock.InjectIDs(req.Content)
	if err != nil {
		return nil, errors.Wrap(errors.ErrValidation, "content is not valid HTML", err)
	}

	lesson := &repository.Lesson{
		Title:       strings.TrimSpace(req.Title),
		Content:     content,
		SkillLevel:  req.SkillLevel,
		Published:   req.Published,
		AIGenerated: req.AIGenerated,
	}
	if err := s.lessonRepo.Create(ctx, lesson); err != nil {
		return nil, errors.InternalWrap("failed to create lesson", err)
	}

	s.logger.Info().
		Int("lesson_id", lesson.ID).
		Str("title", lesson.Title).
		Int("blocks", len(blockIDs)).
		Msg("Lesson created")
	return lesson, nil
}

// UpdateLessonRequest is the admin payload for updating a lesson. Nil fields
// keep their current value.
type UpdateLessonRequest struct {
	Title      *string `json:"title,omitempty"`
	Content    *string `json:"content,omitempty"`
	SkillLevel *int    `json:"skill_level,omitempty"`
	Published  *bool   `json:"published,omitempty"`
}

// Update modifies an existing lesson. Updated content is re-run through block
// ID injection; blocks with existing IDs keep them, so recorded progress
// stays attached.
func (s *LessonService) Update(ctx context.Context, id int, req UpdateLessonRequest) (*repository.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.InternalWrap("failed to load lesson", err)
	}
	if lesson == nil {
		return nil, errors.NotFound("lesson")
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, errors.Validation("title cannot be empty")
		}
		lesson.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		content, _, err := htmlblock.InjectIDs(*req.Content)
		if err != nil {
			return nil, errors.Wrap(errors.ErrValidation, "content is not valid HTML", err)
		}
		lesson.Content = content
	}
	if req.SkillLevel != nil {
		if *req.SkillLevel < 0 || *req.SkillLevel > 10 {
			return nil, errors.Validation("skill_level must be between 0 and 10")
		}
		lesson.SkillLevel = *req.SkillLevel
	}
	if req.Published != nil {
		lesson.Published = *req.Published
	}

	if err := s.lessonRepo.Update(ctx, lesson); err != nil {
		if err == repository.ErrNotFound {
			return nil, errors.NotFound("lesson")
		}
		return nil, errors.InternalWrap("failed to update lesson", err)
	}
	return lesson, nil
}

// Get returns a single lesson. Non-admins only see published lessons.
func (s *LessonService) Get(ctx context.Context, id int, isAdmin bool) (*repository.Lesson, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.InternalWrap("failed to load lesson", err)
	}
	if lesson == nil || (!lesson.Published && !isAdmin) {
		return nil, errors.NotFound("lesson")
	}
	return lesson, nil
}

// ListForUser returns published lessons at or below the user's skill level.
func (s *LessonService) ListForUser(ctx context.Context, skillLevel int) ([]repository.Lesson, error) {
	lessons, err := s.lessonRepo.ListPublished(ctx, skillLevel)
	if err != nil {
		return nil, errors.InternalWrap("failed to list lessons", err)
	}
	return lessons, nil
}

// ListAll returns every lesson for the admin view.
func (s *LessonService) ListAll(ctx context.Context) ([]repository.Lesson, error) {
	lessons, err := s.lessonRepo.List(ctx)
	if err != nil {
		return nil, errors.InternalWrap("failed to list lessons", err)
	}
	return lessons, nil
}

// Delete removes a lesson and its recorded progress.
func (s *LessonService) Delete(ctx context.Context, id int) error {
	if err := s.lessonRepo.Delete(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("lesson")
		}
		return errors.InternalWrap("failed to delete lesson", err)
	}
	return nil
}

// LessonProgress reports which blocks of a lesson the user has completed.
type LessonProgress struct {
	LessonID  int             `json:"lesson_id"`
	Blocks    map[string]bool `json:"blocks"`
	Completed int             `json:"completed"`
	Total     int             `json:"total"`
}

// MarkBlock records completion of a single content block. The block ID must
// exist in the lesson content.
func (s *LessonService) MarkBlock(ctx context.Context, userID uuid.UUID, lessonID int, blockID string, completed bool) error {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return errors.InternalWrap("failed to load lesson", err)
	}
	if lesson == nil || !lesson.Published {
		return errors.NotFound("lesson")
	}

	known, err := htmlblock.ExtractIDs(lesson.Content)
	if err != nil {
		return errors.InternalWrap("failed to parse lesson content", err)
	}
	found := false
	for _, id := range known {
		if id == blockID {
			found = true
			break
		}
	}
	if !found {
		return errors.Validation("unknown block id")
	}

	if err := s.lessonRepo.SetBlockProgress(ctx, userID, lessonID, blockID, completed); err != nil {
		return errors.InternalWrap("failed to save progress", err)
	}
	return nil
}

// Progress returns the user's per-block completion state for a lesson.
func (s *LessonService) Progress(ctx context.Context, userID uuid.UUID, lessonID int) (*LessonProgress, error) {
	lesson, err := s.lessonRepo.GetByID(ctx, lessonID)
	if err != nil {
		return nil, errors.InternalWrap("failed to load lesson", err)
	}
	if lesson == nil {
		return nil, errors.NotFound("lesson")
	}

	known, err := htmlblock.ExtractIDs(lesson.Content)
	if err != nil {
		return nil, errors.InternalWrap("failed to parse lesson content", err)
	}
	done, err := s.lessonRepo.GetProgress(ctx, userID, lessonID)
	if err != nil {
		return nil, errors.InternalWrap("failed to load progress", err)
	}

	blocks := make(map[string]bool, len(known))
	completed := 0
	for _, id := range known {
		blocks[id] = done[id]
		if done[id] {
			completed++
		}
	}
	return &LessonProgress{
		LessonID:  lessonID,
		Blocks:    blocks,
		Completed: completed,
		Total:     len(known),
	}, nil
}
