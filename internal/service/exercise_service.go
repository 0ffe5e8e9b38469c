package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/errors"
	"github.com/floktl/XploreED-sub002/internal/repository"
)

const exerciseSystemPrompt = `You are a German language teacher generating practice exercises.
Respond with a single JSON object, no prose, of the form:
{"topic": "...", "exercises": [{"id": "ex-1", "type": "gap-fill|translate|order", "question": "...", "options": ["..."], "answer": "...", "topic": "...", "explanation": "..."}]}
Rules:
- gap-fill questions contain exactly one ___ gap and list 3-4 options.
- translate questions are English sentences; the answer is the German translation.
- order questions present shuffled German words; the answer is the correct sentence.
- every exercise names the grammar topic it trains.`

// ExerciseService generates exercise blocks, grades submissions and records
// the outcomes in vocabulary and topic memory.
type ExerciseService struct {
	exerciseRepo repository.ExerciseRepository
	aiService    *AIService
	topicService *TopicMemoryService
	vocabService *VocabularyService
	logger       zerolog.Logger
}

// NewExerciseService creates a new ExerciseService.
func NewExerciseService(
	exerciseRepo repository.ExerciseRepository,
	aiService *AIService,
	topicService *TopicMemoryService,
	vocabService *VocabularyService,
	logger zerolog.Logger,
) *ExerciseService {
	return &ExerciseService{
		exerciseRepo: exerciseRepo,
		aiService:    aiService,
		topicService: topicService,
		vocabService: vocabService,
		logger:       logger.With().Str("service", "exercise").Logger(),
	}
}

// GetOrCreateNext returns the user's most recent exercise block, generating a
// fresh one when none exists yet.
func (s *ExerciseService) GetOrCreateNext(ctx context.Context, userID uuid.UUID, skillLevel int) (*repository.ExerciseBlock, error) {
	block, err := s.exerciseRepo.GetLatestBlockForUser(ctx, userID)
	if err != nil {
		return nil, errors.InternalWrap("failed to load exercise block", err)
	}
	if block != nil {
		return block, nil
	}
	return s.Generate(ctx, userID, skillLevel)
}

// Generate asks the AI providers for a new exercise block targeting the
// user's weakest grammar topics and persists it.
func (s *ExerciseService) Generate(ctx context.Context, userID uuid.UUID, skillLevel int) (*repository.ExerciseBlock, error) {
	if s.aiService == nil || !s.aiService.Available() {
		return nil, errors.New(errors.ErrAIService, "exercise generation requires an AI provider")
	}

	prompt := s.buildGenerationPrompt(ctx, userID, skillLevel)
	reply, err := s.aiService.Chat(ctx, exerciseSystemPrompt, prompt, "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrAIService, "exercise generation failed", err)
	}

	var payload struct {
		Topic     string                `json:"topic"`
		Exercises []repository.Exercise `json:"exercises"`
	}
	if err := json.Unmarshal([]byte(stripJSONFences(reply)), &payload); err != nil {
		return nil, errors.Wrap(errors.ErrAIService, "AI returned malformed exercise JSON", err)
	}
	exercises, err := validateExercises(payload.Exercises)
	if err != nil {
		return nil, errors.Wrap(errors.ErrAIService, "AI returned an invalid exercise block", err)
	}

	raw, err := json.Marshal(exercises)
	if err != nil {
		return nil, errors.InternalWrap("failed to encode exercises", err)
	}

	block := &repository.ExerciseBlock{
		UserID:      &userID,
		Topic:       payload.Topic,
		SkillLevel:  skillLevel,
		Exercises:   raw,
		AIGenerated: true,
	}
	if err := s.exerciseRepo.CreateBlock(ctx, block); err != nil {
		return nil, errors.InternalWrap("failed to store exercise block", err)
	}

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("block_id", block.ID.String()).
		Str("topic", block.Topic).
		Int("exercises", len(exercises)).
		Msg("Exercise block generated")
	return block, nil
}

func (s *ExerciseService) buildGenerationPrompt(ctx context.Context, userID uuid.UUID, skillLevel int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create 5 German exercises for a learner at skill level %d (0=beginner, 10=advanced).\n", skillLevel)

	if s.topicService != nil {
		weakest, err := s.topicService.Weakest(ctx, userID, 3)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to load weakest topics for prompt")
		}
		if len(weakest) > 0 {
			b.WriteString("Focus on these grammar topics the learner struggles with: ")
			for i, tm := range weakest {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(tm.Topic)
			}
			b.WriteString(".\n")
		}
	}
	if s.vocabService != nil {
		if entry, err := s.vocabService.NextDue(ctx, userID); err == nil && entry != nil {
			fmt.Fprintf(&b, "Where natural, reuse the vocabulary word %q.\n", entry.Word)
		}
	}
	b.WriteString("Mix gap-fill, translate and order exercises.")
	return b.String()
}

// validateExercises checks the AI output for the fields grading depends on
// and assigns stable IDs to exercises missing one.
func validateExercises(exercises []repository.Exercise) ([]repository.Exercise, error) {
	if len(exercises) == 0 {
		return nil, fmt.Errorf("block contains no exercises")
	}
	for i := range exercises {
		ex := &exercises[i]
		if ex.ID == "" {
			ex.ID = fmt.Sprintf("ex-%d", i+1)
		}
		switch ex.Type {
		case repository.ExerciseGapFill, repository.ExerciseTranslate, repository.ExerciseOrder:
		default:
			return nil, fmt.Errorf("exercise %s has unknown type %q", ex.ID, ex.Type)
		}
		if ex.Question == "" || ex.Answer == "" {
			return nil, fmt.Errorf("exercise %s is missing question or answer", ex.ID)
		}
	}
	return exercises, nil
}

// SubmitRequest is one block submission with answers keyed by exercise ID.
// Order exercises submit their token sequence; the rest submit free text.
type SubmitRequest struct {
	Answers map[string]string   `json:"answers"`
	Tokens  map[string][]string `json:"tokens,omitempty"`
}

// ExerciseOutcome is the graded result of a single exercise.
type ExerciseOutcome struct {
	ExerciseID    string `json:"exercise_id"`
	Correct       bool   `json:"correct"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correct_answer"`
	Topic         string `json:"topic,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
}

// SubmitResponse summarizes a graded block.
type SubmitResponse struct {
	BlockID  uuid.UUID         `json:"block_id"`
	Score    int               `json:"score"`
	MaxScore int               `json:"max_score"`
	Outcomes []ExerciseOutcome `json:"outcomes"`
}

// Submit grades a block submission, saves the result and updates vocabulary
// and topic memory from the outcomes.
func (s *ExerciseService) Submit(ctx context.Context, userID uuid.UUID, blockID uuid.UUID, skillLevel int, req SubmitRequest) (*SubmitResponse, error) {
	block, err := s.exerciseRepo.GetBlock(ctx, blockID)
	if err != nil {
		return nil, errors.InternalWrap("failed to load exercise block", err)
	}
	if block == nil {
		return nil, errors.NotFound("exercise block")
	}
	if block.UserID != nil && *block.UserID != userID {
		return nil, errors.Forbidden("exercise block belongs to another user")
	}

	exercises, err := block.ParseExercises()
	if err != nil {
		return nil, errors.InternalWrap("failed to parse exercise block", err)
	}

	resp := &SubmitResponse{
		BlockID:  block.ID,
		MaxScore: len(exercises),
	}
	for _, ex := range exercises {
		outcome := s.gradeOne(ex, req)
		if outcome.Correct {
			resp.Score++
		}
		resp.Outcomes = append(resp.Outcomes, outcome)
	}

	details, err := json.Marshal(resp.Outcomes)
	if err != nil {
		return nil, errors.InternalWrap("failed to encode outcomes", err)
	}
	result := &repository.ExerciseResult{
		UserID:   userID,
		BlockID:  block.ID,
		Score:    resp.Score,
		MaxScore: resp.MaxScore,
		Details:  details,
	}
	if err := s.exerciseRepo.SaveResult(ctx, result); err != nil {
		return nil, errors.InternalWrap("failed to save exercise result", err)
	}

	s.recordOutcomes(ctx, userID, skillLevel, exercises, resp.Outcomes)

	s.logger.Info().
		Str("user_id", userID.String()).
		Str("block_id", block.ID.String()).
		Int("score", resp.Score).
		Int("max_score", resp.MaxScore).
		Msg("Exercise block submitted")
	return resp, nil
}

func (s *ExerciseService) gradeOne(ex repository.Exercise, req SubmitRequest) ExerciseOutcome {
	outcome := ExerciseOutcome{
		ExerciseID:    ex.ID,
		CorrectAnswer: ex.Answer,
		Topic:         ex.Topic,
		Explanation:   ex.Explanation,
	}

	switch ex.Type {
	case repository.ExerciseOrder:
		tokens := req.Tokens[ex.ID]
		if len(tokens) == 0 {
			tokens = strings.Fields(req.Answers[ex.ID])
		}
		outcome.Answer = strings.Join(tokens, " ")
		outcome.Correct = gradeOrder(tokens, ex.Answer)

	case repository.ExerciseTranslate:
		outcome.Answer = req.Answers[ex.ID]
		outcome.Correct = gradeTranslate(outcome.Answer, ex.Answer)

	default:
		outcome.Answer = req.Answers[ex.ID]
		outcome.Correct = gradeGapFill(outcome.Answer, ex.Answer)
	}
	return outcome
}

// recordOutcomes updates topic memory for every graded exercise and extracts
// vocabulary from correctly answered German sentences. Both are best effort.
func (s *ExerciseService) recordOutcomes(ctx context.Context, userID uuid.UUID, skillLevel int, exercises []repository.Exercise, outcomes []ExerciseOutcome) {
	byID := make(map[string]repository.Exercise, len(exercises))
	for _, ex := range exercises {
		byID[ex.ID] = ex
	}

	for _, outcome := range outcomes {
		ex, ok := byID[outcome.ExerciseID]
		if !ok {
			continue
		}
		if s.topicService != nil && ex.Topic != "" {
			if err := s.topicService.RecordOutcome(ctx, userID, ex.Topic, skillLevel, outcome.Correct); err != nil {
				s.logger.Warn().Err(err).Str("topic", ex.Topic).Msg("Failed to record topic outcome")
			}
		}
		if s.vocabService != nil && outcome.Correct && ex.Type != repository.ExerciseGapFill {
			s.vocabService.ExtractFromSentence(ctx, userID, ex.Answer)
		}
	}
}

// GetBlock returns a single block, enforcing ownership for user-scoped blocks.
func (s *ExerciseService) GetBlock(ctx context.Context, userID uuid.UUID, blockID uuid.UUID, isAdmin bool) (*repository.ExerciseBlock, error) {
	block, err := s.exerciseRepo.GetBlock(ctx, blockID)
	if err != nil {
		return nil, errors.InternalWrap("failed to load exercise block", err)
	}
	if block == nil {
		return nil, errors.NotFound("exercise block")
	}
	if !isAdmin && block.UserID != nil && *block.UserID != userID {
		return nil, errors.Forbidden("exercise block belongs to another user")
	}
	return block, nil
}

// ListBlocks returns all exercise blocks for the admin view.
func (s *ExerciseService) ListBlocks(ctx context.Context) ([]repository.ExerciseBlock, error) {
	blocks, err := s.exerciseRepo.ListBlocks(ctx)
	if err != nil {
		return nil, errors.InternalWrap("failed to list exercise blocks", err)
	}
	return blocks, nil
}

// DeleteBlock removes an exercise block and its results.
func (s *ExerciseService) DeleteBlock(ctx context.Context, blockID uuid.UUID) error {
	if err := s.exerciseRepo.DeleteBlock(ctx, blockID); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("exercise block")
		}
		return errors.InternalWrap("failed to delete exercise block", err)
	}
	return nil
}

// Results returns the user's graded submissions, newest first.
func (s *ExerciseService) Results(ctx context.Context, userID uuid.UUID) ([]repository.ExerciseResult, error) {
	results, err := s.exerciseRepo.ListResultsForUser(ctx, userID)
	if err != nil {
		return nil, errors.InternalWrap("failed to list exercise results", err)
	}
	return results, nil
}
