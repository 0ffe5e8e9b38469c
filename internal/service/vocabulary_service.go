package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/errors"
	"github.com/floktl/XploreED-sub002/internal/repository"
	"github.com/floktl/XploreED-sub002/pkg/sm2"
)

// Translator translates a word or sentence into the target language.
// Implemented by TranslationService.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// VocabularyService manages a user's vocabulary and its review schedule.
type VocabularyService struct {
	vocabRepo  repository.VocabularyRepository
	translator Translator
	log        zerolog.Logger
}

// NewVocabularyService creates a new VocabularyService. translator may be nil;
// extracted words are then stored untranslated.
func NewVocabularyService(vocabRepo repository.VocabularyRepository, translator Translator, log zerolog.Logger) *VocabularyService {
	return &VocabularyService{
		vocabRepo:  vocabRepo,
		translator: translator,
		log:        log,
	}
}

// List returns the user's vocabulary, optionally filtered by search.
func (s *VocabularyService) List(ctx context.Context, userID uuid.UUID, search string) ([]repository.VocabEntry, error) {
	entries, err := s.vocabRepo.List(ctx, userID, search)
	if err != nil {
		return nil, errors.InternalWrap("failed to list vocabulary", err)
	}
	return entries, nil
}

// NextDue returns the next entry due for review, or nil when nothing is due.
func (s *VocabularyService) NextDue(ctx context.Context, userID uuid.UUID) (*repository.VocabEntry, error) {
	entry, err := s.vocabRepo.NextDue(ctx, userID, time.Now())
	if err != nil {
		return nil, errors.InternalWrap("failed to find due vocabulary", err)
	}
	return entry, nil
}

// Review applies one SM-2 review to a vocabulary entry.
func (s *VocabularyService) Review(ctx context.Context, userID uuid.UUID, id int, quality sm2.Quality) (*repository.VocabEntry, error) {
	entry, err := s.vocabRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, errors.InternalWrap("failed to load vocabulary entry", err)
	}
	if entry == nil {
		return nil, errors.NotFound("vocabulary entry")
	}

	entry.SM2 = sm2.Review(entry.SM2, quality, time.Now())
	if err := s.vocabRepo.UpdateSM2(ctx, userID, id, entry.SM2); err != nil {
		return nil, errors.InternalWrap("failed to update vocabulary review state", err)
	}
	return entry, nil
}

// Delete removes one entry.
func (s *VocabularyService) Delete(ctx context.Context, userID uuid.UUID, id int) error {
	if err := s.vocabRepo.Delete(ctx, userID, id); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("vocabulary entry")
		}
		return errors.InternalWrap("failed to delete vocabulary entry", err)
	}
	return nil
}

// DeleteAll wipes the user's vocabulary.
func (s *VocabularyService) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.vocabRepo.DeleteAll(ctx, userID); err != nil {
		return errors.InternalWrap("failed to delete vocabulary", err)
	}
	return nil
}

// ExtractFromSentence pulls vocabulary candidates out of a correctly answered
// German sentence and stores the new ones. Translation is best effort: a
// failing translator never blocks the submission, the word is stored
// untranslated and the error logged.
func (s *VocabularyService) ExtractFromSentence(ctx context.Context, userID uuid.UUID, sentence string) int {
	words := extractVocabWords(sentence)
	now := time.Now()

	stored := 0
	for _, w := range words {
		translation := ""
		if s.translator != nil {
			t, err := s.translator.Translate(ctx, w.Word, "DE", "EN")
			if err != nil {
				s.log.Warn().Err(err).Str("word", w.Word).Msg("vocabulary translation failed")
			} else {
				translation = t
			}
		}

		entry := &repository.VocabEntry{
			UserID:      userID,
			Word:        w.Word,
			Article:     w.Article,
			Translation: translation,
			WordType:    w.WordType,
			Context:     sentence,
			SM2:         sm2.NewState(now),
		}
		err := s.vocabRepo.Upsert(ctx, entry)
		if err == repository.ErrAlreadyExists {
			continue
		}
		if err != nil {
			s.log.Warn().Err(err).Str("word", w.Word).Msg("failed to store vocabulary entry")
			continue
		}
		stored++
	}
	return stored
}
