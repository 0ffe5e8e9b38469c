package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/repository"
	"github.com/floktl/XploreED-sub002/pkg/sm2"
)

type fakeVocabRepo struct {
	entries map[int]*repository.VocabEntry
	nextID  int
}

func newFakeVocabRepo() *fakeVocabRepo {
	return &fakeVocabRepo{entries: make(map[int]*repository.VocabEntry)}
}

func (f *fakeVocabRepo) Upsert(_ context.Context, entry *repository.VocabEntry) error {
	for _, existing := range f.entries {
		if existing.UserID == entry.UserID && strings.EqualFold(existing.Word, entry.Word) {
			return repository.ErrAlreadyExists
		}
	}
	f.nextID++
	entry.ID = f.nextID
	entry.CreatedAt = time.Now()
	f.entries[entry.ID] = entry
	return nil
}

func (f *fakeVocabRepo) GetByID(_ context.Context, userID uuid.UUID, id int) (*repository.VocabEntry, error) {
	entry, ok := f.entries[id]
	if !ok || entry.UserID != userID {
		return nil, nil
	}
	return entry, nil
}

func (f *fakeVocabRepo) List(_ context.Context, userID uuid.UUID, search string) ([]repository.VocabEntry, error) {
	var entries []repository.VocabEntry
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Word), strings.ToLower(search)) {
			continue
		}
		entries = append(entries, *e)
	}
	return entries, nil
}

func (f *fakeVocabRepo) NextDue(_ context.Context, userID uuid.UUID, now time.Time) (*repository.VocabEntry, error) {
	var due *repository.VocabEntry
	for _, e := range f.entries {
		if e.UserID != userID || !e.SM2.Due(now) {
			continue
		}
		if due == nil || e.SM2.EaseFactor < due.SM2.EaseFactor {
			due = e
		}
	}
	return due, nil
}

func (f *fakeVocabRepo) UpdateSM2(_ context.Context, userID uuid.UUID, id int, state sm2.State) error {
	entry, ok := f.entries[id]
	if !ok || entry.UserID != userID {
		return repository.ErrNotFound
	}
	entry.SM2 = state
	return nil
}

func (f *fakeVocabRepo) Delete(_ context.Context, userID uuid.UUID, id int) error {
	entry, ok := f.entries[id]
	if !ok || entry.UserID != userID {
		return repository.ErrNotFound
	}
	delete(f.entries, id)
	return nil
}

func (f *fakeVocabRepo) DeleteAll(_ context.Context, userID uuid.UUID) error {
	for id, e := range f.entries {
		if e.UserID == userID {
			delete(f.entries, id)
		}
	}
	return nil
}

type fakeTranslator struct {
	calls int
	err   error
}

func (f *fakeTranslator) Translate(_ context.Context, text, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "translated:" + text, nil
}

func TestVocabularyServiceReview(t *testing.T) {
	repo := newFakeVocabRepo()
	svc := NewVocabularyService(repo, nil, zerolog.Nop())

	userID := uuid.New()
	entry := &repository.VocabEntry{
		UserID: userID,
		Word:   "Hund",
		SM2:    sm2.NewState(time.Now()),
	}
	if err := repo.Upsert(context.Background(), entry); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	updated, err := svc.Review(context.Background(), userID, entry.ID, sm2.QualityPerfect)
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if updated.SM2.Repetitions != 1 || updated.SM2.IntervalDays != 1 {
		t.Errorf("Review() state = reps %d interval %d, want 1/1",
			updated.SM2.Repetitions, updated.SM2.IntervalDays)
	}
	if repo.entries[entry.ID].SM2.Repetitions != 1 {
		t.Error("Review() did not persist the updated state")
	}
}

func TestVocabularyServiceReviewUnknownEntry(t *testing.T) {
	svc := NewVocabularyService(newFakeVocabRepo(), nil, zerolog.Nop())

	if _, err := svc.Review(context.Background(), uuid.New(), 42, sm2.QualityPerfect); err == nil {
		t.Error("Review() of unknown entry expected error, got nil")
	}
}

func TestVocabularyServiceExtractFromSentence(t *testing.T) {
	repo := newFakeVocabRepo()
	translator := &fakeTranslator{}
	svc := NewVocabularyService(repo, translator, zerolog.Nop())

	userID := uuid.New()
	stored := svc.ExtractFromSentence(context.Background(), userID, "Der Hund schläft im Garten.")
	if stored == 0 {
		t.Fatal("ExtractFromSentence() stored no words")
	}
	if translator.calls != stored {
		t.Errorf("translator calls = %d, want %d", translator.calls, stored)
	}

	entries, err := svc.List(context.Background(), userID, "")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != stored {
		t.Errorf("List() entries = %d, want %d", len(entries), stored)
	}
	for _, e := range entries {
		if e.Translation == "" {
			t.Errorf("entry %q has no translation", e.Word)
		}
	}

	// Repeated extraction stores nothing new.
	if again := svc.ExtractFromSentence(context.Background(), userID, "Der Hund schläft im Garten."); again != 0 {
		t.Errorf("repeated ExtractFromSentence() stored %d, want 0", again)
	}
}

func TestVocabularyServiceExtractTranslationFailure(t *testing.T) {
	repo := newFakeVocabRepo()
	translator := &fakeTranslator{err: fmt.Errorf("provider down")}
	svc := NewVocabularyService(repo, translator, zerolog.Nop())

	userID := uuid.New()
	stored := svc.ExtractFromSentence(context.Background(), userID, "Die Katze schläft.")
	if stored == 0 {
		t.Fatal("ExtractFromSentence() should store words even when translation fails")
	}

	entries, _ := svc.List(context.Background(), userID, "")
	for _, e := range entries {
		if e.Translation != "" {
			t.Errorf("entry %q unexpectedly has translation %q", e.Word, e.Translation)
		}
	}
}
