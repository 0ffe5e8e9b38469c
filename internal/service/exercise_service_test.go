package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/repository"
	"github.com/floktl/XploreED-sub002/pkg/sm2"
)

type fakeExerciseRepo struct {
	blocks  map[uuid.UUID]*repository.ExerciseBlock
	results []repository.ExerciseResult
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{blocks: make(map[uuid.UUID]*repository.ExerciseBlock)}
}

func (f *fakeExerciseRepo) CreateBlock(_ context.Context, block *repository.ExerciseBlock) error {
	block.ID = uuid.New()
	block.CreatedAt = time.Now()
	f.blocks[block.ID] = block
	return nil
}

func (f *fakeExerciseRepo) GetBlock(_ context.Context, id uuid.UUID) (*repository.ExerciseBlock, error) {
	return f.blocks[id], nil
}

func (f *fakeExerciseRepo) GetLatestBlockForUser(_ context.Context, userID uuid.UUID) (*repository.ExerciseBlock, error) {
	var latest *repository.ExerciseBlock
	for _, b := range f.blocks {
		if b.UserID == nil || *b.UserID != userID {
			continue
		}
		if latest == nil || b.CreatedAt.After(latest.CreatedAt) {
			latest = b
		}
	}
	return latest, nil
}

func (f *fakeExerciseRepo) ListBlocks(_ context.Context) ([]repository.ExerciseBlock, error) {
	var blocks []repository.ExerciseBlock
	for _, b := range f.blocks {
		blocks = append(blocks, *b)
	}
	return blocks, nil
}

func (f *fakeExerciseRepo) DeleteBlock(_ context.Context, id uuid.UUID) error {
	if _, ok := f.blocks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.blocks, id)
	return nil
}

func (f *fakeExerciseRepo) SaveResult(_ context.Context, result *repository.ExerciseResult) error {
	result.ID = len(f.results) + 1
	result.CreatedAt = time.Now()
	f.results = append(f.results, *result)
	return nil
}

func (f *fakeExerciseRepo) ListResultsForUser(_ context.Context, userID uuid.UUID) ([]repository.ExerciseResult, error) {
	var results []repository.ExerciseResult
	for _, r := range f.results {
		if r.UserID == userID {
			results = append(results, r)
		}
	}
	return results, nil
}

type fakeTopicRepo struct {
	rows   map[string]*repository.TopicMemory
	nextID int
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{rows: make(map[string]*repository.TopicMemory)}
}

func (f *fakeTopicRepo) GetOrCreate(_ context.Context, userID uuid.UUID, topic string, skillLevel int, now time.Time) (*repository.TopicMemory, error) {
	if tm, ok := f.rows[topic]; ok {
		return tm, nil
	}
	f.nextID++
	tm := &repository.TopicMemory{
		ID:         f.nextID,
		UserID:     userID,
		Topic:      topic,
		SkillLevel: skillLevel,
		SM2:        sm2.NewState(now),
	}
	f.rows[topic] = tm
	return tm, nil
}

func (f *fakeTopicRepo) GetByID(_ context.Context, _ uuid.UUID, id int) (*repository.TopicMemory, error) {
	for _, tm := range f.rows {
		if tm.ID == id {
			return tm, nil
		}
	}
	return nil, nil
}

func (f *fakeTopicRepo) List(_ context.Context, _ uuid.UUID) ([]repository.TopicMemory, error) {
	var topics []repository.TopicMemory
	for _, tm := range f.rows {
		topics = append(topics, *tm)
	}
	return topics, nil
}

func (f *fakeTopicRepo) Weakest(_ context.Context, _ uuid.UUID, limit int) ([]repository.TopicMemory, error) {
	topics, _ := f.List(context.Background(), uuid.Nil)
	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics, nil
}

func (f *fakeTopicRepo) UpdateSM2(_ context.Context, _ uuid.UUID, id int, state sm2.State) error {
	for _, tm := range f.rows {
		if tm.ID == id {
			tm.SM2 = state
			return nil
		}
	}
	return repository.ErrNotFound
}

func newTestBlock(t *testing.T, repo *fakeExerciseRepo, userID uuid.UUID) *repository.ExerciseBlock {
	t.Helper()

	exercises := []repository.Exercise{
		{ID: "ex-1", Type: repository.ExerciseGapFill, Question: "Ich ___ ein Buch.", Options: []string{"lese", "liest", "lesen"}, Answer: "lese", Topic: "present tense"},
		{ID: "ex-2", Type: repository.ExerciseTranslate, Question: "The dog is big.", Answer: "Der Hund ist groß.", Topic: "adjectives"},
		{ID: "ex-3", Type: repository.ExerciseOrder, Question: "gehe / ich / heute / schwimmen", Answer: "Ich gehe heute schwimmen.", Topic: "word order"},
	}
	raw, err := json.Marshal(exercises)
	if err != nil {
		t.Fatalf("marshal exercises: %v", err)
	}

	block := &repository.ExerciseBlock{
		UserID:     &userID,
		Topic:      "mixed practice",
		SkillLevel: 2,
		Exercises:  raw,
	}
	if err := repo.CreateBlock(context.Background(), block); err != nil {
		t.Fatalf("create block: %v", err)
	}
	return block
}

func TestExerciseServiceSubmit(t *testing.T) {
	repo := newFakeExerciseRepo()
	topicRepo := newFakeTopicRepo()
	svc := NewExerciseService(repo, nil, NewTopicMemoryService(topicRepo), nil, zerolog.Nop())

	userID := uuid.New()
	block := newTestBlock(t, repo, userID)

	resp, err := svc.Submit(context.Background(), userID, block.ID, 2, SubmitRequest{
		Answers: map[string]string{
			"ex-1": "lese",
			"ex-2": "Der Hund ist gross.", // umlaut folding accepts this
		},
		Tokens: map[string][]string{
			"ex-3": {"Ich", "heute", "gehe", "schwimmen"}, // wrong order
		},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if resp.Score != 2 || resp.MaxScore != 3 {
		t.Errorf("Submit() score = %d/%d, want 2/3", resp.Score, resp.MaxScore)
	}
	wantCorrect := map[string]bool{"ex-1": true, "ex-2": true, "ex-3": false}
	for _, outcome := range resp.Outcomes {
		if outcome.Correct != wantCorrect[outcome.ExerciseID] {
			t.Errorf("outcome %s correct = %v, want %v", outcome.ExerciseID, outcome.Correct, wantCorrect[outcome.ExerciseID])
		}
	}

	if len(repo.results) != 1 {
		t.Fatalf("saved results = %d, want 1", len(repo.results))
	}
	if repo.results[0].Score != 2 {
		t.Errorf("saved score = %d, want 2", repo.results[0].Score)
	}
}

func TestExerciseServiceSubmitUpdatesTopicMemory(t *testing.T) {
	repo := newFakeExerciseRepo()
	topicRepo := newFakeTopicRepo()
	svc := NewExerciseService(repo, nil, NewTopicMemoryService(topicRepo), nil, zerolog.Nop())

	userID := uuid.New()
	block := newTestBlock(t, repo, userID)

	_, err := svc.Submit(context.Background(), userID, block.ID, 2, SubmitRequest{
		Answers: map[string]string{"ex-1": "lese", "ex-2": "etwas völlig anderes"},
		Tokens:  map[string][]string{"ex-3": {"Ich", "gehe", "heute", "schwimmen"}},
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	passed, ok := topicRepo.rows["present tense"]
	if !ok {
		t.Fatal("no topic memory row for passed topic")
	}
	if passed.SM2.LastQuality != sm2.QualityPerfect || passed.SM2.Repetitions != 1 {
		t.Errorf("passed topic state = quality %d reps %d, want quality 5 reps 1",
			passed.SM2.LastQuality, passed.SM2.Repetitions)
	}

	failed, ok := topicRepo.rows["adjectives"]
	if !ok {
		t.Fatal("no topic memory row for failed topic")
	}
	if failed.SM2.LastQuality != sm2.QualityIncorrectFamiliar || failed.SM2.Repetitions != 0 {
		t.Errorf("failed topic state = quality %d reps %d, want quality 2 reps 0",
			failed.SM2.LastQuality, failed.SM2.Repetitions)
	}
}

func TestExerciseServiceSubmitWrongUser(t *testing.T) {
	repo := newFakeExerciseRepo()
	svc := NewExerciseService(repo, nil, nil, nil, zerolog.Nop())

	owner := uuid.New()
	block := newTestBlock(t, repo, owner)

	_, err := svc.Submit(context.Background(), uuid.New(), block.ID, 2, SubmitRequest{})
	if err == nil {
		t.Fatal("Submit() with foreign block expected error, got nil")
	}
}

func TestExerciseServiceGetOrCreateNextReturnsExisting(t *testing.T) {
	repo := newFakeExerciseRepo()
	svc := NewExerciseService(repo, nil, nil, nil, zerolog.Nop())

	userID := uuid.New()
	block := newTestBlock(t, repo, userID)

	got, err := svc.GetOrCreateNext(context.Background(), userID, 2)
	if err != nil {
		t.Fatalf("GetOrCreateNext() error = %v", err)
	}
	if got.ID != block.ID {
		t.Errorf("GetOrCreateNext() block = %s, want %s", got.ID, block.ID)
	}
}

func TestValidateExercises(t *testing.T) {
	tests := []struct {
		name      string
		exercises []repository.Exercise
		wantErr   bool
	}{
		{
			name: "valid block",
			exercises: []repository.Exercise{
				{Type: repository.ExerciseGapFill, Question: "Ich ___.", Answer: "lese"},
			},
		},
		{
			name:      "empty block",
			exercises: nil,
			wantErr:   true,
		},
		{
			name: "unknown type",
			exercises: []repository.Exercise{
				{Type: "multiple-choice", Question: "q", Answer: "a"},
			},
			wantErr: true,
		},
		{
			name: "missing answer",
			exercises: []repository.Exercise{
				{Type: repository.ExerciseTranslate, Question: "q"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateExercises(tt.exercises)
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateExercises() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got[0].ID == "" {
				t.Error("validateExercises() did not assign an ID")
			}
		})
	}
}
