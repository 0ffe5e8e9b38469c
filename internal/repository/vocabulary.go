package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floktl/XploreED-sub002/internal/client"
	"github.com/floktl/XploreED-sub002/pkg/sm2"
)

// VocabEntry is one word in a user's vocabulary together with its
// spaced-repetition state.
type VocabEntry struct {
	ID          int       `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Word        string    `json:"word"`
	Article     string    `json:"article,omitempty"`
	Translation string    `json:"translation,omitempty"`
	WordType    string    `json:"word_type,omitempty"`
	Context     string    `json:"context,omitempty"`
	SM2         sm2.State `json:"sm2"`
	CreatedAt   time.Time `json:"created_at"`
}

// VocabularyRepository defines the interface for vocabulary data access.
type VocabularyRepository interface {
	Upsert(ctx context.Context, entry *VocabEntry) error
	GetByID(ctx context.Context, userID uuid.UUID, id int) (*VocabEntry, error)
	List(ctx context.Context, userID uuid.UUID, search string) ([]VocabEntry, error)
	NextDue(ctx context.Context, userID uuid.UUID, now time.Time) (*VocabEntry, error)
	UpdateSM2(ctx context.Context, userID uuid.UUID, id int, state sm2.State) error
	Delete(ctx context.Context, userID uuid.UUID, id int) error
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}

const vocabColumns = `id, user_id, word, article, translation, word_type, context,
	ease_factor, interval_days, repetitions, next_review, last_quality, created_at`

// PostgresVocabularyRepository implements VocabularyRepository.
type PostgresVocabularyRepository struct {
	db *client.PostgresClient
}

// NewPostgresVocabularyRepository creates a new PostgresVocabularyRepository.
func NewPostgresVocabularyRepository(db *client.PostgresClient) *PostgresVocabularyRepository {
	return &PostgresVocabularyRepository{db: db}
}

// Upsert inserts a vocabulary entry, leaving the existing row (and its review
// state) untouched when the user already has the word.
func (r *PostgresVocabularyRepository) Upsert(ctx context.Context, entry *VocabEntry) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `
		INSERT INTO vocabulary (user_id, word, article, translation, word_type, context,
			ease_factor, interval_days, repetitions, next_review, last_quality)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, word) DO NOTHING
		RETURNING id, created_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		entry.UserID, entry.Word, entry.Article, entry.Translation, entry.WordType, entry.Context,
		entry.SM2.EaseFactor, entry.SM2.IntervalDays, entry.SM2.Repetitions, entry.SM2.NextReview, int(entry.SM2.LastQuality),
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to upsert vocabulary entry: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's entries. Returns nil, nil when not found.
func (r *PostgresVocabularyRepository) GetByID(ctx context.Context, userID uuid.UUID, id int) (*VocabEntry, error) {
	query := `SELECT ` + vocabColumns + ` FROM vocabulary WHERE user_id = $1 AND id = $2`
	return r.getOne(ctx, query, userID, id)
}

// NextDue returns the due entry with the earliest next_review, or nil, nil.
func (r *PostgresVocabularyRepository) NextDue(ctx context.Context, userID uuid.UUID, now time.Time) (*VocabEntry, error) {
	query := `
		SELECT ` + vocabColumns + `
		FROM vocabulary
		WHERE user_id = $1 AND next_review <= $2
		ORDER BY repetitions = 0 DESC, ease_factor, next_review
		LIMIT 1
	`
	return r.getOne(ctx, query, userID, now)
}

func (r *PostgresVocabularyRepository) getOne(ctx context.Context, query string, args ...interface{}) (*VocabEntry, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	var e VocabEntry
	var lastQuality int
	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(
		&e.ID, &e.UserID, &e.Word, &e.Article, &e.Translation, &e.WordType, &e.Context,
		&e.SM2.EaseFactor, &e.SM2.IntervalDays, &e.SM2.Repetitions, &e.SM2.NextReview, &lastQuality, &e.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vocabulary entry: %w", err)
	}
	e.SM2.LastQuality = sm2.Quality(lastQuality)
	return &e, nil
}

// List returns the user's vocabulary, optionally filtered by a substring match
// on the word or its translation.
func (r *PostgresVocabularyRepository) List(ctx context.Context, userID uuid.UUID, search string) ([]VocabEntry, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	query := `SELECT ` + vocabColumns + ` FROM vocabulary WHERE user_id = $1`
	args := []interface{}{userID}
	if search != "" {
		query += ` AND (word ILIKE '%' || $2 || '%' OR translation ILIKE '%' || $2 || '%')`
		args = append(args, search)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vocabulary: %w", err)
	}
	defer rows.Close()

	var entries []VocabEntry
	for rows.Next() {
		var e VocabEntry
		var lastQuality int
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Word, &e.Article, &e.Translation, &e.WordType, &e.Context,
			&e.SM2.EaseFactor, &e.SM2.IntervalDays, &e.SM2.Repetitions, &e.SM2.NextReview, &lastQuality, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vocabulary entry: %w", err)
		}
		e.SM2.LastQuality = sm2.Quality(lastQuality)
		entries = append(entries, e)
	}
	return entries, nil
}

// UpdateSM2 writes back the review state after an SM-2 update.
func (r *PostgresVocabularyRepository) UpdateSM2(ctx context.Context, userID uuid.UUID, id int, state sm2.State) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `
		UPDATE vocabulary
		SET ease_factor = $3, interval_days = $4, repetitions = $5, next_review = $6, last_quality = $7
		WHERE user_id = $1 AND id = $2
	`
	tag, err := r.db.Pool.Exec(ctx, query, userID, id,
		state.EaseFactor, state.IntervalDays, state.Repetitions, state.NextReview, int(state.LastQuality))
	if err != nil {
		return fmt.Errorf("failed to update vocabulary review state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one entry.
func (r *PostgresVocabularyRepository) Delete(ctx context.Context, userID uuid.UUID, id int) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM vocabulary WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete vocabulary entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes the user's entire vocabulary.
func (r *PostgresVocabularyRepository) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM vocabulary WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete vocabulary: %w", err)
	}
	return nil
}
