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

// TopicMemory tracks a user's command of one grammar topic via SM-2.
type TopicMemory struct {
	ID         int       `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Topic      string    `json:"topic"`
	SkillLevel int       `json:"skill_level"`
	SM2        sm2.State `json:"sm2"`
}

// TopicMemoryRepository defines the interface for topic memory data access.
type TopicMemoryRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID, topic string, skillLevel int, now time.Time) (*TopicMemory, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int) (*TopicMemory, error)
	List(ctx context.Context, userID uuid.UUID) ([]TopicMemory, error)
	Weakest(ctx context.Context, userID uuid.UUID, limit int) ([]TopicMemory, error)
	UpdateSM2(ctx context.Context, userID uuid.UUID, id int, state sm2.State) error
}

const topicColumns = `id, user_id, topic, skill_level, ease_factor, interval_days, repetitions, next_review, last_quality`

// PostgresTopicMemoryRepository implements TopicMemoryRepository.
type PostgresTopicMemoryRepository struct {
	db *client.PostgresClient
}

// NewPostgresTopicMemoryRepository creates a new PostgresTopicMemoryRepository.
func NewPostgresTopicMemoryRepository(db *client.PostgresClient) *PostgresTopicMemoryRepository {
	return &PostgresTopicMemoryRepository{db: db}
}

// GetOrCreate returns the row for (user, topic), inserting a fresh SM-2 state
// when the topic has never been seen.
func (r *PostgresTopicMemoryRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, topic string, skillLevel int, now time.Time) (*TopicMemory, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	fresh := sm2.NewState(now)
	query := `
		INSERT INTO topic_memory (user_id, topic, skill_level, ease_factor, interval_days, repetitions, next_review, last_quality)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, topic) DO UPDATE SET topic = EXCLUDED.topic
		RETURNING ` + topicColumns

	return r.scanOne(r.db.Pool.QueryRow(ctx, query,
		userID, topic, skillLevel,
		fresh.EaseFactor, fresh.IntervalDays, fresh.Repetitions, fresh.NextReview, int(fresh.LastQuality),
	))
}

// GetByID returns one of the user's topic rows. Returns nil, nil when not found.
func (r *PostgresTopicMemoryRepository) GetByID(ctx context.Context, userID uuid.UUID, id int) (*TopicMemory, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	query := `SELECT ` + topicColumns + ` FROM topic_memory WHERE user_id = $1 AND id = $2`
	tm, err := r.scanOne(r.db.Pool.QueryRow(ctx, query, userID, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return tm, err
}

func (r *PostgresTopicMemoryRepository) scanOne(row pgx.Row) (*TopicMemory, error) {
	var tm TopicMemory
	var lastQuality int
	err := row.Scan(
		&tm.ID, &tm.UserID, &tm.Topic, &tm.SkillLevel,
		&tm.SM2.EaseFactor, &tm.SM2.IntervalDays, &tm.SM2.Repetitions, &tm.SM2.NextReview, &lastQuality,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan topic memory: %w", err)
	}
	tm.SM2.LastQuality = sm2.Quality(lastQuality)
	return &tm, nil
}

// List returns all topic rows for a user.
func (r *PostgresTopicMemoryRepository) List(ctx context.Context, userID uuid.UUID) ([]TopicMemory, error) {
	query := `SELECT ` + topicColumns + ` FROM topic_memory WHERE user_id = $1 ORDER BY topic`
	return r.list(ctx, query, userID)
}

// Weakest returns the user's topics with the lowest ease factor first.
func (r *PostgresTopicMemoryRepository) Weakest(ctx context.Context, userID uuid.UUID, limit int) ([]TopicMemory, error) {
	query := `SELECT ` + topicColumns + ` FROM topic_memory WHERE user_id = $1 ORDER BY ease_factor, next_review LIMIT $2`
	return r.list(ctx, query, userID, limit)
}

func (r *PostgresTopicMemoryRepository) list(ctx context.Context, query string, args ...interface{}) ([]TopicMemory, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query topic memory: %w", err)
	}
	defer rows.Close()

	var topics []TopicMemory
	for rows.Next() {
		var tm TopicMemory
		var lastQuality int
		if err := rows.Scan(
			&tm.ID, &tm.UserID, &tm.Topic, &tm.SkillLevel,
			&tm.SM2.EaseFactor, &tm.SM2.IntervalDays, &tm.SM2.Repetitions, &tm.SM2.NextReview, &lastQuality,
		); err != nil {
			return nil, fmt.Errorf("failed to scan topic memory: %w", err)
		}
		tm.SM2.LastQuality = sm2.Quality(lastQuality)
		topics = append(topics, tm)
	}
	return topics, nil
}

// UpdateSM2 writes back the review state after an SM-2 update.
func (r *PostgresTopicMemoryRepository) UpdateSM2(ctx context.Context, userID uuid.UUID, id int, state sm2.State) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `
		UPDATE topic_memory
		SET ease_factor = $3, interval_days = $4, repetitions = $5, next_review = $6, last_quality = $7
		WHERE user_id = $1 AND id = $2
	`
	tag, err := r.db.Pool.Exec(ctx, query, userID, id,
		state.EaseFactor, state.IntervalDays, state.Repetitions, state.NextReview, int(state.LastQuality))
	if err != nil {
		return fmt.Errorf("failed to update topic memory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
