package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floktl/XploreED-sub002/internal/client"
)

// Exercise types stored in exercise_blocks.exercises.
const (
	ExerciseGapFill   = "gap-fill"
	ExerciseTranslate = "translate"
	ExerciseOrder     = "order"
)

// Exercise is a single task inside a block, stored as JSONB.
type Exercise struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"`
	Question    string   `json:"question"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer"`
	Topic       string   `json:"topic,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

// ExerciseBlock groups exercises around a topic at a skill level.
type ExerciseBlock struct {
	ID          uuid.UUID       `json:"id"`
	UserID      *uuid.UUID      `json:"user_id,omitempty"`
	LessonID    *int            `json:"lesson_id,omitempty"`
	Topic       string          `json:"topic"`
	SkillLevel  int             `json:"skill_level"`
	Exercises   json.RawMessage `json:"exercises"`
	AIGenerated bool            `json:"ai_generated"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ParseExercises decodes the JSONB exercise list.
func (b *ExerciseBlock) ParseExercises() ([]Exercise, error) {
	var exercises []Exercise
	if err := json.Unmarshal(b.Exercises, &exercises); err != nil {
		return nil, fmt.Errorf("failed to parse exercises: %w", err)
	}
	return exercises, nil
}

// ExerciseResult records one graded submission.
type ExerciseResult struct {
	ID        int             `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	BlockID   uuid.UUID       `json:"block_id"`
	Score     int             `json:"score"`
	MaxScore  int             `json:"max_score"`
	Details   json.RawMessage `json:"details,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// ExerciseRepository defines the interface for exercise data access.
type ExerciseRepository interface {
	CreateBlock(ctx context.Context, block *ExerciseBlock) error
	GetBlock(ctx context.Context, id uuid.UUID) (*ExerciseBlock, error)
	GetLatestBlockForUser(ctx context.Context, userID uuid.UUID) (*ExerciseBlock, error)
	ListBlocks(ctx context.Context) ([]ExerciseBlock, error)
	DeleteBlock(ctx context.Context, id uuid.UUID) error

	SaveResult(ctx context.Context, result *ExerciseResult) error
	ListResultsForUser(ctx context.Context, userID uuid.UUID) ([]ExerciseResult, error)
}

const blockColumns = `id, user_id, lesson_id, topic, skill_level, exercises, ai_generated, created_at`

// PostgresExerciseRepository implements ExerciseRepository.
type PostgresExerciseRepository struct {
	db *client.PostgresClient
}

// NewPostgresExerciseRepository creates a new PostgresExerciseRepository.
func NewPostgresExerciseRepository(db *client.PostgresClient) *PostgresExerciseRepository {
	return &PostgresExerciseRepository{db: db}
}

// CreateBlock inserts a new exercise block.
func (r *PostgresExerciseRepository) CreateBlock(ctx context.Context, block *ExerciseBlock) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `
		INSERT INTO exercise_blocks (user_id, lesson_id, topic, skill_level, exercises, ai_generated)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		block.UserID,
		block.LessonID,
		block.Topic,
		block.SkillLevel,
		block.Exercises,
		block.AIGenerated,
	).Scan(&block.ID, &block.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create exercise block: %w", err)
	}
	return nil
}

// GetBlock retrieves a block by ID. Returns nil, nil when not found.
func (r *PostgresExerciseRepository) GetBlock(ctx context.Context, id uuid.UUID) (*ExerciseBlock, error) {
	return r.getOne(ctx, `SELECT `+blockColumns+` FROM exercise_blocks WHERE id = $1`, id)
}

// GetLatestBlockForUser returns the user's most recent block, or nil, nil.
func (r *PostgresExerciseRepository) GetLatestBlockForUser(ctx context.Context, userID uuid.UUID) (*ExerciseBlock, error) {
	query := `SELECT ` + blockColumns + ` FROM exercise_blocks WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	return r.getOne(ctx, query, userID)
}

func (r *PostgresExerciseRepository) getOne(ctx context.Context, query string, arg interface{}) (*ExerciseBlock, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	var b ExerciseBlock
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&b.ID, &b.UserID, &b.LessonID, &b.Topic, &b.SkillLevel, &b.Exercises, &b.AIGenerated, &b.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exercise block: %w", err)
	}
	return &b, nil
}

// ListBlocks returns all blocks, newest first.
func (r *PostgresExerciseRepository) ListBlocks(ctx context.Context) ([]ExerciseBlock, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	rows, err := r.db.Pool.Query(ctx, `SELECT `+blockColumns+` FROM exercise_blocks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercise blocks: %w", err)
	}
	defer rows.Close()

	var blocks []ExerciseBlock
	for rows.Next() {
		var b ExerciseBlock
		if err := rows.Scan(&b.ID, &b.UserID, &b.LessonID, &b.Topic, &b.SkillLevel, &b.Exercises, &b.AIGenerated, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exercise block: %w", err)
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// DeleteBlock removes a block; results cascade.
func (r *PostgresExerciseRepository) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM exercise_blocks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete exercise block: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveResult records a graded submission.
func (r *PostgresExerciseRepository) SaveResult(ctx context.Context, result *ExerciseResult) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `
		INSERT INTO exercise_results (user_id, block_id, score, max_score, details)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		result.UserID, result.BlockID, result.Score, result.MaxScore, result.Details,
	).Scan(&result.ID, &result.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save exercise result: %w", err)
	}
	return nil
}

// ListResultsForUser returns a user's results, newest first.
func (r *PostgresExerciseRepository) ListResultsForUser(ctx context.Context, userID uuid.UUID) ([]ExerciseResult, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	query := `
		SELECT id, user_id, block_id, score, max_score, details, created_at
		FROM exercise_results
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercise results: %w", err)
	}
	defer rows.Close()

	var results []ExerciseResult
	for rows.Next() {
		var res ExerciseResult
		if err := rows.Scan(&res.ID, &res.UserID, &res.BlockID, &res.Score, &res.MaxScore, &res.Details, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exercise result: %w", err)
		}
		results = append(results, res)
	}
	return results, nil
}
