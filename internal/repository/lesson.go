package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floktl/XploreED-sub002/internal/client"
)

// Lesson is a unit of learning content. Content is an HTML fragment whose
// top-level blocks carry data-block-id attributes.
type Lesson struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	SkillLevel  int       `json:"skill_level"`
	Published   bool      `json:"published"`
	AIGenerated bool      `json:"ai_generated"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LessonRepository defines the interface for lesson data access.
type LessonRepository interface {
	Create(ctx context.Context, lesson *Lesson) error
	GetByID(ctx context.Context, id int) (*Lesson, error)
	List(ctx context.Context) ([]Lesson, error)
	ListPublished(ctx context.Context, maxSkillLevel int) ([]Lesson, error)
	Update(ctx context.Context, lesson *Lesson) error
	Delete(ctx context.Context, id int) error

	SetBlockProgress(ctx context.Context, userID uuid.UUID, lessonID int, blockID string, completed bool) error
	GetProgress(ctx context.Context, userID uuid.UUID, lessonID int) (map[string]bool, error)
}

const lessonColumns = `id, title, content, skill_level, published, ai_generated, created_at, updated_at`

// PostgresLessonRepository implements LessonRepository with PostgreSQL.
type PostgresLessonRepository struct {
	db *client.PostgresClient
}

// NewPostgresLessonRepository creates a new PostgresLessonRepository.
func NewPostgresLessonRepository(db *client.PostgresClient) *PostgresLessonRepository {
	return &PostgresLessonRepository{db: db}
}

// Create inserts a new lesson.
func (r *PostgresLessonRepository) Create(ctx context.Context, lesson *Lesson) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `
		INSERT INTO lessons (title, content, skill_level, published, ai_generated)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		lesson.Title,
		lesson.Content,
		lesson.SkillLevel,
		lesson.Published,
		lesson.AIGenerated,
	).Scan(&lesson.ID, &lesson.CreatedAt, &lesson.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// GetByID retrieves a lesson. Returns nil, nil when not found.
func (r *PostgresLessonRepository) GetByID(ctx context.Context, id int) (*Lesson, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	var l Lesson
	err := r.db.Pool.QueryRow(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id).Scan(
		&l.ID, &l.Title, &l.Content, &l.SkillLevel, &l.Published, &l.AIGenerated, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &l, nil
}

// List returns all lessons, newest first.
func (r *PostgresLessonRepository) List(ctx context.Context) ([]Lesson, error) {
	return r.list(ctx, `SELECT `+lessonColumns+` FROM lessons ORDER BY created_at DESC`)
}

// ListPublished returns published lessons at or below the given skill level.
func (r *PostgresLessonRepository) ListPublished(ctx context.Context, maxSkillLevel int) ([]Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE published AND skill_level <= $1 ORDER BY skill_level, created_at`
	return r.list(ctx, query, maxSkillLevel)
}

func (r *PostgresLessonRepository) list(ctx context.Context, query string, args ...interface{}) ([]Lesson, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	var lessons []Lesson
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.Title, &l.Content, &l.SkillLevel, &l.Published, &l.AIGenerated, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, nil
}

// Update replaces the mutable lesson fields.
func (r *PostgresLessonRepository) Update(ctx context.Context, lesson *Lesson) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `
		UPDATE lessons
		SET title = $2, content = $3, skill_level = $4, published = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.Pool.QueryRow(ctx, query,
		lesson.ID, lesson.Title, lesson.Content, lesson.SkillLevel, lesson.Published,
	).Scan(&lesson.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update lesson: %w", err)
	}
	return nil
}

// Delete removes a lesson; progress rows cascade.
func (r *PostgresLessonRepository) Delete(ctx context.Context, id int) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetBlockProgress upserts a per-block completion record.
func (r *PostgresLessonRepository) SetBlockProgress(ctx context.Context, userID uuid.UUID, lessonID int, blockID string, completed bool) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `
		INSERT INTO lesson_progress (user_id, lesson_id, block_id, completed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, lesson_id, block_id)
		DO UPDATE SET completed = EXCLUDED.completed, updated_at = now()
	`
	if _, err := r.db.Pool.Exec(ctx, query, userID, lessonID, blockID, completed); err != nil {
		return fmt.Errorf("failed to set block progress: %w", err)
	}
	return nil
}

// GetProgress returns the completion map block_id -> completed for a lesson.
func (r *PostgresLessonRepository) GetProgress(ctx context.Context, userID uuid.UUID, lessonID int) (map[string]bool, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	query := `SELECT block_id, completed FROM lesson_progress WHERE user_id = $1 AND lesson_id = $2`
	rows, err := r.db.Pool.Query(ctx, query, userID, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lesson progress: %w", err)
	}
	defer rows.Close()

	progress := make(map[string]bool)
	for rows.Next() {
		var blockID string
		var completed bool
		if err := rows.Scan(&blockID, &completed); err != nil {
			return nil, fmt.Errorf("failed to scan lesson progress: %w", err)
		}
		progress[blockID] = completed
	}
	return progress, nil
}
