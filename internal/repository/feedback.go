package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/floktl/XploreED-sub002/internal/client"
)

// SupportFeedback is a free-text message a user left for the maintainers.
type SupportFeedback struct {
	ID        int        `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}

// FeedbackRepository defines the interface for support feedback storage.
type FeedbackRepository interface {
	Create(ctx context.Context, fb *SupportFeedback) error
	List(ctx context.Context) ([]SupportFeedback, error)
}

// PostgresFeedbackRepository implements FeedbackRepository.
type PostgresFeedbackRepository struct {
	db *client.PostgresClient
}

// NewPostgresFeedbackRepository creates a new PostgresFeedbackRepository.
func NewPostgresFeedbackRepository(db *client.PostgresClient) *PostgresFeedbackRepository {
	return &PostgresFeedbackRepository{db: db}
}

// Create stores a feedback message.
func (r *PostgresFeedbackRepository) Create(ctx context.Context, fb *SupportFeedback) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `INSERT INTO support_feedback (user_id, message) VALUES ($1, $2) RETURNING id, created_at`
	err := r.db.Pool.QueryRow(ctx, query, fb.UserID, fb.Message).Scan(&fb.ID, &fb.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// List returns all feedback, newest first.
func (r *PostgresFeedbackRepository) List(ctx context.Context) ([]SupportFeedback, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	query := `SELECT id, user_id, message, created_at FROM support_feedback ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback: %w", err)
	}
	defer rows.Close()

	var items []SupportFeedback
	for rows.Next() {
		var fb SupportFeedback
		if err := rows.Scan(&fb.ID, &fb.UserID, &fb.Message, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		items = append(items, fb)
	}
	return items, nil
}
