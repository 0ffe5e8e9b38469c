package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/floktl/XploreED-sub002/internal/client"
)

// Session is a login session identified by a UUID token.
type Session struct {
	Token     uuid.UUID `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// SessionRepository defines the interface for session data access.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetByToken(ctx context.Context, token uuid.UUID) (*Session, error)
	Delete(ctx context.Context, token uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// PostgresSessionRepository implements SessionRepository with PostgreSQL.
type PostgresSessionRepository struct {
	db *client.PostgresClient
}

// NewPostgresSessionRepository creates a new PostgresSessionRepository.
func NewPostgresSessionRepository(db *client.PostgresClient) *PostgresSessionRepository {
	return &PostgresSessionRepository{db: db}
}

// Create inserts a new session.
func (r *PostgresSessionRepository) Create(ctx context.Context, session *Session) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	query := `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	err := r.db.Pool.QueryRow(ctx, query, session.Token, session.UserID, session.ExpiresAt).
		Scan(&session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByToken retrieves a session by token. Returns nil, nil when not found.
func (r *PostgresSessionRepository) GetByToken(ctx context.Context, token uuid.UUID) (*Session, error) {
	if r.db == nil || r.db.Pool == nil {
		return nil, fmt.Errorf("database not configured")
	}

	query := `
		SELECT token, user_id, created_at, expires_at
		FROM sessions
		WHERE token = $1
	`
	var s Session
	err := r.db.Pool.QueryRow(ctx, query, token).Scan(&s.Token, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// Delete removes a session.
func (r *PostgresSessionRepository) Delete(ctx context.Context, token uuid.UUID) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByUser removes all sessions for a user.
func (r *PostgresSessionRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	if r.db == nil || r.db.Pool == nil {
		return fmt.Errorf("database not configured")
	}

	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// DeleteExpired removes expired sessions and returns how many were deleted.
func (r *PostgresSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if r.db == nil || r.db.Pool == nil {
		return 0, fmt.Errorf("database not configured")
	}

	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
