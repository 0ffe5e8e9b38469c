// Package scheduler runs periodic background maintenance jobs.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/repository"
)

const (
	sessionSweepInterval = 1 * time.Hour
	jobTimeout           = 30 * time.Second
)

// Scheduler owns the background jobs, currently the hourly sweep of expired
// session rows.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	sessionRepo repository.SessionRepository
	logger      zerolog.Logger
}

// New creates a new Scheduler.
func New(sessionRepo repository.SessionRepository, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		sessionRepo: sessionRepo,
		logger:      logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start schedules the jobs and runs them asynchronously.
func (s *Scheduler) Start() {
	if _, err := s.scheduler.Every(sessionSweepInterval).Do(s.sweepSessions); err != nil {
		s.logger.Error().Err(err).Msg("Failed to schedule session sweep")
	}
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled jobs.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sweepSessions deletes session rows past their expiry so the table does not
// grow without bound.
func (s *Scheduler) sweepSessions() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	deleted, err := s.sessionRepo.DeleteExpired(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sweep expired sessions")
		return
	}
	if deleted > 0 {
		s.logger.Info().Int64("deleted", deleted).Msg("Swept expired sessions")
	}
}
