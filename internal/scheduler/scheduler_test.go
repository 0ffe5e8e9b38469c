package scheduler

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/repository"
)

type fakeSessionRepo struct {
	expired int64
	calls   int
	err     error
}

func (f *fakeSessionRepo) Create(context.Context, *repository.Session) error { return nil }

func (f *fakeSessionRepo) GetByToken(context.Context, uuid.UUID) (*repository.Session, error) {
	return nil, nil
}

func (f *fakeSessionRepo) Delete(context.Context, uuid.UUID) error { return nil }

func (f *fakeSessionRepo) DeleteByUser(context.Context, uuid.UUID) error { return nil }

func (f *fakeSessionRepo) DeleteExpired(context.Context) (int64, error) {
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	deleted := f.expired
	f.expired = 0
	return deleted, nil
}

func TestSweepSessionsDeletesExpired(t *testing.T) {
	repo := &fakeSessionRepo{expired: 3}
	s := New(repo, zerolog.Nop())

	s.sweepSessions()
	if repo.calls != 1 {
		t.Errorf("DeleteExpired calls = %d, want 1", repo.calls)
	}
	if repo.expired != 0 {
		t.Errorf("expired rows remaining = %d, want 0", repo.expired)
	}
}

func TestSweepSessionsSurvivesRepositoryError(t *testing.T) {
	repo := &fakeSessionRepo{err: fmt.Errorf("connection refused")}
	s := New(repo, zerolog.Nop())

	// Must not panic; the next run retries.
	s.sweepSessions()
	s.sweepSessions()
	if repo.calls != 2 {
		t.Errorf("DeleteExpired calls = %d, want 2", repo.calls)
	}
}
