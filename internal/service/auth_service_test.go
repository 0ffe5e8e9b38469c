package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/floktl/XploreED-sub002/internal/repository"
)

type fakeUserRepo struct {
	users map[uuid.UUID]*repository.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*repository.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *repository.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*repository.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]repository.User, error) {
	var users []repository.User
	for _, u := range f.users {
		users = append(users, *u)
	}
	return users, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeUserRepo) UpdateSkillLevel(_ context.Context, id uuid.UUID, skillLevel int) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.SkillLevel = skillLevel
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*repository.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*repository.Session)}
}

func (f *fakeSessionRepo) Create(_ context.Context, session *repository.Session) error {
	session.CreatedAt = time.Now()
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeSessionRepo) GetByToken(_ context.Context, token uuid.UUID) (*repository.Session, error) {
	return f.sessions[token], nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, token uuid.UUID) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessionRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	for token, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, token)
		}
	}
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	now := time.Now()
	var n int64
	for token, s := range f.sessions {
		if s.Expired(now) {
			delete(f.sessions, token)
			n++
		}
	}
	return n, nil
}

func newTestAuthService() (*AuthService, *fakeUserRepo, *fakeSessionRepo) {
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	return NewAuthService(userRepo, sessionRepo, nil, time.Hour), userRepo, sessionRepo
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	svc, _, sessionRepo := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterReq{Username: "anna", Password: "geheim1234"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if reg.Token == "" {
		t.Fatal("Register() returned no token")
	}
	if reg.User.Role != "user" {
		t.Errorf("Register() role = %q, want user", reg.User.Role)
	}
	if len(sessionRepo.sessions) != 1 {
		t.Errorf("sessions after register = %d, want 1", len(sessionRepo.sessions))
	}

	login, err := svc.Login(ctx, LoginReq{Username: "anna", Password: "geheim1234"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if login.User.ID != reg.User.ID {
		t.Error("Login() returned a different user")
	}

	if _, err := svc.Login(ctx, LoginReq{Username: "anna", Password: "falsch12345"}); err == nil {
		t.Error("Login() with wrong password expected error, got nil")
	}
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterReq
	}{
		{"short username", RegisterReq{Username: "ab", Password: "geheim1234"}},
		{"short password", RegisterReq{Username: "anna", Password: "kurz"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.req); err == nil {
				t.Error("Register() expected validation error, got nil")
			}
		})
	}

	if _, err := svc.Register(ctx, RegisterReq{Username: "anna", Password: "geheim1234"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := svc.Register(ctx, RegisterReq{Username: "anna", Password: "geheim1234"}); err == nil {
		t.Error("Register() with taken username expected conflict, got nil")
	}
}

func TestAuthServiceValidateToken(t *testing.T) {
	svc, _, sessionRepo := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterReq{Username: "anna", Password: "geheim1234"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := svc.ValidateToken(ctx, reg.Token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if user.ID != reg.User.ID {
		t.Error("ValidateToken() resolved wrong user")
	}

	if _, err := svc.ValidateToken(ctx, "not-a-uuid"); err == nil {
		t.Error("ValidateToken() with malformed token expected error, got nil")
	}
	if _, err := svc.ValidateToken(ctx, uuid.New().String()); err == nil {
		t.Error("ValidateToken() with unknown token expected error, got nil")
	}

	// Expired sessions are rejected.
	token := uuid.MustParse(reg.Token)
	sessionRepo.sessions[token].ExpiresAt = time.Now().Add(-time.Minute)
	if _, err := svc.ValidateToken(ctx, reg.Token); err == nil {
		t.Error("ValidateToken() with expired session expected error, got nil")
	}
}

func TestAuthServiceLogout(t *testing.T) {
	svc, _, sessionRepo := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterReq{Username: "anna", Password: "geheim1234"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.Logout(ctx, reg.Token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if len(sessionRepo.sessions) != 0 {
		t.Errorf("sessions after logout = %d, want 0", len(sessionRepo.sessions))
	}
	if _, err := svc.ValidateToken(ctx, reg.Token); err == nil {
		t.Error("ValidateToken() after logout expected error, got nil")
	}
}

func TestAuthServiceChangePassword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterReq{Username: "anna", Password: "geheim1234"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.ChangePassword(ctx, reg.User.ID, "falsch12345", "neuesgeheim"); err == nil {
		t.Error("ChangePassword() with wrong old password expected error, got nil")
	}
	if err := svc.ChangePassword(ctx, reg.User.ID, "geheim1234", "neuesgeheim"); err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}

	if _, err := svc.Login(ctx, LoginReq{Username: "anna", Password: "neuesgeheim"}); err != nil {
		t.Errorf("Login() with new password error = %v", err)
	}
	if _, err := svc.Login(ctx, LoginReq{Username: "anna", Password: "geheim1234"}); err == nil {
		t.Error("Login() with old password expected error, got nil")
	}
}

func TestAuthServiceDeleteAccount(t *testing.T) {
	svc, userRepo, sessionRepo := newTestAuthService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, RegisterReq{Username: "anna", Password: "geheim1234"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.DeleteAccount(ctx, reg.User.ID); err != nil {
		t.Fatalf("DeleteAccount() error = %v", err)
	}
	if len(userRepo.users) != 0 {
		t.Errorf("users after delete = %d, want 0", len(userRepo.users))
	}
	if len(sessionRepo.sessions) != 0 {
		t.Errorf("sessions after delete = %d, want 0", len(sessionRepo.sessions))
	}
}
