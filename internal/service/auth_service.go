package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/floktl/XploreED-sub002/internal/client"
	"github.com/floktl/XploreED-sub002/internal/errors"
	"github.com/floktl/XploreED-sub002/internal/repository"
)

const sessionKeyPrefix = "session:"

// AuthService handles registration, login, and session validation. Sessions
// are UUID tokens stored in Postgres; Redis caches token lookups with a TTL
// matching the session expiry.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	redisClient *client.RedisClient
	sessionTTL  time.Duration
}

// NewAuthService creates a new AuthService. redisClient may be nil; sessions
// then fall back to Postgres lookups only.
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	redisClient *client.RedisClient,
	sessionTTL time.Duration,
) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		redisClient: redisClient,
		sessionTTL:  sessionTTL,
	}
}

// RegisterReq represents a registration request.
type RegisterReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginReq represents a login request.
type LoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is returned on successful register/login.
type AuthResponse struct {
	User  *repository.User `json:"user"`
	Token string           `json:"token"`
}

// cachedSession is the value stored in Redis per token.
type cachedSession struct {
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register creates a new user account and opens a session.
func (s *AuthService) Register(ctx context.Context, req RegisterReq) (*AuthResponse, error) {
	if len(req.Username) < 3 {
		return nil, errors.Validation("username must be at least 3 characters")
	}
	if len(req.Password) < 8 {
		return nil, errors.Validation("password must be at least 8 characters")
	}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.InternalWrap("failed to check existing user", err)
	}
	if existing != nil {
		return nil, errors.Conflict("username already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.InternalWrap("failed to hash password", err)
	}

	user := &repository.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         "user",
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, errors.InternalWrap("failed to create user", err)
	}

	token, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Token: token}, nil
}

// Login authenticates a user and opens a session.
func (s *AuthService) Login(ctx context.Context, req LoginReq) (*AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, errors.InternalWrap("failed to find user", err)
	}
	if user == nil {
		return nil, errors.Unauthorized("invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.Unauthorized("invalid username or password")
	}

	token, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, Token: token}, nil
}

func (s *AuthService) openSession(ctx context.Context, user *repository.User) (string, error) {
	session := &repository.Session{
		Token:     uuid.New(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", errors.InternalWrap("failed to create session", err)
	}

	s.cacheSession(ctx, session, user.Role)
	return session.Token.String(), nil
}

func (s *AuthService) cacheSession(ctx context.Context, session *repository.Session, role string) {
	if s.redisClient == nil {
		return
	}
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return
	}
	// Cache failures are not fatal; Postgres remains authoritative.
	_ = s.redisClient.SetJSON(ctx, sessionKeyPrefix+session.Token.String(), cachedSession{
		UserID:    session.UserID,
		Role:      role,
		ExpiresAt: session.ExpiresAt,
	}, ttl)
}

// ValidateToken resolves a session token to its user. Redis is consulted
// first; on a miss the Postgres row is loaded and the cache re-warmed.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*repository.User, error) {
	token, err := uuid.Parse(tokenString)
	if err != nil {
		return nil, errors.Unauthorized("invalid session token")
	}

	now := time.Now()

	if s.redisClient != nil {
		var cached cachedSession
		if err := s.redisClient.GetJSON(ctx, sessionKeyPrefix+token.String(), &cached); err == nil {
			if !cached.ExpiresAt.After(now) {
				return nil, errors.Unauthorized("session expired")
			}
			user, err := s.userRepo.GetByID(ctx, cached.UserID)
			if err != nil {
				return nil, errors.InternalWrap("failed to load user", err)
			}
			if user == nil {
				return nil, errors.Unauthorized("session user no longer exists")
			}
			return user, nil
		}
	}

	session, err := s.sessionRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, errors.InternalWrap("failed to load session", err)
	}
	if session == nil {
		return nil, errors.Unauthorized("invalid session token")
	}
	if session.Expired(now) {
		return nil, errors.Unauthorized("session expired")
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, errors.InternalWrap("failed to load user", err)
	}
	if user == nil {
		return nil, errors.Unauthorized("session user no longer exists")
	}

	s.cacheSession(ctx, session, user.Role)
	return user, nil
}

// Logout destroys a session.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	token, err := uuid.Parse(tokenString)
	if err != nil {
		return errors.Unauthorized("invalid session token")
	}

	if err := s.sessionRepo.Delete(ctx, token); err != nil {
		return errors.InternalWrap("failed to delete session", err)
	}
	if s.redisClient != nil {
		_ = s.redisClient.Del(ctx, sessionKeyPrefix+token.String())
	}
	return nil
}

// ChangePassword verifies the old password and stores a new hash. Existing
// sessions stay valid.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return errors.Validation("password must be at least 8 characters")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return errors.InternalWrap("failed to load user", err)
	}
	if user == nil {
		return errors.NotFound("user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return errors.Unauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.InternalWrap("failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return errors.InternalWrap("failed to update password", err)
	}
	return nil
}

// UpdateSkillLevel sets the user's self-assessed skill level (0..10).
func (s *AuthService) UpdateSkillLevel(ctx context.Context, userID uuid.UUID, skillLevel int) error {
	if skillLevel < 0 || skillLevel > 10 {
		return errors.Validation("skill_level must be between 0 and 10")
	}
	if err := s.userRepo.UpdateSkillLevel(ctx, userID, skillLevel); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("user")
		}
		return errors.InternalWrap("failed to update skill level", err)
	}
	return nil
}

// GetUserByUsername looks up an account by username.
func (s *AuthService) GetUserByUsername(ctx context.Context, username string) (*repository.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, errors.InternalWrap("failed to load user", err)
	}
	if user == nil {
		return nil, errors.NotFound("user")
	}
	return user, nil
}

// ListUsers returns all accounts for the admin view.
func (s *AuthService) ListUsers(ctx context.Context) ([]repository.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, errors.InternalWrap("failed to list users", err)
	}
	return users, nil
}

// UpdateRole changes a user's role.
func (s *AuthService) UpdateRole(ctx context.Context, userID uuid.UUID, role string) error {
	if role != "user" && role != "admin" {
		return errors.Validation("role must be user or admin")
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("user")
		}
		return errors.InternalWrap("failed to update role", err)
	}
	return nil
}

// DeleteAccount removes the user and everything they own. Sessions are
// destroyed first so cached tokens cannot outlive the account.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessionRepo.DeleteByUser(ctx, userID); err != nil {
		return errors.InternalWrap("failed to delete sessions", err)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		if err == repository.ErrNotFound {
			return errors.NotFound("user")
		}
		return errors.InternalWrap("failed to delete user", err)
	}
	return nil
}
