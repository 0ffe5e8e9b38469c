package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/middleware"
	"github.com/floktl/XploreED-sub002/internal/service"
	"github.com/floktl/XploreED-sub002/pkg/response"
)

// AuthHandler handles authentication HTTP endpoints.
type AuthHandler struct {
	log         zerolog.Logger
	authService *service.AuthService
	sessionTTL  time.Duration
	secure      bool
}

// NewAuthHandler creates a new AuthHandler. secure controls the session
// cookie's Secure flag.
func NewAuthHandler(log zerolog.Logger, authService *service.AuthService, sessionTTL time.Duration, secure bool) *AuthHandler {
	return &AuthHandler{
		log:         log,
		authService: authService,
		sessionTTL:  sessionTTL,
		secure:      secure,
	}
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, "username and password are required")
		return
	}

	result, err := h.authService.Register(r.Context(), req)
	if err != nil {
		handleError(h.log, w, err)
		return
	}

	h.setSessionCookie(w, result.Token, h.sessionTTL)
	response.Created(w, result)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		response.BadRequest(w, "username and password are required")
		return
	}

	result, err := h.authService.Login(r.Context(), req)
	if err != nil {
		handleError(h.log, w, err)
		return
	}

	h.setSessionCookie(w, result.Token, h.sessionTTL)
	response.JSON(w, http.StatusOK, result)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())
	if token == "" {
		response.Unauthorized(w, "missing session token")
		return
	}

	if err := h.authService.Logout(r.Context(), token); err != nil {
		handleError(h.log, w, err)
		return
	}

	h.setSessionCookie(w, "", -time.Second)
	response.NoContent(w)
}

// Me handles GET /api/v1/profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}
	response.JSON(w, http.StatusOK, user)
}

// UpdateSkillLevel handles PUT /api/v1/profile/skill-level
func (h *AuthHandler) UpdateSkillLevel(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		SkillLevel int `json:"skill_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.authService.UpdateSkillLevel(r.Context(), user.ID, req.SkillLevel); err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]int{"skill_level": req.SkillLevel})
}

// ChangePassword handles PUT /api/v1/profile/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		response.BadRequest(w, "old and new passwords are required")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		handleError(h.log, w, err)
		return
	}
	response.NoContent(w)
}

// DeleteAccount handles DELETE /api/v1/profile
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := h.authService.DeleteAccount(r.Context(), user.ID); err != nil {
		handleError(h.log, w, err)
		return
	}

	h.setSessionCookie(w, "", -time.Second)
	response.NoContent(w)
}
