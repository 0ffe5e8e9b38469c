package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/service"
	"github.com/floktl/XploreED-sub002/pkg/response"
)

// AdminHandler handles the admin HTTP endpoints for users, lessons and
// exercise blocks.
type AdminHandler struct {
	log             zerolog.Logger
	authService     *service.AuthService
	lessonService   *service.LessonService
	exerciseService *service.ExerciseService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	log zerolog.Logger,
	authService *service.AuthService,
	lessonService *service.LessonService,
	exerciseService *service.ExerciseService,
) *AdminHandler {
	return &AdminHandler{
		log:             log,
		authService:     authService,
		lessonService:   lessonService,
		exerciseService: exerciseService,
	}
}

// ListUsers handles GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.authService.ListUsers(r.Context())
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, users, &response.Meta{Total: len(users)})
}

// UpdateUserRole handles PUT /api/v1/admin/users/{userID}/role
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user ID")
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.authService.UpdateRole(r.Context(), userID, req.Role); err != nil {
		handleError(h.log, w, err)
		return
	}
	response.NoContent(w)
}

// UpdateUserSkillLevel handles PUT /api/v1/admin/users/{userID}/skill-level
func (h *AdminHandler) UpdateUserSkillLevel(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user ID")
		return
	}

	var req struct {
		SkillLevel int `json:"skill_level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.authService.UpdateSkillLevel(r.Context(), userID, req.SkillLevel); err != nil {
		handleError(h.log, w, err)
		return
	}
	response.NoContent(w)
}

// UserResults handles GET /api/v1/admin/results/{username}
func (h *AdminHandler) UserResults(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		response.BadRequest(w, "username is required")
		return
	}

	user, err := h.authService.GetUserByUsername(r.Context(), username)
	if err != nil {
		handleError(h.log, w, err)
		return
	}

	results, err := h.exerciseService.Results(r.Context(), user.ID)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, results)
}

// DeleteUser handles DELETE /api/v1/admin/users/{userID}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		response.BadRequest(w, "invalid user ID")
		return
	}

	if err := h.authService.DeleteAccount(r.Context(), userID); err != nil {
		handleError(h.log, w, err)
		return
	}
	response.NoContent(w)
}

// ListLessons handles GET /api/v1/admin/lessons
func (h *AdminHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.lessonService.ListAll(r.Context())
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, lessons)
}

// CreateLesson handles POST /api/v1/admin/lessons
func (h *AdminHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req service.CreateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	lesson, err := h.lessonService.Create(r.Context(), req)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.Created(w, lesson)
}

// UpdateLesson handles PUT /api/v1/admin/lessons/{lessonID}
func (h *AdminHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "lessonID"))
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid lesson ID")
		return
	}

	var req service.UpdateLessonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	lesson, err := h.lessonService.Update(r.Context(), id, req)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, lesson)
}

// DeleteLesson handles DELETE /api/v1/admin/lessons/{lessonID}
func (h *AdminHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "lessonID"))
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid lesson ID")
		return
	}

	if err := h.lessonService.Delete(r.Context(), id); err != nil {
		handleError(h.log, w, err)
		return
	}
	response.NoContent(w)
}

// ListExerciseBlocks handles GET /api/v1/admin/exercises
func (h *AdminHandler) ListExerciseBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.exerciseService.ListBlocks(r.Context())
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, blocks)
}

// DeleteExerciseBlock handles DELETE /api/v1/admin/exercises/{blockID}
func (h *AdminHandler) DeleteExerciseBlock(w http.ResponseWriter, r *http.Request) {
	blockID, err := uuid.Parse(chi.URLParam(r, "blockID"))
	if err != nil {
		response.BadRequest(w, "invalid block ID")
		return
	}

	if err := h.exerciseService.DeleteBlock(r.Context(), blockID); err != nil {
		handleError(h.log, w, err)
		return
	}
	response.NoContent(w)
}
