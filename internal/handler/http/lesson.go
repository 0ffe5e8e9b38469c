package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/middleware"
	"github.com/floktl/XploreED-sub002/internal/service"
	"github.com/floktl/XploreED-sub002/pkg/response"
)

// LessonHandler handles lesson HTTP endpoints.
type LessonHandler struct {
	log           zerolog.Logger
	lessonService *service.LessonService
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(log zerolog.Logger, lessonService *service.LessonService) *LessonHandler {
	return &LessonHandler{
		log:           log,
		lessonService: lessonService,
	}
}

func lessonIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "lessonID"))
	return id, err == nil && id > 0
}

// List handles GET /api/v1/lessons
func (h *LessonHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	lessons, err := h.lessonService.ListForUser(r.Context(), user.SkillLevel)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, lessons)
}

// Get handles GET /api/v1/lessons/{lessonID}
func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := lessonIDParam(r)
	if !ok {
		response.BadRequest(w, "invalid lesson ID")
		return
	}

	user := middleware.GetUser(r.Context())
	isAdmin := user != nil && user.IsAdmin()

	lesson, err := h.lessonService.Get(r.Context(), id, isAdmin)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, lesson)
}

// Progress handles GET /api/v1/lessons/{lessonID}/progress
func (h *LessonHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, ok := lessonIDParam(r)
	if !ok {
		response.BadRequest(w, "invalid lesson ID")
		return
	}

	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	progress, err := h.lessonService.Progress(r.Context(), user.ID, id)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, progress)
}

// MarkBlock handles PUT /api/v1/lessons/{lessonID}/blocks/{blockID}
func (h *LessonHandler) MarkBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := lessonIDParam(r)
	if !ok {
		response.BadRequest(w, "invalid lesson ID")
		return
	}
	blockID := chi.URLParam(r, "blockID")
	if blockID == "" {
		response.BadRequest(w, "block ID is required")
		return
	}

	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		Completed bool `json:"completed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := h.lessonService.MarkBlock(r.Context(), user.ID, id, blockID, req.Completed); err != nil {
		handleError(h.log, w, err)
		return
	}
	response.NoContent(w)
}
