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
	"github.com/floktl/XploreED-sub002/pkg/sm2"
)

// VocabularyHandler handles vocabulary HTTP endpoints.
type VocabularyHandler struct {
	log          zerolog.Logger
	vocabService *service.VocabularyService
}

// NewVocabularyHandler creates a new VocabularyHandler.
func NewVocabularyHandler(log zerolog.Logger, vocabService *service.VocabularyService) *VocabularyHandler {
	return &VocabularyHandler{
		log:          log,
		vocabService: vocabService,
	}
}

// List handles GET /api/v1/vocabulary?search=
func (h *VocabularyHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	entries, err := h.vocabService.List(r.Context(), user.ID, r.URL.Query().Get("search"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSONWithMeta(w, http.StatusOK, entries, &response.Meta{Total: len(entries)})
}

// NextDue handles GET /api/v1/vocabulary/next
func (h *VocabularyHandler) NextDue(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	entry, err := h.vocabService.NextDue(r.Context(), user.ID)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	if entry == nil {
		response.JSON(w, http.StatusOK, map[string]interface{}{"entry": nil})
		return
	}
	response.JSON(w, http.StatusOK, entry)
}

// Review handles POST /api/v1/vocabulary/{vocabID}/review
func (h *VocabularyHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "vocabID"))
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid vocabulary ID")
		return
	}

	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		Quality int `json:"quality"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.Quality < 0 || req.Quality > 5 {
		response.BadRequest(w, "quality must be between 0 and 5")
		return
	}

	entry, err := h.vocabService.Review(r.Context(), user.ID, id, sm2.Quality(req.Quality))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/v1/vocabulary/{vocabID}
func (h *VocabularyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "vocabID"))
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid vocabulary ID")
		return
	}

	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := h.vocabService.Delete(r.Context(), user.ID, id); err != nil {
		handleError(h.log, w, err)
		return
	}
	response.NoContent(w)
}

// DeleteAll handles DELETE /api/v1/vocabulary
func (h *VocabularyHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	if err := h.vocabService.DeleteAll(r.Context(), user.ID); err != nil {
		handleError(h.log, w, err)
		return
	}
	response.NoContent(w)
}
