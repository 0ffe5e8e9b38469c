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

// TopicMemoryHandler handles grammar topic memory HTTP endpoints.
type TopicMemoryHandler struct {
	log          zerolog.Logger
	topicService *service.TopicMemoryService
}

// NewTopicMemoryHandler creates a new TopicMemoryHandler.
func NewTopicMemoryHandler(log zerolog.Logger, topicService *service.TopicMemoryService) *TopicMemoryHandler {
	return &TopicMemoryHandler{
		log:          log,
		topicService: topicService,
	}
}

// List handles GET /api/v1/topics
func (h *TopicMemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	topics, err := h.topicService.List(r.Context(), user.ID)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, topics)
}

// Weakest handles GET /api/v1/topics/weakest?limit=
func (h *TopicMemoryHandler) Weakest(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	topics, err := h.topicService.Weakest(r.Context(), user.ID, limit)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, topics)
}

// Review handles POST /api/v1/topics/{topicID}/review
func (h *TopicMemoryHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "topicID"))
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid topic ID")
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

	topic, err := h.topicService.Review(r.Context(), user.ID, id, sm2.Quality(req.Quality))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, topic)
}
