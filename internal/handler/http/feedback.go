package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/middleware"
	"github.com/floktl/XploreED-sub002/internal/service"
	"github.com/floktl/XploreED-sub002/pkg/response"
)

// FeedbackHandler handles support feedback HTTP endpoints.
type FeedbackHandler struct {
	log             zerolog.Logger
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(log zerolog.Logger, feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{
		log:             log,
		feedbackService: feedbackService,
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	fb, err := h.feedbackService.SubmitSupport(r.Context(), &user.ID, req.Message)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.Created(w, fb)
}

// List handles GET /api/v1/admin/feedback
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.feedbackService.ListSupport(r.Context())
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, messages)
}
