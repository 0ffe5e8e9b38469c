package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/middleware"
	"github.com/floktl/XploreED-sub002/internal/service"
	"github.com/floktl/XploreED-sub002/pkg/response"
)

// ExerciseHandler handles exercise HTTP endpoints.
type ExerciseHandler struct {
	log             zerolog.Logger
	exerciseService *service.ExerciseService
	feedbackService *service.FeedbackService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(log zerolog.Logger, exerciseService *service.ExerciseService, feedbackService *service.FeedbackService) *ExerciseHandler {
	return &ExerciseHandler{
		log:             log,
		exerciseService: exerciseService,
		feedbackService: feedbackService,
	}
}

// Next handles GET /api/v1/exercises/next
func (h *ExerciseHandler) Next(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	block, err := h.exerciseService.GetOrCreateNext(r.Context(), user.ID, user.SkillLevel)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, block)
}

// Generate handles POST /api/v1/exercises
func (h *ExerciseHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	block, err := h.exerciseService.Generate(r.Context(), user.ID, user.SkillLevel)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.Created(w, block)
}

// Get handles GET /api/v1/exercises/{blockID}
func (h *ExerciseHandler) Get(w http.ResponseWriter, r *http.Request) {
	blockID, err := uuid.Parse(chi.URLParam(r, "blockID"))
	if err != nil {
		response.BadRequest(w, "invalid block ID")
		return
	}

	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	block, err := h.exerciseService.GetBlock(r.Context(), user.ID, blockID, user.IsAdmin())
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, block)
}

// submitResponse augments the graded block with an optional feedback request
// ID the client can poll.
type submitResponse struct {
	*service.SubmitResponse
	FeedbackRequestID string `json:"feedback_request_id,omitempty"`
}

// Submit handles POST /api/v1/exercises/{blockID}/submit
func (h *ExerciseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	blockID, err := uuid.Parse(chi.URLParam(r, "blockID"))
	if err != nil {
		response.BadRequest(w, "invalid block ID")
		return
	}

	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if len(req.Answers) == 0 && len(req.Tokens) == 0 {
		response.BadRequest(w, "answers are required")
		return
	}

	result, err := h.exerciseService.Submit(r.Context(), user.ID, blockID, user.SkillLevel, req)
	if err != nil {
		handleError(h.log, w, err)
		return
	}

	resp := submitResponse{SubmitResponse: result}
	if h.feedbackService != nil {
		requestID, err := h.feedbackService.RequestFeedback(r.Context(), user.ID, result)
		if err != nil {
			h.log.Warn().Err(err).Msg("Feedback request not started")
		} else {
			resp.FeedbackRequestID = requestID
		}
	}
	response.JSON(w, http.StatusOK, resp)
}

// Results handles GET /api/v1/exercises/results
func (h *ExerciseHandler) Results(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	results, err := h.exerciseService.Results(r.Context(), user.ID)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, results)
}

// Feedback handles GET /api/v1/exercises/feedback/{requestID}
func (h *ExerciseHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	if h.feedbackService == nil {
		response.NotFound(w, "feedback not configured")
		return
	}

	result, err := h.feedbackService.GetFeedback(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	if result.Status == service.FeedbackStatusPending {
		response.Accepted(w, result)
		return
	}
	response.JSON(w, http.StatusOK, result)
}
