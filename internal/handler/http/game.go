package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/middleware"
	"github.com/floktl/XploreED-sub002/internal/service"
	"github.com/floktl/XploreED-sub002/pkg/response"
)

// GameHandler handles the sentence-order game HTTP endpoints.
type GameHandler struct {
	log         zerolog.Logger
	gameService *service.GameService
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(log zerolog.Logger, gameService *service.GameService) *GameHandler {
	return &GameHandler{
		log:         log,
		gameService: gameService,
	}
}

// Start handles POST /api/v1/game/rounds
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	round, err := h.gameService.StartRound(r.Context(), user.ID, user.SkillLevel)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.Created(w, round)
}

// Submit handles POST /api/v1/game/rounds/{roundID}
func (h *GameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	roundID := chi.URLParam(r, "roundID")
	if roundID == "" {
		response.BadRequest(w, "round ID is required")
		return
	}

	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		Words []string `json:"words"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if len(req.Words) == 0 {
		response.BadRequest(w, "words are required")
		return
	}

	result, err := h.gameService.SubmitRound(r.Context(), user.ID, roundID, req.Words)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}
