package http

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/middleware"
	"github.com/floktl/XploreED-sub002/internal/service"
	"github.com/floktl/XploreED-sub002/pkg/response"
)

// AIHandler handles translation, reading generation and text-to-speech HTTP
// endpoints.
type AIHandler struct {
	log                zerolog.Logger
	aiService          *service.AIService
	translationService *service.TranslationService
	ttsService         *service.TTSService
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(log zerolog.Logger, aiService *service.AIService, translationService *service.TranslationService, ttsService *service.TTSService) *AIHandler {
	return &AIHandler{
		log:                log,
		aiService:          aiService,
		translationService: translationService,
		ttsService:         ttsService,
	}
}

// Reading handles POST /api/v1/ai/reading
func (h *AIHandler) Reading(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		Topic string `json:"topic"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	text, err := h.aiService.GenerateReading(r.Context(), req.Topic, user.SkillLevel)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"topic":       req.Topic,
		"skill_level": user.SkillLevel,
		"text":        text,
	})
}

// Translate handles POST /api/v1/ai/translate
func (h *AIHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text       string `json:"text"`
		SourceLang string `json:"source_lang"`
		TargetLang string `json:"target_lang"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.SourceLang == "" {
		req.SourceLang = "DE"
	}
	if req.TargetLang == "" {
		req.TargetLang = "EN"
	}

	translated, err := h.translationService.Translate(r.Context(), req.Text, req.SourceLang, req.TargetLang)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{
		"text":        req.Text,
		"translation": translated,
	})
}

// Synthesize handles POST /api/v1/ai/tts
func (h *AIHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		response.Unauthorized(w, "not authenticated")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	result, err := h.ttsService.Synthesize(r.Context(), user.ID, req.Text)
	if err != nil {
		handleError(h.log, w, err)
		return
	}
	response.Created(w, result)
}
