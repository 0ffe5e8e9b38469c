package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/config"
	httphandler "github.com/floktl/XploreED-sub002/internal/handler/http"
	"github.com/floktl/XploreED-sub002/internal/middleware"
	"github.com/floktl/XploreED-sub002/internal/service"
)

// HTTPServer represents the HTTP server.
type HTTPServer struct {
	server *http.Server
	log    zerolog.Logger
}

// Handlers bundles the HTTP handlers the server routes to.
type Handlers struct {
	Health      *httphandler.HealthHandler
	Auth        *httphandler.AuthHandler
	Lesson      *httphandler.LessonHandler
	Exercise    *httphandler.ExerciseHandler
	Vocabulary  *httphandler.VocabularyHandler
	TopicMemory *httphandler.TopicMemoryHandler
	AI          *httphandler.AIHandler
	Game        *httphandler.GameHandler
	Feedback    *httphandler.FeedbackHandler
	Admin       *httphandler.AdminHandler
}

// NewHTTPServer creates a new HTTP server.
func NewHTTPServer(
	cfg *config.Config,
	log zerolog.Logger,
	authService *service.AuthService,
	h Handlers,
) *HTTPServer {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(chimiddleware.Compress(5))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   cfg.CORSAllowedMethods,
		AllowedHeaders:   cfg.CORSAllowedHeaders,
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (public)
	r.Get("/health", h.Health.Health)
	r.Get("/ready", h.Health.Ready)
	r.Get("/live", h.Health.Live)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		// Protected endpoints (require a session)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authService))

			r.Post("/auth/logout", h.Auth.Logout)

			// Profile endpoints
			r.Get("/profile", h.Auth.Me)
			r.Put("/profile/skill-level", h.Auth.UpdateSkillLevel)
			r.Put("/profile/password", h.Auth.ChangePassword)
			r.Delete("/profile", h.Auth.DeleteAccount)

			// Lesson endpoints
			r.Get("/lessons", h.Lesson.List)
			r.Get("/lessons/{lessonID}", h.Lesson.Get)
			r.Get("/lessons/{lessonID}/progress", h.Lesson.Progress)
			r.Put("/lessons/{lessonID}/blocks/{blockID}", h.Lesson.MarkBlock)

			// Exercise endpoints
			r.Get("/exercises/next", h.Exercise.Next)
			r.Post("/exercises", h.Exercise.Generate)
			r.Get("/exercises/results", h.Exercise.Results)
			r.Get("/exercises/feedback/{requestID}", h.Exercise.Feedback)
			r.Get("/exercises/{blockID}", h.Exercise.Get)
			r.Post("/exercises/{blockID}/submit", h.Exercise.Submit)

			// Vocabulary endpoints
			r.Get("/vocabulary", h.Vocabulary.List)
			r.Delete("/vocabulary", h.Vocabulary.DeleteAll)
			r.Get("/vocabulary/next", h.Vocabulary.NextDue)
			r.Post("/vocabulary/{vocabID}/review", h.Vocabulary.Review)
			r.Delete("/vocabulary/{vocabID}", h.Vocabulary.Delete)

			// Topic memory endpoints
			r.Get("/topics", h.TopicMemory.List)
			r.Get("/topics/weakest", h.TopicMemory.Weakest)
			r.Post("/topics/{topicID}/review", h.TopicMemory.Review)

			// AI endpoints
			r.Post("/ai/translate", h.AI.Translate)
			r.Post("/ai/reading", h.AI.Reading)
			r.Post("/ai/tts", h.AI.Synthesize)

			// Sentence-order game endpoints
			r.Post("/game/rounds", h.Game.Start)
			r.Post("/game/rounds/{roundID}", h.Game.Submit)

			// Support feedback
			r.Post("/feedback", h.Feedback.Submit)

			// Admin endpoints
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Get("/admin/users", h.Admin.ListUsers)
				r.Put("/admin/users/{userID}/role", h.Admin.UpdateUserRole)
				r.Put("/admin/users/{userID}/skill-level", h.Admin.UpdateUserSkillLevel)
				r.Delete("/admin/users/{userID}", h.Admin.DeleteUser)
				r.Get("/admin/results/{username}", h.Admin.UserResults)

				r.Get("/admin/lessons", h.Admin.ListLessons)
				r.Post("/admin/lessons", h.Admin.CreateLesson)
				r.Put("/admin/lessons/{lessonID}", h.Admin.UpdateLesson)
				r.Delete("/admin/lessons/{lessonID}", h.Admin.DeleteLesson)

				r.Get("/admin/exercises", h.Admin.ListExerciseBlocks)
				r.Delete("/admin/exercises/{blockID}", h.Admin.DeleteExerciseBlock)

				r.Get("/admin/feedback", h.Feedback.List)
			})
		})
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &HTTPServer{
		server: server,
		log:    log,
	}
}

// Start starts the HTTP server.
func (s *HTTPServer) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
