package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/floktl/XploreED-sub002/internal/client"
	"github.com/floktl/XploreED-sub002/internal/config"
	"github.com/floktl/XploreED-sub002/internal/handler/http"
	"github.com/floktl/XploreED-sub002/internal/logger"
	"github.com/floktl/XploreED-sub002/internal/repository"
	"github.com/floktl/XploreED-sub002/internal/scheduler"
	"github.com/floktl/XploreED-sub002/internal/server"
	"github.com/floktl/XploreED-sub002/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info().Str("env", cfg.Environment).Msg("Starting xploreed")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize Postgres client
	var postgresClient *client.PostgresClient
	if cfg.DatabaseURL != "" {
		postgresClient, err = client.NewPostgresClient(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Postgres client")
		} else {
			log.Info().Msg("Postgres client initialized")
		}
	} else {
		log.Warn().Msg("DATABASE_URL not set, skipping Postgres initialization")
	}

	// Initialize Redis client
	var redisClient *client.RedisClient
	if cfg.RedisURL != "" {
		redisClient, err = client.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Redis client")
		} else {
			log.Info().Msg("Redis client initialized")
		}
	} else {
		log.Warn().Msg("REDIS_URL not set, skipping Redis initialization")
	}

	// Initialize AI providers
	var mistralClient *client.MistralClient
	if cfg.MistralAPIKey != "" {
		mistralClient = client.NewMistralClient(cfg.MistralAPIKey, cfg.MistralBaseURL, cfg.MistralModel)
		log.Info().Str("model", cfg.MistralModel).Msg("Mistral client initialized")
	} else {
		log.Warn().Msg("MISTRAL_API_KEY not set, skipping Mistral initialization")
	}

	var geminiClient *client.GeminiClient
	if cfg.GCPProjectID != "" {
		geminiClient, err = client.NewGeminiClient(ctx, cfg.GCPProjectID, cfg.GCPLocation)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize Gemini client")
		} else {
			geminiClient = geminiClient.WithModel(cfg.GeminiModel)
			log.Info().Str("model", cfg.GeminiModel).Msg("Gemini client initialized")
		}
	} else {
		log.Warn().Msg("GCP_PROJECT_ID not set, skipping Gemini initialization")
	}

	// Initialize DeepL client
	var deeplClient *client.DeepLClient
	if cfg.DeepLAPIKey != "" {
		deeplClient = client.NewDeepLClient(cfg.DeepLAPIKey, cfg.DeepLBaseURL)
		log.Info().Msg("DeepL client initialized")
	}

	// Initialize ElevenLabs client
	var ttsClient *client.ElevenLabsClient
	if cfg.ElevenLabsAPIKey != "" {
		ttsClient = client.NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID)
		log.Info().Msg("ElevenLabs client initialized")
	}

	// Initialize R2 storage client
	var storageClient *client.StorageClient
	if cfg.R2AccessKeyID != "" && cfg.R2SecretKey != "" && cfg.R2Endpoint != "" && cfg.R2BucketName != "" {
		storageClient, err = client.NewStorageClient(ctx,
			cfg.R2AccessKeyID, cfg.R2SecretKey, cfg.R2Endpoint, cfg.R2BucketName, cfg.R2PublicURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to initialize storage client")
		} else {
			log.Info().Msg("R2 storage client initialized")
		}
	} else {
		log.Warn().Msg("R2 configuration missing, skipping storage initialization")
	}

	// Initialize repositories
	userRepo := repository.NewPostgresUserRepository(postgresClient)
	sessionRepo := repository.NewPostgresSessionRepository(postgresClient)
	lessonRepo := repository.NewPostgresLessonRepository(postgresClient)
	exerciseRepo := repository.NewPostgresExerciseRepository(postgresClient)
	vocabRepo := repository.NewPostgresVocabularyRepository(postgresClient)
	topicRepo := repository.NewPostgresTopicMemoryRepository(postgresClient)
	feedbackRepo := repository.NewPostgresFeedbackRepository(postgresClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, sessionRepo, redisClient, cfg.SessionTTL)
	aiService := service.NewAIService(mistralClient, geminiClient)
	translationService := service.NewTranslationService(deeplClient, aiService, log)
	vocabService := service.NewVocabularyService(vocabRepo, translationService, log)
	topicService := service.NewTopicMemoryService(topicRepo)
	exerciseService := service.NewExerciseService(exerciseRepo, aiService, topicService, vocabService, log)
	lessonService := service.NewLessonService(lessonRepo, log)
	ttsService := service.NewTTSService(ttsClient, storageClient, log)

	// Typed nils must not reach the interface-valued Redis backends.
	var feedbackQueue service.FeedbackQueue
	var roundStore service.GameRoundStore
	if redisClient != nil {
		feedbackQueue = redisClient
		roundStore = redisClient
	}
	feedbackService := service.NewFeedbackService(feedbackRepo, feedbackQueue, aiService, log)
	gameService := service.NewGameService(roundStore, topicService, log)

	// Same for the health checks.
	var dbPinger, cachePinger http.Pinger
	if postgresClient != nil {
		dbPinger = postgresClient
	}
	if redisClient != nil {
		cachePinger = redisClient
	}

	// Initialize handlers
	handlers := server.Handlers{
		Health:      http.NewHealthHandler(dbPinger, cachePinger),
		Auth:        http.NewAuthHandler(log, authService, cfg.SessionTTL, cfg.IsProduction()),
		Lesson:      http.NewLessonHandler(log, lessonService),
		Exercise:    http.NewExerciseHandler(log, exerciseService, feedbackService),
		Vocabulary:  http.NewVocabularyHandler(log, vocabService),
		TopicMemory: http.NewTopicMemoryHandler(log, topicService),
		AI:          http.NewAIHandler(log, aiService, translationService, ttsService),
		Game:        http.NewGameHandler(log, gameService),
		Feedback:    http.NewFeedbackHandler(log, feedbackService),
		Admin:       http.NewAdminHandler(log, authService, lessonService, exerciseService),
	}

	// Initialize HTTP server
	httpServer := server.NewHTTPServer(cfg, log, authService, handlers)

	// Background jobs need a working database.
	var jobs *scheduler.Scheduler
	if postgresClient != nil {
		jobs = scheduler.New(sessionRepo, log)
		jobs.Start()
	}

	// Start server
	go func() {
		if err := httpServer.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server error")
			cancel()
		}
	}()

	log.Info().Str("http_addr", cfg.HTTPAddress()).Msg("Server started")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("Shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Shutting down server...")

	if jobs != nil {
		jobs.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Close clients
	if geminiClient != nil {
		geminiClient.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if postgresClient != nil {
		postgresClient.Close()
	}

	log.Info().Msg("Server stopped")
}
