package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Host     string `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	HTTPPort int    `envconfig:"SERVER_HTTP_PORT" default:"8080"`

	Environment string `envconfig:"SERVER_ENV" default:"development"`

	// Timeouts
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	// Sessions
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"168h"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Redis
	RedisURL string `envconfig:"REDIS_URL"`

	// Mistral (OpenAI-compatible API)
	MistralAPIKey  string `envconfig:"MISTRAL_API_KEY"`
	MistralBaseURL string `envconfig:"MISTRAL_BASE_URL" default:"https://api.mistral.ai/v1"`
	MistralModel   string `envconfig:"MISTRAL_MODEL" default:"mistral-small-latest"`

	// Gemini (Vertex AI)
	GCPProjectID string `envconfig:"GCP_PROJECT_ID"`
	GCPLocation  string `envconfig:"GCP_LOCATION" default:"europe-west3"`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	// DeepL
	DeepLAPIKey  string `envconfig:"DEEPL_API_KEY"`
	DeepLBaseURL string `envconfig:"DEEPL_BASE_URL" default:"https://api-free.deepl.com"`

	// ElevenLabs TTS
	ElevenLabsAPIKey  string `envconfig:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID string `envconfig:"ELEVENLABS_VOICE_ID" default:"21m00Tcm4TlvDq8ikWAM"`

	// Cloudflare R2 (audio storage)
	R2AccessKeyID string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretKey   string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2Endpoint    string `envconfig:"R2_ENDPOINT"`
	R2BucketName  string `envconfig:"R2_BUCKET_NAME"`
	R2PublicURL   string `envconfig:"R2_PUBLIC_URL"`

	// CORS
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	CORSAllowedMethods []string `envconfig:"CORS_ALLOWED_METHODS" default:"GET,POST,PUT,DELETE,OPTIONS"`
	CORSAllowedHeaders []string `envconfig:"CORS_ALLOWED_HEADERS" default:"Accept,Authorization,Content-Type,X-Request-ID"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}
	return &cfg, nil
}

// HTTPAddress returns the HTTP server address.
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.HTTPPort)
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
