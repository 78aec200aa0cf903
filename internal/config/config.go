package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration values.
type Config struct {
	Port        string
	LogLevel    string
	DatabaseURL string
	LLMProvider string
	Redis       RedisConfig
	Gemini      GeminiConfig
	OpenAI      OpenAIConfig
	Palette     PaletteConfig
	Images      ImageConfig
	Media       MediaConfig
	Auth        AuthConfig
}

// RedisConfig describes the optional Valkey/Redis cache connection.
type RedisConfig struct {
	Addr     string
	Password string
	ListTTL  time.Duration
}

// GeminiConfig covers the text-completion collaborator.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAIConfig covers the alternative text-completion provider.
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// PaletteConfig selects the palette strategy. When URL is empty the local
// lookup table is used.
type PaletteConfig struct {
	URL     string
	Timeout time.Duration
}

// ImageConfig selects and configures the image generation backend.
type ImageConfig struct {
	Backend         string // stability, gradio, gemini, vertex, huggingface
	Count           int
	StabilityAPIKey string
	StabilityEngine string
	GradioBaseURL   string
	GeminiModel     string
	VertexProject   string
	VertexLocation  string
	VertexModel     string
	HuggingFaceKey  string
	HuggingFaceURL  string
	Timeout         time.Duration
}

// MediaConfig describes S3/object storage configuration.
type MediaConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	PublicURL      string
	KeyPrefix      string
	ForcePathStyle bool
}

// AuthConfig covers session signing and Firebase token verification.
type AuthConfig struct {
	SessionSecret       string
	SessionDuration     time.Duration
	SecureCookie        bool
	FirebaseCredentials string
}

// FromEnv loads configuration from environment variables and applies defaults.
// A .env file in the working directory is honored when present.
func FromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:        getenv("APP_PORT", "8080"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		LLMProvider: strings.ToLower(getenv("LLM_PROVIDER", "gemini")),
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			ListTTL:  getenvDuration("REDIS_LIST_TTL", 30*time.Second),
		},
		Gemini: GeminiConfig{
			APIKey:  os.Getenv("GEMINI_API_KEY"),
			Model:   getenv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout: getenvDuration("GEMINI_TIMEOUT", 60*time.Second),
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  getenv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		Palette: PaletteConfig{
			URL:     os.Getenv("PALETTE_URL"),
			Timeout: getenvDuration("PALETTE_TIMEOUT", 15*time.Second),
		},
		Images: ImageConfig{
			Backend:         strings.ToLower(getenv("IMAGE_BACKEND", "stability")),
			Count:           getenvInt("IMAGE_COUNT", 4),
			StabilityAPIKey: os.Getenv("STABILITY_API_KEY"),
			StabilityEngine: getenv("STABILITY_ENGINE", "stable-diffusion-xl-1024-v1-0"),
			GradioBaseURL:   os.Getenv("GRADIO_BASE_URL"),
			GeminiModel:     getenv("IMAGE_GEMINI_MODEL", "gemini-2.5-flash-image"),
			VertexProject:   os.Getenv("VERTEX_PROJECT_ID"),
			VertexLocation:  getenv("VERTEX_LOCATION", "us-central1"),
			VertexModel:     getenv("VERTEX_IMAGE_MODEL", "imagegeneration@006"),
			HuggingFaceKey:  os.Getenv("HUGGING_FACE_API_KEY"),
			HuggingFaceURL:  os.Getenv("HUGGING_FACE_MODEL_URL"),
			Timeout:         getenvDuration("IMAGE_TIMEOUT", 120*time.Second),
		},
		Media: MediaConfig{
			Bucket:         os.Getenv("S3_BUCKET"),
			Region:         os.Getenv("S3_REGION"),
			Endpoint:       os.Getenv("S3_ENDPOINT"),
			PublicURL:      os.Getenv("S3_PUBLIC_URL"),
			KeyPrefix:      strings.Trim(os.Getenv("S3_KEY_PREFIX"), "/"),
			ForcePathStyle: getenvBool("S3_FORCE_PATH_STYLE", false),
		},
		Auth: AuthConfig{
			SessionSecret:       getenv("SESSION_SECRET", "moodscape-dev-secret"),
			SessionDuration:     getenvDuration("SESSION_DURATION", 7*24*time.Hour),
			SecureCookie:        getenvBool("SESSION_SECURE", false),
			FirebaseCredentials: os.Getenv("FIREBASE_CREDENTIALS"),
		},
	}

	if cfg.Port == "" {
		log.Fatal("APP_PORT cannot be empty")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}

	return parsed
}

func getenvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}

	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}

	return parsed
}
