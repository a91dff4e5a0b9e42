package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Storage     StorageConfig
	FaceAPI     FaceAPIConfig
	Recognition RecognitionConfig
	RateLimit   RateLimitConfig
}

type AppConfig struct {
	Name string
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type StorageConfig struct {
	Dir string // Directory for uploaded image blobs
}

type FaceAPIConfig struct {
	BaseURL string // Base URL of the Python InsightFace service
	Workers int    // Concurrent detection calls
}

type RecognitionConfig struct {
	Threshold    float64 // Cosine distance below which two faces are the same person
	EmbeddingDim int     // Embedding dimension the model produces
}

type RateLimitConfig struct {
	Enabled       bool
	MaxRequests   int
	WindowSeconds int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists (optional for production)
	_ = godotenv.Load()

	workers, _ := strconv.Atoi(getEnv("FACE_API_WORKERS", "4"))
	threshold, _ := strconv.ParseFloat(getEnv("RECOGNITION_THRESHOLD", "0.5"), 64)
	dim, _ := strconv.Atoi(getEnv("EMBEDDING_DIM", "512"))
	maxRequests, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "30"))
	windowSecs, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECS", "60"))

	config := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "Face Search"),
			Port: getEnv("APP_PORT", "3000"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "face_search"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Storage: StorageConfig{
			Dir: getEnv("STORAGE_DIR", "uploads"),
		},
		FaceAPI: FaceAPIConfig{
			BaseURL: getEnv("FACE_API_URL", "http://localhost:5000"),
			Workers: workers,
		},
		Recognition: RecognitionConfig{
			Threshold:    threshold,
			EmbeddingDim: dim,
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnv("RATE_LIMIT_ENABLED", "true") == "true",
			MaxRequests:   maxRequests,
			WindowSeconds: windowSecs,
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
