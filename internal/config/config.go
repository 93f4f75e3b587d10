package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Cache    CacheConfig
	JWT      JWTConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider  string // "gemini", "ollama" or "jina"
	GeminiApiKey       string
	JinaApiKey         string
	OllamaBaseURL      string
	OllamaModel        string
	EmbeddingDimension int
}

type CacheConfig struct {
	DefaultTTLSeconds      int
	CleanupIntervalSeconds int
	NotesTTLSeconds        int
	SearchTTLSeconds       int
	TagsTTLSeconds         int
}

type JWTConfig struct {
	Secret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider:  getEnv("EMBEDDING_PROVIDER", "gemini"),
			GeminiApiKey:       getEnv("GOOGLE_GEMINI_API_KEY", ""),
			JinaApiKey:         getEnv("JINA_API_KEY", ""),
			OllamaBaseURL:      getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:        getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			EmbeddingDimension: getEnvAsInt("EMBEDDING_DIMENSION", 1536),
		},
		Cache: CacheConfig{
			DefaultTTLSeconds:      getEnvAsInt("CACHE_DEFAULT_TTL", 300),
			CleanupIntervalSeconds: getEnvAsInt("CACHE_CLEANUP_INTERVAL", 600),
			NotesTTLSeconds:        getEnvAsInt("CACHE_NOTES_TTL", 120),
			SearchTTLSeconds:       getEnvAsInt("CACHE_SEARCH_TTL", 60),
			TagsTTLSeconds:         getEnvAsInt("CACHE_TAGS_TTL", 300),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
