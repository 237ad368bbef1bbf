package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is all runtime configuration, read from the environment once at
// startup.
type Config struct {
	Port string

	// GeminiAPIKey must be set explicitly; there is no bundled fallback
	// and startup fails without it.
	GeminiAPIKey      string
	GeminiVisionModel string
	GeminiChatModel   string

	ChromaURL      string
	CollectionName string
	RetrievalTopK  int

	OllamaURL      string
	EmbeddingModel string

	// ReferenceDir is the directory of reference documents to index.
	// Empty disables indexing.
	ReferenceDir string

	// MaxUploadMB caps the size of an uploaded report file.
	MaxUploadMB int
}

// Load reads the environment (and an optional .env file) into a Config.
// A missing Gemini credential is a hard error, not a silent fallback.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set; refusing to start without a model credential")
	}

	return &Config{
		Port:              envOr("PORT", "8080"),
		GeminiAPIKey:      apiKey,
		GeminiVisionModel: envOr("GEMINI_VISION_MODEL", "gemini-2.5-flash"),
		GeminiChatModel:   envOr("GEMINI_CHAT_MODEL", "gemini-2.5-flash"),
		ChromaURL:         envOr("CHROMA_URL", "http://localhost:8000"),
		CollectionName:    envOr("CHROMA_COLLECTION", "medical-references"),
		RetrievalTopK:     5,
		OllamaURL:         envOr("OLLAMA_URL", "http://localhost:11434"),
		EmbeddingModel:    envOr("EMBEDDING_MODEL", "nomic-embed-text:v1.5"),
		ReferenceDir:      os.Getenv("REFERENCE_DIR"),
		MaxUploadMB:       intEnvOr("MAX_UPLOAD_MB", 5),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnvOr(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
