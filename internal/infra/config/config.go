package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Backend tags for the vector index selection.
const (
	VectorBackendPinecone = "pinecone"
	VectorBackendPgvector = "pgvector"
)

// LLMConfig covers both model boundaries of the OpenAI-compatible endpoint.
type LLMConfig struct {
	BaseURL        string
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Timeout        int
}

// VectorConfig selects and parameterizes the vector index backend.
type VectorConfig struct {
	Backend        string
	PineconeIndex  string
	PineconeAPIKey string
	PineconeHost   string
	Timeout        int
}

// DBConfig is only consulted for the pgvector backend.
type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// RAGConfig holds the tunable retrieval and prompting parameters. All values
// are fixed for the process lifetime.
type RAGConfig struct {
	TopK          int
	MinScore      float64
	MaxCandidates int
	EvidenceClip  int
}

// Config is built once at process start and passed into every constructor;
// pipeline code never reads the environment itself.
type Config struct {
	Env               string
	Port              string
	RequestsPerSecond float64
	OTelEnabled       bool
	OTLPEndpoint      string
	LLM               LLMConfig
	Vector            VectorConfig
	DB                DBConfig
	RAG               RAGConfig
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Env:               getEnv("ENV", "development"),
		Port:              getEnv("PORT", "9020"),
		RequestsPerSecond: getEnvFloat64("HTTP_RATE_LIMIT_RPS", 20),
		OTelEnabled:       getEnvBool("OTEL_ENABLED", false),
		OTLPEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		LLM: LLMConfig{
			BaseURL:        getEnv("LLM_BASE_URL", "https://api.openai.com"),
			APIKey:         getSecret("LLM_API_KEY", "LLM_API_KEY_FILE", ""),
			ChatModel:      getEnv("CHAT_MODEL", "gpt-4o-mini"),
			EmbeddingModel: getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Timeout:        getEnvInt("LLM_TIMEOUT_SECONDS", 60),
		},
		Vector: VectorConfig{
			Backend:        getEnv("VECTOR_BACKEND", VectorBackendPinecone),
			PineconeIndex:  getEnv("PINECONE_INDEX", ""),
			PineconeAPIKey: getSecret("PINECONE_API_KEY", "PINECONE_API_KEY_FILE", ""),
			PineconeHost:   getEnv("PINECONE_HOST", ""),
			Timeout:        getEnvInt("VECTOR_TIMEOUT_SECONDS", 15),
		},
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "talk-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "talk_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "talk_password"),
			Name:     getEnv("DB_NAME", "talk_db"),
		},
		RAG: RAGConfig{
			TopK:          getEnvInt("RAG_TOP_K", 25),
			MinScore:      getEnvFloat64("RAG_MIN_SCORE", 0.12),
			MaxCandidates: getEnvInt("RAG_MAX_CANDIDATES", 8),
			EvidenceClip:  getEnvInt("RAG_EVIDENCE_CLIP", 900),
		},
	}
}

// Validate surfaces missing credentials and identifiers immediately at
// startup instead of on the first request.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY is required")
	}
	switch c.Vector.Backend {
	case VectorBackendPinecone:
		if c.Vector.PineconeAPIKey == "" {
			return fmt.Errorf("PINECONE_API_KEY is required for the pinecone backend")
		}
		if c.Vector.PineconeIndex == "" && c.Vector.PineconeHost == "" {
			return fmt.Errorf("PINECONE_INDEX or PINECONE_HOST is required for the pinecone backend")
		}
	case VectorBackendPgvector:
		// Connection parameters all have defaults; reachability is checked
		// by the pool at startup.
	default:
		return fmt.Errorf("unknown VECTOR_BACKEND %q", c.Vector.Backend)
	}
	if c.RAG.TopK <= 0 {
		return fmt.Errorf("RAG_TOP_K must be positive, got %d", c.RAG.TopK)
	}
	if c.RAG.MinScore < 0 {
		return fmt.Errorf("RAG_MIN_SCORE must be non-negative, got %f", c.RAG.MinScore)
	}
	if c.RAG.MaxCandidates <= 0 {
		return fmt.Errorf("RAG_MAX_CANDIDATES must be positive, got %d", c.RAG.MaxCandidates)
	}
	return nil
}

// DSN renders the postgres connection string for the pgvector backend.
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat64(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
