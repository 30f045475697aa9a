package config

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type Config struct {
	CompletionsAPIURL string
	CompletionsAPIKey string
	CompletionsModel  string
	EmbeddingsAPIURL  string
	EmbeddingsAPIKey  string
	EmbeddingsModel   string
	HTTPPort          string
	DBPath            string
	VectorDBPath      string
	CatalogMCPURL     string
}

func getEnv(key, defaultValue string, printEnv bool) string {
	logger := log.Default()
	value := os.Getenv(key)
	if printEnv {
		logger.Info("Env", "key", key, "value", value)
	}
	if value == "" {
		return defaultValue
	}
	return value
}

func LoadConfig(printEnv bool) (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{
		CompletionsAPIURL: getEnv("COMPLETIONS_API_URL", "https://api.openai.com/v1", printEnv),
		CompletionsAPIKey: getEnv("COMPLETIONS_API_KEY", "", printEnv),
		CompletionsModel:  getEnv("COMPLETIONS_MODEL", "gpt-4.1-mini", printEnv),
		EmbeddingsAPIURL:  getEnv("EMBEDDINGS_API_URL", "https://api.openai.com/v1", printEnv),
		EmbeddingsAPIKey:  getEnv("EMBEDDINGS_API_KEY", "", printEnv),
		EmbeddingsModel:   getEnv("EMBEDDINGS_MODEL", "text-embedding-3-small", printEnv),
		HTTPPort:          getEnv("HTTP_PORT", "5000", printEnv),
		DBPath:            getEnv("SQLITE_DB_PATH", "./data/nutrigenie.db", printEnv),
		VectorDBPath:      getEnv("VECTOR_DB_PATH", "./data/vectordb", printEnv),
		CatalogMCPURL:     getEnv("CATALOG_MCP_URL", "https://openfoodfacts-mcp.onrender.com/mcp", printEnv),
	}

	return conf, nil
}
