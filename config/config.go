package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type EmbeddingsConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

type Config struct {
	HTTPAddr         string `yaml:"http_addr"`
	PostgresDSN      string `yaml:"postgres_dsn"`
	KnowledgeBaseDir string `yaml:"knowledge_base_dir"`
	LogsDir          string `yaml:"logs_dir"`

	OllamaHost    string `yaml:"ollama_host"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`

	// UTCOffsetMinutes fixes the zone used for event log timestamps.
	UTCOffsetMinutes int `yaml:"utc_offset_minutes"`

	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	LLM        LLMConfig        `yaml:"llm"`
}

// Load builds the configuration from environment variables, then overlays
// values from config.yaml (or the file CONFIG_FILE points at) when present.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8000"),
		PostgresDSN:      getEnv("POSTGRES_DSN", "postgres://localhost:5432/rag-assistant?sslmode=disable"),
		KnowledgeBaseDir: getEnv("KNOWLEDGE_BASE_DIR", "knowledge_base/raw"),
		LogsDir:          getEnv("LOGS_DIR", "logs"),
		OllamaHost:       getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		UTCOffsetMinutes: getEnvInt("LOG_UTC_OFFSET_MINUTES", 0),
		Embeddings: EmbeddingsConfig{
			Provider:  getEnv("EMBEDDING_PROVIDER", ProviderOpenAI),
			Model:     getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimension: getEnvInt("EMBEDDING_DIMENSION", 1536),
		},
		LLM: LLMConfig{
			Provider: getEnv("LLM_PROVIDER", ProviderOpenAI),
			Model:    getEnv("LLM_MODEL", "gpt-4o-mini"),
		},
	}

	path := getEnv("CONFIG_FILE", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
