package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Input     InputConfig     `yaml:"input"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Index     IndexConfig     `yaml:"index"`
	Processor ProcessorConfig `yaml:"processor"`
	Log       LogConfig       `yaml:"log"`
}

type InputConfig struct {
	Dir     string   `yaml:"dir"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

type EmbeddingConfig struct {
	Provider   string  `yaml:"provider"` // azure | ollama
	Endpoint   string  `yaml:"endpoint"`
	APIKey     string  `yaml:"api_key"`
	Deployment string  `yaml:"deployment"`
	APIVersion string  `yaml:"api_version"`
	OllamaURL  string  `yaml:"ollama_url"`
	Model      string  `yaml:"model"`
	RateLimit  float64 `yaml:"rate_limit"` // requests per second, 0 disables pacing
}

type IndexConfig struct {
	Backend     string `yaml:"backend"` // azure | pgvector | sqlite
	Name        string `yaml:"name"`
	Endpoint    string `yaml:"endpoint"`
	APIKey      string `yaml:"api_key"`
	APIVersion  string `yaml:"api_version"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	TableName   string `yaml:"table_name"`
	VectorDim   int    `yaml:"vector_dim"`
	BatchSize   int    `yaml:"batch_size"`
}

type ProcessorConfig struct {
	ChunkSize      int    `yaml:"chunk_size"`
	ChunkOverlap   int    `yaml:"chunk_overlap"`
	MaxChunks      int    `yaml:"max_chunks"`
	TokenizerModel string `yaml:"tokenizer_model"`
}

type LogConfig struct {
	Mode    string `yaml:"mode"` // development | production
	Verbose bool   `yaml:"verbose"`
}

const (
	ProviderAzure  = "azure"
	ProviderOllama = "ollama"

	BackendAzure    = "azure"
	BackendPGVector = "pgvector"
	BackendSQLite   = "sqlite"
)

func LoadConfig(path string) (*Config, error) {
	// .env values only fill variables that are not already set
	_ = godotenv.Load()

	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/stressdocs/config.yaml"),
			"/etc/stressdocs/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Input.Dir == "" {
		config.Input.Dir = "financial_data"
	}
	if len(config.Input.Include) == 0 {
		config.Input.Include = []string{"*.pdf", "*.xlsx", "*.csv"}
	}
	if len(config.Input.Exclude) == 0 {
		config.Input.Exclude = []string{"document_inventory.json", "document_inventory.md"}
	}

	if config.Embedding.Provider == "" {
		config.Embedding.Provider = ProviderAzure
	}
	if config.Embedding.Deployment == "" {
		config.Embedding.Deployment = "text-embedding-3-large"
	}
	if config.Embedding.APIVersion == "" {
		config.Embedding.APIVersion = "2024-02-01"
	}
	if config.Embedding.OllamaURL == "" {
		config.Embedding.OllamaURL = "http://localhost:11434"
	}
	if config.Embedding.Model == "" {
		config.Embedding.Model = "nomic-embed-text:latest"
	}

	if config.Index.Backend == "" {
		config.Index.Backend = BackendAzure
	}
	if config.Index.Name == "" {
		config.Index.Name = "financial-stress-test-index"
	}
	if config.Index.APIVersion == "" {
		config.Index.APIVersion = "2023-11-01"
	}
	if config.Index.SQLitePath == "" {
		config.Index.SQLitePath = "stressdocs.db"
	}
	if config.Index.TableName == "" {
		config.Index.TableName = "documents"
	}
	if config.Index.VectorDim == 0 {
		config.Index.VectorDim = 3072 // text-embedding-3-large
	}
	if config.Index.BatchSize == 0 {
		config.Index.BatchSize = 8
	}

	if config.Processor.ChunkSize == 0 {
		config.Processor.ChunkSize = 800
	}
	if config.Processor.ChunkOverlap == 0 {
		config.Processor.ChunkOverlap = 150
	}
	if config.Processor.MaxChunks == 0 {
		config.Processor.MaxChunks = 2000
	}
	if config.Processor.TokenizerModel == "" {
		config.Processor.TokenizerModel = "gpt-4"
	}

	if config.Log.Mode == "" {
		config.Log.Mode = "development"
	}
}

func mergeWithEnv(config *Config) {
	if v := os.Getenv("AZURE_SEARCH_ENDPOINT"); v != "" {
		config.Index.Endpoint = v
	}
	if v := os.Getenv("AZURE_SEARCH_KEY"); v != "" {
		config.Index.APIKey = v
	}
	if v := os.Getenv("AZURE_OPENAI_EMBEDDINGS_ENDPOINT"); v != "" {
		config.Embedding.Endpoint = v
	}
	if v := os.Getenv("AZURE_OPENAI_EMBEDDINGS_API_KEY"); v != "" {
		config.Embedding.APIKey = v
	}
	if v := os.Getenv("AZURE_OPENAI_EMBEDDINGS_DEPLOYMENT_NAME"); v != "" {
		config.Embedding.Deployment = v
	}
	if v := os.Getenv("AZURE_OPENAI_API_VERSION"); v != "" {
		config.Embedding.APIVersion = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		config.Embedding.OllamaURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.Index.DatabaseURL = v
	}
}
