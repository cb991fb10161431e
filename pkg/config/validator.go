package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate reports every problem at once so a run can list all missing
// credentials before aborting.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Input.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "input.dir",
			Message: "input directory is required",
		})
	}

	// Validate Embedding config
	switch c.Embedding.Provider {
	case ProviderAzure:
		if c.Embedding.Endpoint == "" {
			errors = append(errors, ValidationError{
				Field:   "embedding.endpoint",
				Message: "AZURE_OPENAI_EMBEDDINGS_ENDPOINT is required",
			})
		} else if !validURL(c.Embedding.Endpoint) {
			errors = append(errors, ValidationError{
				Field:   "embedding.endpoint",
				Message: "invalid embeddings endpoint URL",
			})
		}
		if c.Embedding.APIKey == "" {
			errors = append(errors, ValidationError{
				Field:   "embedding.api_key",
				Message: "AZURE_OPENAI_EMBEDDINGS_API_KEY is required",
			})
		}
		if c.Embedding.Deployment == "" {
			errors = append(errors, ValidationError{
				Field:   "embedding.deployment",
				Message: "AZURE_OPENAI_EMBEDDINGS_DEPLOYMENT_NAME is required",
			})
		}
		if c.Embedding.APIVersion == "" {
			errors = append(errors, ValidationError{
				Field:   "embedding.api_version",
				Message: "AZURE_OPENAI_API_VERSION is required",
			})
		}
	case ProviderOllama:
		if !validURL(c.Embedding.OllamaURL) {
			errors = append(errors, ValidationError{
				Field:   "embedding.ollama_url",
				Message: "Ollama base URL is required",
			})
		}
		if c.Embedding.Model == "" {
			errors = append(errors, ValidationError{
				Field:   "embedding.model",
				Message: "embedding model is required",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "embedding.provider",
			Message: fmt.Sprintf("unsupported embedding provider: %q", c.Embedding.Provider),
		})
	}

	if c.Embedding.RateLimit < 0 {
		errors = append(errors, ValidationError{
			Field:   "embedding.rate_limit",
			Message: "rate_limit must not be negative",
		})
	}

	// Validate Index config
	switch c.Index.Backend {
	case BackendAzure:
		if c.Index.Endpoint == "" {
			errors = append(errors, ValidationError{
				Field:   "index.endpoint",
				Message: "AZURE_SEARCH_ENDPOINT is required",
			})
		} else if !validURL(c.Index.Endpoint) {
			errors = append(errors, ValidationError{
				Field:   "index.endpoint",
				Message: "invalid search endpoint URL",
			})
		}
		if c.Index.APIKey == "" {
			errors = append(errors, ValidationError{
				Field:   "index.api_key",
				Message: "AZURE_SEARCH_KEY is required",
			})
		}
		if c.Index.Name == "" {
			errors = append(errors, ValidationError{
				Field:   "index.name",
				Message: "index name is required",
			})
		}
	case BackendPGVector:
		if c.Index.DatabaseURL == "" {
			errors = append(errors, ValidationError{
				Field:   "index.database_url",
				Message: "DATABASE_URL is required",
			})
		} else if _, err := url.Parse(c.Index.DatabaseURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "index.database_url",
				Message: "invalid database URL",
			})
		}
	case BackendSQLite:
		if c.Index.SQLitePath == "" {
			errors = append(errors, ValidationError{
				Field:   "index.sqlite_path",
				Message: "sqlite_path is required",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "index.backend",
			Message: fmt.Sprintf("unsupported index backend: %q", c.Index.Backend),
		})
	}

	if c.Index.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "index.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Index.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "index.batch_size",
			Message: "batch_size must be positive",
		})
	}

	// Validate Processor config. Overlap may exceed chunk_size; the chunker clamps it.
	if c.Processor.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Processor.ChunkOverlap < 0 {
		errors = append(errors, ValidationError{
			Field:   "processor.chunk_overlap",
			Message: "chunk_overlap must be non-negative",
		})
	}

	if c.Processor.MaxChunks < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.max_chunks",
			Message: "max_chunks must be positive",
		})
	}

	// Validate include pattern format
	for _, pattern := range c.Input.Include {
		if !strings.HasPrefix(pattern, "*.") {
			errors = append(errors, ValidationError{
				Field:   "input.include",
				Message: fmt.Sprintf("invalid include pattern: %s", pattern),
			})
		}
	}

	return errors
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
