package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/xhad/stressdocs/pkg/logger"
)

const (
	ProviderAzure  = "azure"
	ProviderOllama = "ollama"
)

// EmbedderConfig selects and configures the embedding backend.
type EmbedderConfig struct {
	Provider string

	// Azure OpenAI
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string

	// Ollama
	BaseURL string
	Model   string

	// Requests per second; 0 disables pacing.
	RateLimit float64
	Logger    *logger.Logger
}

// Embedder turns text into a vector. Failures are logged and yield an
// empty vector; nothing is retried.
type Embedder struct {
	Config  EmbedderConfig
	client  embeddings.Embedder
	limiter *rate.Limiter
	log     *logger.Logger
}

func NewEmbedderWithConfig(config EmbedderConfig) (*Embedder, error) {
	if config.Provider == "" {
		config.Provider = ProviderAzure
	}
	if config.Deployment == "" {
		config.Deployment = "text-embedding-3-large"
	}
	if config.APIVersion == "" {
		config.APIVersion = "2024-02-01"
	}
	if config.Model == "" {
		config.Model = "nomic-embed-text:latest" // Default Ollama model
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}

	var (
		client embeddings.EmbedderClient
		err    error
	)
	switch config.Provider {
	case ProviderAzure:
		client, err = openai.New(
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithBaseURL(strings.TrimRight(config.Endpoint, "/")),
			openai.WithToken(config.APIKey),
			openai.WithAPIVersion(config.APIVersion),
			openai.WithModel(config.Deployment),
			openai.WithEmbeddingModel(config.Deployment),
		)
	case ProviderOllama:
		client, err = ollama.New(
			ollama.WithModel(config.Model),
			ollama.WithServerURL(config.BaseURL),
		)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %q", config.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding client: %w", err)
	}

	emb, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(false))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	e := &Embedder{
		Config: config,
		client: emb,
		log:    config.Logger,
	}
	if config.RateLimit > 0 {
		e.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}
	return e, nil
}

// Embed returns the embedding for text, or an empty slice on failure.
func (e *Embedder) Embed(ctx context.Context, text string) []float32 {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			e.log.Warn("embedding cancelled", "error", err)
			return []float32{}
		}
	}

	vector, err := e.client.EmbedQuery(ctx, text)
	if err != nil {
		e.log.Error("failed to create embedding", "provider", e.Config.Provider, "error", err)
		return []float32{}
	}
	if len(vector) == 0 {
		e.log.Warn("embedding service returned an empty vector", "provider", e.Config.Provider)
		return []float32{}
	}
	return vector
}
