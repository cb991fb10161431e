package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"

	cfgPkg "github.com/xhad/stressdocs/pkg/config"
	"github.com/xhad/stressdocs/pkg/llm"
	"github.com/xhad/stressdocs/pkg/logger"
)

var errInvalidConfig = errors.New("invalid configuration")

// loadConfig reads the config file and environment, lets override
// adjust it for command line flags, then validates the result.
func loadConfig(override func(*cfgPkg.Config)) (*cfgPkg.Config, error) {
	cfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if override != nil {
		override(cfg)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		color.Red("Configuration problems:")
		for _, e := range errs {
			color.Red("  - %s", e.Error())
		}
		return nil, errInvalidConfig
	}
	return cfg, nil
}

func newLogger(cfg *cfgPkg.Config) (*logger.Logger, error) {
	log, err := logger.New(cfg.Log.Mode, verbose || cfg.Log.Verbose)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

func newEmbedder(cfg *cfgPkg.Config, log *logger.Logger) (*llm.Embedder, error) {
	emb, err := llm.NewEmbedderWithConfig(llm.EmbedderConfig{
		Provider:   cfg.Embedding.Provider,
		Endpoint:   cfg.Embedding.Endpoint,
		APIKey:     cfg.Embedding.APIKey,
		Deployment: cfg.Embedding.Deployment,
		APIVersion: cfg.Embedding.APIVersion,
		BaseURL:    cfg.Embedding.OllamaURL,
		Model:      cfg.Embedding.Model,
		RateLimit:  cfg.Embedding.RateLimit,
		Logger:     log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %v", err)
	}
	return emb, nil
}
