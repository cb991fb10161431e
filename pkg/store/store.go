// Package store holds the search index backends documents are uploaded
// to and queried from.
package store

import (
	"context"
	"fmt"

	"github.com/xhad/stressdocs/internal/types"
	"github.com/xhad/stressdocs/pkg/config"
)

var (
	_ types.Index = (*AzureSearch)(nil)
	_ types.Index = (*VectorStore)(nil)
	_ types.Index = (*SQLiteStore)(nil)
)

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.IndexConfig) (types.Index, error) {
	switch cfg.Backend {
	case config.BackendAzure, "":
		idx, err := NewAzureSearch(AzureSearchConfig{
			Endpoint:   cfg.Endpoint,
			APIKey:     cfg.APIKey,
			IndexName:  cfg.Name,
			APIVersion: cfg.APIVersion,
		})
		if err != nil {
			return nil, err
		}
		return idx, nil
	case config.BackendPGVector:
		idx, err := NewWithConfig(ctx, VectorStoreConfig{
			ConnString: cfg.DatabaseURL,
			TableName:  cfg.TableName,
			VectorDim:  cfg.VectorDim,
		})
		if err != nil {
			return nil, err
		}
		return idx, nil
	case config.BackendSQLite:
		idx, err := NewSQLite(ctx, SQLiteConfig{
			Path:      cfg.SQLitePath,
			TableName: cfg.TableName,
		})
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unsupported index backend: %q", cfg.Backend)
	}
}
