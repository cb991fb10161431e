package store

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/xhad/stressdocs/internal/models"
)

// ivfflat and hnsw indexes only accept vectors up to this many dimensions.
const maxIndexedDim = 2000

type VectorStoreConfig struct {
	ConnString string
	TableName  string
	VectorDim  int
}

type VectorStore struct {
	config VectorStoreConfig
	pool   *pgxpool.Pool
}

func NewWithConfig(ctx context.Context, config VectorStoreConfig) (*VectorStore, error) {
	if config.TableName == "" {
		config.TableName = "documents"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 3072 // text-embedding-3-large
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	vs := &VectorStore{
		config: config,
		pool:   pool,
	}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *VectorStore) initialize(ctx context.Context) error {
	// Enable pgvector extension
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %v", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT,
			content TEXT,
			summary TEXT,
			document_type TEXT,
			institution TEXT,
			year INTEGER,
			file_format TEXT,
			tags TEXT,
			chunk_index INTEGER,
			total_chunks INTEGER,
			file_path TEXT,
			file_size BIGINT,
			created_date TEXT,
			relevance_score DOUBLE PRECISION,
			content_vector vector(%d)
		)`, vs.config.TableName, vs.config.VectorDim)

	_, err = vs.pool.Exec(ctx, createTable)
	if err != nil {
		return fmt.Errorf("failed to create table: %v", err)
	}

	createTextIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_content_fts_idx
		ON %s
		USING gin (to_tsvector('english', coalesce(title, '') || ' ' || coalesce(content, '')))`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createTextIndex)
	if err != nil {
		return fmt.Errorf("failed to create text index: %v", err)
	}

	if vs.config.VectorDim > maxIndexedDim {
		// exact scan; approximate indexes reject wide vectors
		return nil
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_content_vector_idx
		ON %s
		USING ivfflat (content_vector vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	_, err = vs.pool.Exec(ctx, createIndex)
	if err != nil {
		return fmt.Errorf("failed to create index: %v", err)
	}

	return nil
}

// Upload upserts each document on its own so one bad row does not
// fail the batch.
func (vs *VectorStore) Upload(ctx context.Context, docs []models.IndexedDocument) models.BatchResult {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, title, content, summary, document_type, institution, year,
			file_format, tags, chunk_index, total_chunks, file_path, file_size,
			created_date, relevance_score, content_vector)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			content = EXCLUDED.content,
			summary = EXCLUDED.summary,
			document_type = EXCLUDED.document_type,
			institution = EXCLUDED.institution,
			year = EXCLUDED.year,
			file_format = EXCLUDED.file_format,
			tags = EXCLUDED.tags,
			chunk_index = EXCLUDED.chunk_index,
			total_chunks = EXCLUDED.total_chunks,
			file_path = EXCLUDED.file_path,
			file_size = EXCLUDED.file_size,
			created_date = EXCLUDED.created_date,
			relevance_score = EXCLUDED.relevance_score,
			content_vector = EXCLUDED.content_vector`,
		vs.config.TableName)

	res := models.BatchResult{Items: make([]models.ItemResult, len(docs))}
	for i, doc := range docs {
		item := models.ItemResult{Key: doc.ID, Succeeded: true}

		_, err := vs.pool.Exec(ctx, stmt,
			doc.ID,
			sanitizeUTF8(doc.Title),
			sanitizeUTF8(doc.Content),
			sanitizeUTF8(doc.Summary),
			doc.DocumentType,
			doc.Institution,
			doc.Year,
			doc.FileFormat,
			doc.Tags,
			doc.ChunkIndex,
			doc.TotalChunks,
			sanitizeUTF8(doc.FilePath),
			doc.FileSize,
			doc.CreatedDate,
			doc.RelevanceScore,
			pgvector.NewVector(doc.ContentVector),
		)
		if err != nil {
			item.Succeeded = false
			item.Message = fmt.Sprintf("failed to insert document: %v", err)
		}
		res.Items[i] = item
	}
	res.Tally()
	return res
}

// Search ranks by cosine similarity blended with ts_rank over title and
// content.
func (vs *VectorStore) Search(ctx context.Context, query models.SearchQuery) ([]models.SearchResult, error) {
	top := query.Top
	if top <= 0 {
		top = 5
	}
	hasVector := len(query.Vector) > 0
	hasText := strings.TrimSpace(query.Text) != ""
	if !hasVector && !hasText {
		return nil, fmt.Errorf("search query needs text or a vector")
	}

	vectorExpr := "0"
	if hasVector {
		vectorExpr = "(1 - (content_vector <=> $1))"
	}
	textExpr := "0"
	if hasText {
		textExpr = "ts_rank(to_tsvector('english', coalesce(title, '') || ' ' || coalesce(content, '')), plainto_tsquery('english', $2))"
	}

	vectorWeight, textWeight := 1.0, 1.0
	if hasVector && hasText {
		vectorWeight, textWeight = VectorWeight, TextWeight
	}

	sql := fmt.Sprintf(`
		SELECT id, title, institution, year, document_type, content,
			(%g * %s + %g * %s)::float8 AS score
		FROM %s
		WHERE $1::vector IS NOT NULL OR $2 <> ''
		ORDER BY score DESC
		LIMIT $3`,
		vectorWeight, vectorExpr, textWeight, textExpr, vs.config.TableName)

	var vec *pgvector.Vector
	if hasVector {
		v := pgvector.NewVector(query.Vector)
		vec = &v
	}

	rows, err := vs.pool.Query(ctx, sql, vec, query.Text, top)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %v", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.ID, &r.Title, &r.Institution, &r.Year, &r.DocumentType, &r.Content, &r.Score); err != nil {
			return nil, fmt.Errorf("failed to scan row: %v", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %v", err)
	}

	return results, nil
}

func (vs *VectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

// sanitizeUTF8 drops invalid bytes, which Postgres rejects in TEXT columns.
func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
