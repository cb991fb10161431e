package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/xhad/stressdocs/internal/models"
)

type SQLiteConfig struct {
	Path      string
	TableName string
}

// SQLiteStore keeps the index in a local database file. Ranking is
// done in process, so it suits small corpora and offline runs.
type SQLiteStore struct {
	config SQLiteConfig
	db     *sql.DB
}

func NewSQLite(ctx context.Context, config SQLiteConfig) (*SQLiteStore, error) {
	if config.Path == "" {
		config.Path = "stressdocs.db"
	}
	if config.TableName == "" {
		config.TableName = "documents"
	}

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{config: config, db: db}
	if err := s.initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initialize(ctx context.Context) error {
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
			file_size INTEGER,
			created_date TEXT,
			relevance_score REAL,
			content_vector TEXT
		)`, s.config.TableName)

	if _, err := s.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Upload(ctx context.Context, docs []models.IndexedDocument) models.BatchResult {
	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, title, content, summary, document_type, institution, year,
			file_format, tags, chunk_index, total_chunks, file_path, file_size,
			created_date, relevance_score, content_vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			summary = excluded.summary,
			document_type = excluded.document_type,
			institution = excluded.institution,
			year = excluded.year,
			file_format = excluded.file_format,
			tags = excluded.tags,
			chunk_index = excluded.chunk_index,
			total_chunks = excluded.total_chunks,
			file_path = excluded.file_path,
			file_size = excluded.file_size,
			created_date = excluded.created_date,
			relevance_score = excluded.relevance_score,
			content_vector = excluded.content_vector`,
		s.config.TableName)

	res := models.BatchResult{Items: make([]models.ItemResult, len(docs))}
	for i, doc := range docs {
		item := models.ItemResult{Key: doc.ID, Succeeded: true}

		vec, err := json.Marshal(doc.ContentVector)
		if err == nil {
			_, err = s.db.ExecContext(ctx, stmt,
				doc.ID, doc.Title, doc.Content, doc.Summary, doc.DocumentType,
				doc.Institution, doc.Year, doc.FileFormat, doc.Tags, doc.ChunkIndex,
				doc.TotalChunks, doc.FilePath, doc.FileSize, doc.CreatedDate,
				doc.RelevanceScore, string(vec))
		}
		if err != nil {
			item.Succeeded = false
			item.Message = err.Error()
		}
		res.Items[i] = item
	}
	res.Tally()
	return res
}

func (s *SQLiteStore) Search(ctx context.Context, query models.SearchQuery) ([]models.SearchResult, error) {
	top := query.Top
	if top <= 0 {
		top = 5
	}
	hasVector := len(query.Vector) > 0
	hasText := strings.TrimSpace(query.Text) != ""

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, title, institution, year, document_type, content, content_vector
		FROM %s`, s.config.TableName))
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var (
			r      models.SearchResult
			rawVec string
		)
		if err := rows.Scan(&r.ID, &r.Title, &r.Institution, &r.Year, &r.DocumentType, &r.Content, &rawVec); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		var vecSim float64
		if hasVector {
			var vec []float32
			if err := json.Unmarshal([]byte(rawVec), &vec); err != nil {
				return nil, fmt.Errorf("failed to decode vector for %s: %w", r.ID, err)
			}
			vecSim = cosineSimilarity(query.Vector, vec)
		}
		var textScore float64
		if hasText {
			textScore = keywordScore(query.Text, r.Title+" "+r.Content)
		}
		r.Score = hybridScore(vecSim, textScore, hasVector, hasText)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > top {
		results = results[:top]
	}
	return results, nil
}

func (s *SQLiteStore) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
