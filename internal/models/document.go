package models

// SourceFile is an input file discovered in the ingestion directory.
type SourceFile struct {
	Path string
	Name string
	Ext  string // lowercased, with the leading dot
	Size int64
}

// DocumentMetadata is derived from the filename alone.
type DocumentMetadata struct {
	Institution  string
	DocumentType string
	Year         int
	Tags         string // comma separated, matches the index field
}

// Chunk is a token-bounded slice of a file's extracted text.
type Chunk struct {
	Index int
	Total int
	Text  string
}

// IndexedDocument is the record persisted to the search index, one per chunk.
type IndexedDocument struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Summary        string    `json:"summary"`
	DocumentType   string    `json:"document_type"`
	Institution    string    `json:"institution"`
	Year           int       `json:"year"`
	FileFormat     string    `json:"file_format"`
	Tags           string    `json:"tags"`
	ChunkIndex     int       `json:"chunk_index"`
	TotalChunks    int       `json:"total_chunks"`
	FilePath       string    `json:"file_path"`
	FileSize       int64     `json:"file_size"`
	CreatedDate    string    `json:"created_date"`
	RelevanceScore float64   `json:"relevance_score"`
	ContentVector  []float32 `json:"content_vector"`
}

// ItemResult is the index's verdict on a single document of a batch.
type ItemResult struct {
	Key       string
	Succeeded bool
	Message   string
}

// BatchResult carries per-item outcomes for one upload request.
// Err is set when the whole request failed; every item is then marked failed.
type BatchResult struct {
	Number    int
	Items     []ItemResult
	Succeeded int
	Failed    int
	Err       error
}

// Tally recomputes Succeeded and Failed from Items.
func (r *BatchResult) Tally() {
	r.Succeeded, r.Failed = 0, 0
	for _, item := range r.Items {
		if item.Succeeded {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}
}

// FailedBatch marks every document of a batch as failed with err.
func FailedBatch(docs []IndexedDocument, err error) BatchResult {
	res := BatchResult{Err: err, Items: make([]ItemResult, len(docs))}
	for i, doc := range docs {
		res.Items[i] = ItemResult{Key: doc.ID, Message: err.Error()}
	}
	res.Tally()
	return res
}

// SearchQuery is a hybrid (text + vector) query against the index.
type SearchQuery struct {
	Text   string
	Vector []float32
	Top    int
}

// SearchResult is what consumers of the index render.
type SearchResult struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Institution  string  `json:"institution"`
	Year         int     `json:"year"`
	DocumentType string  `json:"document_type"`
	Content      string  `json:"content"`
	Score        float64 `json:"search_score"`
}
