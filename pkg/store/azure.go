package store

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/xhad/stressdocs/internal/models"
)

type AzureSearchConfig struct {
	Endpoint   string
	APIKey     string
	IndexName  string
	APIVersion string
	Timeout    time.Duration
}

// AzureSearch talks to the Azure AI Search REST API. The index itself
// must already exist with the IndexedDocument field names.
type AzureSearch struct {
	config AzureSearchConfig
	client *resty.Client
}

type uploadAction struct {
	Action string `json:"@search.action"`
	models.IndexedDocument
}

type uploadRequest struct {
	Value []uploadAction `json:"value"`
}

type uploadResponse struct {
	Value []struct {
		Key          string `json:"key"`
		Status       bool   `json:"status"`
		ErrorMessage string `json:"errorMessage"`
		StatusCode   int    `json:"statusCode"`
	} `json:"value"`
}

type vectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	Fields string    `json:"fields"`
	K      int       `json:"k"`
}

type searchRequest struct {
	Search        string        `json:"search"`
	Top           int           `json:"top"`
	Select        string        `json:"select"`
	VectorQueries []vectorQuery `json:"vectorQueries,omitempty"`
}

type searchResponse struct {
	Value []struct {
		Score        float64 `json:"@search.score"`
		ID           string  `json:"id"`
		Title        string  `json:"title"`
		Institution  string  `json:"institution"`
		Year         int     `json:"year"`
		DocumentType string  `json:"document_type"`
		Content      string  `json:"content"`
	} `json:"value"`
}

const searchSelect = "id,title,institution,year,document_type,content"

func NewAzureSearch(config AzureSearchConfig) (*AzureSearch, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("azure search endpoint is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("azure search api key is required")
	}
	if config.IndexName == "" {
		config.IndexName = "financial-stress-test-index"
	}
	if config.APIVersion == "" {
		config.APIVersion = "2023-11-01"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.Endpoint, "/")).
		SetTimeout(config.Timeout).
		SetHeader("api-key", config.APIKey).
		SetHeader("Content-Type", "application/json").
		SetQueryParam("api-version", config.APIVersion)

	return &AzureSearch{
		config: config,
		client: client,
	}, nil
}

func (a *AzureSearch) docsURL(op string) string {
	return fmt.Sprintf("/indexes/%s/docs/%s", a.config.IndexName, op)
}

// Upload sends one batch. HTTP 200 and 207 both carry per-item status;
// anything else fails the whole batch.
func (a *AzureSearch) Upload(ctx context.Context, docs []models.IndexedDocument) models.BatchResult {
	body := uploadRequest{Value: make([]uploadAction, len(docs))}
	for i, doc := range docs {
		body.Value[i] = uploadAction{Action: "upload", IndexedDocument: doc}
	}

	var out uploadResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post(a.docsURL("index"))
	if err != nil {
		return models.FailedBatch(docs, fmt.Errorf("failed to upload documents: %w", err))
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusMultiStatus {
		return models.FailedBatch(docs, fmt.Errorf("upload failed with status %d: %s", resp.StatusCode(), resp.String()))
	}

	byKey := make(map[string]models.ItemResult, len(out.Value))
	for _, v := range out.Value {
		byKey[v.Key] = models.ItemResult{Key: v.Key, Succeeded: v.Status, Message: v.ErrorMessage}
	}

	res := models.BatchResult{Items: make([]models.ItemResult, len(docs))}
	for i, doc := range docs {
		item, ok := byKey[doc.ID]
		if !ok {
			item = models.ItemResult{Key: doc.ID, Message: "no status returned for document"}
		}
		res.Items[i] = item
	}
	res.Tally()
	return res
}

func (a *AzureSearch) Search(ctx context.Context, query models.SearchQuery) ([]models.SearchResult, error) {
	top := query.Top
	if top <= 0 {
		top = 5
	}
	text := query.Text
	if strings.TrimSpace(text) == "" {
		text = "*"
	}

	body := searchRequest{Search: text, Top: top, Select: searchSelect}
	if len(query.Vector) > 0 {
		body.VectorQueries = []vectorQuery{{
			Kind:   "vector",
			Vector: query.Vector,
			Fields: "content_vector",
			K:      top,
		}}
	}

	var out searchResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post(a.docsURL("search"))
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("search failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	results := make([]models.SearchResult, 0, len(out.Value))
	for _, v := range out.Value {
		results = append(results, models.SearchResult{
			ID:           v.ID,
			Title:        v.Title,
			Institution:  v.Institution,
			Year:         v.Year,
			DocumentType: v.DocumentType,
			Content:      v.Content,
			Score:        v.Score,
		})
	}
	return results, nil
}

func (a *AzureSearch) Close() {}
