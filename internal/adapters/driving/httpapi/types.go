package httpapi

import (
	"time"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// SearchBody is the body of POST /api/search.
type SearchBody struct {
	Paths []string `json:"paths"`
	Terms []string `json:"terms"`

	// SearchContent defaults to true when absent.
	SearchContent *bool  `json:"searchContent,omitempty"`
	DeepSearch    bool   `json:"deepSearch"`
	SearchID      string `json:"searchId,omitempty"`
}

func (b SearchBody) request() domain.SearchRequest {
	content := true
	if b.SearchContent != nil {
		content = *b.SearchContent
	}
	return domain.SearchRequest{
		Paths:         b.Paths,
		Terms:         b.Terms,
		SearchContent: content,
		DeepSearch:    b.DeepSearch,
		SearchID:      b.SearchID,
	}
}

// FormatBody is the body of POST /api/format-llm.
type FormatBody struct {
	Files []FileBody `json:"files"`
	Terms []string   `json:"terms"`
}

// FileBody is a search hit sent back by the client for formatting.
// Modified is kept as text so timestamps without a zone still parse.
type FileBody struct {
	Path     string   `json:"path"`
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Size     int64    `json:"size"`
	Modified string   `json:"modified"`
	Matches  []string `json:"matches"`
}

// modifiedLayouts are tried in order when parsing FileBody.Modified.
var modifiedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (f FileBody) match() domain.FileMatch {
	m := domain.FileMatch{
		Name:    f.Name,
		Path:    f.Path,
		Type:    f.Type,
		Size:    f.Size,
		Matches: f.Matches,
	}
	for _, layout := range modifiedLayouts {
		if t, err := time.Parse(layout, f.Modified); err == nil {
			m.Modified = t
			break
		}
	}
	return m
}

// LocationsResponse is returned by GET /api/discover-locations.
type LocationsResponse struct {
	Success        bool                     `json:"success"`
	Locations      []domain.StorageLocation `json:"locations"`
	TotalLocations int                      `json:"total_locations"`
}

// SearchResponse is returned by POST /api/search.
type SearchResponse struct {
	Success bool `json:"success"`
	domain.SearchResult
}

// CancelResponse is returned by POST /api/search/{searchId}/cancel.
type CancelResponse struct {
	Success   bool `json:"success"`
	Cancelled bool `json:"cancelled"`
}

// FormatResponse is returned by POST /api/format-llm.
type FormatResponse struct {
	Success bool `json:"success"`
	domain.FormattedDocument
}

// FileContentResponse is returned by GET /api/file-content.
type FileContentResponse struct {
	Success bool                `json:"success"`
	File    *domain.FileContent `json:"file"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
