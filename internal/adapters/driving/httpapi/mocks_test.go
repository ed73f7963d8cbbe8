package httpapi

import (
	"context"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// mockDiscovery implements driving.DiscoveryService for testing.
type mockDiscovery struct {
	locations []domain.StorageLocation
	err       error
	panics    bool
}

func (m *mockDiscovery) Discover(_ context.Context) ([]domain.StorageLocation, error) {
	if m.panics {
		panic("probe exploded")
	}
	return m.locations, m.err
}

// mockSearch implements driving.SearchService for testing.
type mockSearch struct {
	searchFn  func(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)
	progress  *domain.SearchProgress
	cancelled bool
	lastReq   domain.SearchRequest
	lastID    string
}

func (m *mockSearch) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.lastReq = req
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &domain.SearchResult{SearchID: req.SearchID, Results: []domain.FileMatch{}}, nil
}

func (m *mockSearch) Progress(id string) (*domain.SearchProgress, error) {
	m.lastID = id
	if m.progress == nil {
		return nil, domain.ErrNotFound
	}
	return m.progress, nil
}

func (m *mockSearch) Cancel(id string) bool {
	m.lastID = id
	return m.cancelled
}

// mockFormat implements driving.FormatService for testing.
type mockFormat struct {
	doc       *domain.FormattedDocument
	file      *domain.FileContent
	err       error
	lastFiles []domain.FileMatch
	lastTerms []string
	lastPath  string
}

func (m *mockFormat) Format(_ context.Context, files []domain.FileMatch, terms []string) (*domain.FormattedDocument, error) {
	m.lastFiles = files
	m.lastTerms = terms
	return m.doc, m.err
}

func (m *mockFormat) ReadFile(_ context.Context, path string) (*domain.FileContent, error) {
	m.lastPath = path
	return m.file, m.err
}
