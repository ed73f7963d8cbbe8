package mcp

import (
	"context"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// mockDiscoveryService is a mock implementation of driving.DiscoveryService.
type mockDiscoveryService struct {
	locations []domain.StorageLocation
	err       error
}

func (m *mockDiscoveryService) Discover(_ context.Context) ([]domain.StorageLocation, error) {
	return m.locations, m.err
}

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	result  *domain.SearchResult
	err     error
	lastReq domain.SearchRequest
}

func (m *mockSearchService) Search(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	m.lastReq = req
	return m.result, m.err
}

func (m *mockSearchService) Progress(_ string) (*domain.SearchProgress, error) {
	return nil, domain.ErrNotFound
}

func (m *mockSearchService) Cancel(_ string) bool {
	return false
}

// mockFormatService is a mock implementation of driving.FormatService.
type mockFormatService struct {
	doc       *domain.FormattedDocument
	file      *domain.FileContent
	err       error
	lastFiles []domain.FileMatch
	lastTerms []string
	lastPath  string
}

func (m *mockFormatService) Format(_ context.Context, files []domain.FileMatch, terms []string) (*domain.FormattedDocument, error) {
	m.lastFiles = files
	m.lastTerms = terms
	return m.doc, m.err
}

func (m *mockFormatService) ReadFile(_ context.Context, path string) (*domain.FileContent, error) {
	m.lastPath = path
	return m.file, m.err
}

func newTestPorts() (*Ports, *mockDiscoveryService, *mockSearchService, *mockFormatService) {
	d := &mockDiscoveryService{}
	s := &mockSearchService{}
	f := &mockFormatService{}
	return &Ports{Discovery: d, Search: s, Format: f}, d, s, f
}
