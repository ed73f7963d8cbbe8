package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

type fixture struct {
	discovery *mockDiscovery
	search    *mockSearch
	format    *mockFormat
	handler   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		discovery: &mockDiscovery{},
		search:    &mockSearch{},
		format:    &mockFormat{},
	}
	logger := zerolog.Nop()
	srv, err := NewServer(Config{Version: "test"}, &Ports{
		Discovery: f.discovery,
		Search:    f.search,
		Format:    f.format,
	}, &logger)
	require.NoError(t, err)
	f.handler = srv.Handler()
	return f
}

func (f *fixture) do(ctx context.Context, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNewServer_RequiresPorts(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewServer(Config{}, &Ports{Discovery: &mockDiscovery{}}, &logger)
	assert.ErrorContains(t, err, "search service is required")
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.do(context.Background(), http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, HealthResponse{Status: "ok", Version: "test"}, decode[HealthResponse](t, rec))
}

func TestDiscoverLocations(t *testing.T) {
	f := newFixture(t)
	f.discovery.locations = []domain.StorageLocation{
		{Path: "/home/u", Name: "Home", Type: domain.LocationLocal, Accessible: true},
		{Path: "/media/u/USB", Name: "USB", Type: domain.LocationExternal},
	}

	rec := f.do(context.Background(), http.MethodGet, "/api/discover-locations", "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[LocationsResponse](t, rec)
	assert.True(t, got.Success)
	assert.Equal(t, 2, got.TotalLocations)
	assert.Equal(t, f.discovery.locations, got.Locations)
}

func TestDiscoverLocations_Empty(t *testing.T) {
	f := newFixture(t)

	rec := f.do(context.Background(), http.MethodGet, "/api/discover-locations", "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Equal(t, []any{}, got["locations"])
}

func TestDiscoverLocations_Error(t *testing.T) {
	f := newFixture(t)
	f.discovery.err = errors.New("mount table unreadable")

	rec := f.do(context.Background(), http.MethodGet, "/api/discover-locations", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	got := decode[ErrorResponse](t, rec)
	assert.False(t, got.Success)
	assert.Equal(t, domain.KindUnexpected, got.Kind)
	assert.Contains(t, got.Error, "mount table unreadable")
}

func TestRecoverPanic(t *testing.T) {
	f := newFixture(t)
	f.discovery.panics = true

	rec := f.do(context.Background(), http.MethodGet, "/api/discover-locations", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	got := decode[ErrorResponse](t, rec)
	assert.Equal(t, domain.KindUnexpected, got.Kind)
	assert.Contains(t, got.Error, "probe exploded")
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	f.search.searchFn = func(_ context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
		return &domain.SearchResult{
			SearchID: req.SearchID,
			Results:  []domain.FileMatch{{Name: "invoice.pdf", Path: "/d/invoice.pdf", Matches: []string{"invoice"}}},
			Stats:    domain.SearchStats{TotalFilesScanned: 3, MatchingFiles: 1, SearchTerms: []string{"invoice"}},
			Errors:   []domain.PathError{},
			Notes:    []string{},
		}, nil
	}

	rec := f.do(context.Background(), http.MethodPost, "/api/search", `{"paths":["/d"],"terms":["invoice"],"searchId":"s-1"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[SearchResponse](t, rec)
	assert.True(t, got.Success)
	assert.Equal(t, "s-1", got.SearchID)
	require.Len(t, got.Results, 1)
	assert.Equal(t, 1, got.Stats.MatchingFiles)
	raw := decode[map[string]any](t, rec)
	assert.Equal(t, "s-1", raw["search_id"])
	assert.Equal(t, []any{}, raw["errors"])
	assert.Contains(t, raw["stats"], "total_files_scanned")

	assert.True(t, f.search.lastReq.SearchContent, "searchContent defaults to true")
	assert.False(t, f.search.lastReq.DeepSearch)
}

func TestSearch_Flags(t *testing.T) {
	f := newFixture(t)

	rec := f.do(context.Background(), http.MethodPost, "/api/search", `{"paths":["/d"],"terms":["x"],"searchContent":false,"deepSearch":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.search.lastReq.SearchContent)
	assert.True(t, f.search.lastReq.DeepSearch)
	assert.NotEmpty(t, f.search.lastReq.SearchID, "an id is generated")
}

func TestSearch_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "no data provided"},
		{"malformed", `{"paths":`, "malformed JSON"},
		{"missing terms", `{"paths":["/d"]}`, "terms is required"},
		{"wrong type", `{"paths":"/d","terms":["x"]}`, "Invalid type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			rec := f.do(context.Background(), http.MethodPost, "/api/search", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			got := decode[ErrorResponse](t, rec)
			assert.Equal(t, domain.KindInvalidInput, got.Kind)
			assert.Contains(t, got.Error, tt.want)
			assert.Empty(t, f.search.lastReq.SearchID, "service not called")
		})
	}
}

func TestSearch_ErrorKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   domain.ErrorKind
	}{
		{"invalid", fmt.Errorf("no searchable paths: %w", domain.ErrInvalidInput), http.StatusBadRequest, domain.KindInvalidInput},
		{"cancelled", fmt.Errorf("search s: %w", domain.ErrCancelled), StatusClientClosedRequest, domain.KindCancelled},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, domain.KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.search.searchFn = func(context.Context, domain.SearchRequest) (*domain.SearchResult, error) {
				return nil, tt.err
			}

			rec := f.do(context.Background(), http.MethodPost, "/api/search", `{"paths":["/d"],"terms":["x"]}`)

			require.Equal(t, tt.wantStatus, rec.Code)
			got := decode[ErrorResponse](t, rec)
			assert.False(t, got.Success)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.NotContains(t, decode[map[string]any](t, rec), "results")
		})
	}
}

func TestSearch_ClientAbortCancels(t *testing.T) {
	f := newFixture(t)
	started := make(chan struct{})
	f.search.searchFn = func(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
		close(started)
		<-ctx.Done()
		return nil, fmt.Errorf("search %s: %w", req.SearchID, domain.ErrCancelled)
	}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- f.do(ctx, http.MethodPost, "/api/search", `{"paths":["/d"],"terms":["x"]}`)
	}()
	<-started
	cancel()

	select {
	case rec := <-done:
		assert.Equal(t, StatusClientClosedRequest, rec.Code)
	case <-time.After(5 * time.Second):
		t.Fatal("search did not stop after the client went away")
	}
}

func TestCancelSearch(t *testing.T) {
	f := newFixture(t)
	f.search.cancelled = true

	rec := f.do(context.Background(), http.MethodPost, "/api/search/s-42/cancel", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, CancelResponse{Success: true, Cancelled: true}, decode[CancelResponse](t, rec))
	assert.Equal(t, "s-42", f.search.lastID)
}

func TestSearchProgress(t *testing.T) {
	f := newFixture(t)

	rec := f.do(context.Background(), http.MethodGet, "/api/search/nope/progress", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.KindNotFound, decode[ErrorResponse](t, rec).Kind)

	f.search.progress = &domain.SearchProgress{SearchID: "s-1", Running: true, FilesVisited: 12, DirectoriesScanned: 2, DirectoriesDiscovered: 5}
	rec = f.do(context.Background(), http.MethodGet, "/api/search/s-1/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[domain.SearchProgress](t, rec)
	assert.Equal(t, *f.search.progress, got)
}

func TestFormatLLM(t *testing.T) {
	f := newFixture(t)
	f.format.doc = &domain.FormattedDocument{Content: "# Search results\n", FileCount: 2, IncludedFiles: 2}

	body := `{"files":[
		{"path":"/d/a.txt","name":"a.txt","size":3,"modified":"2024-01-02T03:04:05Z","matches":["a"]},
		{"path":"file:///d/b%20c.txt","modified":"2024-01-02T03:04:05.123456"}
	],"terms":["a"]}`
	rec := f.do(context.Background(), http.MethodPost, "/api/format-llm", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[FormatResponse](t, rec)
	assert.True(t, got.Success)
	assert.Equal(t, "# Search results\n", got.Content)
	assert.Equal(t, 2, got.FileCount)
	assert.Contains(t, decode[map[string]any](t, rec), "formatted_content")

	require.Len(t, f.format.lastFiles, 2)
	assert.Equal(t, []string{"a"}, f.format.lastTerms)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), f.format.lastFiles[0].Modified)
	assert.Equal(t, []string{"a"}, f.format.lastFiles[0].Matches)
	assert.Equal(t, "/d/b c.txt", f.format.lastFiles[1].Path)
	assert.Equal(t, 2024, f.format.lastFiles[1].Modified.Year())
}

func TestFormatLLM_BadRequests(t *testing.T) {
	f := newFixture(t)

	rec := f.do(context.Background(), http.MethodPost, "/api/format-llm", `{"terms":["a"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "files is required")

	rec = f.do(context.Background(), http.MethodPost, "/api/format-llm", `{"files":[{"name":"x"}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	f.format.err = fmt.Errorf("no files to format: %w", domain.ErrInvalidInput)
	rec = f.do(context.Background(), http.MethodPost, "/api/format-llm", `{"files":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, domain.KindInvalidInput, decode[ErrorResponse](t, rec).Kind)
}

func TestFileContent(t *testing.T) {
	f := newFixture(t)
	f.format.file = &domain.FileContent{Path: "/d/a.txt", Name: "a.txt", Type: "Text File", Size: 5, Content: "hello"}

	rec := f.do(context.Background(), http.MethodGet, "/api/file-content?path=file%3A%2F%2F%2Fd%2Fa.txt", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[FileContentResponse](t, rec)
	assert.True(t, got.Success)
	assert.Equal(t, "hello", got.File.Content)
	assert.Equal(t, "/d/a.txt", f.format.lastPath)

	rec = f.do(context.Background(), http.MethodGet, "/api/file-content/d/sub/a.txt", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "/d/sub/a.txt", f.format.lastPath)
}

func TestFileContent_Errors(t *testing.T) {
	f := newFixture(t)

	rec := f.do(context.Background(), http.MethodGet, "/api/file-content", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	f.format.err = &domain.OpError{Op: "read", Path: "/d/gone.txt", Err: domain.ErrNotFound}
	rec = f.do(context.Background(), http.MethodGet, "/api/file-content?path=/d/gone.txt", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	got := decode[ErrorResponse](t, rec)
	assert.Equal(t, domain.KindNotFound, got.Kind)
	assert.Equal(t, "read /d/gone.txt: not found", got.Error)
}

func TestCORS(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/search", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenAPI(t *testing.T) {
	f := newFixture(t)

	rec := f.do(context.Background(), http.MethodGet, "/api/openapi.json", "")

	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[map[string]any](t, rec)
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/search")
	assert.Contains(t, paths, "/api/format-llm")
	assert.Contains(t, paths, "/api/discover-locations")
	assert.Contains(t, rec.Body.String(), "k3ss-search API")
}
