package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/k3ss-search/internal/adapters/driven/host"
	"github.com/k3ss-official/k3ss-search/internal/connectors/filesystem"
	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/normalisers"
)

// mockDiscovery implements driving.DiscoveryService for testing.
type mockDiscovery struct {
	locations []domain.StorageLocation
	err       error
	calls     int
}

func (m *mockDiscovery) Discover(ctx context.Context) ([]domain.StorageLocation, error) {
	m.calls++
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("discovery: %w", domain.ErrCancelled)
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.locations, nil
}

// funcThrottle adapts a function to driven.Throttle.
type funcThrottle func(ctx context.Context) error

func (f funcThrottle) Wait(ctx context.Context) error { return f(ctx) }

// denyReader refuses to read files whose path contains deny.
type denyReader struct {
	driven.ContentReader
	deny string
}

func (r denyReader) ReadPrefix(ctx context.Context, path string, limit int64) ([]byte, error) {
	if strings.Contains(path, r.deny) {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrPermission}
	}
	return r.ContentReader.ReadPrefix(ctx, path, limit)
}

// mockTokenizer counts one token per rune.
type mockTokenizer struct{}

func (mockTokenizer) CountTokens(text string) int { return len([]rune(text)) }
func (mockTokenizer) Model() string               { return "test" }

// tempRoot returns a canonical temporary directory.
func tempRoot(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func accessible(paths ...string) []domain.StorageLocation {
	out := make([]domain.StorageLocation, len(paths))
	for i, p := range paths {
		out[i] = domain.StorageLocation{Path: p, Name: filepath.Base(p), Type: domain.LocationLocal, Accessible: true}
	}
	return out
}

// testEnv wires the services over the real filesystem adapters.
type testEnv struct {
	discovery *mockDiscovery
	registry  *SearchRegistry
	loader    *ContentLoader
	search    *SearchService
	format    *FormatService
}

func newEnv(t *testing.T, settings domain.Settings, throttle driven.Throttle, locations ...domain.StorageLocation) *testEnv {
	t.Helper()
	return newEnvWithReader(t, settings, throttle, filesystem.NewReader(), locations...)
}

func newEnvWithReader(
	t *testing.T,
	settings domain.Settings,
	throttle driven.Throttle,
	reader driven.ContentReader,
	locations ...domain.StorageLocation,
) *testEnv {
	t.Helper()
	require.NoError(t, settings.Validate())

	discovery := &mockDiscovery{locations: locations}
	guard := NewLocationGuard(discovery, host.New(), settings.Search.AllowUndiscovered)
	walker := filesystem.NewWalker(driven.WalkOptions{
		SkipHidden:       settings.Search.SkipHidden,
		FollowSymlinks:   settings.Search.FollowSymlinks,
		RespectGitignore: settings.Search.RespectGitignore,
		ExcludeDirs:      settings.Search.ExcludeDirs,
	})
	loader := NewContentLoader(reader, normalisers.NewDefaultRegistry(), throttle, settings.Search)
	registry := NewSearchRegistry()

	return &testEnv{
		discovery: discovery,
		registry:  registry,
		loader:    loader,
		search:    NewSearchService(guard, walker, loader, registry, settings.Search),
		format:    NewFormatService(guard, loader, settings.Format, nil),
	}
}
