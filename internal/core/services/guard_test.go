package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/k3ss-search/internal/adapters/driven/host"
	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

func TestLocationGuard_CheckRoot(t *testing.T) {
	root := tempRoot(t)
	writeFiles(t, root, map[string]string{"docs/a.txt": "a", "file.txt": "f"})
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.Mkdir(locked, 0o755))
	outside := tempRoot(t)

	locations := accessible(root)
	locations = append(locations, domain.StorageLocation{Path: locked, Accessible: false})
	guard := NewLocationGuard(&mockDiscovery{locations: locations}, host.New(), false)
	scope, err := guard.Scope(context.Background())
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr error
	}{
		{"location itself", root, root, nil},
		{"nested directory", filepath.Join(root, "docs"), filepath.Join(root, "docs"), nil},
		{"unclean path", root + "/docs/../docs", filepath.Join(root, "docs"), nil},
		{"relative", "docs", "", domain.ErrInvalidInput},
		{"file not directory", filepath.Join(root, "file.txt"), "", domain.ErrInvalidInput},
		{"inaccessible location wins over parent", locked, "", domain.ErrPathInaccessible},
		{"not discovered", outside, "", domain.ErrInvalidInput},
		{"missing", filepath.Join(root, "nope"), "", domain.ErrPathInaccessible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scope.CheckRoot(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				var opErr *domain.OpError
				assert.True(t, errors.As(err, &opErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocationGuard_CheckFile(t *testing.T) {
	root := tempRoot(t)
	writeFiles(t, root, map[string]string{"a.txt": "a"})
	guard := NewLocationGuard(&mockDiscovery{locations: accessible(root)}, host.New(), false)
	scope, err := guard.Scope(context.Background())
	require.NoError(t, err)

	got, err := scope.CheckFile(filepath.Join(root, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a.txt"), got)

	_, err = scope.CheckFile(filepath.Join(root, "gone.txt"))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocationGuard_SymlinkOutOfLocation(t *testing.T) {
	root := tempRoot(t)
	outside := tempRoot(t)
	link := filepath.Join(root, "escape")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	guard := NewLocationGuard(&mockDiscovery{locations: accessible(root)}, host.New(), false)
	scope, err := guard.Scope(context.Background())
	require.NoError(t, err)

	_, err = scope.CheckRoot(link)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLocationGuard_DiscoveryError(t *testing.T) {
	guard := NewLocationGuard(&mockDiscovery{err: errors.New("probe failed")}, host.New(), false)

	scope, err := guard.Scope(context.Background())
	assert.Nil(t, scope)
	assert.ErrorContains(t, err, "probe failed")
}

func TestContaining(t *testing.T) {
	locations := []domain.StorageLocation{
		{Path: "/"},
		{Path: "/home/u"},
		{Path: "/home/u/Dropbox"},
	}

	loc, ok := containing(locations, "/home/u/Dropbox/work")
	require.True(t, ok)
	assert.Equal(t, "/home/u/Dropbox", loc.Path)

	loc, ok = containing(locations, "/home/u/Dropboxed")
	require.True(t, ok)
	assert.Equal(t, "/home/u", loc.Path)

	loc, ok = containing(locations, "/etc")
	require.True(t, ok)
	assert.Equal(t, "/", loc.Path)

	_, ok = containing(locations[1:], "/etc")
	assert.False(t, ok)
}
