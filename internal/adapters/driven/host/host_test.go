package host

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

func TestProbe_InterfaceCompliance(t *testing.T) {
	var _ driven.HostProbe = New()
}

func TestProbe_OS(t *testing.T) {
	assert.Equal(t, runtime.GOOS, New().OS())
}

func TestProbe_ListDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), nil, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a"), 0o755))

	names, err := New().ListDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b.txt"}, names)

	_, err = New().ListDir(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProbe_Canonical(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(target, 0o755))

	want, err := filepath.EvalSymlinks(target)
	require.NoError(t, err)

	got, err := New().Canonical(filepath.Join(dir, "real", "..", "real"))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	if runtime.GOOS != "windows" {
		link := filepath.Join(dir, "link")
		require.NoError(t, os.Symlink(target, link))
		got, err = New().Canonical(link)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestProbe_ReadFileLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info.json")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	data, err := New().ReadFile(path, 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(data))
}

func TestProbe_Mounts(t *testing.T) {
	mounts, err := New().Mounts(context.Background())
	require.NoError(t, err)
	for _, m := range mounts {
		assert.NotEmpty(t, m.Path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = New().Mounts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
