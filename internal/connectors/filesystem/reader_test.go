package filesystem

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

func TestReader_InterfaceCompliance(t *testing.T) {
	var _ driven.ContentReader = NewReader()
}

func TestReader_Stat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	entry, err := NewReader().Stat(path)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", entry.Name)
	assert.Equal(t, int64(5), entry.Size)

	_, err = NewReader().Stat(dir)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewReader().Stat(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReader_ReadPrefix(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	content := bytes.Repeat([]byte("0123456789"), 300_000)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	r := NewReader()
	ctx := context.Background()

	tests := []struct {
		name  string
		limit int64
		want  int
	}{
		{"small prefix", 4, 4},
		{"spans chunks", readChunk + 10, readChunk + 10},
		{"larger than file", int64(len(content)) + 100, len(content)},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.ReadPrefix(ctx, path, tt.limit)
			require.NoError(t, err)
			assert.Len(t, data, tt.want)
			assert.Equal(t, content[:tt.want], data)
		})
	}
}

func TestReader_ReadPrefix_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReader().ReadPrefix(ctx, path, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReader_ReadPrefix_Missing(t *testing.T) {
	_, err := NewReader().ReadPrefix(context.Background(), filepath.Join(t.TempDir(), "nope"), 10)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
