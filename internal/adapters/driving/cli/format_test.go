package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

func TestFormatCmd_Use(t *testing.T) {
	assert.Equal(t, "format [path...]", formatCmd.Use)
}

func TestFormatCmd_FromArgs(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.format.doc = &domain.FormattedDocument{Content: "# Search results\n", FileCount: 2, IncludedFiles: 2, TokenEstimate: 5}

	dir := t.TempDir()
	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0o644))
	missing := filepath.Join(dir, "gone.md")

	out, errOut, err := execute(t, "format", "--terms", "hello, world", notes, "file://"+missing)

	require.NoError(t, err)
	assert.Equal(t, "# Search results\n", out)
	assert.Contains(t, errOut, "2 of 2 files included, about 5 tokens")
	assert.Equal(t, []string{"hello", "world"}, ts.format.lastTerms)

	require.Len(t, ts.format.lastFiles, 2)
	assert.Equal(t, domain.FileMatch{
		Name:     "notes.txt",
		Path:     notes,
		Type:     domain.TypeForName("notes.txt").Label,
		Size:     5,
		Modified: ts.format.lastFiles[0].Modified,
	}, ts.format.lastFiles[0])
	assert.False(t, ts.format.lastFiles[0].Modified.IsZero())
	assert.Equal(t, missing, ts.format.lastFiles[1].Path)
	assert.Zero(t, ts.format.lastFiles[1].Size)
}

func TestFormatCmd_FromResults(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.format.doc = &domain.FormattedDocument{Content: "doc", FileCount: 3, IncludedFiles: 1, TruncatedFiles: 1, OmittedFiles: 2}

	results := domain.SearchResult{Results: []domain.FileMatch{
		{Name: "a.txt", Path: "/d/a.txt", Size: 1, Modified: modified, Matches: []string{"a"}},
	}}
	data, err := json.Marshal(results)
	require.NoError(t, err)
	from := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(from, data, 0o644))
	outFile := filepath.Join(t.TempDir(), "context.md")

	out, errOut, err := execute(t, "format", "--from", from, "--out", outFile, "--terms", "a")

	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "1 of 3 files included, 1 truncated, 2 omitted")
	written, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Equal(t, "doc", string(written))

	require.Len(t, ts.format.lastFiles, 1)
	assert.Equal(t, "/d/a.txt", ts.format.lastFiles[0].Path)
	assert.True(t, modified.Equal(ts.format.lastFiles[0].Modified))
}

func TestFormatCmd_Errors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no files", []string{"format"}, "no files to format"},
		{"both sources", []string{"format", "--from", bad, "/d/a.txt"}, "not both"},
		{"missing results", []string{"format", "--from", "/nonexistent/results.json"}, "reading results"},
		{"bad results", []string{"format", "--from", bad}, "parsing results"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cleanup := setupTestServices()
			defer cleanup()

			_, _, err := execute(t, tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFormatCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.format.err = domain.ErrInvalidInput

	_, _, err := execute(t, "format", "/d/a.txt")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "format failed")
}
