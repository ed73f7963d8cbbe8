package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatcher_Match(t *testing.T) {
	m := newMatcher([]string{"Invoice", "2023", "tax"}, 160)

	tests := []struct {
		name        string
		file        string
		content     string
		wantMatches []string
		wantPreview bool
	}{
		{"name only", "INVOICE-2023.pdf", "", []string{"Invoice", "2023"}, false},
		{"content only", "notes.txt", "the tax return", []string{"tax"}, true},
		{"name and content count once", "invoice.txt", "invoice again", []string{"Invoice"}, true},
		{"term order kept", "x.txt", "tax then 2023 then invoice", []string{"Invoice", "2023", "tax"}, true},
		{"no match", "x.txt", "nothing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, preview := m.match(tt.file, tt.content)
			assert.Equal(t, tt.wantMatches, matches)
			assert.Equal(t, tt.wantPreview, preview != "")
		})
	}
}

func TestMatcher_PreviewAroundFirstTerm(t *testing.T) {
	m := newMatcher([]string{"needle", "other"}, 20)
	content := strings.Repeat("hay ", 30) + "NEEDLE\n\n  in   the stack " + strings.Repeat("more ", 30) + "other"

	matches, preview := m.match("file.txt", content)

	assert.Equal(t, []string{"needle", "other"}, matches)
	assert.True(t, strings.HasPrefix(preview, "..."))
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.Contains(t, preview, "hay NEEDLE in")
	assert.NotContains(t, preview, "\n")
}

func TestMatcher_PreviewMultibyte(t *testing.T) {
	m := newMatcher([]string{"café"}, 9)

	_, preview := m.match("f.txt", "ÀÉÎ CAFÉ ÕÜ")

	assert.Equal(t, "...ÉÎ CAFÉ Õ...", preview)
}

func TestMatcher_NoPreviewForBinary(t *testing.T) {
	m := newMatcher([]string{"key"}, 160)

	matches, preview := m.match("f.dat", "\x00\x01key\x02")

	assert.Equal(t, []string{"key"}, matches)
	assert.Empty(t, preview)
}

func TestMatcher_PreviewDisabled(t *testing.T) {
	m := newMatcher([]string{"key"}, 0)

	_, preview := m.match("f.txt", "a key here")

	assert.Empty(t, preview)
}

func TestPreview_WholeContent(t *testing.T) {
	assert.Equal(t, "short text", preview("short   text", 0, 160))
}
