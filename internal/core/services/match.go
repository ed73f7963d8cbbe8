package services

import (
	"strings"
	"unicode/utf8"

	"github.com/k3ss-official/k3ss-search/internal/normalisers/plaintext"
)

// matcher applies case-insensitive substring matching for a fixed term
// list. Terms must already be de-duplicated.
type matcher struct {
	terms        []string
	lower        []string
	previewChars int
}

func newMatcher(terms []string, previewChars int) *matcher {
	lower := make([]string, len(terms))
	for i, t := range terms {
		lower[i] = strings.ToLower(t)
	}
	return &matcher{terms: terms, lower: lower, previewChars: previewChars}
}

// match returns the terms found in name or content, in term order, and a
// preview around the first term found in content.
func (m *matcher) match(name, content string) ([]string, string) {
	lowerName := strings.ToLower(name)
	lowerContent := strings.ToLower(content)

	var matches []string
	previewAt := -1
	for i, term := range m.lower {
		inName := strings.Contains(lowerName, term)
		pos := -1
		if content != "" {
			pos = strings.Index(lowerContent, term)
		}
		if !inName && pos < 0 {
			continue
		}
		matches = append(matches, m.terms[i])
		if pos >= 0 && previewAt < 0 {
			previewAt = pos
		}
	}

	if previewAt < 0 || m.previewChars <= 0 {
		return matches, ""
	}
	// ToLower maps rune by rune, so rune offsets agree between the two.
	runeAt := utf8.RuneCountInString(lowerContent[:previewAt])
	return matches, preview(content, runeAt, m.previewChars)
}

// preview cuts a window of about size runes around rune offset at, with
// whitespace collapsed and ellipses where text was cut. It returns "" when
// the window is not clean text.
func preview(content string, at, size int) string {
	off := 0
	for i := 0; i < at && off < len(content); i++ {
		_, n := utf8.DecodeRuneInString(content[off:])
		off += n
	}

	start := off
	for k := 0; k < size/3 && start > 0; k++ {
		_, n := utf8.DecodeLastRuneInString(content[:start])
		start -= n
	}
	end := start
	for k := 0; k < size && end < len(content); k++ {
		_, n := utf8.DecodeRuneInString(content[end:])
		end += n
	}

	window := content[start:end]
	if plaintext.HasBinary(window) {
		return ""
	}
	out := strings.Join(strings.Fields(window), " ")
	if out == "" {
		return ""
	}
	if start > 0 {
		out = "..." + out
	}
	if end < len(content) {
		out += "..."
	}
	return out
}
