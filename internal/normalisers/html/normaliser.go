package html

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the normaliser.
func (n *Normaliser) Name() string {
	return "html"
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".html", ".htm"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Format specific, higher than plaintext
}

// NeedsContent reports that the raw bytes are required.
func (n *Normaliser) NeedsContent() bool {
	return true
}

// Elements whose text is never shown to a reader.
const hiddenElements = "script, style, noscript, svg, template, iframe"

// Elements that end a line of visible text.
const blockElements = "p, div, br, hr, h1, h2, h3, h4, h5, h6, li, tr, td, th, " +
	"blockquote, pre, table, section, article, header, footer, nav, title"

var multiSpaces = regexp.MustCompile(`[ \t\p{Zs}]+`)

// Normalise converts an HTML document to its visible text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, err := ExtractText(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", raw.Name, err)
	}

	return &driven.NormaliseResult{
		Text:   text,
		Format: "html",
	}, nil
}

// ExtractText returns the visible text of an HTML document, one block per
// line. Entities are decoded.
func ExtractText(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", err
	}

	doc.Find(hiddenElements).Remove()
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AfterHtml("\n")
	})

	return cleanText(doc.Text()), nil
}

// cleanText collapses runs of spaces and drops blank lines.
func cleanText(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
