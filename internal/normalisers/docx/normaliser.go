package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/officexml"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the normaliser.
func (n *Normaliser) Name() string {
	return "docx"
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".docx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// NeedsContent reports that the raw bytes are required.
func (n *Normaliser) NeedsContent() bool {
	return true
}

var wordText = officexml.Extractor{
	Text:   []string{"t"},
	Breaks: []string{"p", "br", "cr"},
	Tabs:   []string{"tab"},
}

// Normalise extracts the body, headers, footers and notes of a DOCX file.
// The document title, when set, is the first line.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := officexml.Open(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Name, err)
	}

	parts := []string{"word/document.xml"}
	parts = append(parts, officexml.Parts(reader, "word/header*.xml")...)
	parts = append(parts, officexml.Parts(reader, "word/footer*.xml")...)
	parts = append(parts, "word/footnotes.xml", "word/endnotes.xml")

	content, err := wordText.ExtractParts(reader, parts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Name, err)
	}

	if title := extractTitle(reader); title != "" && !strings.HasPrefix(content, title) {
		content = strings.TrimSpace(title + "\n" + content)
	}

	return &driven.NormaliseResult{
		Text:   content,
		Format: "docx",
	}, nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads the title from docProps/core.xml.
func extractTitle(reader *zip.Reader) string {
	data, ok, err := officexml.ReadPart(reader, "docProps/core.xml")
	if err != nil || !ok {
		return ""
	}
	var core coreXML
	if err := xml.Unmarshal(data, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
