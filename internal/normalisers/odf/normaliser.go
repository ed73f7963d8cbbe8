// Package odf provides a Normaliser for OpenDocument text, spreadsheet and
// presentation files.
package odf

import (
	"context"
	"fmt"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/officexml"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles ODT, ODS and ODP files.
type Normaliser struct{}

// New creates a new OpenDocument normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the normaliser.
func (n *Normaliser) Name() string {
	return "odf"
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".odt", ".ods", ".odp"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// NeedsContent reports that the raw bytes are required.
func (n *Normaliser) NeedsContent() bool {
	return true
}

// Paragraph content lives in text:p and text:h; table cells and list items
// wrap those.
var contentText = officexml.Extractor{
	Text:   []string{"p", "h"},
	Breaks: []string{"p", "h", "line-break"},
	Tabs:   []string{"tab"},
	Spaces: []string{"s"},
}

// Normalise extracts the text of content.xml.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := officexml.Open(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Name, err)
	}

	text, err := contentText.ExtractParts(reader, "content.xml")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Name, err)
	}

	return &driven.NormaliseResult{
		Text:   text,
		Format: "odf",
	}, nil
}
