// Package pptx provides a Normaliser for PowerPoint presentations. Slide
// text and speaker notes are extracted in slide order.
package pptx

import (
	"context"
	"fmt"
	"strings"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/normalisers/officexml"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles PPTX presentations.
type Normaliser struct{}

// New creates a new PPTX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the normaliser.
func (n *Normaliser) Name() string {
	return "pptx"
}

// SupportedExtensions returns the extensions this normaliser handles.
func (n *Normaliser) SupportedExtensions() []string {
	return []string{".pptx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// NeedsContent reports that the raw bytes are required.
func (n *Normaliser) NeedsContent() bool {
	return true
}

var slideText = officexml.Extractor{
	Text:   []string{"t"},
	Breaks: []string{"p", "br"},
}

// Normalise extracts slide and note text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := officexml.Open(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Name, err)
	}

	slides := officexml.Parts(reader, "ppt/slides/slide*.xml")
	notes := officexml.Parts(reader, "ppt/notesSlides/notesSlide*.xml")

	var sections []string
	for _, part := range [][]string{slides, notes} {
		text, err := slideText.ExtractParts(reader, part...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw.Name, err)
		}
		if text != "" {
			sections = append(sections, text)
		}
	}

	return &driven.NormaliseResult{
		Text:   strings.Join(sections, "\n\n"),
		Format: "pptx",
	}, nil
}
