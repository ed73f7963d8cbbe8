package driven

import (
	"context"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// Normaliser turns a file of a specific format into searchable text.
// Each normaliser handles a set of file extensions (e.g., .docx, .pdf).
type Normaliser interface {
	// Name identifies the normaliser in logs and notes.
	Name() string

	// SupportedExtensions returns the lower-case extensions handled, with dot.
	SupportedExtensions() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// NeedsContent reports whether Normalise reads raw.Content. Normalisers
	// that shell out or convert from raw.Path return false.
	NeedsContent() bool

	// Normalise extracts the text of raw.
	Normalise(ctx context.Context, raw *domain.RawFile) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
type NormaliseResult struct {
	// Text is the extracted content.
	Text string

	// Format names the source format, e.g. "docx".
	Format string
}
