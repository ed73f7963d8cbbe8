package driven

import (
	"context"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// NormaliserRegistry selects the appropriate normaliser for a file.
// It keeps normalisers ordered by priority and dispatches on extension.
type NormaliserRegistry interface {
	// Normalise extracts raw using the best matching normaliser.
	// Returns domain.ErrUnsupportedType when none handles the extension.
	Normalise(ctx context.Context, raw *domain.RawFile) (*NormaliseResult, error)

	// Lookup returns the preferred normaliser for a file name.
	Lookup(name string) (Normaliser, bool)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedExtensions returns all extensions that can be normalised.
	SupportedExtensions() []string
}
