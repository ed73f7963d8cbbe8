package driving

import (
	"context"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search walks the requested locations and matches files by name and,
	// optionally, content. A cancelled search returns an error wrapping
	// domain.ErrCancelled and no result.
	Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error)

	// Progress returns live progress for an in-flight search.
	// Returns domain.ErrNotFound when no such search is running.
	Progress(searchID string) (*domain.SearchProgress, error)

	// Cancel aborts an in-flight search. Returns false if none was running.
	Cancel(searchID string) bool
}
