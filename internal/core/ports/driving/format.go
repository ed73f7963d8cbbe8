package driving

import (
	"context"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// FormatService renders search hits for use in an LLM prompt.
type FormatService interface {
	// Format re-reads files and renders them, in the order given, into one
	// bounded document annotated with terms. Per-file failures become
	// placeholders; they never fail the call.
	Format(ctx context.Context, files []domain.FileMatch, terms []string) (*domain.FormattedDocument, error)

	// ReadFile returns the extracted text of a single file.
	ReadFile(ctx context.Context, path string) (*domain.FileContent, error)
}
