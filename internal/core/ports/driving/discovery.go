package driving

import (
	"context"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// DiscoveryService enumerates searchable storage locations.
type DiscoveryService interface {
	// Discover probes the host and returns every candidate root, each
	// classified and tested for accessibility. A failing candidate is
	// returned with Accessible false rather than failing the call.
	Discover(ctx context.Context) ([]domain.StorageLocation, error)
}
