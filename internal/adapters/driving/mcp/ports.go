package mcp

import (
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
type Ports struct {
	// Discovery lists searchable storage locations.
	Discovery driving.DiscoveryService

	// Search scans locations by filename and content.
	Search driving.SearchService

	// Format renders hits for an LLM prompt and reads single files.
	Format driving.FormatService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	switch {
	case p.Discovery == nil:
		return ErrMissingDiscoveryService
	case p.Search == nil:
		return ErrMissingSearchService
	case p.Format == nil:
		return ErrMissingFormatService
	}
	return nil
}
