// Package mcp provides an MCP (Model Context Protocol) server adapter for
// k3ss-search. It lets AI assistants discover storage locations, search
// them and format hits for a prompt.
package mcp

import "errors"

// Errors returned when a required port is not provided.
var (
	ErrMissingDiscoveryService = errors.New("mcp: discovery service is required")
	ErrMissingSearchService    = errors.New("mcp: search service is required")
	ErrMissingFormatService    = errors.New("mcp: format service is required")
)
