package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for k3ss-search resources.
	uriScheme = "k3ss://"

	// filePrefix precedes an absolute path in a file resource URI.
	filePrefix = uriScheme + "file"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "locations",
		Name:        "locations",
		Description: "Searchable storage locations on this machine",
		MIMEType:    "application/json",
	}, s.handleLocationsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: filePrefix + "{+path}",
		Name:        "file-content",
		Description: "Extracted text of a file inside a discovered location",
		MIMEType:    "text/plain",
	}, s.handleFileResource)
}

// handleLocationsResource returns the discovered locations as JSON.
func (s *Server) handleLocationsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	locations, err := s.ports.Discovery.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering locations: %w", err)
	}
	if locations == nil {
		locations = []domain.StorageLocation{}
	}

	data, err := json.MarshalIndent(locations, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling locations: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleFileResource returns the text of one file.
func (s *Server) handleFileResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	path := extractFilePath(req.Params.URI)
	if path == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	fc, err := s.ports.Format.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     fc.Content,
		}},
	}, nil
}

// extractFilePath extracts the absolute path from a URI like
// k3ss://file/home/u/notes.txt.
func extractFilePath(uri string) string {
	if !strings.HasPrefix(uri, filePrefix+"/") {
		return ""
	}
	path, err := url.PathUnescape(strings.TrimPrefix(uri, filePrefix))
	if err != nil {
		return ""
	}
	return path
}
