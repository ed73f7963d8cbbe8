package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/k3ss-official/k3ss-search/internal/connectors/filesystem"
	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// defaultMaxResults caps the hits returned to an assistant.
const defaultMaxResults = 50

// DiscoverInput is the input schema for the discover_locations tool.
type DiscoverInput struct{}

// DiscoverOutput is the output schema for the discover_locations tool.
type DiscoverOutput struct {
	Locations []domain.StorageLocation `json:"locations"`
	Count     int                      `json:"count"`
}

// SearchInput is the input schema for the search_files tool.
type SearchInput struct {
	Paths         []string `json:"paths" jsonschema:"absolute directory paths inside discovered locations"`
	Terms         []string `json:"terms" jsonschema:"terms matched case-insensitively against file names and contents"`
	SearchContent *bool    `json:"search_content,omitempty" jsonschema:"match file contents as well as names (default true)"`
	DeepSearch    bool     `json:"deep_search,omitempty" jsonschema:"scan whole files and extract documents and archives"`
	MaxResults    int      `json:"max_results,omitempty" jsonschema:"maximum number of results to return (default 50)"`
}

// SearchOutput is the output schema for the search_files tool.
type SearchOutput struct {
	SearchID  string             `json:"search_id"`
	Results   []SearchHit        `json:"results"`
	Stats     domain.SearchStats `json:"stats"`
	Errors    []domain.PathError `json:"errors,omitempty"`
	Notes     []string           `json:"notes,omitempty"`
	Truncated bool               `json:"truncated,omitempty"`
}

// SearchHit is one matching file. It can be passed back to format_for_llm
// as a FileInput.
type SearchHit struct {
	Path           string   `json:"path"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Size           int64    `json:"size"`
	Modified       string   `json:"modified"`
	Matches        []string `json:"matches"`
	ContentPreview string   `json:"content_preview,omitempty"`
}

func hit(m domain.FileMatch) SearchHit {
	h := SearchHit{
		Path:           m.Path,
		Name:           m.Name,
		Type:           m.Type,
		Size:           m.Size,
		Matches:        m.Matches,
		ContentPreview: m.ContentPreview,
	}
	if !m.Modified.IsZero() {
		h.Modified = m.Modified.UTC().Format(time.RFC3339)
	}
	return h
}

// FileInput identifies one file to format. Only the path is required.
type FileInput struct {
	Path     string   `json:"path" jsonschema:"absolute path or file:// URI"`
	Name     string   `json:"name,omitempty"`
	Type     string   `json:"type,omitempty"`
	Size     int64    `json:"size,omitempty"`
	Modified string   `json:"modified,omitempty" jsonschema:"RFC 3339 modification time"`
	Matches  []string `json:"matches,omitempty"`
}

// FormatInput is the input schema for the format_for_llm tool.
type FormatInput struct {
	Files []FileInput `json:"files" jsonschema:"files to include, usually taken from search_files results"`
	Terms []string    `json:"terms,omitempty" jsonschema:"the search terms, named in the document header"`
}

// FormatOutput is the output schema for the format_for_llm tool.
type FormatOutput struct {
	Content        string `json:"formatted_content"`
	FileCount      int    `json:"file_count"`
	IncludedFiles  int    `json:"included_files"`
	TruncatedFiles int    `json:"truncated_files"`
	OmittedFiles   int    `json:"omitted_files"`
	TokenEstimate  int    `json:"token_estimate,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "discover_locations",
		Description: "List local, external and cloud-synced storage locations that can be searched",
	}, s.handleDiscover)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_files",
		Description: "Search storage locations for files whose name or content contains any of the terms",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "format_for_llm",
		Description: "Render selected files into one bounded document with their contents",
	}, s.handleFormat)
}

// handleDiscover handles the discover_locations tool invocation.
func (s *Server) handleDiscover(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ DiscoverInput,
) (*mcp.CallToolResult, DiscoverOutput, error) {
	locations, err := s.ports.Discovery.Discover(ctx)
	if err != nil {
		return nil, DiscoverOutput{}, err
	}
	if locations == nil {
		locations = []domain.StorageLocation{}
	}
	return nil, DiscoverOutput{Locations: locations, Count: len(locations)}, nil
}

// handleSearch handles the search_files tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.MaxResults
	if limit <= 0 {
		limit = defaultMaxResults
	}
	content := true
	if input.SearchContent != nil {
		content = *input.SearchContent
	}

	paths := make([]string, len(input.Paths))
	for i, p := range input.Paths {
		paths[i] = filesystem.ResolvePath(p)
	}

	res, err := s.ports.Search.Search(ctx, domain.SearchRequest{
		Paths:         paths,
		Terms:         input.Terms,
		SearchContent: content,
		DeepSearch:    input.DeepSearch,
	})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		SearchID:  res.SearchID,
		Results:   make([]SearchHit, 0, min(len(res.Results), limit)),
		Stats:     res.Stats,
		Errors:    res.Errors,
		Notes:     res.Notes,
		Truncated: len(res.Results) > limit,
	}
	for i := range res.Results {
		if i == limit {
			break
		}
		output.Results = append(output.Results, hit(res.Results[i]))
	}
	return nil, output, nil
}

// handleFormat handles the format_for_llm tool invocation.
func (s *Server) handleFormat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FormatInput,
) (*mcp.CallToolResult, FormatOutput, error) {
	files := make([]domain.FileMatch, len(input.Files))
	for i, f := range input.Files {
		files[i] = domain.FileMatch{
			Name:    f.Name,
			Path:    filesystem.ResolvePath(f.Path),
			Type:    f.Type,
			Size:    f.Size,
			Matches: f.Matches,
		}
		if t, err := time.Parse(time.RFC3339, f.Modified); err == nil {
			files[i].Modified = t
		}
	}

	doc, err := s.ports.Format.Format(ctx, files, input.Terms)
	if err != nil {
		return nil, FormatOutput{}, err
	}

	return nil, FormatOutput{
		Content:        doc.Content,
		FileCount:      doc.FileCount,
		IncludedFiles:  doc.IncludedFiles,
		TruncatedFiles: doc.TruncatedFiles,
		OmittedFiles:   doc.OmittedFiles,
		TokenEstimate:  doc.TokenEstimate,
	}, nil
}
