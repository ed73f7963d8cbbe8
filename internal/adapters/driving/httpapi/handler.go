package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/emicklei/go-restful/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/k3ss-official/k3ss-search/internal/connectors/filesystem"
	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driving"
)

// Handler serves the API routes.
type Handler struct {
	discovery driving.DiscoveryService
	search    driving.SearchService
	format    driving.FormatService
	version   string
	logger    *zerolog.Logger
}

// NewHandler creates a handler over the driving ports.
func NewHandler(
	discovery driving.DiscoveryService,
	search driving.SearchService,
	format driving.FormatService,
	version string,
	logger *zerolog.Logger,
) *Handler {
	return &Handler{
		discovery: discovery,
		search:    search,
		format:    format,
		version:   version,
		logger:    logger,
	}
}

// DiscoverLocations handles GET /api/discover-locations.
func (h *Handler) DiscoverLocations(req *restful.Request, resp *restful.Response) {
	locations, err := h.discovery.Discover(req.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Discovery failed")
		writeError(resp, err)
		return
	}
	if locations == nil {
		locations = []domain.StorageLocation{}
	}

	resp.WriteHeaderAndEntity(http.StatusOK, LocationsResponse{
		Success:        true,
		Locations:      locations,
		TotalLocations: len(locations),
	}) //nolint:errcheck
}

// Search handles POST /api/search. Closing the connection cancels the
// search.
func (h *Handler) Search(req *restful.Request, resp *restful.Response) {
	data, err := readBody(req.Request, searchSchema)
	if err != nil {
		writeError(resp, err)
		return
	}
	var body SearchBody
	if err := json.Unmarshal(data, &body); err != nil {
		writeError(resp, fmt.Errorf("decoding search request: %v: %w", err, domain.ErrInvalidInput))
		return
	}

	sreq := body.request()
	if sreq.SearchID == "" {
		sreq.SearchID = uuid.NewString()
	}
	h.logger.Info().
		Str("search_id", sreq.SearchID).
		Strs("paths", sreq.Paths).
		Strs("terms", sreq.Terms).
		Bool("content", sreq.SearchContent).
		Bool("deep", sreq.DeepSearch).
		Msg("Start search")

	result, err := h.search.Search(req.Request.Context(), sreq)
	if err != nil {
		event := h.logger.Warn()
		if domain.IsCancelled(err) {
			event = h.logger.Info()
		}
		event.Err(err).Str("search_id", sreq.SearchID).Msg("Search ended without results")
		writeError(resp, err)
		return
	}

	h.logger.Info().
		Str("search_id", result.SearchID).
		Int("matching_files", result.Stats.MatchingFiles).
		Int("total_files_scanned", result.Stats.TotalFilesScanned).
		Int64("elapsed_ms", result.Stats.ElapsedMS).
		Msg("Search complete")

	resp.WriteHeaderAndEntity(http.StatusOK, SearchResponse{Success: true, SearchResult: *result}) //nolint:errcheck
}

// CancelSearch handles POST /api/search/{searchId}/cancel.
func (h *Handler) CancelSearch(req *restful.Request, resp *restful.Response) {
	id := req.PathParameter("searchId")
	cancelled := h.search.Cancel(id)
	h.logger.Info().Str("search_id", id).Bool("cancelled", cancelled).Msg("Cancel requested")

	resp.WriteHeaderAndEntity(http.StatusOK, CancelResponse{Success: true, Cancelled: cancelled}) //nolint:errcheck
}

// SearchProgress handles GET /api/search/{searchId}/progress.
func (h *Handler) SearchProgress(req *restful.Request, resp *restful.Response) {
	progress, err := h.search.Progress(req.PathParameter("searchId"))
	if err != nil {
		writeError(resp, err)
		return
	}
	resp.WriteHeaderAndEntity(http.StatusOK, progress) //nolint:errcheck
}

// FormatLLM handles POST /api/format-llm.
func (h *Handler) FormatLLM(req *restful.Request, resp *restful.Response) {
	data, err := readBody(req.Request, formatSchema)
	if err != nil {
		writeError(resp, err)
		return
	}
	var body FormatBody
	if err := json.Unmarshal(data, &body); err != nil {
		writeError(resp, fmt.Errorf("decoding format request: %v: %w", err, domain.ErrInvalidInput))
		return
	}

	files := make([]domain.FileMatch, len(body.Files))
	for i, f := range body.Files {
		files[i] = f.match()
		files[i].Path = filesystem.ResolvePath(files[i].Path)
	}

	doc, err := h.format.Format(req.Request.Context(), files, body.Terms)
	if err != nil {
		writeError(resp, err)
		return
	}

	h.logger.Info().
		Int("file_count", doc.FileCount).
		Int("included_files", doc.IncludedFiles).
		Int("omitted_files", doc.OmittedFiles).
		Int("token_estimate", doc.TokenEstimate).
		Msg("Formatted for LLM")

	resp.WriteHeaderAndEntity(http.StatusOK, FormatResponse{Success: true, FormattedDocument: *doc}) //nolint:errcheck
}

// FileContent handles GET /api/file-content?path=P and
// GET /api/file-content/{path}.
func (h *Handler) FileContent(req *restful.Request, resp *restful.Response) {
	path := req.QueryParameter("path")
	if sub := req.PathParameter("path"); path == "" && sub != "" {
		// The route wildcard drops the leading slash.
		path = sub
		if !strings.HasPrefix(path, "file://") && !filepath.IsAbs(path) {
			path = "/" + path
		}
	}
	if path == "" {
		writeError(resp, fmt.Errorf("no path provided: %w", domain.ErrInvalidInput))
		return
	}

	fc, err := h.format.ReadFile(req.Request.Context(), filesystem.ResolvePath(path))
	if err != nil {
		writeError(resp, err)
		return
	}
	resp.WriteHeaderAndEntity(http.StatusOK, FileContentResponse{Success: true, File: fc}) //nolint:errcheck
}

// Health handles GET /api/health.
func (h *Handler) Health(_ *restful.Request, resp *restful.Response) {
	resp.WriteHeaderAndEntity(http.StatusOK, HealthResponse{Status: "ok", Version: h.version}) //nolint:errcheck
}
