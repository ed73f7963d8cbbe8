package domain

import "time"

// SearchRequest describes one search over a set of discovered locations.
type SearchRequest struct {
	// Paths are absolute directory paths, each inside a discovered location.
	Paths []string `json:"paths"`

	// Terms are matched case-insensitively as substrings.
	// Duplicates are allowed and collapse during matching.
	Terms []string `json:"terms"`

	// SearchContent enables matching against file contents.
	SearchContent bool `json:"searchContent"`

	// DeepSearch scans whole files and extracts documents and archives.
	DeepSearch bool `json:"deepSearch"`

	// SearchID identifies the search for progress and cancellation.
	// Generated when empty.
	SearchID string `json:"searchId,omitempty"`
}

// FileMatch is a file that matched at least one term by name or content.
type FileMatch struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Type     string    `json:"type"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`

	// Matches lists the matched terms in request order without duplicates.
	Matches []string `json:"matches"`

	// ContentPreview is an excerpt around the first content match.
	// Empty when only the filename matched or no clean excerpt exists.
	ContentPreview string `json:"content_preview,omitempty"`
}

// SearchStats summarises a completed scan.
type SearchStats struct {
	TotalFilesScanned       int      `json:"total_files_scanned"`
	TotalDirectoriesScanned int      `json:"total_directories_scanned"`
	MatchingFiles           int      `json:"matching_files"`
	SkippedFiles            int      `json:"skipped_files"`
	SearchTerms             []string `json:"search_terms"`
	DeepSearchEnabled       bool     `json:"deep_search_enabled"`
	ElapsedMS               int64    `json:"elapsed_ms"`
}

// ScanCounters are the raw traversal counts a search accumulates.
type ScanCounters struct {
	FilesScanned       int
	DirectoriesScanned int
	SkippedFiles       int
}

// Add returns the sum of two counter sets.
func (c ScanCounters) Add(other ScanCounters) ScanCounters {
	return ScanCounters{
		FilesScanned:       c.FilesScanned + other.FilesScanned,
		DirectoriesScanned: c.DirectoriesScanned + other.DirectoriesScanned,
		SkippedFiles:       c.SkippedFiles + other.SkippedFiles,
	}
}

// PathError is a per-path or per-file failure reported alongside results.
type PathError struct {
	Path    string    `json:"path"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// NewPathError builds a PathError classified from err.
func NewPathError(path string, err error) PathError {
	return PathError{
		Path:    path,
		Kind:    KindOf(err),
		Message: err.Error(),
	}
}

// SearchResult is the outcome of a search that ran to completion.
type SearchResult struct {
	SearchID string      `json:"search_id"`
	Results  []FileMatch `json:"results"`
	Stats    SearchStats `json:"stats"`
	Errors   []PathError `json:"errors"`
	Notes    []string    `json:"notes"`
}

// RootProgress is live traversal state for one requested root.
type RootProgress struct {
	Path                  string `json:"path"`
	FilesVisited          int64  `json:"files_visited"`
	DirectoriesScanned    int64  `json:"directories_scanned"`
	DirectoriesDiscovered int64  `json:"directories_discovered"`
	MatchingFiles         int64  `json:"matching_files"`
	Done                  bool   `json:"done"`
}

// SearchProgress is a snapshot of an in-flight search.
// DirectoriesScanned over DirectoriesDiscovered is a true completion ratio
// for the part of the tree seen so far.
type SearchProgress struct {
	SearchID              string         `json:"search_id"`
	Running               bool           `json:"running"`
	FilesVisited          int64          `json:"files_visited"`
	DirectoriesScanned    int64          `json:"directories_scanned"`
	DirectoriesDiscovered int64          `json:"directories_discovered"`
	MatchingFiles         int64          `json:"matching_files"`
	Roots                 []RootProgress `json:"roots"`
}
