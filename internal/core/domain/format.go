package domain

import "time"

// FormattedDocument is a set of files rendered into one LLM-ready string.
// It is returned once and never cached.
type FormattedDocument struct {
	Content        string `json:"formatted_content"`
	FileCount      int    `json:"file_count"`
	IncludedFiles  int    `json:"included_files"`
	TruncatedFiles int    `json:"truncated_files"`
	OmittedFiles   int    `json:"omitted_files"`

	// TokenEstimate is set when a tokenizer is configured.
	TokenEstimate int `json:"token_estimate,omitempty"`
}

// FileContent is the extracted text of a single file.
type FileContent struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Content  string    `json:"content"`
}

// RawFile is a file handed to a normaliser.
type RawFile struct {
	// Path is the absolute path on disk.
	Path string

	// Name is the base name, used for extension dispatch.
	Name string

	// Content is the file body. It may be empty for normalisers that
	// read from Path directly.
	Content []byte
}
