package domain

// Size constants used by the default limits.
const (
	KiB int64 = 1 << 10
	MiB int64 = 1 << 20
	GiB int64 = 1 << 30
)

// Settings is the typed application configuration.
type Settings struct {
	Search SearchSettings
	Format FormatSettings
	Server ServerSettings
	Log    LogSettings
}

// SearchSettings bound the cost of a search.
type SearchSettings struct {
	// ShallowContentBytes is the prefix read per text file in shallow mode.
	ShallowContentBytes int64

	// DeepFileBytes is the per-file ceiling in deep mode.
	DeepFileBytes int64

	// DeepRunBytes is the ceiling for one deep search, split across roots.
	DeepRunBytes int64

	// PreviewChars is the length of a content preview in characters.
	PreviewChars int

	SkipHidden       bool
	FollowSymlinks   bool
	RespectGitignore bool

	// ExcludeDirs are directory names never descended into.
	ExcludeDirs []string

	// ReadsPerSecond limits file reads. Zero means unlimited.
	ReadsPerSecond int

	// AllowUndiscovered lets any existing absolute directory be searched.
	AllowUndiscovered bool
}

// FormatSettings bound the LLM document.
type FormatSettings struct {
	// MaxChars is the total character budget of a formatted document.
	MaxChars int

	// MaxFileChars caps the content of a single file.
	MaxFileChars int

	// TokenizerModel selects the tiktoken encoding. Empty disables estimates.
	TokenizerModel string
}

// ServerSettings configure the HTTP server.
type ServerSettings struct {
	Addr           string
	AllowedOrigins []string
}

// LogSettings configure logging.
type LogSettings struct {
	Level string
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		Search: SearchSettings{
			ShallowContentBytes: 64 * KiB,
			DeepFileBytes:       32 * MiB,
			DeepRunBytes:        1 * GiB,
			PreviewChars:        160,
			SkipHidden:          true,
			FollowSymlinks:      false,
			RespectGitignore:    true,
			ExcludeDirs:         []string{"node_modules", ".git", "__pycache__"},
			ReadsPerSecond:      0,
			AllowUndiscovered:   false,
		},
		Format: FormatSettings{
			MaxChars:       200000,
			MaxFileChars:   50000,
			TokenizerModel: "gpt-4o",
		},
		Server: ServerSettings{
			Addr:           ":5010",
			AllowedOrigins: []string{"*"},
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// Validate checks the settings are usable.
func (s Settings) Validate() error {
	switch {
	case s.Search.ShallowContentBytes <= 0:
		return &OpError{Op: "settings", Path: "search.shallow_content_bytes", Err: ErrInvalidInput}
	case s.Search.DeepFileBytes < s.Search.ShallowContentBytes:
		return &OpError{Op: "settings", Path: "search.deep_file_bytes", Err: ErrInvalidInput}
	case s.Search.DeepRunBytes <= 0:
		return &OpError{Op: "settings", Path: "search.deep_run_bytes", Err: ErrInvalidInput}
	case s.Search.PreviewChars < 0:
		return &OpError{Op: "settings", Path: "search.preview_chars", Err: ErrInvalidInput}
	case s.Search.ReadsPerSecond < 0:
		return &OpError{Op: "settings", Path: "search.reads_per_second", Err: ErrInvalidInput}
	case s.Format.MaxChars <= 0:
		return &OpError{Op: "settings", Path: "format.max_chars", Err: ErrInvalidInput}
	case s.Format.MaxFileChars <= 0:
		return &OpError{Op: "settings", Path: "format.max_file_chars", Err: ErrInvalidInput}
	}
	return nil
}
