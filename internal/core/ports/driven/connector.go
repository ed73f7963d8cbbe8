package driven

import (
	"context"
	"time"
)

// FileEntry describes a regular file found on disk.
type FileEntry struct {
	Path     string
	Name     string
	Size     int64
	Modified time.Time
}

// WalkEventKind identifies what a WalkEvent reports.
type WalkEventKind int

const (
	// WalkFile reports a regular file.
	WalkFile WalkEventKind = iota

	// WalkDir reports a directory whose entries were read.
	WalkDir

	// WalkSkipped reports an entry that could not be read or was rejected,
	// such as an unreadable directory or a symlink cycle.
	WalkSkipped
)

// WalkEvent is delivered to a WalkFunc for every entry the walker visits.
type WalkEvent struct {
	Kind WalkEventKind

	// Path is the absolute path of the entry.
	Path string

	// File is set for WalkFile events.
	File FileEntry

	// Subdirs is the number of subdirectories a WalkDir event will descend into.
	Subdirs int

	// Err is set for WalkSkipped events.
	Err error

	// Dir is set on WalkSkipped events for a directory or a link to one.
	Dir bool

	// Counted is set on WalkSkipped events for a directory that was already
	// included in its parent's Subdirs.
	Counted bool
}

// WalkFunc receives walk events. Returning an error stops the walk.
type WalkFunc func(ev WalkEvent) error

// WalkOptions control which entries a Walker visits.
type WalkOptions struct {
	SkipHidden       bool
	FollowSymlinks   bool
	RespectGitignore bool
	ExcludeDirs      []string
}

// Walker enumerates regular files below a root directory.
// Entries are visited depth-first in lexical order so repeated walks of an
// unchanged tree produce the same event sequence.
type Walker interface {
	// Walk visits root and everything below it. It checks ctx at every
	// entry and returns ctx.Err() once cancelled. Unreadable subdirectories
	// are reported as WalkSkipped events, never as a returned error.
	Walk(ctx context.Context, root string, fn WalkFunc) error
}

// ContentReader reads file bodies for matching and formatting.
type ContentReader interface {
	// Stat describes a regular file.
	Stat(path string) (FileEntry, error)

	// ReadPrefix returns at most limit bytes from the start of path.
	ReadPrefix(ctx context.Context, path string, limit int64) ([]byte, error)
}
