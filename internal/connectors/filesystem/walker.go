package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"

	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/logger"
)

// Ensure Walker implements the interface.
var _ driven.Walker = (*Walker)(nil)

// ErrSymlinkCycle is reported when a followed link leads to a directory
// that was already walked or to one of its ancestors.
var ErrSymlinkCycle = errors.New("symlink leads to a directory already walked")

// Walker enumerates files below a root directory.
type Walker struct {
	opts     driven.WalkOptions
	excludes map[string]bool
}

// NewWalker creates a walker with the given options.
func NewWalker(opts driven.WalkOptions) *Walker {
	excludes := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		excludes[d] = true
	}
	return &Walker{opts: opts, excludes: excludes}
}

// walk is the state of one Walk call.
type walk struct {
	*Walker
	ctx     context.Context
	root    string
	ignore  gitignore.IgnoreMatcher
	visited map[string]bool
	fn      driven.WalkFunc
}

// Walk visits root and everything below it in lexical order.
func (w *Walker) Walk(ctx context.Context, root string, fn driven.WalkFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("walking %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("walking %s: not a directory", root)
	}

	st := &walk{
		Walker:  w,
		ctx:     ctx,
		root:    root,
		visited: make(map[string]bool),
		fn:      fn,
	}
	if w.opts.RespectGitignore {
		st.ignore = loadGitignore(root)
	}
	if canonical, err := filepath.EvalSymlinks(root); err == nil {
		st.visited[canonical] = true
	}
	return st.dir(root)
}

func loadGitignore(root string) gitignore.IgnoreMatcher {
	path := filepath.Join(root, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	matcher, err := gitignore.NewGitIgnore(path)
	if err != nil {
		logger.Warn("could not parse %s: %v", path, err)
		return nil
	}
	return matcher
}

// dir reads one directory, reports it, then descends.
func (st *walk) dir(path string) error {
	if err := st.ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		if path == st.root {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		return st.fn(driven.WalkEvent{Kind: driven.WalkSkipped, Path: path, Err: err, Dir: true, Counted: true})
	}

	var subdirs []string
	var files []driven.FileEntry
	for _, entry := range entries {
		if err := st.ctx.Err(); err != nil {
			return err
		}

		full := filepath.Join(path, entry.Name())
		isDir, info, err := st.resolve(entry, full)
		if err != nil {
			if cbErr := st.fn(driven.WalkEvent{Kind: driven.WalkSkipped, Path: full, Err: err, Dir: isDir}); cbErr != nil {
				return cbErr
			}
			continue
		}
		if info == nil && !isDir {
			continue // dangling link or special file
		}
		if st.skip(entry.Name(), full, isDir) {
			continue
		}

		if isDir {
			subdirs = append(subdirs, full)
			continue
		}
		files = append(files, driven.FileEntry{
			Path:     full,
			Name:     entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	if err := st.fn(driven.WalkEvent{Kind: driven.WalkDir, Path: path, Subdirs: len(subdirs)}); err != nil {
		return err
	}

	for _, f := range files {
		if err := st.ctx.Err(); err != nil {
			return err
		}
		if err := st.fn(driven.WalkEvent{Kind: driven.WalkFile, Path: f.Path, File: f}); err != nil {
			return err
		}
	}

	for _, sub := range subdirs {
		if err := st.dir(sub); err != nil {
			return err
		}
	}
	return nil
}

// resolve classifies an entry. A nil info with isDir false means the entry
// is silently ignored. On error isDir still says what the entry was.
func (st *walk) resolve(entry fs.DirEntry, full string) (bool, fs.FileInfo, error) {
	mode := entry.Type()

	if mode&fs.ModeSymlink != 0 {
		if !st.opts.FollowSymlinks {
			return false, nil, nil
		}
		info, err := os.Stat(full)
		if err != nil {
			return false, nil, nil
		}
		if info.IsDir() {
			canonical, err := filepath.EvalSymlinks(full)
			if err != nil {
				return true, nil, err
			}
			if st.visited[canonical] || isWithin(canonical, st.visited) {
				return true, nil, fmt.Errorf("%s: %w", full, ErrSymlinkCycle)
			}
			st.visited[canonical] = true
			return true, nil, nil
		}
		if !info.Mode().IsRegular() {
			return false, nil, nil
		}
		return false, info, nil
	}

	if mode.IsDir() {
		if st.opts.FollowSymlinks {
			if canonical, err := filepath.EvalSymlinks(full); err == nil {
				st.visited[canonical] = true
			}
		}
		return true, nil, nil
	}
	if !mode.IsRegular() {
		return false, nil, nil
	}
	info, err := entry.Info()
	if err != nil {
		return false, nil, err
	}
	return false, info, nil
}

// isWithin reports whether path is an ancestor of a directory being walked,
// which would make a followed link loop.
func isWithin(path string, visited map[string]bool) bool {
	prefix := path
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	for v := range visited {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}

func (st *walk) skip(name, full string, isDir bool) bool {
	if st.opts.SkipHidden && isHidden(name) {
		return true
	}
	if isDir && st.excludes[name] {
		return true
	}
	// The matcher resolves full against the directory of the .gitignore.
	return st.ignore != nil && st.ignore.Match(full, isDir)
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	}) {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
