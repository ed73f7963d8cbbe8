package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driving"
)

// LocationGuard confirms that paths lie inside discovered, accessible
// locations before anything below them is read.
type LocationGuard struct {
	discovery         driving.DiscoveryService
	host              driven.HostProbe
	allowUndiscovered bool
}

// NewLocationGuard creates a guard. With allowUndiscovered set, any
// existing absolute path passes as long as it can be listed or read.
func NewLocationGuard(discovery driving.DiscoveryService, host driven.HostProbe, allowUndiscovered bool) *LocationGuard {
	return &LocationGuard{
		discovery:         discovery,
		host:              host,
		allowUndiscovered: allowUndiscovered,
	}
}

// GuardScope checks paths against one fresh discovery.
type GuardScope struct {
	guard     *LocationGuard
	locations []domain.StorageLocation
}

// Scope runs discovery and returns a scope for checking paths.
func (g *LocationGuard) Scope(ctx context.Context) (*GuardScope, error) {
	locations, err := g.discovery.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering locations: %w", err)
	}
	return &GuardScope{guard: g, locations: locations}, nil
}

// Locations returns the locations the scope checks against.
func (s *GuardScope) Locations() []domain.StorageLocation {
	return s.locations
}

// CheckRoot validates a directory to search and returns its canonical path.
func (s *GuardScope) CheckRoot(path string) (string, error) {
	canonical, err := s.check("search", path, domain.ErrPathInaccessible)
	if err != nil {
		return "", err
	}

	info, err := s.guard.host.Stat(canonical)
	if err != nil {
		return "", &domain.OpError{Op: "search", Path: path, Err: fmt.Errorf("%w: %v", domain.ErrPathInaccessible, err)}
	}
	if !info.IsDir() {
		return "", &domain.OpError{Op: "search", Path: path, Err: fmt.Errorf("not a directory: %w", domain.ErrInvalidInput)}
	}
	if _, err := s.guard.host.ListDir(canonical); err != nil {
		return "", &domain.OpError{Op: "search", Path: path, Err: fmt.Errorf("%w: %v", domain.ErrPathInaccessible, err)}
	}
	return canonical, nil
}

// CheckFile validates a file to read and returns its canonical path.
// A missing file is reported as domain.ErrNotFound.
func (s *GuardScope) CheckFile(path string) (string, error) {
	return s.check("read", path, domain.ErrNotFound)
}

func (s *GuardScope) check(op, path string, missing error) (string, error) {
	if !filepath.IsAbs(path) {
		return "", &domain.OpError{Op: op, Path: path, Err: fmt.Errorf("path must be absolute: %w", domain.ErrInvalidInput)}
	}

	canonical, err := s.guard.host.Canonical(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &domain.OpError{Op: op, Path: path, Err: fmt.Errorf("does not exist: %w", missing)}
		}
		return "", &domain.OpError{Op: op, Path: path, Err: fmt.Errorf("%w: %v", domain.ErrPathInaccessible, err)}
	}

	loc, ok := containing(s.locations, canonical)
	switch {
	case ok && !loc.Accessible:
		return "", &domain.OpError{Op: op, Path: path, Err: fmt.Errorf("location %s is %w", loc.Path, domain.ErrPathInaccessible)}
	case !ok && !s.guard.allowUndiscovered:
		return "", &domain.OpError{Op: op, Path: path, Err: fmt.Errorf("not a discovered location: %w", domain.ErrInvalidInput)}
	}
	return canonical, nil
}

// containing returns the innermost location that holds path.
func containing(locations []domain.StorageLocation, path string) (domain.StorageLocation, bool) {
	var best domain.StorageLocation
	found := false
	for _, loc := range locations {
		if !within(path, loc.Path) {
			continue
		}
		if !found || len(loc.Path) > len(best.Path) {
			best = loc
			found = true
		}
	}
	return best, found
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	if path == dir {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
