package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

// rootProgress is written only by the goroutine scanning its root.
type rootProgress struct {
	path           string
	files          atomic.Int64
	dirsScanned    atomic.Int64
	dirsDiscovered atomic.Int64
	matches        atomic.Int64
	done           atomic.Bool
}

func (p *rootProgress) snapshot() domain.RootProgress {
	rp := domain.RootProgress{
		Path:                  p.path,
		FilesVisited:          p.files.Load(),
		DirectoriesScanned:    p.dirsScanned.Load(),
		DirectoriesDiscovered: p.dirsDiscovered.Load(),
		MatchingFiles:         p.matches.Load(),
		Done:                  p.done.Load(),
	}
	if rp.DirectoriesDiscovered < rp.DirectoriesScanned {
		rp.DirectoriesDiscovered = rp.DirectoriesScanned
	}
	return rp
}

// activeSearch is one in-flight search.
type activeSearch struct {
	id     string
	cancel context.CancelFunc
	roots  []*rootProgress
}

// SearchRegistry tracks in-flight searches for progress and cancellation.
// Entries exist only while Search is running.
type SearchRegistry struct {
	mu       sync.Mutex
	searches map[string]*activeSearch
}

// NewSearchRegistry creates an empty registry.
func NewSearchRegistry() *SearchRegistry {
	return &SearchRegistry{searches: make(map[string]*activeSearch)}
}

// start registers a search. An id already in flight is rejected.
func (r *SearchRegistry) start(id string, cancel context.CancelFunc, roots []string) (*activeSearch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.searches[id]; ok {
		return nil, fmt.Errorf("search %s is already running: %w", id, domain.ErrInvalidInput)
	}
	as := &activeSearch{id: id, cancel: cancel, roots: make([]*rootProgress, len(roots))}
	for i, root := range roots {
		as.roots[i] = &rootProgress{path: root}
		as.roots[i].dirsDiscovered.Store(1)
	}
	r.searches[id] = as
	return as, nil
}

func (r *SearchRegistry) finish(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.searches, id)
}

// Cancel aborts a running search. It returns false if none was found.
func (r *SearchRegistry) Cancel(id string) bool {
	r.mu.Lock()
	as, ok := r.searches[id]
	r.mu.Unlock()
	if !ok {
		return false
	}
	as.cancel()
	return true
}

// Progress returns a snapshot of a running search.
func (r *SearchRegistry) Progress(id string) (*domain.SearchProgress, error) {
	r.mu.Lock()
	as, ok := r.searches[id]
	r.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("search %s: %w", id, domain.ErrNotFound)
	}

	p := &domain.SearchProgress{
		SearchID: id,
		Roots:    make([]domain.RootProgress, 0, len(as.roots)),
	}
	for _, root := range as.roots {
		rp := root.snapshot()
		p.FilesVisited += rp.FilesVisited
		p.DirectoriesScanned += rp.DirectoriesScanned
		p.DirectoriesDiscovered += rp.DirectoriesDiscovered
		p.MatchingFiles += rp.MatchingFiles
		if !rp.Done {
			p.Running = true
		}
		p.Roots = append(p.Roots, rp)
	}
	return p, nil
}

// Running returns the number of in-flight searches.
func (r *SearchRegistry) Running() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.searches)
}
