package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driving"
	"github.com/k3ss-official/k3ss-search/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// maxReported caps the errors and notes returned with one search.
const maxReported = 100

// scanEvent is sent by a root scanner to the collector.
type scanEvent struct {
	root  int
	match *domain.FileMatch
	err   *domain.PathError
	note  string
}

// SearchService walks discovered locations and matches files by name and
// content.
type SearchService struct {
	guard    *LocationGuard
	walker   driven.Walker
	loader   *ContentLoader
	registry *SearchRegistry
	settings domain.SearchSettings
}

// NewSearchService creates a search service.
func NewSearchService(
	guard *LocationGuard,
	walker driven.Walker,
	loader *ContentLoader,
	registry *SearchRegistry,
	settings domain.SearchSettings,
) *SearchService {
	return &SearchService{
		guard:    guard,
		walker:   walker,
		loader:   loader,
		registry: registry,
		settings: settings,
	}
}

// Progress returns live progress for an in-flight search.
func (s *SearchService) Progress(searchID string) (*domain.SearchProgress, error) {
	return s.registry.Progress(searchID)
}

// Cancel aborts an in-flight search.
func (s *SearchService) Cancel(searchID string) bool {
	return s.registry.Cancel(searchID)
}

// Search validates the request, then scans every accepted root
// concurrently. Results are grouped by root in request order and, within
// a root, in traversal order.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	logger.Section("Search Execution")
	start := time.Now()

	terms := domain.PrepareTerms(req.Terms)
	if len(terms) == 0 {
		return nil, fmt.Errorf("no search terms: %w", domain.ErrInvalidInput)
	}
	if len(req.Paths) == 0 {
		return nil, fmt.Errorf("no search paths: %w", domain.ErrInvalidInput)
	}
	for _, p := range req.Paths {
		if !filepath.IsAbs(p) {
			return nil, &domain.OpError{Op: "search", Path: p, Err: fmt.Errorf("path must be absolute: %w", domain.ErrInvalidInput)}
		}
	}

	roots, pathErrs, notes, err := s.resolveRoots(ctx, req.Paths)
	if err != nil {
		return nil, err
	}

	id := req.SearchID
	if id == "" {
		id = uuid.NewString()
	}
	logger.Debug("search %s: terms=%q roots=%q content=%t deep=%t", id, terms, roots, req.SearchContent, req.DeepSearch)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	active, err := s.registry.start(id, cancel, roots)
	if err != nil {
		return nil, err
	}
	defer s.registry.finish(id)

	res := s.run(runCtx, active, roots, terms, req)
	if runCtx.Err() != nil {
		logger.Info("search %s cancelled after %s", id, time.Since(start).Round(time.Millisecond))
		return nil, fmt.Errorf("search %s: %w", id, domain.ErrCancelled)
	}

	pathErrs = append(append([]domain.PathError{}, pathErrs...), res.errors...)
	notes = append(append([]string{}, notes...), res.notes...)
	if res.droppedErrors > 0 {
		notes = append(notes, fmt.Sprintf("%d more errors were not reported", res.droppedErrors))
	}
	if res.droppedNotes > 0 {
		notes = append(notes, fmt.Sprintf("%d more notes were not reported", res.droppedNotes))
	}

	stats := AggregateStats(domain.SearchRequest{Terms: terms, DeepSearch: req.DeepSearch}, res.matches, res.counters, time.Since(start))
	logger.Debug("search %s: %d of %d files matched in %dms", id, stats.MatchingFiles, stats.TotalFilesScanned, stats.ElapsedMS)

	return &domain.SearchResult{
		SearchID: id,
		Results:  res.matches,
		Stats:    stats,
		Errors:   pathErrs,
		Notes:    notes,
	}, nil
}

// resolveRoots checks every requested path against a fresh discovery and
// drops duplicate and nested roots. Rejected paths become path errors; if
// none survive the request is invalid.
func (s *SearchService) resolveRoots(ctx context.Context, paths []string) ([]string, []domain.PathError, []string, error) {
	scope, err := s.guard.Scope(ctx)
	if err != nil {
		if domain.IsCancelled(err) {
			return nil, nil, nil, fmt.Errorf("search: %w", domain.ErrCancelled)
		}
		return nil, nil, nil, err
	}

	pathErrs := []domain.PathError{}
	var accepted []string
	for _, p := range paths {
		canonical, err := scope.CheckRoot(p)
		if err != nil {
			logger.Debug("rejecting %s: %v", p, err)
			pathErrs = append(pathErrs, domain.NewPathError(p, err))
			continue
		}
		accepted = append(accepted, canonical)
	}

	notes := []string{}
	var roots []string
	for i, root := range accepted {
		if parent, ok := enclosingRoot(accepted, i); ok {
			if parent != root {
				notes = append(notes, fmt.Sprintf("%s is inside %s and is searched once", root, parent))
			}
			continue
		}
		roots = append(roots, root)
	}

	if len(roots) == 0 {
		reasons := make([]string, len(pathErrs))
		for i, pe := range pathErrs {
			reasons[i] = pe.Message
		}
		return nil, nil, nil, fmt.Errorf("no searchable paths (%s): %w", strings.Join(reasons, "; "), domain.ErrInvalidInput)
	}
	return roots, pathErrs, notes, nil
}

// enclosingRoot reports the root that makes roots[i] redundant: a strict
// ancestor anywhere in the list, or an identical root earlier in it.
func enclosingRoot(roots []string, i int) (string, bool) {
	for j, other := range roots {
		switch {
		case j == i:
		case other == roots[i]:
			if j < i {
				return other, true
			}
		case within(roots[i], other):
			return other, true
		}
	}
	return "", false
}

// runResult is what the collector assembled.
type runResult struct {
	matches       []domain.FileMatch
	counters      domain.ScanCounters
	errors        []domain.PathError
	notes         []string
	droppedErrors int
	droppedNotes  int
}

// run fans out one scanner per root and collects their events.
func (s *SearchService) run(ctx context.Context, active *activeSearch, roots []string, terms []string, req domain.SearchRequest) runResult {
	events := make(chan scanEvent, 64)
	perRoot := make([][]domain.FileMatch, len(roots))
	counters := make([]domain.ScanCounters, len(roots))

	res := runResult{errors: []domain.PathError{}, notes: []string{}}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			switch {
			case ev.match != nil:
				perRoot[ev.root] = append(perRoot[ev.root], *ev.match)
			case ev.err != nil:
				if len(res.errors) < maxReported {
					res.errors = append(res.errors, *ev.err)
				} else {
					res.droppedErrors++
				}
			case ev.note != "":
				if len(res.notes) < maxReported {
					res.notes = append(res.notes, ev.note)
				} else {
					res.droppedNotes++
				}
			}
		}
	}()

	budget := s.settings.DeepRunBytes / int64(len(roots))
	m := newMatcher(terms, s.settings.PreviewChars)

	var wg sync.WaitGroup
	for i, root := range roots {
		wg.Add(1)
		go func(i int, root string) {
			defer wg.Done()
			sc := &rootScanner{
				svc:      s,
				index:    i,
				root:     root,
				req:      req,
				matcher:  m,
				progress: active.roots[i],
				budget:   &byteBudget{remaining: budget},
				events:   events,
			}
			counters[i] = sc.scan(ctx)
		}(i, root)
	}
	wg.Wait()
	close(events)
	<-done

	res.matches = []domain.FileMatch{}
	for i := range roots {
		res.matches = append(res.matches, perRoot[i]...)
		res.counters = res.counters.Add(counters[i])
	}
	return res
}

// rootScanner walks one root. Its counters and budget are never shared.
type rootScanner struct {
	svc      *SearchService
	index    int
	root     string
	req      domain.SearchRequest
	matcher  *matcher
	progress *rootProgress
	budget   *byteBudget
	events   chan<- scanEvent
	counters domain.ScanCounters
}

func (sc *rootScanner) scan(ctx context.Context) domain.ScanCounters {
	defer sc.progress.done.Store(true)

	err := sc.svc.walker.Walk(ctx, sc.root, func(ev driven.WalkEvent) error {
		switch ev.Kind {
		case driven.WalkDir:
			sc.counters.DirectoriesScanned++
			sc.progress.dirsScanned.Add(1)
			sc.progress.dirsDiscovered.Add(int64(ev.Subdirs))
		case driven.WalkSkipped:
			logger.Debug("skipping %s: %v", ev.Path, ev.Err)
			if !ev.Dir {
				sc.counters.FilesScanned++
				sc.counters.SkippedFiles++
				sc.progress.files.Add(1)
			}
			if ev.Counted {
				sc.progress.dirsScanned.Add(1)
			}
			sc.report(ev.Path, ev.Err)
		case driven.WalkFile:
			return sc.file(ctx, ev.File)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		sc.report(sc.root, err)
	}
	return sc.counters
}

func (sc *rootScanner) report(path string, err error) {
	pe := domain.NewPathError(path, err)
	sc.events <- scanEvent{root: sc.index, err: &pe}
}

func (sc *rootScanner) file(ctx context.Context, f driven.FileEntry) error {
	sc.counters.FilesScanned++
	sc.progress.files.Add(1)

	var content loaded
	if sc.req.SearchContent {
		var err error
		if sc.req.DeepSearch {
			content, err = sc.svc.loader.Deep(ctx, f, sc.budget)
		} else {
			content, err = sc.svc.loader.Shallow(ctx, f)
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, domain.ErrCancelled) {
				return err
			}
			// The name can still match when the content cannot be read.
			sc.report(f.Path, err)
			content = loaded{}
		}
		if !content.examined {
			sc.counters.SkippedFiles++
		}
		if content.note != "" {
			sc.events <- scanEvent{root: sc.index, note: content.note}
		}
	}

	matches, preview := sc.matcher.match(f.Name, content.text)
	if len(matches) == 0 {
		return nil
	}
	sc.progress.matches.Add(1)
	sc.events <- scanEvent{root: sc.index, match: &domain.FileMatch{
		Name:           f.Name,
		Path:           f.Path,
		Type:           domain.TypeForName(f.Name).Label,
		Size:           f.Size,
		Modified:       f.Modified,
		Matches:        matches,
		ContentPreview: preview,
	}}
	return nil
}
