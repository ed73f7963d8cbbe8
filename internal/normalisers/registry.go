package normalisers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps file extensions to normalisers ordered by priority.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string][]driven.Normaliser
}

// NewRegistry creates an empty normaliser registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string][]driven.Normaliser),
	}
}

// Register adds a normaliser for every extension it supports.
// Among normalisers for the same extension the highest priority wins;
// ties keep registration order.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range n.SupportedExtensions() {
		list := append(r.byExt[ext], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byExt[ext] = list
	}
}

// Lookup returns the preferred normaliser for a file name.
func (r *Registry) Lookup(name string) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byExt[domain.Extension(name)]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

// Normalise extracts raw with the preferred normaliser for its name.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawFile) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	n, ok := r.Lookup(raw.Name)
	if !ok {
		return nil, fmt.Errorf("no normaliser for %s: %w", raw.Name, domain.ErrUnsupportedType)
	}
	return n.Normalise(ctx, raw)
}

// SupportedExtensions returns all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
