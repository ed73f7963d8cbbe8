package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
)

func TestSearchRegistry_Lifecycle(t *testing.T) {
	r := NewSearchRegistry()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	active, err := r.start("s1", cancel, []string{"/a", "/b"})
	require.NoError(t, err)
	assert.Equal(t, 1, r.Running())

	_, err = r.start("s1", cancel, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	active.roots[0].files.Add(5)
	active.roots[0].dirsScanned.Add(2)
	active.roots[0].dirsDiscovered.Add(3)
	active.roots[0].matches.Add(1)
	active.roots[1].done.Store(true)

	p, err := r.Progress("s1")
	require.NoError(t, err)
	assert.True(t, p.Running)
	assert.Equal(t, int64(5), p.FilesVisited)
	assert.Equal(t, int64(2), p.DirectoriesScanned)
	assert.Equal(t, int64(5), p.DirectoriesDiscovered, "roots start discovered")
	assert.Equal(t, int64(1), p.MatchingFiles)
	require.Len(t, p.Roots, 2)
	assert.Equal(t, "/a", p.Roots[0].Path)
	assert.True(t, p.Roots[1].Done)

	assert.True(t, r.Cancel("s1"))
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	r.finish("s1")
	assert.False(t, r.Cancel("s1"))
	_, err = r.Progress("s1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, r.Running())
}

func TestRootProgress_DiscoveredNeverBelowScanned(t *testing.T) {
	p := &rootProgress{path: "/a"}
	p.dirsScanned.Add(3)

	snap := p.snapshot()

	assert.Equal(t, int64(3), snap.DirectoriesDiscovered)
}
