package host

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

// Ensure Probe implements the interface.
var _ driven.HostProbe = (*Probe)(nil)

// Probe reads the local host.
type Probe struct{}

// New creates a host probe for the running system.
func New() *Probe {
	return &Probe{}
}

// OS returns runtime.GOOS.
func (p *Probe) OS() string {
	return runtime.GOOS
}

// HomeDir returns the current user's home directory.
func (p *Probe) HomeDir() (string, error) {
	return os.UserHomeDir()
}

// Mounts lists mounted volumes.
func (p *Probe) Mounts(ctx context.Context) ([]driven.MountPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return systemMounts(ctx)
}

// ListDir returns the entry names of a directory.
func (p *Probe) ListDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// Stat describes a path, following symlinks.
func (p *Probe) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// Canonical resolves a path to an absolute, symlink-free form.
func (p *Probe) Canonical(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.EvalSymlinks(abs)
}

// ReadFile reads at most limit bytes of a small file.
func (p *Probe) ReadFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}
