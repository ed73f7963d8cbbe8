package driven

import (
	"context"
	"io/fs"
)

//go:generate mockgen -source=host.go -destination=mocks/host_mock.go -package=mocks

// MountPoint is one entry from the host's mount table or volume list.
type MountPoint struct {
	Path      string
	Device    string
	FSType    string
	Removable bool
	Remote    bool
}

// HostProbe exposes the parts of the host environment discovery needs.
// Every method is read-only.
type HostProbe interface {
	// OS returns the runtime operating system name, e.g. "linux".
	OS() string

	// HomeDir returns the current user's home directory.
	HomeDir() (string, error)

	// Mounts lists mounted volumes.
	Mounts(ctx context.Context) ([]MountPoint, error)

	// ListDir returns the entry names of a directory. Success means the
	// directory is accessible.
	ListDir(path string) ([]string, error)

	// Stat describes a path, following symlinks.
	Stat(path string) (fs.FileInfo, error)

	// Canonical resolves a path to an absolute, symlink-free form.
	Canonical(path string) (string, error)

	// ReadFile reads at most limit bytes of a small file.
	ReadFile(path string, limit int64) ([]byte, error)
}
