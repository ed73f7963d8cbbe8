//go:build !linux && !darwin && !windows

package host

import (
	"context"

	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

// systemMounts has no mount source on this platform; discovery falls back
// to the home directory and cloud folders.
func systemMounts(_ context.Context) ([]driven.MountPoint, error) {
	return nil, nil
}
