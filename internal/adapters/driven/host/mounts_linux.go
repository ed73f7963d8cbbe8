//go:build linux

package host

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

const (
	mountTable   = "/proc/self/mounts"
	sysBlockRoot = "/sys/class/block"
)

func systemMounts(_ context.Context) ([]driven.MountPoint, error) {
	data, err := os.ReadFile(mountTable)
	if err != nil {
		return nil, err
	}
	return parseMountTable(data, isRemovable), nil
}

// isRemovable checks the sysfs removable flag of a device or its parent disk.
func isRemovable(device string) bool {
	if resolved, err := filepath.EvalSymlinks(device); err == nil {
		device = resolved // /dev/disk/by-uuid/... links
	}
	for _, name := range blockDeviceNames(device) {
		data, err := os.ReadFile(filepath.Join(sysBlockRoot, name, "removable"))
		if err != nil {
			continue
		}
		return strings.TrimSpace(string(data)) == "1"
	}
	return false
}
