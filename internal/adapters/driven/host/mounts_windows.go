//go:build windows

package host

import (
	"context"

	"golang.org/x/sys/windows"

	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

func systemMounts(ctx context.Context) ([]driven.MountPoint, error) {
	mask, err := windows.GetLogicalDrives()
	if err != nil {
		return nil, err
	}

	var mounts []driven.MountPoint
	for i := 0; i < 26; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		root := string(rune('A'+i)) + `:\`
		ptr, err := windows.UTF16PtrFromString(root)
		if err != nil {
			continue
		}

		m := driven.MountPoint{Path: root, Device: root[:2]}
		switch windows.GetDriveType(ptr) {
		case windows.DRIVE_REMOVABLE, windows.DRIVE_CDROM:
			m.Removable = true
		case windows.DRIVE_REMOTE:
			m.Remote = true
		case windows.DRIVE_FIXED, windows.DRIVE_RAMDISK:
		default:
			continue // no root directory or unknown
		}
		mounts = append(mounts, m)
	}
	return mounts, nil
}
