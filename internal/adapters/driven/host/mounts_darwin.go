//go:build darwin

package host

import (
	"context"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

func systemMounts(_ context.Context) ([]driven.MountPoint, error) {
	n, err := unix.Getfsstat(nil, unix.MNT_NOWAIT)
	if err != nil {
		return nil, err
	}
	buf := make([]unix.Statfs_t, n)
	n, err = unix.Getfsstat(buf, unix.MNT_NOWAIT)
	if err != nil {
		return nil, err
	}

	var mounts []driven.MountPoint
	for _, st := range buf[:n] {
		path := unix.ByteSliceToString(st.Mntonname[:])
		fstype := unix.ByteSliceToString(st.Fstypename[:])
		if fstype == "devfs" || fstype == "autofs" {
			continue
		}
		mounts = append(mounts, driven.MountPoint{
			Path:      path,
			Device:    unix.ByteSliceToString(st.Mntfromname[:]),
			FSType:    fstype,
			Remote:    st.Flags&unix.MNT_LOCAL == 0,
			Removable: strings.HasPrefix(path, "/Volumes/") && st.Flags&unix.MNT_ROOTFS == 0,
		})
	}
	return mounts, nil
}
