package host

import (
	"bufio"
	"bytes"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

// pseudoFS are kernel and container filesystems that never hold user files.
var pseudoFS = map[string]bool{
	"proc": true, "sysfs": true, "devtmpfs": true, "devpts": true,
	"tmpfs": true, "cgroup": true, "cgroup2": true, "securityfs": true,
	"pstore": true, "bpf": true, "debugfs": true, "tracefs": true,
	"configfs": true, "mqueue": true, "hugetlbfs": true, "fusectl": true,
	"autofs": true, "binfmt_misc": true, "overlay": true, "squashfs": true,
	"nsfs": true, "ramfs": true, "rpc_pipefs": true, "efivarfs": true,
}

// remoteFS are network filesystems.
var remoteFS = map[string]bool{
	"nfs": true, "nfs4": true, "cifs": true, "smbfs": true, "smb3": true,
	"fuse.sshfs": true, "sshfs": true, "afpfs": true, "webdav": true,
	"davfs": true, "fuse.rclone": true, "9p": true,
}

// parseMountTable reads the /proc/self/mounts format. removable reports
// whether a block device is removable and may be nil.
func parseMountTable(data []byte, removable func(device string) bool) []driven.MountPoint {
	var mounts []driven.MountPoint
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		device, path, fstype := fields[0], unescapeMount(fields[1]), fields[2]
		if pseudoFS[fstype] {
			continue
		}
		m := driven.MountPoint{
			Path:   path,
			Device: device,
			FSType: fstype,
			Remote: remoteFS[fstype],
		}
		if removable != nil && strings.HasPrefix(device, "/dev/") {
			m.Removable = removable(device)
		}
		mounts = append(mounts, m)
	}
	return mounts
}

// unescapeMount decodes the octal escapes the kernel uses for spaces, tabs,
// newlines and backslashes in mount paths.
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+4 <= len(s) && isOctal(s[i+1:i+4]) {
			n, _ := strconv.ParseUint(s[i+1:i+4], 8, 8)
			b.WriteByte(byte(n))
			i += 3
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(s string) bool {
	for _, c := range s {
		if c < '0' || c > '7' {
			return false
		}
	}
	return len(s) == 3
}

// blockDeviceNames returns the sysfs names to check for a device node,
// the partition first and then its parent disk.
func blockDeviceNames(device string) []string {
	name := filepath.Base(device)
	names := []string{name}

	trimmed := strings.TrimRightFunc(name, func(r rune) bool { return r >= '0' && r <= '9' })
	switch {
	case strings.HasPrefix(name, "nvme") || strings.HasPrefix(name, "mmcblk"):
		// nvme0n1p2 and mmcblk0p1 name partitions with a p suffix
		if i := strings.LastIndex(name, "p"); i > 0 && i < len(name)-1 {
			names = append(names, name[:i])
		}
	case trimmed != name && trimmed != "":
		names = append(names, trimmed)
	}
	return names
}
