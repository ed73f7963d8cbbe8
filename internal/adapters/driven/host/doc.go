// Package host implements driven.HostProbe against the real operating
// system: the user's home directory, the mount table and plain file
// access. Mount enumeration is platform specific; see the mounts_*.go
// files.
package host
