package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/k3ss-official/k3ss-search/internal/core/domain"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
	"github.com/k3ss-official/k3ss-search/internal/core/ports/driving"
	"github.com/k3ss-official/k3ss-search/internal/logger"
)

// Ensure DiscoveryService implements the interface.
var _ driving.DiscoveryService = (*DiscoveryService)(nil)

// cloudFolder is a well-known sync folder below the home directory.
type cloudFolder struct {
	dir      string
	provider string
}

var cloudFolders = []cloudFolder{
	{"Google Drive", "Google Drive"},
	{"GoogleDrive", "Google Drive"},
	{"My Drive", "Google Drive"},
	{"Google Drive File Stream", "Google Drive"},
	{"Dropbox", "Dropbox"},
	{"Dropbox (Personal)", "Dropbox"},
	{"Dropbox (Business)", "Dropbox"},
	{"OneDrive", "OneDrive"},
	{"OneDrive - Personal", "OneDrive"},
	{"OneDrive - Business", "OneDrive"},
	{"iCloud Drive", "iCloud Drive"},
	{"iCloudDrive", "iCloud Drive"},
	{"Library/Mobile Documents/com~apple~CloudDocs", "iCloud Drive"},
}

// cloudStoragePrefixes name the providers found under ~/Library/CloudStorage.
var cloudStoragePrefixes = []cloudFolder{
	{"GoogleDrive", "Google Drive"},
	{"Dropbox", "Dropbox"},
	{"OneDrive", "OneDrive"},
	{"iCloud", "iCloud Drive"},
	{"Box", "Box"},
}

// macSystemVolumes are never offered as external volumes.
var macSystemVolumes = map[string]bool{
	"Macintosh HD": true,
	"Preboot":      true,
	"Recovery":     true,
	"VM":           true,
	"Data":         true,
}

// linuxMountBases hold removable media on Linux desktops.
var linuxMountBases = []string{"/media", "/mnt", "/run/media"}

// dropboxInfoLimit bounds the read of ~/.dropbox/info.json.
const dropboxInfoLimit = 64 << 10

// candidate is a root before canonicalisation and probing.
type candidate struct {
	path        string
	name        string
	typ         domain.LocationType
	description string
}

// DiscoveryService enumerates searchable storage roots on the host.
type DiscoveryService struct {
	host driven.HostProbe
}

// NewDiscoveryService creates a discovery service over a host probe.
func NewDiscoveryService(host driven.HostProbe) *DiscoveryService {
	return &DiscoveryService{host: host}
}

// Discover returns every candidate root in the order home, cloud, external.
// A candidate that fails to resolve or list is returned inaccessible.
func (s *DiscoveryService) Discover(ctx context.Context) ([]domain.StorageLocation, error) {
	logger.Section("Location Discovery")

	var candidates []candidate
	home, err := s.host.HomeDir()
	if err != nil {
		logger.Warn("home directory unavailable: %v", err)
	} else {
		candidates = append(candidates, candidate{
			path:        home,
			name:        "Home",
			typ:         domain.LocationLocal,
			description: fmt.Sprintf("Home directory (%s)", home),
		})
		candidates = append(candidates, s.cloudCandidates(home)...)
	}
	candidates = append(candidates, s.externalCandidates(ctx, home)...)

	seen := make(map[string]bool, len(candidates))
	locations := make([]domain.StorageLocation, 0, len(candidates))
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery: %w", domain.ErrCancelled)
		}

		loc := s.probe(c)
		if seen[loc.Path] {
			logger.Debug("skipping duplicate location %s (%s)", loc.Path, c.name)
			continue
		}
		seen[loc.Path] = true
		logger.Debug("found %s location %s accessible=%t", loc.Type, loc.Path, loc.Accessible)
		locations = append(locations, loc)
	}
	return locations, nil
}

// probe canonicalises, classifies and tests one candidate.
func (s *DiscoveryService) probe(c candidate) domain.StorageLocation {
	loc := domain.StorageLocation{
		Path:        filepath.Clean(c.path),
		Name:        c.name,
		Type:        c.typ,
		Description: c.description,
	}

	canonical, err := s.host.Canonical(c.path)
	if err != nil {
		logger.Debug("cannot resolve %s: %v", c.path, err)
		return loc
	}
	loc.Path = canonical

	if loc.Type != domain.LocationCloud && s.hasDropboxMarker(canonical) {
		loc.Type = domain.LocationCloud
		loc.Description = fmt.Sprintf("Dropbox sync folder (%s)", canonical)
	}
	if !loc.Type.IsValid() {
		loc.Type = domain.LocationLocal
	}

	if _, err := s.host.ListDir(canonical); err != nil {
		logger.Debug("cannot list %s: %v", canonical, err)
		return loc
	}
	loc.Accessible = true
	return loc
}

func (s *DiscoveryService) hasDropboxMarker(dir string) bool {
	_, err := s.host.Stat(filepath.Join(dir, ".dropbox"))
	return err == nil
}

// isDir reports whether path exists as a directory. Paths that exist but
// cannot be inspected are kept so the probe marks them inaccessible.
func (s *DiscoveryService) isDir(path string) bool {
	info, err := s.host.Stat(path)
	if err != nil {
		return !errors.Is(err, fs.ErrNotExist)
	}
	return info.IsDir()
}

func (s *DiscoveryService) cloudCandidates(home string) []candidate {
	var out []candidate
	add := func(path, provider string) {
		out = append(out, candidate{
			path:        path,
			name:        provider,
			typ:         domain.LocationCloud,
			description: fmt.Sprintf("%s sync folder (%s)", provider, path),
		})
	}

	for _, f := range cloudFolders {
		path := filepath.Join(home, filepath.FromSlash(f.dir))
		if s.isDir(path) {
			add(path, f.provider)
		}
	}

	storage := filepath.Join(home, "Library", "CloudStorage")
	if names, err := s.host.ListDir(storage); err == nil {
		for _, name := range names {
			path := filepath.Join(storage, name)
			if strings.HasPrefix(name, ".") || !s.isDir(path) {
				continue
			}
			add(path, cloudStorageProvider(name))
		}
	}

	for _, account := range s.dropboxAccounts(home) {
		if s.isDir(account) {
			add(account, "Dropbox")
		}
	}
	return out
}

func cloudStorageProvider(name string) string {
	for _, p := range cloudStoragePrefixes {
		if strings.HasPrefix(name, p.dir) {
			return p.provider
		}
	}
	return "Cloud storage"
}

// dropboxAccounts reads the sync folders Dropbox records in its info.json.
func (s *DiscoveryService) dropboxAccounts(home string) []string {
	data, err := s.host.ReadFile(filepath.Join(home, ".dropbox", "info.json"), dropboxInfoLimit)
	if err != nil {
		return nil
	}

	var info map[string]struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(data, &info); err != nil {
		logger.Debug("ignoring malformed dropbox info.json: %v", err)
		return nil
	}

	kinds := make([]string, 0, len(info))
	for kind := range info {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	paths := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		if p := info[kind].Path; p != "" && filepath.IsAbs(p) {
			paths = append(paths, p)
		}
	}
	return paths
}

func (s *DiscoveryService) externalCandidates(ctx context.Context, home string) []candidate {
	mounts, err := s.host.Mounts(ctx)
	if err != nil {
		logger.Warn("reading mount table: %v", err)
	}

	switch s.host.OS() {
	case "darwin":
		return s.darwinVolumes(mounts)
	case "windows":
		return windowsDrives(mounts)
	default:
		return s.linuxVolumes(mounts, filepath.Base(home))
	}
}

func external(path, name string, remote bool) candidate {
	if remote {
		return candidate{
			path:        path,
			name:        name,
			typ:         domain.LocationExternal,
			description: fmt.Sprintf("Network share (%s)", path),
		}
	}
	return candidate{
		path:        path,
		name:        name,
		typ:         domain.LocationExternal,
		description: fmt.Sprintf("External volume (%s)", path),
	}
}

func volumeName(path string) string {
	name := filepath.Base(path)
	if name == "" || name == string(filepath.Separator) || name == "." {
		return path
	}
	return name
}

func (s *DiscoveryService) darwinVolumes(mounts []driven.MountPoint) []candidate {
	var out []candidate
	add := func(path string, remote bool) {
		name := volumeName(path)
		if macSystemVolumes[name] {
			return
		}
		c := external(path, name, remote)
		if strings.Contains(strings.ToLower(name), "google") {
			c.typ = domain.LocationCloud
			c.description = fmt.Sprintf("Google Drive volume (%s)", path)
		}
		out = append(out, c)
	}

	if names, err := s.host.ListDir("/Volumes"); err == nil {
		for _, name := range names {
			if !strings.HasPrefix(name, ".") {
				add(filepath.Join("/Volumes", name), false)
			}
		}
	}
	for _, m := range mounts {
		if m.Removable || m.Remote {
			add(m.Path, m.Remote)
		}
	}
	return out
}

func (s *DiscoveryService) linuxVolumes(mounts []driven.MountPoint, user string) []candidate {
	var out []candidate
	for _, m := range mounts {
		if m.Removable || m.Remote || underMountBase(m.Path) {
			out = append(out, external(m.Path, volumeName(m.Path), m.Remote))
		}
	}

	for _, base := range linuxMountBases {
		names, err := s.host.ListDir(base)
		if err != nil {
			continue
		}
		for _, name := range names {
			path := filepath.Join(base, name)
			if !s.isDir(path) {
				continue
			}
			// /media/<user>/<volume> and /run/media/<user>/<volume>
			if base != "/mnt" && name == user {
				if vols, err := s.host.ListDir(path); err == nil {
					for _, vol := range vols {
						out = append(out, external(filepath.Join(path, vol), vol, false))
					}
				}
				continue
			}
			out = append(out, external(path, name, false))
		}
	}
	return out
}

func underMountBase(path string) bool {
	for _, base := range linuxMountBases {
		if strings.HasPrefix(path, base+"/") {
			return true
		}
	}
	return false
}

func windowsDrives(mounts []driven.MountPoint) []candidate {
	var out []candidate
	for _, m := range mounts {
		if m.Removable || m.Remote {
			out = append(out, external(m.Path, m.Path, m.Remote))
			continue
		}
		out = append(out, candidate{
			path:        m.Path,
			name:        m.Path,
			typ:         domain.LocationLocal,
			description: fmt.Sprintf("Local drive (%s)", m.Path),
		})
	}
	return out
}
