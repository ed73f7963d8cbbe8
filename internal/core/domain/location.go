package domain

// LocationType classifies a storage root.
type LocationType string

// Location types. A root that cannot be classified is local.
const (
	LocationLocal    LocationType = "local"
	LocationExternal LocationType = "external"
	LocationCloud    LocationType = "cloud"
)

// IsValid returns true if the location type is recognised.
func (t LocationType) IsValid() bool {
	switch t {
	case LocationLocal, LocationExternal, LocationCloud:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t LocationType) String() string {
	return string(t)
}

// StorageLocation is a searchable root found on the host.
// Locations are re-derived on every discovery call and never persisted.
type StorageLocation struct {
	// Path is the canonical absolute path of the root.
	Path string `json:"path"`

	// Name is a short display label.
	Name string `json:"name"`

	// Type is local, external or cloud.
	Type LocationType `json:"type"`

	// Accessible is true when the process could list the root.
	// Inaccessible locations are never searched.
	Accessible bool `json:"accessible"`

	// Description is a human-readable line about where the root came from.
	Description string `json:"description,omitempty"`
}
