package domain

// Listing is a point-in-time copy of the profile list.
//
// Generation changes whenever positions can shift (add, remove, replace, import).
// Indices taken from a Listing are valid for UpdateAt and RemoveAt only while the
// vault's generation still matches.
type Listing struct {
	Generation uint64
	Profiles   []ConnectionProfile
}

// Get returns the profile at index, or false when out of range.
func (l Listing) Get(index int) (ConnectionProfile, bool) {
	if index < 0 || index >= len(l.Profiles) {
		return ConnectionProfile{}, false
	}
	return l.Profiles[index], true
}
