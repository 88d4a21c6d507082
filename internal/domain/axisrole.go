package domain

import "slices"

// AxisRole is the semantic meaning of a storage axis.
type AxisRole int

const (
	// RoleUnresolved means no role could be assigned to the axis.
	RoleUnresolved AxisRole = iota
	RoleTime
	RoleLatitude
	RoleLongitude
	RoleStation
	// RoleFixed is an auxiliary axis read at a single fixed index.
	RoleFixed
)

func (r AxisRole) String() string {
	switch r {
	case RoleTime:
		return "time"
	case RoleLatitude:
		return "latitude"
	case RoleLongitude:
		return "longitude"
	case RoleStation:
		return "station"
	case RoleFixed:
		return "fixed"
	default:
		return "unresolved"
	}
}

// RoleNames lists the axis names recognized for each role. Matching is exact
// and case-sensitive.
type RoleNames struct {
	Time      []string `mapstructure:"time" json:"time,omitempty"`
	Latitude  []string `mapstructure:"latitude" json:"latitude,omitempty"`
	Longitude []string `mapstructure:"longitude" json:"longitude,omitempty"`
	Station   []string `mapstructure:"station" json:"station,omitempty"`
}

// DefaultRoleNames returns the naming convention used by KNMI and most CF files.
func DefaultRoleNames() RoleNames {
	return RoleNames{
		Time:      []string{"time"},
		Latitude:  []string{"latitude", "lat"},
		Longitude: []string{"longitude", "lon"},
		Station:   []string{"station", "stations"},
	}
}

// WithDefaults fills every empty list from DefaultRoleNames.
func (n RoleNames) WithDefaults() RoleNames {
	d := DefaultRoleNames()
	if len(n.Time) == 0 {
		n.Time = d.Time
	}
	if len(n.Latitude) == 0 {
		n.Latitude = d.Latitude
	}
	if len(n.Longitude) == 0 {
		n.Longitude = d.Longitude
	}
	if len(n.Station) == 0 {
		n.Station = d.Station
	}
	return n
}

// ClassifyAxis maps an axis name and length to a role. Unknown names are
// fixed axes; an unnamed axis or a negative length is unresolved.
func ClassifyAxis(name string, length int, names RoleNames) AxisRole {
	if name == "" || length < 0 {
		return RoleUnresolved
	}
	switch {
	case slices.Contains(names.Time, name):
		return RoleTime
	case slices.Contains(names.Latitude, name):
		return RoleLatitude
	case slices.Contains(names.Longitude, name):
		return RoleLongitude
	case slices.Contains(names.Station, name):
		return RoleStation
	default:
		return RoleFixed
	}
}
