package types

import "fmt"

// Coordinates is a location as returned by the geocoder. Values are kept as the
// decimal strings the geocoder produced and passed through to the forecast API
// unchanged.
type Coordinates struct {
	Latitude  string
	Longitude string
}

func NewCoordinates(latitude, longitude string) Coordinates {
	return Coordinates{
		Latitude:  latitude,
		Longitude: longitude,
	}
}

// IsZero reports whether either component is missing.
func (c Coordinates) IsZero() bool {
	return c.Latitude == "" || c.Longitude == ""
}

func (c Coordinates) String() string {
	return fmt.Sprintf("lat=%s, lon=%s", c.Latitude, c.Longitude)
}
