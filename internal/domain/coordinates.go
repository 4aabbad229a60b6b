package domain

import "github.com/paulmach/orb"

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as an orb point ([lon, lat] order, as GeoJSON expects).
func (c Coordinates) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }
