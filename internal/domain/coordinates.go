package domain

// Geographic coordinates in decimal degrees.
type Coordinates struct {
	Lat float64
	Lng float64
}

// Return coordinates as [lng, lat] for external API compatibility
// (OSRM and GeoJSON order longitude first).
func (c Coordinates) LngLat() []float64 { return []float64{c.Lng, c.Lat} }
