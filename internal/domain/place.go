package domain

// A forward-geocoding search candidate. ExternalID is the provider's
// identifier for the place, kept opaque.
type Place struct {
	Name       string
	Lat        float64
	Lng        float64
	ExternalID string
}
