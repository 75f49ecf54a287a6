package catalog

import "train-station/internal/validation"

// Station represents a named geographic point.
type Station struct {
	ID        int64
	Name      string
	Latitude  float64
	Longitude float64
}

// Validate checks station invariants.
func (s Station) Validate() error {
	errs := validation.FieldErrors{}
	if s.Name == "" {
		errs.Add("name", "name is required")
	}
	if s.Latitude < -90 || s.Latitude > 90 {
		errs.Add("latitude", "latitude must be between -90 and 90")
	}
	if s.Longitude < -180 || s.Longitude > 180 {
		errs.Add("longitude", "longitude must be between -180 and 180")
	}
	return errs.OrNil()
}
