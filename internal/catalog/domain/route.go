package catalog

import "train-station/internal/validation"

// Route is a directed link between two stations. The (source, destination)
// pair is unique in the storage layer.
type Route struct {
	ID            int64
	SourceID      int64
	DestinationID int64
	Distance      int
}

// Validate checks route invariants.
func (r Route) Validate() error {
	errs := validation.FieldErrors{}
	if r.SourceID <= 0 {
		errs.Add("source", "source is required")
	}
	if r.DestinationID <= 0 {
		errs.Add("destination", "destination is required")
	}
	if r.SourceID > 0 && r.SourceID == r.DestinationID {
		errs.Add("destination", "destination must differ from source")
	}
	if r.Distance <= 0 {
		errs.Add("distance", "distance must be positive")
	}
	return errs.OrNil()
}
