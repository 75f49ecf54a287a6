package catalog

import "train-station/internal/validation"

// TrainType categorizes trains.
type TrainType struct {
	ID   int64
	Name string
}

// Validate checks train type invariants. Name uniqueness is enforced by
// the storage layer.
func (t TrainType) Validate() error {
	errs := validation.FieldErrors{}
	if t.Name == "" {
		errs.Add("name", "name is required")
	}
	return errs.OrNil()
}
