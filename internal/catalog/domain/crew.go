package catalog

import "train-station/internal/validation"

// Crew represents a staff member assignable to journeys.
type Crew struct {
	ID        int64
	FirstName string
	LastName  string
}

// FullName renders the display name used in journey listings.
func (c Crew) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Validate checks crew invariants.
func (c Crew) Validate() error {
	errs := validation.FieldErrors{}
	if c.FirstName == "" {
		errs.Add("first_name", "first_name is required")
	}
	if c.LastName == "" {
		errs.Add("last_name", "last_name is required")
	}
	return errs.OrNil()
}
