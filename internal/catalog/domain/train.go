package catalog

import "train-station/internal/validation"

// Train represents a vehicle with numbered cargo compartments.
type Train struct {
	ID            int64
	Name          string
	CargoNum      int
	PlacesInCargo int
	TrainTypeID   int64
}

// Capacity returns total seats across all cargo compartments.
func (t Train) Capacity() int {
	return t.CargoNum * t.PlacesInCargo
}

// Validate checks train invariants.
func (t Train) Validate() error {
	errs := validation.FieldErrors{}
	if t.Name == "" {
		errs.Add("name", "name is required")
	}
	if t.CargoNum <= 0 {
		errs.Add("cargo_num", "cargo_num must be positive")
	}
	if t.PlacesInCargo <= 0 {
		errs.Add("places_in_cargo", "places_in_cargo must be positive")
	}
	if t.TrainTypeID <= 0 {
		errs.Add("train_type", "train_type is required")
	}
	return errs.OrNil()
}
