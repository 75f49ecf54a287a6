package scheduling

import (
	"time"

	"train-station/internal/validation"
)

// Journey is a scheduled run of a train over a route within a time window.
type Journey struct {
	ID            int64
	RouteID       int64
	TrainID       int64
	DepartureTime time.Time
	ArrivalTime   time.Time
	CrewIDs       []int64
}

// Validate checks journey invariants. The departure floor is evaluated
// against now, not captured at schema definition time: past-dated
// departures are rejected at write time unless allowPast is set.
func (j Journey) Validate(now time.Time, allowPast bool) error {
	errs := validation.FieldErrors{}
	if j.RouteID <= 0 {
		errs.Add("route", "route is required")
	}
	if j.TrainID <= 0 {
		errs.Add("train", "train is required")
	}
	if j.DepartureTime.IsZero() {
		errs.Add("departure_time", "departure_time is required")
	}
	if j.ArrivalTime.IsZero() {
		errs.Add("arrival_time", "arrival_time is required")
	}
	if !j.DepartureTime.IsZero() && !j.ArrivalTime.IsZero() && !j.ArrivalTime.After(j.DepartureTime) {
		errs.Add("arrival_time", "arrival time must be later than departure time")
	}
	if !allowPast && !j.DepartureTime.IsZero() && j.DepartureTime.Before(now) {
		errs.Add("departure_time", "departure time must not be in the past")
	}
	return errs.OrNil()
}
