package scheduling

import (
	"testing"
	"time"

	"train-station/internal/validation"
)

func TestJourneyValidate_TimeOrdering(t *testing.T) {
	now := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
	base := Journey{
		RouteID:       1,
		TrainID:       1,
		DepartureTime: now.Add(24 * time.Hour),
		ArrivalTime:   now.Add(28 * time.Hour),
	}

	if err := base.Validate(now, false); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	equal := base
	equal.ArrivalTime = equal.DepartureTime
	err := equal.Validate(now, false)
	fieldErrs, ok := validation.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, present := fieldErrs["arrival_time"]; !present {
		t.Fatalf("expected arrival_time error, got %v", fieldErrs)
	}

	earlier := base
	earlier.ArrivalTime = earlier.DepartureTime.Add(-time.Hour)
	if err := earlier.Validate(now, false); err == nil {
		t.Fatal("expected error for arrival before departure")
	}
}

func TestJourneyValidate_DepartureFloor(t *testing.T) {
	now := time.Date(2024, time.August, 1, 0, 0, 0, 0, time.UTC)
	past := Journey{
		RouteID:       1,
		TrainID:       1,
		DepartureTime: now.Add(-time.Hour),
		ArrivalTime:   now.Add(time.Hour),
	}

	err := past.Validate(now, false)
	fieldErrs, ok := validation.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, present := fieldErrs["departure_time"]; !present {
		t.Fatalf("expected departure_time error, got %v", fieldErrs)
	}

	// allowPast is meant for seeding fixtures.
	if err := past.Validate(now, true); err != nil {
		t.Fatalf("expected valid with allowPast, got %v", err)
	}
}

func TestJourneyValidate_MissingReferences(t *testing.T) {
	now := time.Now().UTC()
	journey := Journey{DepartureTime: now.Add(time.Hour), ArrivalTime: now.Add(2 * time.Hour)}
	err := journey.Validate(now, false)
	fieldErrs, ok := validation.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	for _, field := range []string{"route", "train"} {
		if _, present := fieldErrs[field]; !present {
			t.Fatalf("expected %s error, got %v", field, fieldErrs)
		}
	}
}
