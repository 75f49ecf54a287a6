package catalog

import (
	"testing"

	"train-station/internal/validation"
)

func TestStationValidate_CoordinateBounds(t *testing.T) {
	cases := []struct {
		name    string
		station Station
		field   string
	}{
		{"valid", Station{Name: "Source", Latitude: 12.34, Longitude: 56.78}, ""},
		{"lat low", Station{Name: "A", Latitude: -90.01, Longitude: 0}, "latitude"},
		{"lat high", Station{Name: "A", Latitude: 90.01, Longitude: 0}, "latitude"},
		{"lon low", Station{Name: "A", Latitude: 0, Longitude: -180.5}, "longitude"},
		{"lon high", Station{Name: "A", Latitude: 0, Longitude: 180.5}, "longitude"},
		{"no name", Station{Latitude: 0, Longitude: 0}, "name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.station.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				return
			}
			fieldErrs, ok := validation.AsFieldErrors(err)
			if !ok {
				t.Fatalf("expected field errors, got %v", err)
			}
			if _, present := fieldErrs[tc.field]; !present {
				t.Fatalf("expected error on %q, got %v", tc.field, fieldErrs)
			}
		})
	}
}

func TestTrainValidate_PositiveCounts(t *testing.T) {
	train := Train{Name: "Train A", CargoNum: 10, PlacesInCargo: 100, TrainTypeID: 1}
	if err := train.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	train.CargoNum = 0
	err := train.Validate()
	fieldErrs, ok := validation.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, present := fieldErrs["cargo_num"]; !present {
		t.Fatalf("expected cargo_num error, got %v", fieldErrs)
	}

	train.CargoNum = 10
	train.PlacesInCargo = -1
	err = train.Validate()
	fieldErrs, _ = validation.AsFieldErrors(err)
	if _, present := fieldErrs["places_in_cargo"]; !present {
		t.Fatalf("expected places_in_cargo error, got %v", fieldErrs)
	}
}

func TestRouteValidate_Loop(t *testing.T) {
	route := Route{SourceID: 1, DestinationID: 1, Distance: 100}
	err := route.Validate()
	fieldErrs, ok := validation.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, present := fieldErrs["destination"]; !present {
		t.Fatalf("expected destination error, got %v", fieldErrs)
	}

	route.DestinationID = 2
	if err := route.Validate(); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestCrewFullName(t *testing.T) {
	crew := Crew{FirstName: "Ada", LastName: "Lovelace"}
	if crew.FullName() != "Ada Lovelace" {
		t.Fatalf("unexpected full name %q", crew.FullName())
	}
}
