package booking

import (
	"testing"

	"train-station/internal/validation"
)

func TestValidateTickets(t *testing.T) {
	dims := map[int64]TrainDims{
		1: {CargoNum: 10, PlacesInCargo: 100},
		2: {CargoNum: 4, PlacesInCargo: 20},
	}

	tests := []struct {
		name      string
		tickets   []Ticket
		wantField string
	}{
		{
			name:      "empty request",
			tickets:   nil,
			wantField: "tickets",
		},
		{
			name:    "valid single ticket",
			tickets: []Ticket{{Cargo: 1, Seat: 1, JourneyID: 1}},
		},
		{
			name:    "boundary place",
			tickets: []Ticket{{Cargo: 10, Seat: 100, JourneyID: 1}},
		},
		{
			name:      "cargo zero",
			tickets:   []Ticket{{Cargo: 0, Seat: 1, JourneyID: 1}},
			wantField: "tickets[0]",
		},
		{
			name:      "cargo above layout",
			tickets:   []Ticket{{Cargo: 11, Seat: 1, JourneyID: 1}},
			wantField: "tickets[0]",
		},
		{
			name:      "seat above layout",
			tickets:   []Ticket{{Cargo: 1, Seat: 101, JourneyID: 1}},
			wantField: "tickets[0]",
		},
		{
			name:      "unknown journey",
			tickets:   []Ticket{{Cargo: 1, Seat: 1, JourneyID: 9}},
			wantField: "tickets[0]",
		},
		{
			name: "duplicate place in request",
			tickets: []Ticket{
				{Cargo: 2, Seat: 5, JourneyID: 1},
				{Cargo: 2, Seat: 5, JourneyID: 1},
			},
			wantField: "tickets[1]",
		},
		{
			name: "same place on different journeys",
			tickets: []Ticket{
				{Cargo: 2, Seat: 5, JourneyID: 1},
				{Cargo: 2, Seat: 5, JourneyID: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTickets(tt.tickets, dims)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			fieldErrs, ok := validation.AsFieldErrors(err)
			if !ok {
				t.Fatalf("expected field errors, got %v", err)
			}
			if _, ok := fieldErrs[tt.wantField]; !ok {
				t.Fatalf("expected error on %s, got %v", tt.wantField, fieldErrs)
			}
		})
	}
}
