package booking

import (
	"errors"
	"fmt"
	"time"

	"train-station/internal/validation"
)

var (
	// ErrNotFound indicates the order does not exist or belongs to
	// another user. The two cases are indistinguishable on the wire.
	ErrNotFound = errors.New("booking: order not found")
	// ErrSeatTaken indicates a requested place is already booked on
	// that journey.
	ErrSeatTaken = errors.New("booking: seat already taken")
	// ErrUnknownJourney indicates a ticket references a journey that
	// does not exist.
	ErrUnknownJourney = errors.New("booking: unknown journey")
)

// Ticket reserves one (cargo, seat) place on a journey. JourneyDisplay
// is filled by read paths only.
type Ticket struct {
	ID             int64
	Cargo          int
	Seat           int
	JourneyID      int64
	JourneyDisplay string
}

// Order groups the tickets booked in one atomic request.
type Order struct {
	ID        int64
	Reference string
	UserID    string
	CreatedAt time.Time
	Tickets   []Ticket
}

// TrainDims carries the cargo layout of the train serving a journey,
// used to bounds-check requested places.
type TrainDims struct {
	CargoNum      int
	PlacesInCargo int
}

// ValidateTickets checks every requested place against the journey's
// train layout and rejects duplicate places within the same request.
// dims must hold an entry for every journey referenced by tickets.
func ValidateTickets(tickets []Ticket, dims map[int64]TrainDims) error {
	errs := validation.FieldErrors{}
	if len(tickets) == 0 {
		errs.Add("tickets", "at least one ticket is required")
		return errs.OrNil()
	}
	seen := make(map[Ticket]bool, len(tickets))
	for i, ticket := range tickets {
		key := fmt.Sprintf("tickets[%d]", i)
		layout, ok := dims[ticket.JourneyID]
		if !ok {
			errs.Add(key, "unknown journey")
			continue
		}
		if ticket.Cargo < 1 || ticket.Cargo > layout.CargoNum {
			errs.Add(key, fmt.Sprintf("cargo must be in range [1, %d]", layout.CargoNum))
			continue
		}
		if ticket.Seat < 1 || ticket.Seat > layout.PlacesInCargo {
			errs.Add(key, fmt.Sprintf("seat must be in range [1, %d]", layout.PlacesInCargo))
			continue
		}
		place := Ticket{Cargo: ticket.Cargo, Seat: ticket.Seat, JourneyID: ticket.JourneyID}
		if seen[place] {
			errs.Add(key, "duplicate place in request")
			continue
		}
		seen[place] = true
	}
	return errs.OrNil()
}
