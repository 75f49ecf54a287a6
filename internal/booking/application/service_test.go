package application

import (
	"context"
	"errors"
	"testing"
	"time"

	booking "train-station/internal/booking/domain"
	"train-station/internal/booking/infrastructure/memory"
	"train-station/internal/validation"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestService(t *testing.T, maxTickets int) (*Service, *memory.OrderRepository) {
	t.Helper()
	repo := memory.NewOrderRepository()
	repo.SeedJourney(1, booking.TrainDims{CargoNum: 10, PlacesInCargo: 100}, "Kyiv - Lviv")
	clock := fixedClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	service, err := NewService(repo, clock, maxTickets)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service, repo
}

func TestServiceCreateBooksAtomically(t *testing.T) {
	service, repo := newTestService(t, 20)

	order, err := service.Create(context.Background(), "user-1", []booking.Ticket{
		{Cargo: 1, Seat: 1, JourneyID: 1},
		{Cargo: 1, Seat: 2, JourneyID: 1},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.ID == 0 || order.Reference == "" {
		t.Fatalf("expected assigned id and reference, got %+v", order)
	}
	if order.UserID != "user-1" {
		t.Fatalf("unexpected owner %q", order.UserID)
	}
	if len(order.Tickets) != 2 || order.Tickets[0].ID == 0 {
		t.Fatalf("expected persisted tickets, got %+v", order.Tickets)
	}
	if got := repo.TakenCount(1); got != 2 {
		t.Fatalf("expected 2 taken places, got %d", got)
	}
}

func TestServiceCreateSeatConflictBooksNothing(t *testing.T) {
	service, repo := newTestService(t, 20)

	if _, err := service.Create(context.Background(), "user-1", []booking.Ticket{
		{Cargo: 1, Seat: 1, JourneyID: 1},
	}); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err := service.Create(context.Background(), "user-2", []booking.Ticket{
		{Cargo: 2, Seat: 7, JourneyID: 1},
		{Cargo: 1, Seat: 1, JourneyID: 1},
	})
	if !errors.Is(err, booking.ErrSeatTaken) {
		t.Fatalf("expected ErrSeatTaken, got %v", err)
	}
	if got := repo.TakenCount(1); got != 1 {
		t.Fatalf("expected conflict to book nothing, taken = %d", got)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	service, _ := newTestService(t, 2)

	tests := []struct {
		name      string
		tickets   []booking.Ticket
		wantField string
	}{
		{"empty", nil, "tickets"},
		{"out of range seat", []booking.Ticket{{Cargo: 1, Seat: 101, JourneyID: 1}}, "tickets[0]"},
		{"unknown journey", []booking.Ticket{{Cargo: 1, Seat: 1, JourneyID: 9}}, "tickets[0]"},
		{"over the cap", []booking.Ticket{
			{Cargo: 1, Seat: 1, JourneyID: 1},
			{Cargo: 1, Seat: 2, JourneyID: 1},
			{Cargo: 1, Seat: 3, JourneyID: 1},
		}, "tickets"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), "user-1", tt.tickets)
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

func TestServiceOrdersScopedToUser(t *testing.T) {
	service, _ := newTestService(t, 20)

	mine, err := service.Create(context.Background(), "user-1", []booking.Ticket{{Cargo: 1, Seat: 1, JourneyID: 1}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := service.Create(context.Background(), "user-2", []booking.Ticket{{Cargo: 1, Seat: 2, JourneyID: 1}}); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	orders, count, err := service.List(context.Background(), "user-1", booking.ListParams{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if count != 1 || len(orders) != 1 || orders[0].ID != mine.ID {
		t.Fatalf("expected only own order, got count=%d orders=%+v", count, orders)
	}

	if _, err := service.Get(context.Background(), "user-2", mine.ID); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign order, got %v", err)
	}
	if err := service.Delete(context.Background(), "user-2", mine.ID); !errors.Is(err, booking.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}
}

func TestServiceDeleteReleasesPlaces(t *testing.T) {
	service, repo := newTestService(t, 20)

	order, err := service.Create(context.Background(), "user-1", []booking.Ticket{{Cargo: 3, Seat: 3, JourneyID: 1}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := service.Delete(context.Background(), "user-1", order.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := repo.TakenCount(1); got != 0 {
		t.Fatalf("expected released places, taken = %d", got)
	}
	if _, err := service.Create(context.Background(), "user-2", []booking.Ticket{{Cargo: 3, Seat: 3, JourneyID: 1}}); err != nil {
		t.Fatalf("rebooking released place: %v", err)
	}
}
