package application

import (
	"context"
	"errors"
	"testing"
	"time"

	scheduling "train-station/internal/scheduling/domain"
	"train-station/internal/scheduling/infrastructure/memory"
	"train-station/internal/validation"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestRepo() *memory.JourneyRepository {
	repo := memory.NewJourneyRepository()
	repo.SeedRoute(scheduling.RouteInfo{
		ID:          1,
		Source:      scheduling.StationInfo{ID: 1, Name: "Kyiv"},
		Destination: scheduling.StationInfo{ID: 2, Name: "Lviv"},
		Distance:    540,
	})
	repo.SeedTrain(scheduling.TrainInfo{ID: 1, Name: "Intercity 705", CargoNum: 10, PlacesInCargo: 100, TrainTypeID: 1})
	repo.SeedCrew(scheduling.CrewInfo{ID: 1, FirstName: "Olena", LastName: "Shevchenko"})
	return repo
}

func TestServiceCreateRejectsPastDeparture(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(repo, fixedClock{now: now})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = service.Create(context.Background(), scheduling.Journey{
		RouteID:       1,
		TrainID:       1,
		DepartureTime: now.Add(-time.Hour),
		ArrivalTime:   now.Add(5 * time.Hour),
	})
	fieldErrs, ok := validation.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, ok := fieldErrs["departure_time"]; !ok {
		t.Fatalf("expected departure_time error, got %v", fieldErrs)
	}
}

func TestServiceCreateAllowsPastDepartureWhenConfigured(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(repo, fixedClock{now: now}, WithAllowPastDepartures(true))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	created, err := service.Create(context.Background(), scheduling.Journey{
		RouteID:       1,
		TrainID:       1,
		DepartureTime: now.Add(-time.Hour),
		ArrivalTime:   now.Add(5 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}
}

func TestServiceAvailabilityDropsWithTickets(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(repo, fixedClock{now: now})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	created, err := service.Create(context.Background(), scheduling.Journey{
		RouteID:       1,
		TrainID:       1,
		CrewIDs:       []int64{1},
		DepartureTime: now.Add(24 * time.Hour),
		ArrivalTime:   now.Add(30 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	detail, err := service.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if detail.TicketsAvailable != 1000 {
		t.Fatalf("expected 1000 available, got %d", detail.TicketsAvailable)
	}
	if len(detail.TakenPlaces) != 0 {
		t.Fatalf("expected no taken places, got %v", detail.TakenPlaces)
	}

	repo.AddTicket(created.ID, scheduling.Place{Cargo: 1, Seat: 1})

	detail, err = service.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get after booking: %v", err)
	}
	if detail.TicketsAvailable != 999 {
		t.Fatalf("expected 999 available, got %d", detail.TicketsAvailable)
	}
	if len(detail.TakenPlaces) != 1 || detail.TakenPlaces[0] != (scheduling.Place{Cargo: 1, Seat: 1}) {
		t.Fatalf("unexpected taken places %v", detail.TakenPlaces)
	}

	items, count, err := service.List(context.Background(), scheduling.ListParams{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if count != 1 || len(items) != 1 {
		t.Fatalf("expected one journey, got count=%d len=%d", count, len(items))
	}
	if items[0].TicketsAvailable != 999 {
		t.Fatalf("expected list availability 999, got %d", items[0].TicketsAvailable)
	}
	if items[0].RouteDisplay != "Kyiv - Lviv" {
		t.Fatalf("unexpected route display %q", items[0].RouteDisplay)
	}
}

func TestServiceCreateUnknownReference(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(repo, fixedClock{now: now})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = service.Create(context.Background(), scheduling.Journey{
		RouteID:       99,
		TrainID:       1,
		DepartureTime: now.Add(24 * time.Hour),
		ArrivalTime:   now.Add(30 * time.Hour),
	})
	if !errors.Is(err, scheduling.ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
}

func TestServiceDeleteRemovesJourney(t *testing.T) {
	repo := newTestRepo()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(repo, fixedClock{now: now})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	created, err := service.Create(context.Background(), scheduling.Journey{
		RouteID:       1,
		TrainID:       1,
		DepartureTime: now.Add(24 * time.Hour),
		ArrivalTime:   now.Add(30 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := service.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := service.Get(context.Background(), created.ID); !errors.Is(err, scheduling.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
