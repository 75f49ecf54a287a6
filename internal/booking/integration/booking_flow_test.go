package integration_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	bookingapp "train-station/internal/booking/application"
	booking "train-station/internal/booking/domain"
	bookingrepo "train-station/internal/booking/infrastructure/postgres"
	catalog "train-station/internal/catalog/domain"
	catalogrepo "train-station/internal/catalog/infrastructure/postgres"
	schedulingapp "train-station/internal/scheduling/application"
	scheduling "train-station/internal/scheduling/domain"
	schedulingrepo "train-station/internal/scheduling/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// End-to-end booking flow against a real database: schedule a journey on
// a 10x100 train, confirm 1000 places, book one, confirm 999 and the
// taken place, then verify double booking conflicts and rolls back.
func TestBookingFlow(t *testing.T) {
	dsn := os.Getenv("PG_DSN")
	if dsn == "" {
		t.Skip("PG_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	cleanup(t, db)
	t.Cleanup(func() { cleanup(t, db) })

	trainType := catalog.TrainType{Name: "Intercity IT"}
	if err := catalogrepo.NewTrainTypeRepository(db).Create(ctx, &trainType); err != nil {
		t.Fatalf("create train type: %v", err)
	}
	train := catalog.Train{Name: "Intercity IT-1", CargoNum: 10, PlacesInCargo: 100, TrainTypeID: trainType.ID}
	if err := catalogrepo.NewTrainRepository(db).Create(ctx, &train); err != nil {
		t.Fatalf("create train: %v", err)
	}
	stationRepo := catalogrepo.NewStationRepository(db)
	source := catalog.Station{Name: "Kyiv IT", Latitude: 50.44, Longitude: 30.49}
	destination := catalog.Station{Name: "Lviv IT", Latitude: 49.84, Longitude: 24.03}
	if err := stationRepo.Create(ctx, &source); err != nil {
		t.Fatalf("create source: %v", err)
	}
	if err := stationRepo.Create(ctx, &destination); err != nil {
		t.Fatalf("create destination: %v", err)
	}
	route := catalog.Route{SourceID: source.ID, DestinationID: destination.ID, Distance: 540}
	if err := catalogrepo.NewRouteRepository(db).Create(ctx, &route); err != nil {
		t.Fatalf("create route: %v", err)
	}

	journeyService, err := schedulingapp.NewService(schedulingrepo.NewJourneyRepository(db), nil)
	if err != nil {
		t.Fatalf("journey service: %v", err)
	}
	journey, err := journeyService.Create(ctx, scheduling.Journey{
		RouteID:       route.ID,
		TrainID:       train.ID,
		DepartureTime: time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second),
		ArrivalTime:   time.Now().UTC().Add(30 * time.Hour).Truncate(time.Second),
	})
	if err != nil {
		t.Fatalf("create journey: %v", err)
	}

	detail, err := journeyService.Get(ctx, journey.ID)
	if err != nil {
		t.Fatalf("get journey: %v", err)
	}
	if detail.TicketsAvailable != 1000 {
		t.Fatalf("expected 1000 available, got %d", detail.TicketsAvailable)
	}

	orderService, err := bookingapp.NewService(bookingrepo.NewOrderRepository(db), nil, 20)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}
	order, err := orderService.Create(ctx, "it-user-1", []booking.Ticket{
		{Cargo: 1, Seat: 1, JourneyID: journey.ID},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Reference == "" || len(order.Tickets) != 1 || order.Tickets[0].ID == 0 {
		t.Fatalf("unexpected order %+v", order)
	}

	detail, err = journeyService.Get(ctx, journey.ID)
	if err != nil {
		t.Fatalf("get journey after booking: %v", err)
	}
	if detail.TicketsAvailable != 999 {
		t.Fatalf("expected 999 available, got %d", detail.TicketsAvailable)
	}
	if len(detail.TakenPlaces) != 1 || detail.TakenPlaces[0] != (scheduling.Place{Cargo: 1, Seat: 1}) {
		t.Fatalf("unexpected taken places %v", detail.TakenPlaces)
	}

	_, err = orderService.Create(ctx, "it-user-2", []booking.Ticket{
		{Cargo: 2, Seat: 7, JourneyID: journey.ID},
		{Cargo: 1, Seat: 1, JourneyID: journey.ID},
	})
	if !errors.Is(err, booking.ErrSeatTaken) {
		t.Fatalf("expected ErrSeatTaken, got %v", err)
	}

	detail, err = journeyService.Get(ctx, journey.ID)
	if err != nil {
		t.Fatalf("get journey after conflict: %v", err)
	}
	if detail.TicketsAvailable != 999 {
		t.Fatalf("conflict must book nothing, available = %d", detail.TicketsAvailable)
	}

	orders, count, err := orderService.List(ctx, "it-user-2", booking.ListParams{Limit: 10})
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if count != 0 || len(orders) != 0 {
		t.Fatalf("expected no orders for conflicting user, got %d", count)
	}

	if err := orderService.Delete(ctx, "it-user-1", order.ID); err != nil {
		t.Fatalf("delete order: %v", err)
	}
	detail, err = journeyService.Get(ctx, journey.ID)
	if err != nil {
		t.Fatalf("get journey after cancel: %v", err)
	}
	if detail.TicketsAvailable != 1000 {
		t.Fatalf("expected released place, available = %d", detail.TicketsAvailable)
	}
}

func cleanup(t *testing.T, db *sql.DB) {
	t.Helper()
	ctx := context.Background()
	statements := []string{
		`DELETE FROM tickets WHERE journey_id IN (
			SELECT j.id FROM journeys j JOIN trains tr ON tr.id = j.train_id WHERE tr.name LIKE '%IT%')`,
		`DELETE FROM orders WHERE user_id LIKE 'it-user-%'`,
		`DELETE FROM journeys WHERE train_id IN (SELECT id FROM trains WHERE name LIKE '%IT%')`,
		`DELETE FROM routes WHERE source_id IN (SELECT id FROM stations WHERE name LIKE '%IT%')`,
		`DELETE FROM trains WHERE name LIKE '%IT%'`,
		`DELETE FROM train_types WHERE name LIKE '%IT%'`,
		`DELETE FROM stations WHERE name LIKE '%IT%'`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("cleanup: %v", err)
		}
	}
}
