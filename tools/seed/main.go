// Command seed loads a small demo dataset: a handful of stations and
// routes, two trains, crews, and upcoming journeys.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type station struct {
	name     string
	lat, lon float64
}

var stations = []station{
	{"Kyiv", 50.4401, 30.4893},
	{"Lviv", 49.8397, 24.0297},
	{"Odesa", 46.4825, 30.7233},
	{"Kharkiv", 49.9935, 36.2304},
}

func main() {
	var (
		dsn      = flag.String("dsn", envDefault("DATABASE_URL", os.Getenv("PG_DSN")), "postgres dsn")
		journeys = flag.Int("journeys", 6, "journeys to schedule per route")
	)
	flag.Parse()
	if *dsn == "" {
		log.Fatal("PG_DSN or DATABASE_URL is required")
	}
	if *journeys <= 0 {
		log.Fatal("journeys must be > 0")
	}

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var typeID int64
	if err := db.QueryRowContext(ctx, `
INSERT INTO train_types (name) VALUES ('Intercity')
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id`).Scan(&typeID); err != nil {
		log.Fatalf("seed train type: %v", err)
	}

	trainIDs := make([]int64, 0, 2)
	for _, name := range []string{"Intercity 705", "Intercity 712"} {
		var id int64
		if err := db.QueryRowContext(ctx, `
INSERT INTO trains (name, cargo_num, places_in_cargo, train_type_id)
VALUES ($1, 10, 100, $2)
RETURNING id`, name, typeID).Scan(&id); err != nil {
			log.Fatalf("seed train %s: %v", name, err)
		}
		trainIDs = append(trainIDs, id)
	}

	stationIDs := make([]int64, 0, len(stations))
	for _, s := range stations {
		var id int64
		if err := db.QueryRowContext(ctx, `
INSERT INTO stations (name, latitude, longitude) VALUES ($1, $2, $3)
ON CONFLICT (name) DO UPDATE SET latitude = EXCLUDED.latitude
RETURNING id`, s.name, s.lat, s.lon).Scan(&id); err != nil {
			log.Fatalf("seed station %s: %v", s.name, err)
		}
		stationIDs = append(stationIDs, id)
	}

	var crewID int64
	if err := db.QueryRowContext(ctx, `
INSERT INTO crews (first_name, last_name) VALUES ('Olena', 'Shevchenko')
RETURNING id`).Scan(&crewID); err != nil {
		log.Fatalf("seed crew: %v", err)
	}

	routeIDs := make([]int64, 0)
	for i := 1; i < len(stationIDs); i++ {
		var id int64
		if err := db.QueryRowContext(ctx, `
INSERT INTO routes (source_id, destination_id, distance) VALUES ($1, $2, $3)
ON CONFLICT (source_id, destination_id) DO UPDATE SET distance = EXCLUDED.distance
RETURNING id`, stationIDs[0], stationIDs[i], 300+100*i).Scan(&id); err != nil {
			log.Fatalf("seed route: %v", err)
		}
		routeIDs = append(routeIDs, id)
	}

	start := time.Now().UTC().Truncate(time.Hour).Add(24 * time.Hour)
	total := 0
	for r, routeID := range routeIDs {
		for j := 0; j < *journeys; j++ {
			departure := start.Add(time.Duration(j*12) * time.Hour)
			arrival := departure.Add(time.Duration(5+r) * time.Hour)
			var journeyID int64
			if err := db.QueryRowContext(ctx, `
INSERT INTO journeys (route_id, train_id, departure_time, arrival_time)
VALUES ($1, $2, $3, $4)
RETURNING id`, routeID, trainIDs[j%len(trainIDs)], departure, arrival).Scan(&journeyID); err != nil {
				log.Fatalf("seed journey: %v", err)
			}
			if _, err := db.ExecContext(ctx, `
INSERT INTO journey_crews (journey_id, crew_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`, journeyID, crewID); err != nil {
				log.Fatalf("seed journey crew: %v", err)
			}
			total++
		}
	}
	log.Printf("seeded %d stations, %d routes, %d journeys", len(stationIDs), len(routeIDs), total)
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
