package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	scheduling "train-station/internal/scheduling/domain"
)

// JourneySortFields lists the public ordering names accepted for journeys.
var JourneySortFields = map[string]string{
	"departure_time": "departure_time",
	"arrival_time":   "arrival_time",
}

// JourneyRepository is a Postgres implementation for journeys.
type JourneyRepository struct {
	db *sql.DB
}

// NewJourneyRepository constructs a repository.
func NewJourneyRepository(db *sql.DB) *JourneyRepository {
	return &JourneyRepository{db: db}
}

// Create inserts a journey and its crew links in one transaction.
func (r *JourneyRepository) Create(ctx context.Context, journey *scheduling.Journey) error {
	if r == nil || r.db == nil {
		return errors.New("journey repo: nil db")
	}
	if journey == nil {
		return errors.New("journey repo: nil journey")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	err = tx.QueryRowContext(ctx, `
INSERT INTO journeys (route_id, train_id, departure_time, arrival_time)
VALUES ($1, $2, $3, $4)
RETURNING id`, journey.RouteID, journey.TrainID, journey.DepartureTime, journey.ArrivalTime).Scan(&journey.ID)
	if err != nil {
		_ = tx.Rollback()
		return mapReferenceError(err)
	}
	if err := insertCrewLinks(ctx, tx, journey.ID, journey.CrewIDs); err != nil {
		_ = tx.Rollback()
		return mapReferenceError(err)
	}
	return tx.Commit()
}

// Update rewrites a journey and replaces its crew set.
func (r *JourneyRepository) Update(ctx context.Context, journey *scheduling.Journey) error {
	if r == nil || r.db == nil {
		return errors.New("journey repo: nil db")
	}
	if journey == nil {
		return errors.New("journey repo: nil journey")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `
UPDATE journeys SET route_id = $1, train_id = $2, departure_time = $3, arrival_time = $4
WHERE id = $5`, journey.RouteID, journey.TrainID, journey.DepartureTime, journey.ArrivalTime, journey.ID)
	if err != nil {
		_ = tx.Rollback()
		return mapReferenceError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		_ = tx.Rollback()
		return scheduling.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM journey_crews WHERE journey_id = $1`, journey.ID); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := insertCrewLinks(ctx, tx, journey.ID, journey.CrewIDs); err != nil {
		_ = tx.Rollback()
		return mapReferenceError(err)
	}
	return tx.Commit()
}

// Delete removes a journey; tickets cascade in the schema.
func (r *JourneyRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("journey repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM journeys WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return scheduling.ErrNotFound
	}
	return nil
}

// Get loads the writable journey record.
func (r *JourneyRepository) Get(ctx context.Context, id int64) (*scheduling.Journey, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("journey repo: nil db")
	}
	var journey scheduling.Journey
	err := r.db.QueryRowContext(ctx, `
SELECT id, route_id, train_id, departure_time, arrival_time
FROM journeys WHERE id = $1`, id).Scan(
		&journey.ID, &journey.RouteID, &journey.TrainID, &journey.DepartureTime, &journey.ArrivalTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrNotFound
		}
		return nil, err
	}
	journey.DepartureTime = journey.DepartureTime.UTC()
	journey.ArrivalTime = journey.ArrivalTime.UTC()
	rows, err := r.db.QueryContext(ctx, `
SELECT crew_id FROM journey_crews WHERE journey_id = $1 ORDER BY crew_id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var crewID int64
		if err := rows.Scan(&crewID); err != nil {
			return nil, err
		}
		journey.CrewIDs = append(journey.CrewIDs, crewID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &journey, nil
}

// GetDetail loads the journey detail. Availability is derived in the
// query itself so it reflects every committed booking.
func (r *JourneyRepository) GetDetail(ctx context.Context, id int64) (*scheduling.Detail, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("journey repo: nil db")
	}
	var detail scheduling.Detail
	err := r.db.QueryRowContext(ctx, `
SELECT j.id, j.departure_time, j.arrival_time,
	r.id, r.distance,
	src.id, src.name, src.latitude, src.longitude,
	dst.id, dst.name, dst.latitude, dst.longitude,
	t.id, t.name, t.cargo_num, t.places_in_cargo, t.train_type_id,
	t.cargo_num * t.places_in_cargo - COUNT(tk.id) AS tickets_available
FROM journeys j
JOIN routes r ON r.id = j.route_id
JOIN stations src ON src.id = r.source_id
JOIN stations dst ON dst.id = r.destination_id
JOIN trains t ON t.id = j.train_id
LEFT JOIN tickets tk ON tk.journey_id = j.id
WHERE j.id = $1
GROUP BY j.id, r.id, src.id, dst.id, t.id`, id).Scan(
		&detail.ID, &detail.DepartureTime, &detail.ArrivalTime,
		&detail.Route.ID, &detail.Route.Distance,
		&detail.Route.Source.ID, &detail.Route.Source.Name, &detail.Route.Source.Latitude, &detail.Route.Source.Longitude,
		&detail.Route.Destination.ID, &detail.Route.Destination.Name, &detail.Route.Destination.Latitude, &detail.Route.Destination.Longitude,
		&detail.Train.ID, &detail.Train.Name, &detail.Train.CargoNum, &detail.Train.PlacesInCargo, &detail.Train.TrainTypeID,
		&detail.TicketsAvailable,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, scheduling.ErrNotFound
		}
		return nil, err
	}
	detail.DepartureTime = detail.DepartureTime.UTC()
	detail.ArrivalTime = detail.ArrivalTime.UTC()

	crew, err := r.loadCrew(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Crew = crew

	places, err := r.loadTakenPlaces(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.TakenPlaces = places
	return &detail, nil
}

// List returns a page of journeys with availability plus the match count.
func (r *JourneyRepository) List(ctx context.Context, params scheduling.ListParams) ([]scheduling.ListItem, int, error) {
	if r == nil || r.db == nil {
		return nil, 0, errors.New("journey repo: nil db")
	}

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journeys`).Scan(&count); err != nil {
		return nil, 0, err
	}

	orderBy := "j.id"
	if expr, ok := JourneySortFields[params.OrderBy]; ok {
		orderBy = "j." + expr
	}
	direction := " ASC"
	if params.Desc {
		direction = " DESC"
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT j.id, j.departure_time, j.arrival_time,
	src.name || ' - ' || dst.name AS route_display,
	t.name,
	t.cargo_num * t.places_in_cargo - COUNT(tk.id) AS tickets_available
FROM journeys j
JOIN routes r ON r.id = j.route_id
JOIN stations src ON src.id = r.source_id
JOIN stations dst ON dst.id = r.destination_id
JOIN trains t ON t.id = j.train_id
LEFT JOIN tickets tk ON tk.journey_id = j.id
GROUP BY j.id, src.name, dst.name, t.name, t.cargo_num, t.places_in_cargo
ORDER BY `+orderBy+direction+`
LIMIT $1 OFFSET $2`, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []scheduling.ListItem
	index := make(map[int64]int)
	for rows.Next() {
		var item scheduling.ListItem
		if err := rows.Scan(
			&item.ID, &item.DepartureTime, &item.ArrivalTime,
			&item.RouteDisplay, &item.TrainName, &item.TicketsAvailable,
		); err != nil {
			return nil, 0, err
		}
		item.DepartureTime = item.DepartureTime.UTC()
		item.ArrivalTime = item.ArrivalTime.UTC()
		index[item.ID] = len(items)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(items) == 0 {
		return items, count, nil
	}

	ids := make([]any, 0, len(items))
	placeholders := ""
	for i, item := range items {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "$" + strconv.Itoa(i+1)
		ids = append(ids, item.ID)
	}
	crewRows, err := r.db.QueryContext(ctx, `
SELECT jc.journey_id, c.first_name || ' ' || c.last_name
FROM journey_crews jc
JOIN crews c ON c.id = jc.crew_id
WHERE jc.journey_id IN (`+placeholders+`)
ORDER BY jc.journey_id, c.id`, ids...)
	if err != nil {
		return nil, 0, err
	}
	defer crewRows.Close()
	for crewRows.Next() {
		var journeyID int64
		var name string
		if err := crewRows.Scan(&journeyID, &name); err != nil {
			return nil, 0, err
		}
		if pos, ok := index[journeyID]; ok {
			items[pos].CrewNames = append(items[pos].CrewNames, name)
		}
	}
	if err := crewRows.Err(); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}

func (r *JourneyRepository) loadCrew(ctx context.Context, journeyID int64) ([]scheduling.CrewInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT c.id, c.first_name, c.last_name
FROM journey_crews jc
JOIN crews c ON c.id = jc.crew_id
WHERE jc.journey_id = $1
ORDER BY c.id`, journeyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var crew []scheduling.CrewInfo
	for rows.Next() {
		var member scheduling.CrewInfo
		if err := rows.Scan(&member.ID, &member.FirstName, &member.LastName); err != nil {
			return nil, err
		}
		crew = append(crew, member)
	}
	return crew, rows.Err()
}

func (r *JourneyRepository) loadTakenPlaces(ctx context.Context, journeyID int64) ([]scheduling.Place, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT cargo, seat FROM tickets WHERE journey_id = $1 ORDER BY cargo, seat`, journeyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var places []scheduling.Place
	for rows.Next() {
		var place scheduling.Place
		if err := rows.Scan(&place.Cargo, &place.Seat); err != nil {
			return nil, err
		}
		places = append(places, place)
	}
	return places, rows.Err()
}

func insertCrewLinks(ctx context.Context, tx *sql.Tx, journeyID int64, crewIDs []int64) error {
	for _, crewID := range crewIDs {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO journey_crews (journey_id, crew_id) VALUES ($1, $2)
ON CONFLICT DO NOTHING`, journeyID, crewID); err != nil {
			return err
		}
	}
	return nil
}

func mapReferenceError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return scheduling.ErrUnknownReference
	}
	return err
}
