package postgres

import (
	"context"
	"database/sql"
	"errors"

	catalog "train-station/internal/catalog/domain"
	"train-station/internal/httpapi"
)

// StationSortFields maps public ordering names to SQL expressions.
var StationSortFields = map[string]string{"name": "name"}

// StationRepository is a Postgres implementation for stations.
type StationRepository struct {
	db *sql.DB
}

// NewStationRepository constructs a repository.
func NewStationRepository(db *sql.DB) *StationRepository {
	return &StationRepository{db: db}
}

// Create inserts a station.
func (r *StationRepository) Create(ctx context.Context, station *catalog.Station) error {
	if r == nil || r.db == nil {
		return errors.New("station repo: nil db")
	}
	if station == nil {
		return errors.New("station repo: nil station")
	}
	err := r.db.QueryRowContext(ctx, `
INSERT INTO stations (name, latitude, longitude) VALUES ($1, $2, $3)
RETURNING id`, station.Name, station.Latitude, station.Longitude).Scan(&station.ID)
	return mapConstraintError(err)
}

// Get loads a station by id.
func (r *StationRepository) Get(ctx context.Context, id int64) (*catalog.Station, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("station repo: nil db")
	}
	var station catalog.Station
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, latitude, longitude FROM stations WHERE id = $1`, id).Scan(
		&station.ID, &station.Name, &station.Latitude, &station.Longitude)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}
	return &station, nil
}

// Update rewrites a station.
func (r *StationRepository) Update(ctx context.Context, station *catalog.Station) error {
	if r == nil || r.db == nil {
		return errors.New("station repo: nil db")
	}
	if station == nil {
		return errors.New("station repo: nil station")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE stations SET name = $1, latitude = $2, longitude = $3 WHERE id = $4`,
		station.Name, station.Latitude, station.Longitude, station.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a station.
func (r *StationRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("station repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// List returns a page of stations plus the unpaged match count.
func (r *StationRepository) List(ctx context.Context, query httpapi.ListQuery) ([]catalog.Station, int, error) {
	if r == nil || r.db == nil {
		return nil, 0, errors.New("station repo: nil db")
	}
	where := ""
	args := []any{}
	if query.Search != "" {
		where = " WHERE name ILIKE '%' || $1 || '%'"
		args = append(args, query.Search)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM stations"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	listArgs := append(args, query.Limit, query.Offset)
	limitPos := len(args) + 1
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, latitude, longitude FROM stations"+where+query.OrderClause()+
			" LIMIT $"+itoa(limitPos)+" OFFSET $"+itoa(limitPos+1), listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []catalog.Station
	for rows.Next() {
		var station catalog.Station
		if err := rows.Scan(&station.ID, &station.Name, &station.Latitude, &station.Longitude); err != nil {
			return nil, 0, err
		}
		result = append(result, station)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, count, nil
}
