package postgres

import (
	"context"
	"database/sql"
	"errors"

	catalog "train-station/internal/catalog/domain"
	"train-station/internal/httpapi"
)

// RouteSortFields maps public ordering names to SQL expressions.
var RouteSortFields = map[string]string{
	"source":      "src.name",
	"destination": "dst.name",
	"distance":    "r.distance",
}

// RouteRow is the read model joining both station records.
type RouteRow struct {
	Route       catalog.Route
	Source      catalog.Station
	Destination catalog.Station
}

// RouteRepository is a Postgres implementation for routes.
type RouteRepository struct {
	db *sql.DB
}

// NewRouteRepository constructs a repository.
func NewRouteRepository(db *sql.DB) *RouteRepository {
	return &RouteRepository{db: db}
}

// Create inserts a route. A duplicate (source, destination) pair surfaces
// as catalog.ErrDuplicate.
func (r *RouteRepository) Create(ctx context.Context, route *catalog.Route) error {
	if r == nil || r.db == nil {
		return errors.New("route repo: nil db")
	}
	if route == nil {
		return errors.New("route repo: nil route")
	}
	err := r.db.QueryRowContext(ctx, `
INSERT INTO routes (source_id, destination_id, distance)
VALUES ($1, $2, $3)
RETURNING id`, route.SourceID, route.DestinationID, route.Distance).Scan(&route.ID)
	return mapConstraintError(err)
}

// Get loads a route with its stations.
func (r *RouteRepository) Get(ctx context.Context, id int64) (*RouteRow, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("route repo: nil db")
	}
	var row RouteRow
	err := r.db.QueryRowContext(ctx, `
SELECT r.id, r.source_id, r.destination_id, r.distance,
	src.id, src.name, src.latitude, src.longitude,
	dst.id, dst.name, dst.latitude, dst.longitude
FROM routes r
JOIN stations src ON src.id = r.source_id
JOIN stations dst ON dst.id = r.destination_id
WHERE r.id = $1`, id).Scan(
		&row.Route.ID, &row.Route.SourceID, &row.Route.DestinationID, &row.Route.Distance,
		&row.Source.ID, &row.Source.Name, &row.Source.Latitude, &row.Source.Longitude,
		&row.Destination.ID, &row.Destination.Name, &row.Destination.Latitude, &row.Destination.Longitude,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// Update rewrites a route.
func (r *RouteRepository) Update(ctx context.Context, route *catalog.Route) error {
	if r == nil || r.db == nil {
		return errors.New("route repo: nil db")
	}
	if route == nil {
		return errors.New("route repo: nil route")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE routes SET source_id = $1, destination_id = $2, distance = $3
WHERE id = $4`, route.SourceID, route.DestinationID, route.Distance, route.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a route.
func (r *RouteRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("route repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// List returns a page of routes with stations plus the match count.
func (r *RouteRepository) List(ctx context.Context, query httpapi.ListQuery) ([]RouteRow, int, error) {
	if r == nil || r.db == nil {
		return nil, 0, errors.New("route repo: nil db")
	}
	where := ""
	args := []any{}
	if query.Search != "" {
		where = " WHERE src.name ILIKE '%' || $1 || '%' OR dst.name ILIKE '%' || $1 || '%'"
		args = append(args, query.Search)
	}
	from := ` FROM routes r
JOIN stations src ON src.id = r.source_id
JOIN stations dst ON dst.id = r.destination_id`

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	listArgs := append(args, query.Limit, query.Offset)
	limitPos := len(args) + 1
	rows, err := r.db.QueryContext(ctx,
		`SELECT r.id, r.source_id, r.destination_id, r.distance,
	src.id, src.name, src.latitude, src.longitude,
	dst.id, dst.name, dst.latitude, dst.longitude`+
			from+where+query.OrderClause()+
			" LIMIT $"+itoa(limitPos)+" OFFSET $"+itoa(limitPos+1), listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []RouteRow
	for rows.Next() {
		var row RouteRow
		if err := rows.Scan(
			&row.Route.ID, &row.Route.SourceID, &row.Route.DestinationID, &row.Route.Distance,
			&row.Source.ID, &row.Source.Name, &row.Source.Latitude, &row.Source.Longitude,
			&row.Destination.ID, &row.Destination.Name, &row.Destination.Latitude, &row.Destination.Longitude,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, count, nil
}
