package postgres

import (
	"context"
	"database/sql"
	"errors"

	catalog "train-station/internal/catalog/domain"
	"train-station/internal/httpapi"
)

// TrainSortFields maps public ordering names to SQL expressions.
var TrainSortFields = map[string]string{
	"name":       "t.name",
	"train_type": "tt.name",
}

// TrainRow is the list read model joining the train type name.
type TrainRow struct {
	Train         catalog.Train
	TrainTypeName string
}

// TrainRepository is a Postgres implementation for trains.
type TrainRepository struct {
	db *sql.DB
}

// NewTrainRepository constructs a repository.
func NewTrainRepository(db *sql.DB) *TrainRepository {
	return &TrainRepository{db: db}
}

// Create inserts a train.
func (r *TrainRepository) Create(ctx context.Context, train *catalog.Train) error {
	if r == nil || r.db == nil {
		return errors.New("train repo: nil db")
	}
	if train == nil {
		return errors.New("train repo: nil train")
	}
	err := r.db.QueryRowContext(ctx, `
INSERT INTO trains (name, cargo_num, places_in_cargo, train_type_id)
VALUES ($1, $2, $3, $4)
RETURNING id`, train.Name, train.CargoNum, train.PlacesInCargo, train.TrainTypeID).Scan(&train.ID)
	return mapConstraintError(err)
}

// Get loads a train by id.
func (r *TrainRepository) Get(ctx context.Context, id int64) (*catalog.Train, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("train repo: nil db")
	}
	var train catalog.Train
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, cargo_num, places_in_cargo, train_type_id
FROM trains WHERE id = $1`, id).Scan(
		&train.ID, &train.Name, &train.CargoNum, &train.PlacesInCargo, &train.TrainTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}
	return &train, nil
}

// Update rewrites a train.
func (r *TrainRepository) Update(ctx context.Context, train *catalog.Train) error {
	if r == nil || r.db == nil {
		return errors.New("train repo: nil db")
	}
	if train == nil {
		return errors.New("train repo: nil train")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE trains SET name = $1, cargo_num = $2, places_in_cargo = $3, train_type_id = $4
WHERE id = $5`, train.Name, train.CargoNum, train.PlacesInCargo, train.TrainTypeID, train.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a train.
func (r *TrainRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("train repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM trains WHERE id = $1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// List returns a page of trains with their type names plus the match count.
func (r *TrainRepository) List(ctx context.Context, query httpapi.ListQuery) ([]TrainRow, int, error) {
	if r == nil || r.db == nil {
		return nil, 0, errors.New("train repo: nil db")
	}
	where := ""
	args := []any{}
	if query.Search != "" {
		where = " WHERE t.name ILIKE '%' || $1 || '%' OR tt.name ILIKE '%' || $1 || '%'"
		args = append(args, query.Search)
	}
	from := " FROM trains t JOIN train_types tt ON tt.id = t.train_type_id"

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	listArgs := append(args, query.Limit, query.Offset)
	limitPos := len(args) + 1
	rows, err := r.db.QueryContext(ctx,
		"SELECT t.id, t.name, t.cargo_num, t.places_in_cargo, t.train_type_id, tt.name"+
			from+where+query.OrderClause()+
			" LIMIT $"+itoa(limitPos)+" OFFSET $"+itoa(limitPos+1), listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []TrainRow
	for rows.Next() {
		var row TrainRow
		if err := rows.Scan(
			&row.Train.ID,
			&row.Train.Name,
			&row.Train.CargoNum,
			&row.Train.PlacesInCargo,
			&row.Train.TrainTypeID,
			&row.TrainTypeName,
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
