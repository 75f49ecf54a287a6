package postgres

import (
	"context"
	"database/sql"
	"errors"

	catalog "train-station/internal/catalog/domain"
	"train-station/internal/httpapi"
)

// TrainTypeSortFields maps public ordering names to SQL expressions.
var TrainTypeSortFields = map[string]string{"name": "name"}

// TrainTypeRepository is a Postgres implementation for train types.
type TrainTypeRepository struct {
	db *sql.DB
}

// NewTrainTypeRepository constructs a repository.
func NewTrainTypeRepository(db *sql.DB) *TrainTypeRepository {
	return &TrainTypeRepository{db: db}
}

// Create inserts a train type.
func (r *TrainTypeRepository) Create(ctx context.Context, trainType *catalog.TrainType) error {
	if r == nil || r.db == nil {
		return errors.New("train type repo: nil db")
	}
	if trainType == nil {
		return errors.New("train type repo: nil train type")
	}
	err := r.db.QueryRowContext(ctx, `
INSERT INTO train_types (name) VALUES ($1)
RETURNING id`, trainType.Name).Scan(&trainType.ID)
	return mapConstraintError(err)
}

// Get loads a train type by id.
func (r *TrainTypeRepository) Get(ctx context.Context, id int64) (*catalog.TrainType, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("train type repo: nil db")
	}
	var trainType catalog.TrainType
	err := r.db.QueryRowContext(ctx, `
SELECT id, name FROM train_types WHERE id = $1`, id).Scan(&trainType.ID, &trainType.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}
	return &trainType, nil
}

// Update rewrites a train type.
func (r *TrainTypeRepository) Update(ctx context.Context, trainType *catalog.TrainType) error {
	if r == nil || r.db == nil {
		return errors.New("train type repo: nil db")
	}
	if trainType == nil {
		return errors.New("train type repo: nil train type")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE train_types SET name = $1 WHERE id = $2`, trainType.Name, trainType.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a train type.
func (r *TrainTypeRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("train type repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM train_types WHERE id = $1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// List returns a page of train types plus the unpaged match count.
func (r *TrainTypeRepository) List(ctx context.Context, query httpapi.ListQuery) ([]catalog.TrainType, int, error) {
	if r == nil || r.db == nil {
		return nil, 0, errors.New("train type repo: nil db")
	}
	where := ""
	args := []any{}
	if query.Search != "" {
		where = " WHERE name ILIKE '%' || $1 || '%'"
		args = append(args, query.Search)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM train_types"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	listArgs := append(args, query.Limit, query.Offset)
	limitPos := len(args) + 1
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name FROM train_types"+where+query.OrderClause()+
			" LIMIT $"+itoa(limitPos)+" OFFSET $"+itoa(limitPos+1), listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []catalog.TrainType
	for rows.Next() {
		var trainType catalog.TrainType
		if err := rows.Scan(&trainType.ID, &trainType.Name); err != nil {
			return nil, 0, err
		}
		result = append(result, trainType)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, count, nil
}
