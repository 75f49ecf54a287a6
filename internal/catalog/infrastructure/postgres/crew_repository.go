package postgres

import (
	"context"
	"database/sql"
	"errors"

	catalog "train-station/internal/catalog/domain"
	"train-station/internal/httpapi"
)

// CrewSortFields maps public ordering names to SQL expressions.
var CrewSortFields = map[string]string{
	"first_name": "first_name",
	"last_name":  "last_name",
}

// CrewRepository is a Postgres implementation for crew members.
type CrewRepository struct {
	db *sql.DB
}

// NewCrewRepository constructs a repository.
func NewCrewRepository(db *sql.DB) *CrewRepository {
	return &CrewRepository{db: db}
}

// Create inserts a crew member.
func (r *CrewRepository) Create(ctx context.Context, crew *catalog.Crew) error {
	if r == nil || r.db == nil {
		return errors.New("crew repo: nil db")
	}
	if crew == nil {
		return errors.New("crew repo: nil crew")
	}
	err := r.db.QueryRowContext(ctx, `
INSERT INTO crews (first_name, last_name) VALUES ($1, $2)
RETURNING id`, crew.FirstName, crew.LastName).Scan(&crew.ID)
	return mapConstraintError(err)
}

// Get loads a crew member by id.
func (r *CrewRepository) Get(ctx context.Context, id int64) (*catalog.Crew, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("crew repo: nil db")
	}
	var crew catalog.Crew
	err := r.db.QueryRowContext(ctx, `
SELECT id, first_name, last_name FROM crews WHERE id = $1`, id).Scan(
		&crew.ID, &crew.FirstName, &crew.LastName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}
	return &crew, nil
}

// Update rewrites a crew member.
func (r *CrewRepository) Update(ctx context.Context, crew *catalog.Crew) error {
	if r == nil || r.db == nil {
		return errors.New("crew repo: nil db")
	}
	if crew == nil {
		return errors.New("crew repo: nil crew")
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE crews SET first_name = $1, last_name = $2 WHERE id = $3`,
		crew.FirstName, crew.LastName, crew.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// Delete removes a crew member.
func (r *CrewRepository) Delete(ctx context.Context, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("crew repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM crews WHERE id = $1`, id)
	if err != nil {
		return mapConstraintError(err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// List returns a page of crew members plus the match count.
func (r *CrewRepository) List(ctx context.Context, query httpapi.ListQuery) ([]catalog.Crew, int, error) {
	if r == nil || r.db == nil {
		return nil, 0, errors.New("crew repo: nil db")
	}
	where := ""
	args := []any{}
	if query.Search != "" {
		where = " WHERE first_name ILIKE '%' || $1 || '%' OR last_name ILIKE '%' || $1 || '%'"
		args = append(args, query.Search)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM crews"+where, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	listArgs := append(args, query.Limit, query.Offset)
	limitPos := len(args) + 1
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, first_name, last_name FROM crews"+where+query.OrderClause()+
			" LIMIT $"+itoa(limitPos)+" OFFSET $"+itoa(limitPos+1), listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []catalog.Crew
	for rows.Next() {
		var crew catalog.Crew
		if err := rows.Scan(&crew.ID, &crew.FirstName, &crew.LastName); err != nil {
			return nil, 0, err
		}
		result = append(result, crew)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return result, count, nil
}
