package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"

	booking "train-station/internal/booking/domain"
)

// OrderSortFields lists the public ordering names accepted for orders.
var OrderSortFields = map[string]string{
	"created_at": "created_at",
}

// OrderRepository is a Postgres implementation for orders. The booked
// seat uniqueness lives in the tickets table constraint, so concurrent
// bookings of the same place resolve to one winner and one conflict.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository constructs a repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// TrainDims resolves the train layout for a journey.
func (r *OrderRepository) TrainDims(ctx context.Context, journeyID int64) (booking.TrainDims, error) {
	if r == nil || r.db == nil {
		return booking.TrainDims{}, errors.New("order repo: nil db")
	}
	var dims booking.TrainDims
	err := r.db.QueryRowContext(ctx, `
SELECT t.cargo_num, t.places_in_cargo
FROM journeys j
JOIN trains t ON t.id = j.train_id
WHERE j.id = $1`, journeyID).Scan(&dims.CargoNum, &dims.PlacesInCargo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booking.TrainDims{}, booking.ErrUnknownJourney
		}
		return booking.TrainDims{}, err
	}
	return dims, nil
}

// Create inserts the order and its tickets in one transaction. A unique
// violation on (journey_id, cargo, seat) rolls the whole order back.
func (r *OrderRepository) Create(ctx context.Context, order *booking.Order) error {
	if r == nil || r.db == nil {
		return errors.New("order repo: nil db")
	}
	if order == nil {
		return errors.New("order repo: nil order")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	err = tx.QueryRowContext(ctx, `
INSERT INTO orders (reference, user_id, created_at)
VALUES ($1, $2, $3)
RETURNING id`, order.Reference, order.UserID, order.CreatedAt).Scan(&order.ID)
	if err != nil {
		_ = tx.Rollback()
		return mapBookingError(err)
	}
	for i := range order.Tickets {
		err = tx.QueryRowContext(ctx, `
INSERT INTO tickets (order_id, journey_id, cargo, seat)
VALUES ($1, $2, $3, $4)
RETURNING id`, order.ID, order.Tickets[i].JourneyID, order.Tickets[i].Cargo, order.Tickets[i].Seat).Scan(&order.Tickets[i].ID)
		if err != nil {
			_ = tx.Rollback()
			return mapBookingError(err)
		}
	}
	return tx.Commit()
}

// Get loads one of the user's orders with its tickets.
func (r *OrderRepository) Get(ctx context.Context, userID string, id int64) (*booking.Order, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("order repo: nil db")
	}
	var order booking.Order
	err := r.db.QueryRowContext(ctx, `
SELECT id, reference, user_id, created_at
FROM orders WHERE id = $1 AND user_id = $2`, id, userID).Scan(
		&order.ID, &order.Reference, &order.UserID, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}
		return nil, err
	}
	order.CreatedAt = order.CreatedAt.UTC()
	tickets, err := r.loadTickets(ctx, []int64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Tickets = tickets[order.ID]
	if order.Tickets == nil {
		order.Tickets = []booking.Ticket{}
	}
	return &order, nil
}

// List returns a page of the user's orders with tickets. Ordering
// defaults to insertion order; created_at is the one accepted override.
func (r *OrderRepository) List(ctx context.Context, userID string, params booking.ListParams) ([]booking.Order, int, error) {
	if r == nil || r.db == nil {
		return nil, 0, errors.New("order repo: nil db")
	}
	var count int
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&count); err != nil {
		return nil, 0, err
	}

	direction := " ASC"
	if params.Desc {
		direction = " DESC"
	}
	orderClause := "id" + direction
	if expr, ok := OrderSortFields[params.OrderBy]; ok {
		orderClause = expr + direction + ", id" + direction
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, reference, user_id, created_at
FROM orders
WHERE user_id = $1
ORDER BY `+orderClause+`
LIMIT $2 OFFSET $3`, userID, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []booking.Order
	var ids []int64
	for rows.Next() {
		var order booking.Order
		if err := rows.Scan(&order.ID, &order.Reference, &order.UserID, &order.CreatedAt); err != nil {
			return nil, 0, err
		}
		order.CreatedAt = order.CreatedAt.UTC()
		order.Tickets = []booking.Ticket{}
		orders = append(orders, order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(orders) == 0 {
		return orders, count, nil
	}

	tickets, err := r.loadTickets(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		if got, ok := tickets[orders[i].ID]; ok {
			orders[i].Tickets = got
		}
	}
	return orders, count, nil
}

// Delete removes the user's order; its tickets cascade in the schema.
func (r *OrderRepository) Delete(ctx context.Context, userID string, id int64) error {
	if r == nil || r.db == nil {
		return errors.New("order repo: nil db")
	}
	result, err := r.db.ExecContext(ctx, `
DELETE FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) loadTickets(ctx context.Context, orderIDs []int64) (map[int64][]booking.Ticket, error) {
	placeholders := ""
	args := make([]any, 0, len(orderIDs))
	for i, id := range orderIDs {
		if i > 0 {
			placeholders += ","
		}
		placeholders += "$" + strconv.Itoa(i+1)
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, `
SELECT tk.order_id, tk.id, tk.cargo, tk.seat, tk.journey_id,
	src.name || ' - ' || dst.name
FROM tickets tk
JOIN journeys j ON j.id = tk.journey_id
JOIN routes rt ON rt.id = j.route_id
JOIN stations src ON src.id = rt.source_id
JOIN stations dst ON dst.id = rt.destination_id
WHERE tk.order_id IN (`+placeholders+`)
ORDER BY tk.order_id, tk.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make(map[int64][]booking.Ticket)
	for rows.Next() {
		var orderID int64
		var ticket booking.Ticket
		if err := rows.Scan(&orderID, &ticket.ID, &ticket.Cargo, &ticket.Seat, &ticket.JourneyID, &ticket.JourneyDisplay); err != nil {
			return nil, err
		}
		tickets[orderID] = append(tickets[orderID], ticket)
	}
	return tickets, rows.Err()
}

func mapBookingError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return booking.ErrSeatTaken
		case "23503":
			return booking.ErrUnknownJourney
		}
	}
	return err
}
