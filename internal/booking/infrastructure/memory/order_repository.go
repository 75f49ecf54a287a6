package memory

import (
	"context"
	"sort"
	"sync"

	booking "train-station/internal/booking/domain"
)

type journeyEntry struct {
	dims    booking.TrainDims
	display string
}

type placeKey struct {
	journeyID int64
	cargo     int
	seat      int
}

// OrderRepository is an in-memory order store with the same atomicity
// contract as the database implementation.
type OrderRepository struct {
	mu           sync.Mutex
	nextOrderID  int64
	nextTicketID int64
	journeys     map[int64]journeyEntry
	orders       map[int64]booking.Order
	taken        map[placeKey]bool
}

// NewOrderRepository constructs an empty store.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		nextOrderID:  1,
		nextTicketID: 1,
		journeys:     make(map[int64]journeyEntry),
		orders:       make(map[int64]booking.Order),
		taken:        make(map[placeKey]bool),
	}
}

// SeedJourney registers a bookable journey.
func (r *OrderRepository) SeedJourney(id int64, dims booking.TrainDims, display string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journeys[id] = journeyEntry{dims: dims, display: display}
}

// TakenCount reports how many places are booked on a journey.
func (r *OrderRepository) TakenCount(journeyID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for key := range r.taken {
		if key.journeyID == journeyID {
			count++
		}
	}
	return count
}

// TrainDims resolves the train layout for a journey.
func (r *OrderRepository) TrainDims(ctx context.Context, journeyID int64) (booking.TrainDims, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.journeys[journeyID]
	if !ok {
		return booking.TrainDims{}, booking.ErrUnknownJourney
	}
	return entry.dims, nil
}

// Create books all tickets or none.
func (r *OrderRepository) Create(ctx context.Context, order *booking.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range order.Tickets {
		if _, ok := r.journeys[ticket.JourneyID]; !ok {
			return booking.ErrUnknownJourney
		}
		if r.taken[placeKey{ticket.JourneyID, ticket.Cargo, ticket.Seat}] {
			return booking.ErrSeatTaken
		}
	}
	order.ID = r.nextOrderID
	r.nextOrderID++
	for i := range order.Tickets {
		order.Tickets[i].ID = r.nextTicketID
		r.nextTicketID++
		order.Tickets[i].JourneyDisplay = r.journeys[order.Tickets[i].JourneyID].display
		r.taken[placeKey{order.Tickets[i].JourneyID, order.Tickets[i].Cargo, order.Tickets[i].Seat}] = true
	}
	stored := *order
	stored.Tickets = append([]booking.Ticket(nil), order.Tickets...)
	r.orders[order.ID] = stored
	return nil
}

// Get returns the order when it belongs to userID.
func (r *OrderRepository) Get(ctx context.Context, userID string, id int64) (*booking.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.UserID != userID {
		return nil, booking.ErrNotFound
	}
	copied := order
	copied.Tickets = append([]booking.Ticket(nil), order.Tickets...)
	return &copied, nil
}

// List returns a page of the user's orders, in insertion order unless
// created_at ordering is requested.
func (r *OrderRepository) List(ctx context.Context, userID string, params booking.ListParams) ([]booking.Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []booking.Order
	for _, order := range r.orders {
		if order.UserID != userID {
			continue
		}
		copied := order
		copied.Tickets = append([]booking.Ticket(nil), order.Tickets...)
		orders = append(orders, copied)
	}
	byCreated := params.OrderBy == "created_at"
	sort.Slice(orders, func(i, j int) bool {
		if byCreated && !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			if params.Desc {
				return orders[i].CreatedAt.After(orders[j].CreatedAt)
			}
			return orders[i].CreatedAt.Before(orders[j].CreatedAt)
		}
		if params.Desc {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].ID < orders[j].ID
	})
	count := len(orders)
	if params.Offset >= len(orders) {
		return []booking.Order{}, count, nil
	}
	orders = orders[params.Offset:]
	if params.Limit > 0 && params.Limit < len(orders) {
		orders = orders[:params.Limit]
	}
	return orders, count, nil
}

// Delete removes the user's order and releases its places.
func (r *OrderRepository) Delete(ctx context.Context, userID string, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok || order.UserID != userID {
		return booking.ErrNotFound
	}
	for _, ticket := range order.Tickets {
		delete(r.taken, placeKey{ticket.JourneyID, ticket.Cargo, ticket.Seat})
	}
	delete(r.orders, id)
	return nil
}
