package booking

import "context"

// ListParams carries paging and ordering for order listings. OrderBy is
// a public field name, already validated by the caller; empty means
// insertion order.
type ListParams struct {
	Limit   int
	Offset  int
	OrderBy string
	Desc    bool
}

// Repository manages order persistence. Every read and delete is scoped
// to the owning user.
type Repository interface {
	// TrainDims resolves the cargo layout of the train serving a
	// journey. Returns ErrUnknownJourney for missing journeys.
	TrainDims(ctx context.Context, journeyID int64) (TrainDims, error)
	// Create persists the order and its tickets atomically, assigning
	// ids. Returns ErrSeatTaken when any place is already booked.
	Create(ctx context.Context, order *Order) error
	Get(ctx context.Context, userID string, id int64) (*Order, error)
	List(ctx context.Context, userID string, params ListParams) ([]Order, int, error)
	Delete(ctx context.Context, userID string, id int64) error
}
