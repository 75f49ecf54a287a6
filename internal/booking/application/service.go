package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	booking "train-station/internal/booking/domain"
	"train-station/internal/observability/metrics"
	"train-station/internal/validation"
)

// Clock abstracts time for order timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Service orchestrates order booking. Every operation is scoped to the
// authenticated user passed by the caller.
type Service struct {
	repo               booking.Repository
	clock              Clock
	maxTicketsPerOrder int
}

// NewService constructs a booking service. maxTicketsPerOrder caps the
// tickets accepted in a single order; zero disables the cap.
func NewService(repo booking.Repository, clock Clock, maxTicketsPerOrder int) (*Service, error) {
	if repo == nil {
		return nil, errors.New("booking: nil repo")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Service{repo: repo, clock: clock, maxTicketsPerOrder: maxTicketsPerOrder}, nil
}

// Create books the requested places in one atomic order. Either every
// ticket is persisted or none is.
func (s *Service) Create(ctx context.Context, userID string, tickets []booking.Ticket) (*booking.Order, error) {
	start := time.Now()
	order, err := s.create(ctx, userID, tickets)
	metrics.ObserveOrderCreate(orderResult(err), len(tickets), time.Since(start))
	return order, err
}

func (s *Service) create(ctx context.Context, userID string, tickets []booking.Ticket) (*booking.Order, error) {
	if userID == "" {
		return nil, errors.New("booking: empty user id")
	}
	if s.maxTicketsPerOrder > 0 && len(tickets) > s.maxTicketsPerOrder {
		return nil, validation.FieldErrors{"tickets": "too many tickets in one order"}
	}

	dims := make(map[int64]booking.TrainDims)
	for _, ticket := range tickets {
		if _, ok := dims[ticket.JourneyID]; ok {
			continue
		}
		layout, err := s.repo.TrainDims(ctx, ticket.JourneyID)
		if err != nil {
			if errors.Is(err, booking.ErrUnknownJourney) {
				continue // reported per ticket by ValidateTickets
			}
			return nil, err
		}
		dims[ticket.JourneyID] = layout
	}
	if err := booking.ValidateTickets(tickets, dims); err != nil {
		return nil, err
	}

	order := booking.Order{
		Reference: uuid.NewString(),
		UserID:    userID,
		CreatedAt: s.clock.Now(),
		Tickets:   tickets,
	}
	if err := s.repo.Create(ctx, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Get returns one of the user's own orders.
func (s *Service) Get(ctx context.Context, userID string, id int64) (*booking.Order, error) {
	return s.repo.Get(ctx, userID, id)
}

// List returns a page of the user's own orders.
func (s *Service) List(ctx context.Context, userID string, params booking.ListParams) ([]booking.Order, int, error) {
	return s.repo.List(ctx, userID, params)
}

// Delete cancels one of the user's own orders, releasing its places.
func (s *Service) Delete(ctx context.Context, userID string, id int64) error {
	return s.repo.Delete(ctx, userID, id)
}

func orderResult(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, booking.ErrSeatTaken):
		return metrics.ResultConflict()
	default:
		if _, ok := validation.AsFieldErrors(err); ok {
			return metrics.ResultInvalid()
		}
		return metrics.ResultError()
	}
}
