package application

import (
	"context"
	"errors"
	"time"

	"train-station/internal/observability/metrics"
	scheduling "train-station/internal/scheduling/domain"
)

// Clock abstracts time for the write-time departure floor.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Service orchestrates journey scheduling.
type Service struct {
	repo      scheduling.Repository
	clock     Clock
	allowPast bool
}

// Option configures the service.
type Option func(*Service)

// WithAllowPastDepartures disables the departure floor. Seeding and test
// environments only.
func WithAllowPastDepartures(allow bool) Option {
	return func(s *Service) {
		s.allowPast = allow
	}
}

// NewService constructs a scheduling service.
func NewService(repo scheduling.Repository, clock Clock, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, errors.New("scheduling: nil repo")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	service := &Service{repo: repo, clock: clock}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Create validates and persists a journey.
func (s *Service) Create(ctx context.Context, journey scheduling.Journey) (*scheduling.Journey, error) {
	if err := journey.Validate(s.clock.Now(), s.allowPast); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &journey); err != nil {
		return nil, err
	}
	return &journey, nil
}

// Update validates and rewrites a journey, including its crew set.
func (s *Service) Update(ctx context.Context, journey scheduling.Journey) (*scheduling.Journey, error) {
	if err := journey.Validate(s.clock.Now(), s.allowPast); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &journey); err != nil {
		return nil, err
	}
	return &journey, nil
}

// Delete removes a journey. Its tickets are removed with it by the
// storage layer cascade.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Get returns the journey detail with availability and taken places.
func (s *Service) Get(ctx context.Context, id int64) (*scheduling.Detail, error) {
	start := time.Now()
	detail, err := s.repo.GetDetail(ctx, id)
	metrics.ObserveAvailability(err, time.Since(start))
	return detail, err
}

// List returns a page of journeys with availability.
func (s *Service) List(ctx context.Context, params scheduling.ListParams) ([]scheduling.ListItem, int, error) {
	start := time.Now()
	items, count, err := s.repo.List(ctx, params)
	metrics.ObserveAvailability(err, time.Since(start))
	return items, count, err
}
