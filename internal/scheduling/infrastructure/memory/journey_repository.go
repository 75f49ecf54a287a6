package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	scheduling "train-station/internal/scheduling/domain"
)

// JourneyRepository is an in-memory journey store. It keeps its own copy
// of the reference data it needs to derive availability, which makes it
// usable from tests without a database.
type JourneyRepository struct {
	mu       sync.RWMutex
	nextID   int64
	journeys map[int64]scheduling.Journey
	routes   map[int64]scheduling.RouteInfo
	trains   map[int64]scheduling.TrainInfo
	crews    map[int64]scheduling.CrewInfo
	tickets  map[int64][]scheduling.Place
}

// NewJourneyRepository constructs an empty store.
func NewJourneyRepository() *JourneyRepository {
	return &JourneyRepository{
		nextID:   1,
		journeys: make(map[int64]scheduling.Journey),
		routes:   make(map[int64]scheduling.RouteInfo),
		trains:   make(map[int64]scheduling.TrainInfo),
		crews:    make(map[int64]scheduling.CrewInfo),
		tickets:  make(map[int64][]scheduling.Place),
	}
}

// SeedRoute registers a route read model.
func (r *JourneyRepository) SeedRoute(route scheduling.RouteInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.ID] = route
}

// SeedTrain registers a train read model.
func (r *JourneyRepository) SeedTrain(train scheduling.TrainInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trains[train.ID] = train
}

// SeedCrew registers a crew member read model.
func (r *JourneyRepository) SeedCrew(crew scheduling.CrewInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.crews[crew.ID] = crew
}

// AddTicket marks a place as taken on a journey.
func (r *JourneyRepository) AddTicket(journeyID int64, place scheduling.Place) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tickets[journeyID] = append(r.tickets[journeyID], place)
}

// Create stores a journey and assigns its id.
func (r *JourneyRepository) Create(ctx context.Context, journey *scheduling.Journey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkReferences(journey); err != nil {
		return err
	}
	journey.ID = r.nextID
	r.nextID++
	r.journeys[journey.ID] = *journey
	return nil
}

// Update rewrites a stored journey.
func (r *JourneyRepository) Update(ctx context.Context, journey *scheduling.Journey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.journeys[journey.ID]; !ok {
		return scheduling.ErrNotFound
	}
	if err := r.checkReferences(journey); err != nil {
		return err
	}
	r.journeys[journey.ID] = *journey
	return nil
}

// Delete removes a journey and its tickets.
func (r *JourneyRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.journeys[id]; !ok {
		return scheduling.ErrNotFound
	}
	delete(r.journeys, id)
	delete(r.tickets, id)
	return nil
}

// Get returns the writable journey record.
func (r *JourneyRepository) Get(ctx context.Context, id int64) (*scheduling.Journey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	journey, ok := r.journeys[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}
	copied := journey
	copied.CrewIDs = append([]int64(nil), journey.CrewIDs...)
	return &copied, nil
}

// GetDetail assembles the detail read model with derived availability.
func (r *JourneyRepository) GetDetail(ctx context.Context, id int64) (*scheduling.Detail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	journey, ok := r.journeys[id]
	if !ok {
		return nil, scheduling.ErrNotFound
	}
	train := r.trains[journey.TrainID]
	detail := scheduling.Detail{
		ID:            journey.ID,
		Route:         r.routes[journey.RouteID],
		Train:         train,
		DepartureTime: journey.DepartureTime,
		ArrivalTime:   journey.ArrivalTime,
	}
	for _, crewID := range journey.CrewIDs {
		if member, ok := r.crews[crewID]; ok {
			detail.Crew = append(detail.Crew, member)
		}
	}
	places := append([]scheduling.Place(nil), r.tickets[id]...)
	sort.Slice(places, func(i, j int) bool {
		if places[i].Cargo != places[j].Cargo {
			return places[i].Cargo < places[j].Cargo
		}
		return places[i].Seat < places[j].Seat
	})
	detail.TakenPlaces = places
	detail.TicketsAvailable = train.CargoNum*train.PlacesInCargo - len(places)
	return &detail, nil
}

// List returns a page of journeys ordered per params.
func (r *JourneyRepository) List(ctx context.Context, params scheduling.ListParams) ([]scheduling.ListItem, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]scheduling.ListItem, 0, len(r.journeys))
	for _, journey := range r.journeys {
		train := r.trains[journey.TrainID]
		item := scheduling.ListItem{
			ID:               journey.ID,
			RouteDisplay:     r.routes[journey.RouteID].Display(),
			TrainName:        train.Name,
			DepartureTime:    journey.DepartureTime,
			ArrivalTime:      journey.ArrivalTime,
			TicketsAvailable: train.CargoNum*train.PlacesInCargo - len(r.tickets[journey.ID]),
		}
		for _, crewID := range journey.CrewIDs {
			if member, ok := r.crews[crewID]; ok {
				item.CrewNames = append(item.CrewNames, member.FullName())
			}
		}
		items = append(items, item)
	}
	key := func(item scheduling.ListItem) (time.Time, int64) {
		switch params.OrderBy {
		case "departure_time":
			return item.DepartureTime, item.ID
		case "arrival_time":
			return item.ArrivalTime, item.ID
		default:
			return time.Time{}, item.ID
		}
	}
	sort.Slice(items, func(i, j int) bool {
		ti, idi := key(items[i])
		tj, idj := key(items[j])
		if !ti.Equal(tj) {
			if params.Desc {
				return ti.After(tj)
			}
			return ti.Before(tj)
		}
		if params.Desc {
			return idi > idj
		}
		return idi < idj
	})
	count := len(items)
	if params.Offset >= len(items) {
		return []scheduling.ListItem{}, count, nil
	}
	items = items[params.Offset:]
	if params.Limit > 0 && params.Limit < len(items) {
		items = items[:params.Limit]
	}
	return items, count, nil
}

func (r *JourneyRepository) checkReferences(journey *scheduling.Journey) error {
	if _, ok := r.routes[journey.RouteID]; !ok {
		return scheduling.ErrUnknownReference
	}
	if _, ok := r.trains[journey.TrainID]; !ok {
		return scheduling.ErrUnknownReference
	}
	for _, crewID := range journey.CrewIDs {
		if _, ok := r.crews[crewID]; !ok {
			return scheduling.ErrUnknownReference
		}
	}
	return nil
}
