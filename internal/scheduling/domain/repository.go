package scheduling

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the journey does not exist.
	ErrNotFound = errors.New("scheduling: journey not found")
	// ErrUnknownReference indicates the route, train or a crew id is unknown.
	ErrUnknownReference = errors.New("scheduling: unknown reference")
)

// Place identifies one (cargo, seat) position on a train.
type Place struct {
	Cargo int `json:"cargo"`
	Seat  int `json:"seat"`
}

// StationInfo is the station read model nested in journey details.
type StationInfo struct {
	ID        int64
	Name      string
	Latitude  float64
	Longitude float64
}

// RouteInfo is the route read model nested in journey details.
type RouteInfo struct {
	ID          int64
	Source      StationInfo
	Destination StationInfo
	Distance    int
}

// Display renders the route the way listings show it.
func (r RouteInfo) Display() string {
	return r.Source.Name + " - " + r.Destination.Name
}

// TrainInfo is the train read model nested in journey details.
type TrainInfo struct {
	ID            int64
	Name          string
	CargoNum      int
	PlacesInCargo int
	TrainTypeID   int64
}

// CrewInfo is the crew read model nested in journey details.
type CrewInfo struct {
	ID        int64
	FirstName string
	LastName  string
}

// FullName renders the crew display name.
func (c CrewInfo) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ListItem is the list read model. TicketsAvailable is recomputed by the
// storage layer on every read; it is never cached.
type ListItem struct {
	ID               int64
	RouteDisplay     string
	TrainName        string
	CrewNames        []string
	DepartureTime    time.Time
	ArrivalTime      time.Time
	TicketsAvailable int
}

// Detail is the retrieve read model with nested records and taken places.
type Detail struct {
	ID               int64
	Route            RouteInfo
	Train            TrainInfo
	Crew             []CrewInfo
	DepartureTime    time.Time
	ArrivalTime      time.Time
	TicketsAvailable int
	TakenPlaces      []Place
}

// ListParams carries paging and ordering for journey listings. OrderBy is
// a public field name, already validated by the caller.
type ListParams struct {
	Limit   int
	Offset  int
	OrderBy string
	Desc    bool
}

// Repository manages journey persistence and read models.
type Repository interface {
	Create(ctx context.Context, journey *Journey) error
	Update(ctx context.Context, journey *Journey) error
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*Journey, error)
	GetDetail(ctx context.Context, id int64) (*Detail, error)
	List(ctx context.Context, params ListParams) ([]ListItem, int, error)
}
