package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"train-station/internal/audit"
	"train-station/internal/auth"
	"train-station/internal/httpapi"
	"train-station/internal/scheduling/application"
	scheduling "train-station/internal/scheduling/domain"
	schedulingrepo "train-station/internal/scheduling/infrastructure/postgres"
	"train-station/internal/validation"
)

const journeysPrefix = "/api/v1/journeys"

type journeyWriteRequest struct {
	Route         int64   `json:"route"`
	Train         int64   `json:"train"`
	Crew          []int64 `json:"crew"`
	DepartureTime string  `json:"departure_time"`
	ArrivalTime   string  `json:"arrival_time"`
}

type journeyListDTO struct {
	ID               int64     `json:"id"`
	Route            string    `json:"route"`
	Train            string    `json:"train"`
	Crew             []string  `json:"crew"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	TicketsAvailable int       `json:"tickets_available"`
}

type stationDTO struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type routeDetailDTO struct {
	ID          int64      `json:"id"`
	Source      stationDTO `json:"source"`
	Destination stationDTO `json:"destination"`
	Distance    int        `json:"distance"`
}

type trainDetailDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CargoNum      int    `json:"cargo_num"`
	PlacesInCargo int    `json:"places_in_cargo"`
	TrainType     int64  `json:"train_type"`
	Capacity      int    `json:"capacity"`
}

type crewDetailDTO struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

type journeyDetailDTO struct {
	ID               int64              `json:"id"`
	Route            routeDetailDTO     `json:"route"`
	Train            trainDetailDTO     `json:"train"`
	Crew             []crewDetailDTO    `json:"crew"`
	DepartureTime    time.Time          `json:"departure_time"`
	ArrivalTime      time.Time          `json:"arrival_time"`
	TicketsAvailable int                `json:"tickets_available"`
	TakenPlaces      []scheduling.Place `json:"taken_places"`
}

// JourneyHandler serves journey CRUD and the passenger manifest export.
type JourneyHandler struct {
	service     *application.Service
	auditLogger audit.Logger
}

// NewJourneyHandler constructs a JourneyHandler.
func NewJourneyHandler(service *application.Service, auditLogger audit.Logger) (*JourneyHandler, error) {
	if service == nil {
		return nil, errors.New("journey handler: nil service")
	}
	return &JourneyHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes journey requests.
func (h *JourneyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, journeysPrefix), "/")
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
		return
	case rest == "" && r.Method == http.MethodPost:
		h.handleCreate(w, r)
		return
	case rest == "":
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	idPart, sub, hasSub := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil || id <= 0 {
		httpapi.WriteError(w, http.StatusNotFound, "not found")
		return
	}
	if hasSub {
		if sub == "manifest.xlsx" && r.Method == http.MethodGet {
			h.handleManifest(w, r, id)
			return
		}
		httpapi.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, id)
	case http.MethodPut:
		h.handleUpdate(w, r, id)
	case http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *JourneyHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := httpapi.ParseListQuery(r, schedulingrepo.JourneySortFields, "")
	items, count, err := h.service.List(r.Context(), scheduling.ListParams{
		Limit:   query.Limit,
		Offset:  query.Offset,
		OrderBy: query.OrderBy,
		Desc:    query.OrderDir == "DESC",
	})
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	results := make([]journeyListDTO, 0, len(items))
	for _, item := range items {
		crew := item.CrewNames
		if crew == nil {
			crew = []string{}
		}
		results = append(results, journeyListDTO{
			ID:               item.ID,
			Route:            item.RouteDisplay,
			Train:            item.TrainName,
			Crew:             crew,
			DepartureTime:    item.DepartureTime,
			ArrivalTime:      item.ArrivalTime,
			TicketsAvailable: item.TicketsAvailable,
		})
	}
	httpapi.WriteJSON(w, http.StatusOK, httpapi.Page{Count: count, Results: results})
}

func (h *JourneyHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	journey, ok := h.decodeJourney(w, r)
	if !ok {
		return
	}
	created, err := h.service.Create(r.Context(), journey)
	if err != nil {
		respondJourneyError(w, err)
		return
	}
	detail, err := h.service.Get(r.Context(), created.ID)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toJourneyDetailDTO(detail))
	h.logAudit(r, "journey.create", created.ID)
}

func (h *JourneyHandler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondJourneyError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toJourneyDetailDTO(detail))
}

func (h *JourneyHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	journey, ok := h.decodeJourney(w, r)
	if !ok {
		return
	}
	journey.ID = id
	if _, err := h.service.Update(r.Context(), journey); err != nil {
		respondJourneyError(w, err)
		return
	}
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondJourneyError(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toJourneyDetailDTO(detail))
	h.logAudit(r, "journey.update", id)
}

func (h *JourneyHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondJourneyError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
	h.logAudit(r, "journey.delete", id)
}

func (h *JourneyHandler) decodeJourney(w http.ResponseWriter, r *http.Request) (scheduling.Journey, bool) {
	var req journeyWriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid json")
		return scheduling.Journey{}, false
	}
	errs := validation.FieldErrors{}
	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		errs.Add("departure_time", "must be an RFC 3339 timestamp")
	}
	arrival, err := time.Parse(time.RFC3339, req.ArrivalTime)
	if err != nil {
		errs.Add("arrival_time", "must be an RFC 3339 timestamp")
	}
	if fieldErrs := errs.OrNil(); fieldErrs != nil {
		httpapi.WriteFieldErrors(w, errs)
		return scheduling.Journey{}, false
	}
	return scheduling.Journey{
		RouteID:       req.Route,
		TrainID:       req.Train,
		CrewIDs:       req.Crew,
		DepartureTime: departure.UTC(),
		ArrivalTime:   arrival.UTC(),
	}, true
}

func (h *JourneyHandler) logAudit(r *http.Request, action string, id int64) {
	if h.auditLogger == nil {
		return
	}
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.UserIDFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "journey",
		ResourceID:   strconv.FormatInt(id, 10),
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondJourneyError(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, scheduling.ErrNotFound):
		httpapi.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, scheduling.ErrUnknownReference):
		httpapi.WriteFieldErrors(w, validation.FieldErrors{"route": "unknown route, train or crew reference"})
	default:
		if fieldErrs, ok := validation.AsFieldErrors(err); ok {
			httpapi.WriteFieldErrors(w, fieldErrs)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func toJourneyDetailDTO(detail *scheduling.Detail) journeyDetailDTO {
	crew := make([]crewDetailDTO, 0, len(detail.Crew))
	for _, member := range detail.Crew {
		crew = append(crew, crewDetailDTO{
			ID:        member.ID,
			FirstName: member.FirstName,
			LastName:  member.LastName,
			FullName:  member.FullName(),
		})
	}
	places := detail.TakenPlaces
	if places == nil {
		places = []scheduling.Place{}
	}
	return journeyDetailDTO{
		ID: detail.ID,
		Route: routeDetailDTO{
			ID:          detail.Route.ID,
			Source:      toStationDTO(detail.Route.Source),
			Destination: toStationDTO(detail.Route.Destination),
			Distance:    detail.Route.Distance,
		},
		Train: trainDetailDTO{
			ID:            detail.Train.ID,
			Name:          detail.Train.Name,
			CargoNum:      detail.Train.CargoNum,
			PlacesInCargo: detail.Train.PlacesInCargo,
			TrainType:     detail.Train.TrainTypeID,
			Capacity:      detail.Train.CargoNum * detail.Train.PlacesInCargo,
		},
		Crew:             crew,
		DepartureTime:    detail.DepartureTime,
		ArrivalTime:      detail.ArrivalTime,
		TicketsAvailable: detail.TicketsAvailable,
		TakenPlaces:      places,
	}
}

func toStationDTO(station scheduling.StationInfo) stationDTO {
	return stationDTO{
		ID:        station.ID,
		Name:      station.Name,
		Latitude:  station.Latitude,
		Longitude: station.Longitude,
	}
}
