package http

import (
	"errors"
	"net/http"

	"train-station/internal/audit"
	catalog "train-station/internal/catalog/domain"
	catalogrepo "train-station/internal/catalog/infrastructure/postgres"
	"train-station/internal/httpapi"
)

const stationsPrefix = "/api/v1/stations"

type stationDTO struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type stationWriteRequest struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StationHandler serves station CRUD endpoints.
type StationHandler struct {
	repo        *catalogrepo.StationRepository
	auditLogger audit.Logger
}

// NewStationHandler constructs a StationHandler.
func NewStationHandler(repo *catalogrepo.StationRepository, auditLogger audit.Logger) (*StationHandler, error) {
	if repo == nil {
		return nil, errors.New("station handler: nil repo")
	}
	return &StationHandler{repo: repo, auditLogger: auditLogger}, nil
}

// ServeHTTP routes station requests.
func (h *StationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, hasID, err := splitResourcePath(r.URL.Path, stationsPrefix)
	if err != nil {
		httpapi.WriteError(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	case !hasID && r.Method == http.MethodGet:
		h.handleList(w, r)
	case !hasID && r.Method == http.MethodPost:
		h.handleCreate(w, r)
	case hasID && r.Method == http.MethodGet:
		h.handleGet(w, r, id)
	case hasID && r.Method == http.MethodPut:
		h.handleUpdate(w, r, id)
	case hasID && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	default:
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *StationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := httpapi.ParseListQuery(r, catalogrepo.StationSortFields, "id")
	stations, count, err := h.repo.List(r.Context(), query)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	results := make([]stationDTO, 0, len(stations))
	for _, station := range stations {
		results = append(results, toStationDTO(station))
	}
	httpapi.WriteJSON(w, http.StatusOK, httpapi.Page{Count: count, Results: results})
}

func (h *StationHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req stationWriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	station := catalog.Station{Name: req.Name, Latitude: req.Latitude, Longitude: req.Longitude}
	if err := station.Validate(); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	if err := h.repo.Create(r.Context(), &station); err != nil {
		respondCatalogError(w, err, "name", "station with this name already exists")
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toStationDTO(station))
	logAudit(r, h.auditLogger, "station.create", "station", formatID(station.ID), map[string]any{"name": station.Name})
}

func (h *StationHandler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	station, err := h.repo.Get(r.Context(), id)
	if err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toStationDTO(*station))
}

func (h *StationHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req stationWriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	station := catalog.Station{ID: id, Name: req.Name, Latitude: req.Latitude, Longitude: req.Longitude}
	if err := station.Validate(); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	if err := h.repo.Update(r.Context(), &station); err != nil {
		respondCatalogError(w, err, "name", "station with this name already exists")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toStationDTO(station))
	logAudit(r, h.auditLogger, "station.update", "station", formatID(id), map[string]any{"name": station.Name})
}

func (h *StationHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logAudit(r, h.auditLogger, "station.delete", "station", formatID(id), nil)
}

func toStationDTO(station catalog.Station) stationDTO {
	return stationDTO{
		ID:        station.ID,
		Name:      station.Name,
		Latitude:  station.Latitude,
		Longitude: station.Longitude,
	}
}
