package http

import (
	"errors"
	"net/http"

	"train-station/internal/audit"
	catalog "train-station/internal/catalog/domain"
	catalogrepo "train-station/internal/catalog/infrastructure/postgres"
	"train-station/internal/httpapi"
	"train-station/internal/validation"
)

const routesPrefix = "/api/v1/routes"

// routeListDTO collapses stations to display names.
type routeListDTO struct {
	ID          int64  `json:"id"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Distance    int    `json:"distance"`
}

// routeDetailDTO nests the full station records.
type routeDetailDTO struct {
	ID          int64      `json:"id"`
	Source      stationDTO `json:"source"`
	Destination stationDTO `json:"destination"`
	Distance    int        `json:"distance"`
}

type routeWriteRequest struct {
	Source      int64 `json:"source"`
	Destination int64 `json:"destination"`
	Distance    int   `json:"distance"`
}

// RouteHandler serves route CRUD endpoints.
type RouteHandler struct {
	repo        *catalogrepo.RouteRepository
	auditLogger audit.Logger
}

// NewRouteHandler constructs a RouteHandler.
func NewRouteHandler(repo *catalogrepo.RouteRepository, auditLogger audit.Logger) (*RouteHandler, error) {
	if repo == nil {
		return nil, errors.New("route handler: nil repo")
	}
	return &RouteHandler{repo: repo, auditLogger: auditLogger}, nil
}

// ServeHTTP routes route requests.
func (h *RouteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, hasID, err := splitResourcePath(r.URL.Path, routesPrefix)
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

func (h *RouteHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := httpapi.ParseListQuery(r, catalogrepo.RouteSortFields, "r.id")
	routes, count, err := h.repo.List(r.Context(), query)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	results := make([]routeListDTO, 0, len(routes))
	for _, row := range routes {
		results = append(results, routeListDTO{
			ID:          row.Route.ID,
			Source:      row.Source.Name,
			Destination: row.Destination.Name,
			Distance:    row.Route.Distance,
		})
	}
	httpapi.WriteJSON(w, http.StatusOK, httpapi.Page{Count: count, Results: results})
}

func (h *RouteHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req routeWriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	route := catalog.Route{SourceID: req.Source, DestinationID: req.Destination, Distance: req.Distance}
	if err := route.Validate(); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	if err := h.repo.Create(r.Context(), &route); err != nil {
		if errors.Is(err, catalog.ErrReferenced) {
			httpapi.WriteFieldErrors(w, validation.FieldErrors{"source": "unknown station"})
			return
		}
		respondCatalogError(w, err, "destination", "route with this source and destination already exists")
		return
	}
	row, err := h.repo.Get(r.Context(), route.ID)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toRouteDetailDTO(*row))
	logAudit(r, h.auditLogger, "route.create", "route", formatID(route.ID), map[string]any{
		"source":      req.Source,
		"destination": req.Destination,
		"distance":    req.Distance,
	})
}

func (h *RouteHandler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	row, err := h.repo.Get(r.Context(), id)
	if err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toRouteDetailDTO(*row))
}

func (h *RouteHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req routeWriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	route := catalog.Route{ID: id, SourceID: req.Source, DestinationID: req.Destination, Distance: req.Distance}
	if err := route.Validate(); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	if err := h.repo.Update(r.Context(), &route); err != nil {
		if errors.Is(err, catalog.ErrReferenced) {
			httpapi.WriteFieldErrors(w, validation.FieldErrors{"source": "unknown station"})
			return
		}
		respondCatalogError(w, err, "destination", "route with this source and destination already exists")
		return
	}
	row, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toRouteDetailDTO(*row))
	logAudit(r, h.auditLogger, "route.update", "route", formatID(id), map[string]any{
		"source":      req.Source,
		"destination": req.Destination,
		"distance":    req.Distance,
	})
}

func (h *RouteHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logAudit(r, h.auditLogger, "route.delete", "route", formatID(id), nil)
}

func toRouteDetailDTO(row catalogrepo.RouteRow) routeDetailDTO {
	return routeDetailDTO{
		ID:          row.Route.ID,
		Source:      toStationDTO(row.Source),
		Destination: toStationDTO(row.Destination),
		Distance:    row.Route.Distance,
	}
}
