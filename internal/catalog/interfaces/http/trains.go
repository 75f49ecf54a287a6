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

const trainsPrefix = "/api/v1/trains"

// trainListDTO collapses the train type to its display name, matching the
// list shape of the API.
type trainListDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CargoNum      int    `json:"cargo_num"`
	PlacesInCargo int    `json:"places_in_cargo"`
	TrainType     string `json:"train_type"`
}

type trainDetailDTO struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CargoNum      int    `json:"cargo_num"`
	PlacesInCargo int    `json:"places_in_cargo"`
	TrainType     int64  `json:"train_type"`
}

type trainWriteRequest struct {
	Name          string `json:"name"`
	CargoNum      int    `json:"cargo_num"`
	PlacesInCargo int    `json:"places_in_cargo"`
	TrainType     int64  `json:"train_type"`
}

// TrainHandler serves train CRUD endpoints.
type TrainHandler struct {
	repo        *catalogrepo.TrainRepository
	typeRepo    *catalogrepo.TrainTypeRepository
	auditLogger audit.Logger
}

// NewTrainHandler constructs a TrainHandler.
func NewTrainHandler(repo *catalogrepo.TrainRepository, typeRepo *catalogrepo.TrainTypeRepository, auditLogger audit.Logger) (*TrainHandler, error) {
	if repo == nil {
		return nil, errors.New("train handler: nil repo")
	}
	if typeRepo == nil {
		return nil, errors.New("train handler: nil type repo")
	}
	return &TrainHandler{repo: repo, typeRepo: typeRepo, auditLogger: auditLogger}, nil
}

// ServeHTTP routes train requests.
func (h *TrainHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, hasID, err := splitResourcePath(r.URL.Path, trainsPrefix)
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

func (h *TrainHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := httpapi.ParseListQuery(r, catalogrepo.TrainSortFields, "t.id")
	trains, count, err := h.repo.List(r.Context(), query)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	results := make([]trainListDTO, 0, len(trains))
	for _, row := range trains {
		results = append(results, trainListDTO{
			ID:            row.Train.ID,
			Name:          row.Train.Name,
			CargoNum:      row.Train.CargoNum,
			PlacesInCargo: row.Train.PlacesInCargo,
			TrainType:     row.TrainTypeName,
		})
	}
	httpapi.WriteJSON(w, http.StatusOK, httpapi.Page{Count: count, Results: results})
}

func (h *TrainHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req trainWriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	train := catalog.Train{
		Name:          req.Name,
		CargoNum:      req.CargoNum,
		PlacesInCargo: req.PlacesInCargo,
		TrainTypeID:   req.TrainType,
	}
	if err := train.Validate(); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	if _, err := h.typeRepo.Get(r.Context(), train.TrainTypeID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			httpapi.WriteFieldErrors(w, validation.FieldErrors{"train_type": "unknown train type"})
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if err := h.repo.Create(r.Context(), &train); err != nil {
		respondCatalogError(w, err, "name", "train already exists")
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toTrainDetailDTO(train))
	logAudit(r, h.auditLogger, "train.create", "train", formatID(train.ID), map[string]any{"name": train.Name})
}

func (h *TrainHandler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	train, err := h.repo.Get(r.Context(), id)
	if err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toTrainDetailDTO(*train))
}

func (h *TrainHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req trainWriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	train := catalog.Train{
		ID:            id,
		Name:          req.Name,
		CargoNum:      req.CargoNum,
		PlacesInCargo: req.PlacesInCargo,
		TrainTypeID:   req.TrainType,
	}
	if err := train.Validate(); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	if err := h.repo.Update(r.Context(), &train); err != nil {
		if errors.Is(err, catalog.ErrReferenced) {
			httpapi.WriteFieldErrors(w, validation.FieldErrors{"train_type": "unknown train type"})
			return
		}
		respondCatalogError(w, err, "name", "train already exists")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toTrainDetailDTO(train))
	logAudit(r, h.auditLogger, "train.update", "train", formatID(id), map[string]any{"name": train.Name})
}

func (h *TrainHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logAudit(r, h.auditLogger, "train.delete", "train", formatID(id), nil)
}

func toTrainDetailDTO(train catalog.Train) trainDetailDTO {
	return trainDetailDTO{
		ID:            train.ID,
		Name:          train.Name,
		CargoNum:      train.CargoNum,
		PlacesInCargo: train.PlacesInCargo,
		TrainType:     train.TrainTypeID,
	}
}
