package http

import (
	"errors"
	"net/http"

	"train-station/internal/audit"
	catalog "train-station/internal/catalog/domain"
	catalogrepo "train-station/internal/catalog/infrastructure/postgres"
	"train-station/internal/httpapi"
)

const trainTypesPrefix = "/api/v1/train-types"

type trainTypeDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type trainTypeWriteRequest struct {
	Name string `json:"name"`
}

// TrainTypeHandler serves train type CRUD endpoints.
type TrainTypeHandler struct {
	repo        *catalogrepo.TrainTypeRepository
	auditLogger audit.Logger
}

// NewTrainTypeHandler constructs a TrainTypeHandler.
func NewTrainTypeHandler(repo *catalogrepo.TrainTypeRepository, auditLogger audit.Logger) (*TrainTypeHandler, error) {
	if repo == nil {
		return nil, errors.New("train type handler: nil repo")
	}
	return &TrainTypeHandler{repo: repo, auditLogger: auditLogger}, nil
}

// ServeHTTP routes train type requests.
func (h *TrainTypeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, hasID, err := splitResourcePath(r.URL.Path, trainTypesPrefix)
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

func (h *TrainTypeHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := httpapi.ParseListQuery(r, catalogrepo.TrainTypeSortFields, "id")
	types, count, err := h.repo.List(r.Context(), query)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	results := make([]trainTypeDTO, 0, len(types))
	for _, trainType := range types {
		results = append(results, trainTypeDTO{ID: trainType.ID, Name: trainType.Name})
	}
	httpapi.WriteJSON(w, http.StatusOK, httpapi.Page{Count: count, Results: results})
}

func (h *TrainTypeHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req trainTypeWriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	trainType := catalog.TrainType{Name: req.Name}
	if err := trainType.Validate(); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	if err := h.repo.Create(r.Context(), &trainType); err != nil {
		respondCatalogError(w, err, "name", "train type with this name already exists")
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, trainTypeDTO{ID: trainType.ID, Name: trainType.Name})
	logAudit(r, h.auditLogger, "train_type.create", "train_type", formatID(trainType.ID), map[string]any{"name": trainType.Name})
}

func (h *TrainTypeHandler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	trainType, err := h.repo.Get(r.Context(), id)
	if err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, trainTypeDTO{ID: trainType.ID, Name: trainType.Name})
}

func (h *TrainTypeHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req trainTypeWriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	trainType := catalog.TrainType{ID: id, Name: req.Name}
	if err := trainType.Validate(); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	if err := h.repo.Update(r.Context(), &trainType); err != nil {
		respondCatalogError(w, err, "name", "train type with this name already exists")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, trainTypeDTO{ID: trainType.ID, Name: trainType.Name})
	logAudit(r, h.auditLogger, "train_type.update", "train_type", formatID(id), map[string]any{"name": trainType.Name})
}

func (h *TrainTypeHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logAudit(r, h.auditLogger, "train_type.delete", "train_type", formatID(id), nil)
}
