package http

import (
	"errors"
	"net/http"

	"train-station/internal/audit"
	catalog "train-station/internal/catalog/domain"
	catalogrepo "train-station/internal/catalog/infrastructure/postgres"
	"train-station/internal/httpapi"
)

const crewsPrefix = "/api/v1/crews"

type crewDTO struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

type crewWriteRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// CrewHandler serves crew CRUD endpoints.
type CrewHandler struct {
	repo        *catalogrepo.CrewRepository
	auditLogger audit.Logger
}

// NewCrewHandler constructs a CrewHandler.
func NewCrewHandler(repo *catalogrepo.CrewRepository, auditLogger audit.Logger) (*CrewHandler, error) {
	if repo == nil {
		return nil, errors.New("crew handler: nil repo")
	}
	return &CrewHandler{repo: repo, auditLogger: auditLogger}, nil
}

// ServeHTTP routes crew requests.
func (h *CrewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, hasID, err := splitResourcePath(r.URL.Path, crewsPrefix)
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

func (h *CrewHandler) handleList(w http.ResponseWriter, r *http.Request) {
	query := httpapi.ParseListQuery(r, catalogrepo.CrewSortFields, "id")
	crews, count, err := h.repo.List(r.Context(), query)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	results := make([]crewDTO, 0, len(crews))
	for _, crew := range crews {
		results = append(results, toCrewDTO(crew))
	}
	httpapi.WriteJSON(w, http.StatusOK, httpapi.Page{Count: count, Results: results})
}

func (h *CrewHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req crewWriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	crew := catalog.Crew{FirstName: req.FirstName, LastName: req.LastName}
	if err := crew.Validate(); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	if err := h.repo.Create(r.Context(), &crew); err != nil {
		respondCatalogError(w, err, "first_name", "crew member already exists")
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toCrewDTO(crew))
	logAudit(r, h.auditLogger, "crew.create", "crew", formatID(crew.ID), map[string]any{"full_name": crew.FullName()})
}

func (h *CrewHandler) handleGet(w http.ResponseWriter, r *http.Request, id int64) {
	crew, err := h.repo.Get(r.Context(), id)
	if err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toCrewDTO(*crew))
}

func (h *CrewHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id int64) {
	var req crewWriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	crew := catalog.Crew{ID: id, FirstName: req.FirstName, LastName: req.LastName}
	if err := crew.Validate(); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	if err := h.repo.Update(r.Context(), &crew); err != nil {
		respondCatalogError(w, err, "first_name", "crew member already exists")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toCrewDTO(crew))
	logAudit(r, h.auditLogger, "crew.update", "crew", formatID(id), map[string]any{"full_name": crew.FullName()})
}

func (h *CrewHandler) handleDelete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondCatalogError(w, err, "", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
	logAudit(r, h.auditLogger, "crew.delete", "crew", formatID(id), nil)
}

func toCrewDTO(crew catalog.Crew) crewDTO {
	return crewDTO{
		ID:        crew.ID,
		FirstName: crew.FirstName,
		LastName:  crew.LastName,
		FullName:  crew.FullName(),
	}
}
