package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"train-station/internal/audit"
	"train-station/internal/auth"
	catalog "train-station/internal/catalog/domain"
	"train-station/internal/httpapi"
	"train-station/internal/validation"
)

// splitResourcePath returns the item id for "/api/v1/<resource>/{id}", or
// ok=false with id=0 for the bare collection path.
func splitResourcePath(path, prefix string) (int64, bool, error) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return 0, false, nil
	}
	if strings.Contains(rest, "/") {
		return 0, false, errors.New("unknown path")
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false, errors.New("invalid id")
	}
	return id, true, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}

// respondCatalogError maps domain errors onto the wire. Duplicate errors
// carry the field the uniqueness constraint covers.
func respondCatalogError(w http.ResponseWriter, err error, duplicateField, duplicateMessage string) {
	switch {
	case err == nil:
		return
	case errors.Is(err, catalog.ErrNotFound):
		httpapi.WriteError(w, http.StatusNotFound, "not found")
	case errors.Is(err, catalog.ErrDuplicate):
		httpapi.WriteFieldErrors(w, validation.FieldErrors{duplicateField: duplicateMessage})
	case errors.Is(err, catalog.ErrReferenced):
		httpapi.WriteError(w, http.StatusConflict, "resource is referenced by other records")
	default:
		if fieldErrs, ok := validation.AsFieldErrors(err); ok {
			httpapi.WriteFieldErrors(w, fieldErrs)
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

func logAudit(r *http.Request, logger audit.Logger, action, resourceType, resourceID string, meta map[string]any) {
	if logger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = logger.Log(r.Context(), audit.Entry{
		Actor:        auth.UserIDFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
