package httpapi

import (
	"encoding/json"
	"net/http"

	"train-station/internal/validation"
)

// Page is the list envelope returned by every collection endpoint.
type Page struct {
	Count   int `json:"count"`
	Results any `json:"results"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError writes a single detail message.
func WriteError(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, map[string]string{"detail": detail})
}

// WriteFieldErrors writes a 400 with per-field messages.
func WriteFieldErrors(w http.ResponseWriter, errs validation.FieldErrors) {
	WriteJSON(w, http.StatusBadRequest, map[string]validation.FieldErrors{"errors": errs})
}
