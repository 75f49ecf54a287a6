package validation

import (
	"errors"
	"sort"
	"strings"
)

// FieldErrors maps field names to human-readable validation messages.
type FieldErrors map[string]string

// Error implements error.
func (f FieldErrors) Error() string {
	if len(f) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(f))
	for key := range f {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+f[key])
	}
	return strings.Join(parts, "; ")
}

// Add records a message for a field, keeping the first message per field.
func (f FieldErrors) Add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// OrNil returns the receiver as error, or nil when no field failed.
func (f FieldErrors) OrNil() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

// AsFieldErrors unwraps err into FieldErrors when possible.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fieldErrs FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs, true
	}
	return nil, false
}
