package catalog

import "errors"

var (
	// ErrNotFound indicates the requested catalog record does not exist.
	ErrNotFound = errors.New("catalog: not found")
	// ErrDuplicate indicates a uniqueness constraint was violated.
	ErrDuplicate = errors.New("catalog: duplicate")
	// ErrReferenced indicates a record is still referenced and cannot be deleted.
	ErrReferenced = errors.New("catalog: still referenced")
)
