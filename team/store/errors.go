// team/store/errors.go
package store

import "errors"

// Sentinel errors shared by every store. Services translate these into their
// own taxonomy; the fakes used in service tests return the same values.
var (
	// ErrNotFound means the requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate means a unique index rejected the write.
	ErrDuplicate = errors.New("duplicate document")
	// ErrVersionMismatch means a conditional write matched nothing because the
	// document changed (or vanished) since it was read.
	ErrVersionMismatch = errors.New("document version mismatch")
)
