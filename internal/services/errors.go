package services

import "errors"

// Sentinel errors shared by the service layer. Handlers translate these into
// the HTTP error taxonomy (404, 403 and so on) with errors.Is.
var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrForbidden is returned when the caller is authenticated but not
	// permitted to act on the entity.
	ErrForbidden = errors.New("forbidden")
)
