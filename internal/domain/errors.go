package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when a document or an edit intent breaks a
// structural rule (index out of range, duplicate item id, unknown item).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnavailable is returned when a collaborator cannot serve the call: a
// session that is not open, a stopped broadcast hub, or an unreachable store.
var ErrUnavailable = errors.New("unavailable")
