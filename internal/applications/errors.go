package applications

import "errors"

var (
	ErrConflict     = errors.New("an active application already exists")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid application state")
	// ErrUpstreamDegraded marks best-effort side-effect failures; it is logged, never returned to callers.
	ErrUpstreamDegraded = errors.New("upstream degraded")
)
