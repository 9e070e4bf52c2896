package admin

import "errors"

var (
	// ErrUnknownRoute is returned when a route name cannot be resolved.
	ErrUnknownRoute = errors.New("unknown admin route")
	// ErrNoRequest is returned when an operation needs the current request
	// and the context carries none.
	ErrNoRequest = errors.New("no request in context")
	// ErrUnknownAdmin is returned when the pool has no admin for a code.
	ErrUnknownAdmin = errors.New("unknown admin code")
)
