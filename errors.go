package hookq

import "errors"

var (
	// Store errors.
	ErrNoStore     = errors.New("hookq: no store configured")
	ErrStoreClosed = errors.New("hookq: store closed")

	// Not found errors.
	ErrHookNotFound = errors.New("hookq: hook not found")

	// Conflict errors.
	ErrHookAlreadyExists = errors.New("hookq: hook already exists")

	// Action errors.
	ErrUnknownAction = errors.New("hookq: unknown action")

	// State errors.
	ErrInvalidState   = errors.New("hookq: invalid status transition")
	ErrRetryExhausted = errors.New("hookq: retry limit exhausted")
)
