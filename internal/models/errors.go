package models

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error codes surfaced in API responses.
const (
	ErrorCodeNotFound          = "NOT_FOUND"
	ErrorCodeDriverUnavailable = "DRIVER_UNAVAILABLE"
	ErrorCodeInvalidTransition = "INVALID_TRANSITION"
	ErrorCodeStoreUnavailable  = "STORE_UNAVAILABLE"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDriverUnavailable = errors.New("driver has an active assignment")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrStoreUnavailable  = errors.New("request store unavailable")
)

// DriverUnavailableError carries the request that blocks the assignment so
// callers can tell the dispatcher which job the driver is still on.
type DriverUnavailableError struct {
	DriverName        string
	ConflictRequestID primitive.ObjectID
}

func (e *DriverUnavailableError) Error() string {
	return fmt.Sprintf("driver %s is assigned to active request %s", e.DriverName, e.ConflictRequestID.Hex())
}

func (e *DriverUnavailableError) Unwrap() error {
	return ErrDriverUnavailable
}

// InvalidTransitionError reports a status change not reachable from the
// request's current state.
type InvalidTransitionError struct {
	From   RequestStatus
	Target RequestStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move status from %q to %q", e.From, e.Target)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}
