package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/iliyamo/airport-checkin/internal/repository"
	"github.com/iliyamo/airport-checkin/internal/seatlock"
	"github.com/iliyamo/airport-checkin/internal/seatstore"
)

// Errors returned by the coordinator.  Store and repository sentinels are
// re-exported so callers only need this package.
var (
	ErrFlightNotFound       = seatstore.ErrFlightNotFound
	ErrSeatNotFound         = seatstore.ErrSeatNotFound
	ErrSeatOccupied         = seatstore.ErrSeatOccupied
	ErrPassengerSeated      = seatstore.ErrPassengerSeated
	ErrPersistence          = seatstore.ErrPersistence
	ErrPassengerNotFound    = repository.ErrPassengerNotFound
	ErrBoardingPassNotFound = repository.ErrBoardingPassNotFound

	ErrLockTimeout   = errors.New("lock timeout")
	ErrInvalidStatus = errors.New("invalid flight status")
	ErrInvalidInput  = errors.New("invalid request")
	ErrNotCheckedIn  = errors.New("passenger not checked in")
)

// Reason codes sent to clients.
const (
	ReasonFlightNotFound       = "flight_not_found"
	ReasonSeatNotFound         = "seat_not_found"
	ReasonPassengerNotFound    = "passenger_not_found"
	ReasonBoardingPassNotFound = "boarding_pass_not_found"
	ReasonSeatOccupied         = "seat_occupied"
	ReasonPassengerSeated      = "passenger_already_seated"
	ReasonNotCheckedIn         = "passenger_not_checked_in"
	ReasonLockTimeout          = "lock_timeout"
	ReasonPersistence          = "persistence_failure"
	ReasonInvalidStatus        = "invalid_status"
	ReasonInvalidRequest       = "invalid_request"
	ReasonInvalidMessage       = "invalid_message"
	ReasonRateLimited          = "rate_limited"
	ReasonInternal             = "internal_error"
)

var reasons = []struct {
	err    error
	reason string
	status int
}{
	{ErrFlightNotFound, ReasonFlightNotFound, http.StatusNotFound},
	{ErrSeatNotFound, ReasonSeatNotFound, http.StatusNotFound},
	{ErrPassengerNotFound, ReasonPassengerNotFound, http.StatusNotFound},
	{ErrBoardingPassNotFound, ReasonBoardingPassNotFound, http.StatusNotFound},
	{ErrSeatOccupied, ReasonSeatOccupied, http.StatusConflict},
	{ErrPassengerSeated, ReasonPassengerSeated, http.StatusConflict},
	{ErrNotCheckedIn, ReasonNotCheckedIn, http.StatusConflict},
	{ErrLockTimeout, ReasonLockTimeout, http.StatusServiceUnavailable},
	{seatlock.ErrTimeout, ReasonLockTimeout, http.StatusServiceUnavailable},
	{ErrPersistence, ReasonPersistence, http.StatusInternalServerError},
	{ErrInvalidStatus, ReasonInvalidStatus, http.StatusBadRequest},
	{ErrInvalidInput, ReasonInvalidRequest, http.StatusBadRequest},
	{context.DeadlineExceeded, ReasonLockTimeout, http.StatusServiceUnavailable},
}

// Reason maps an error to its client-visible reason code.
func Reason(err error) string {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ReasonInternal
}

// HTTPStatus maps an error to the response status used by the HTTP API.
func HTTPStatus(err error) int {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.status
		}
	}
	return http.StatusInternalServerError
}
