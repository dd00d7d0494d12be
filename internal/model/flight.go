package model

import (
    "fmt"
    "time"
)

// FlightStatus is the operational state of a flight as shown on the
// status boards.  The string values are stored verbatim in the
// flights.status column and sent to clients unchanged.
type FlightStatus string

const (
    FlightStatusCheckingIn FlightStatus = "CheckingIn"
    FlightStatusBoarding   FlightStatus = "Boarding"
    FlightStatusDeparted   FlightStatus = "Departed"
    FlightStatusDelayed    FlightStatus = "Delayed"
    FlightStatusCancelled  FlightStatus = "Cancelled"
)

// FlightStatuses lists every valid status in board display order.
var FlightStatuses = []FlightStatus{
    FlightStatusCheckingIn,
    FlightStatusBoarding,
    FlightStatusDeparted,
    FlightStatusDelayed,
    FlightStatusCancelled,
}

// Valid reports whether s is one of the known flight statuses.
func (s FlightStatus) Valid() bool {
    for _, v := range FlightStatuses {
        if s == v {
            return true
        }
    }
    return false
}

// ParseFlightStatus converts a raw string into a FlightStatus.  Matching is
// exact; unknown values return an error.
func ParseFlightStatus(raw string) (FlightStatus, error) {
    s := FlightStatus(raw)
    if !s.Valid() {
        return "", fmt.Errorf("unknown flight status %q", raw)
    }
    return s, nil
}

// Flight represents a scheduled departure.  Flights and their seats are
// seeded at startup and never created or destroyed while the server runs.
// The flight number is unique and immutable.
//
// Fields:
//  ID            – primary key identifier.
//  FlightNumber  – public flight designator (e.g. MN123).
//  Destination   – arrival airport or city.
//  DepartureTime – scheduled departure in UTC.
//  Gate          – boarding gate.
//  Status        – current operational status.
//  TotalSeats    – size of the seat inventory.
type Flight struct {
    ID            uint64       `json:"id"`             // flights.id
    FlightNumber  string       `json:"flight_number"`  // flights.flight_number
    Destination   string       `json:"destination"`    // flights.destination
    DepartureTime time.Time    `json:"departure_time"` // flights.departure_time
    Gate          string       `json:"gate"`           // flights.gate
    Status        FlightStatus `json:"status"`         // flights.status
    TotalSeats    int          `json:"total_seats"`    // flights.total_seats
}
