// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckInCompletedQueue is the durable queue check-in events are routed to.
const CheckInCompletedQueue = "checkin.completed"

// CheckInCompletedEvent is published when a passenger has been given a seat
// and a boarding pass.  It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type CheckInCompletedEvent struct {
    FlightID       uint64 `json:"flight_id"`
    FlightNumber   string `json:"flight_number"`
    Destination    string `json:"destination"`
    Gate           string `json:"gate"`
    DepartureTime  string `json:"departure_time"`
    PassengerID    uint64 `json:"passenger_id"`
    PassportNumber string `json:"passport_number"`
    PassengerName  string `json:"passenger_name"`
    SeatNumber     string `json:"seat_number"`
    BoardingGroup  string `json:"boarding_group"`
    BarCode        string `json:"bar_code"`
    CheckedInAt    string `json:"checked_in_at"`
}
