package realtime

import (
	"time"

	"github.com/iliyamo/airport-checkin/internal/model"
)

// EventType names a server-pushed event.
type EventType string

const (
	EventSeatAssigned        EventType = "seat_assigned"
	EventFlightStatusChanged EventType = "flight_status_changed"
	EventCheckInCompleted    EventType = "check_in_completed"
)

// Event is pushed to every session subscribed to the flight.  Seq is the
// flight's commit sequence number; events sharing a commit share a Seq.
type Event struct {
	Type           EventType          `json:"type"`
	FlightID       uint64             `json:"flight_id"`
	FlightNumber   string             `json:"flight_number"`
	SeatNumber     string             `json:"seat_number,omitempty"`
	PassportNumber string             `json:"passport_number,omitempty"`
	Status         model.FlightStatus `json:"status,omitempty"`
	Seq            uint64             `json:"seq"`
	Timestamp      int64              `json:"timestamp"`
}

// Request types accepted from clients.
const (
	RequestSubscribe          = "subscribe"
	RequestUnsubscribe        = "unsubscribe"
	RequestReserveSeat        = "reserve_seat"
	RequestUpdateFlightStatus = "update_flight_status"
)

// Request is an inbound client message.  Flights are addressed either by
// id or by number; the number "*" subscribes to every flight.
type Request struct {
	Type           string `json:"type"`
	RequestID      string `json:"request_id,omitempty"`
	FlightID       uint64 `json:"flight_id,omitempty"`
	FlightNumber   string `json:"flight_number,omitempty"`
	SeatNumber     string `json:"seat_number,omitempty"`
	PassportNumber string `json:"passport_number,omitempty"`
	Status         string `json:"status,omitempty"`
}

// Reply types.
const (
	ReplySuccess = "success"
	ReplyError   = "error"
)

// Reply answers exactly one Request.
type Reply struct {
	Type         string              `json:"type"`
	RequestID    string              `json:"request_id,omitempty"`
	Request      string              `json:"request,omitempty"`
	Reason       string              `json:"reason,omitempty"`
	Message      string              `json:"message,omitempty"`
	Flight       *model.Flight       `json:"flight,omitempty"`
	Seat         *model.Seat         `json:"seat,omitempty"`
	BoardingPass *model.BoardingPass `json:"boarding_pass,omitempty"`
	Timestamp    int64               `json:"timestamp"`
}

func nowMillis() int64 { return time.Now().UnixMilli() }
