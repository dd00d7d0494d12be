package model

import "time"

// BoardingPass is issued once per successful seat assignment and is never
// modified afterwards.  Flight and passenger details are copied in so the
// pass can be printed without further lookups.
//
// Fields:
//  ID             – primary key identifier.
//  FlightID       – flight the pass is valid for.
//  PassengerID    – passenger holding the pass.
//  SeatID         – assigned seat.
//  PassengerName  – printed name.
//  PassportNumber – passport of the holder.
//  FlightNumber   – flight designator.
//  Destination    – destination at the time of issue.
//  DepartureTime  – scheduled departure at the time of issue.
//  Gate           – gate at the time of issue.
//  SeatNumber     – seat designator.
//  CheckInTime    – when the seat was assigned (UTC).
//  BoardingGroup  – boarding group derived from the seat row.
//  BarCode        – deterministic boarding pass number.
type BoardingPass struct {
    ID             uint64    `json:"id"`              // boarding_passes.id
    FlightID       uint64    `json:"flight_id"`       // boarding_passes.flight_id
    PassengerID    uint64    `json:"passenger_id"`    // boarding_passes.passenger_id
    SeatID         uint64    `json:"seat_id"`         // boarding_passes.seat_id
    PassengerName  string    `json:"passenger_name"`  // boarding_passes.passenger_name
    PassportNumber string    `json:"passport_number"` // boarding_passes.passport_number
    FlightNumber   string    `json:"flight_number"`   // boarding_passes.flight_number
    Destination    string    `json:"destination"`     // boarding_passes.destination
    DepartureTime  time.Time `json:"departure_time"`  // boarding_passes.departure_time
    Gate           string    `json:"gate"`            // boarding_passes.gate
    SeatNumber     string    `json:"seat_number"`     // boarding_passes.seat_number
    CheckInTime    time.Time `json:"check_in_time"`   // boarding_passes.check_in_time
    BoardingGroup  string    `json:"boarding_group"`  // boarding_passes.boarding_group
    BarCode        string    `json:"bar_code"`        // boarding_passes.bar_code
}
