package model

import "time"

// Baggage is a checked bag registered for a passenger on their flight.
//
// Fields:
//  ID            – primary key identifier.
//  PassengerID   – owner of the bag.
//  FlightID      – flight the bag travels on.
//  Weight        – weight in kilograms.
//  BarcodeNumber – bag tag number.
//  CheckInTime   – when the bag was registered (UTC).
type Baggage struct {
    ID            uint64    `json:"id"`             // baggage.id
    PassengerID   uint64    `json:"passenger_id"`   // baggage.passenger_id
    FlightID      uint64    `json:"flight_id"`      // baggage.flight_id
    Weight        float64   `json:"weight"`         // baggage.weight
    BarcodeNumber string    `json:"barcode_number"` // baggage.barcode_number
    CheckInTime   time.Time `json:"check_in_time"`  // baggage.check_in_time
}
