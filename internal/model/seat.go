package model

import (
    "strconv"
    "strings"
)

// SeatClass is the cabin class of a seat.
type SeatClass string

const (
    SeatClassEconomy  SeatClass = "Economy"
    SeatClassBusiness SeatClass = "Business"
    SeatClassFirst    SeatClass = "First"
)

// Seat describes one seat of a flight.  Seats are uniquely identified by
// their flight and seat number, where the seat number is the row followed
// by the column letter (1A, 12C).  Occupied is true exactly when
// PassengerID is set.
//
// Fields:
//  ID          – primary key identifier.
//  FlightID    – flight the seat belongs to for its whole lifetime.
//  SeatNumber  – row + column designator.
//  Class       – cabin class.
//  Occupied    – whether a passenger has been assigned.
//  PassengerID – assigned passenger (nil while free).
type Seat struct {
    ID          uint64    `json:"id"`                     // seats.id
    FlightID    uint64    `json:"flight_id"`              // seats.flight_id
    SeatNumber  string    `json:"seat_number"`            // seats.seat_number
    Class       SeatClass `json:"class"`                  // seats.class
    Occupied    bool      `json:"occupied"`               // seats.is_occupied
    PassengerID *uint64   `json:"passenger_id,omitempty"` // seats.passenger_id (nullable)
}

// SplitSeatNumber separates a seat number into its numeric row and column
// suffix.  It returns ok=false when the number has no leading row digits.
func SplitSeatNumber(seatNumber string) (row int, column string, ok bool) {
    s := strings.ToUpper(strings.TrimSpace(seatNumber))
    i := 0
    for i < len(s) && s[i] >= '0' && s[i] <= '9' {
        i++
    }
    if i == 0 {
        return 0, s, false
    }
    row, err := strconv.Atoi(s[:i])
    if err != nil {
        return 0, s, false
    }
    return row, s[i:], true
}

// NormalizeSeatNumber upper-cases and trims a seat number so that "1a"
// and " 1A" resolve to the same seat.
func NormalizeSeatNumber(seatNumber string) string {
    return strings.ToUpper(strings.TrimSpace(seatNumber))
}

// SeatNumberLess orders seat numbers by row, then column.  Numbers without
// a row sort after numbered ones, lexically.
func SeatNumberLess(a, b string) bool {
    ra, ca, oka := SplitSeatNumber(a)
    rb, cb, okb := SplitSeatNumber(b)
    switch {
    case oka && okb:
        if ra != rb {
            return ra < rb
        }
        return ca < cb
    case oka:
        return true
    case okb:
        return false
    }
    return a < b
}
