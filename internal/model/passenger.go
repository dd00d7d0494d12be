package model

import "time"

// Passenger is a traveller known to the check-in desk.  The passport
// number is the external lookup key.  A passenger does not carry a
// pointer to their seat; the seat store owns that mapping.
//
// Fields:
//  ID             – primary key identifier.
//  PassportNumber – unique passport number.
//  FirstName      – given name.
//  LastName       – family name.
//  Email          – optional contact address.
//  PhoneNumber    – optional contact number.
//  Nationality    – optional nationality.
//  DateOfBirth    – date of birth.
//  FlightID       – flight the passenger is checked in for (nil before check-in).
type Passenger struct {
    ID             uint64    `json:"id"`                     // passengers.id
    PassportNumber string    `json:"passport_number"`        // passengers.passport_number
    FirstName      string    `json:"first_name"`             // passengers.first_name
    LastName       string    `json:"last_name"`              // passengers.last_name
    Email          string    `json:"email,omitempty"`        // passengers.email
    PhoneNumber    string    `json:"phone_number,omitempty"` // passengers.phone_number
    Nationality    string    `json:"nationality,omitempty"`  // passengers.nationality
    DateOfBirth    time.Time `json:"date_of_birth"`          // passengers.date_of_birth
    FlightID       *uint64   `json:"flight_id,omitempty"`    // passengers.flight_id (nullable)
}

// FullName returns the passenger's display name, last name first as
// printed on the boarding pass.
func (p Passenger) FullName() string {
    switch {
    case p.LastName == "":
        return p.FirstName
    case p.FirstName == "":
        return p.LastName
    }
    return p.LastName + " " + p.FirstName
}
