package repository

import (
	"fmt"
	"time"

	"github.com/iliyamo/airport-checkin/internal/model"
)

// Seed is the demo inventory loaded on an empty database or into the
// memory repository.
type Seed struct {
	Flights    []model.Flight
	Seats      []model.Seat
	Passengers []model.Passenger
}

const (
	seedRows    = 30
	seedColumns = "ABCDEF"
)

// SeedData returns the demo inventory: flight MN123 to Ulaanbaatar with a
// 30 x 6 cabin and a handful of passengers.  Seat ids follow
// (row-1)*6 + column index so they are stable across runs.
func SeedData() Seed {
	flight := model.Flight{
		ID:            1,
		FlightNumber:  "MN123",
		Destination:   "Ulaanbaatar",
		DepartureTime: time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC),
		Gate:          "A1",
		Status:        model.FlightStatusCheckingIn,
		TotalSeats:    seedRows * len(seedColumns),
	}

	seats := make([]model.Seat, 0, flight.TotalSeats)
	for row := 1; row <= seedRows; row++ {
		for i, col := range seedColumns {
			class := model.SeatClassEconomy
			switch {
			case row <= 2:
				class = model.SeatClassFirst
			case row <= 5:
				class = model.SeatClassBusiness
			}
			seats = append(seats, model.Seat{
				ID:         uint64((row-1)*len(seedColumns) + i + 1),
				FlightID:   flight.ID,
				SeatNumber: fmt.Sprintf("%d%c", row, col),
				Class:      class,
			})
		}
	}

	dob := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	passengers := []model.Passenger{
		{ID: 1, PassportNumber: "AA12345", FirstName: "Bat", LastName: "Bold", DateOfBirth: dob(1990, 1, 1), Nationality: "Mongolian"},
		{ID: 2, PassportNumber: "BB99999", FirstName: "Saraa", LastName: "Dorj", DateOfBirth: dob(1988, 6, 12), Nationality: "Mongolian"},
		{ID: 3, PassportNumber: "CC24680", FirstName: "Anu", LastName: "Ganbaatar", DateOfBirth: dob(1995, 3, 23), Nationality: "Mongolian", Email: "anu@example.com"},
		{ID: 4, PassportNumber: "DD13579", FirstName: "Erik", LastName: "Larsen", DateOfBirth: dob(1979, 11, 2), Nationality: "Norwegian"},
		{ID: 5, PassportNumber: "EE11223", FirstName: "Mei", LastName: "Tanaka", DateOfBirth: dob(2001, 8, 30), Nationality: "Japanese", PhoneNumber: "+81-90-0000-0000"},
	}

	return Seed{Flights: []model.Flight{flight}, Seats: seats, Passengers: passengers}
}
