package repository // repository defines data access for flights, seats, passengers and check-in records

import (
	"context" // context allows query cancellation and timeouts

	"github.com/iliyamo/airport-checkin/internal/model"
)

// Assignment is the unit persisted when a seat is given to a passenger:
// the seat row, the passenger row and the boarding pass change together
// or not at all.
type Assignment struct {
	FlightID     uint64
	SeatID       uint64
	SeatNumber   string
	PassengerID  uint64
	BoardingPass *model.BoardingPass // ID is populated on success
}

// Source feeds the seat store at startup.
type Source interface {
	ListFlights(ctx context.Context) ([]model.Flight, error)
	ListSeats(ctx context.Context, flightID uint64) ([]model.Seat, error)
}

// Writer persists the changes the seat store applies in memory.
type Writer interface {
	// SaveAssignment stores the assignment in one transaction.  It fails
	// with ErrConflict when the stored seat is already occupied.
	SaveAssignment(ctx context.Context, a Assignment) error
	// RevertAssignment undoes a SaveAssignment for the same seat and
	// passenger.
	RevertAssignment(ctx context.Context, a Assignment) error
	SaveFlightStatus(ctx context.Context, flightID uint64, status model.FlightStatus) error
}

// PassengerFinder resolves passengers by passport number.
type PassengerFinder interface {
	GetPassengerByPassport(ctx context.Context, passportNumber string) (*model.Passenger, error)
}

// CheckInRecords gives access to the documents produced by a check-in.
type CheckInRecords interface {
	GetBoardingPassByPassenger(ctx context.Context, passengerID uint64) (*model.BoardingPass, error)
	SaveBaggage(ctx context.Context, b *model.Baggage) error
	ListBaggageByPassenger(ctx context.Context, passengerID uint64) ([]model.Baggage, error)
}

// Repository is implemented by MemoryRepo and MySQLRepo.
type Repository interface {
	Source
	Writer
	PassengerFinder
	CheckInRecords
}
