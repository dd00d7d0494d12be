package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/airport-checkin/internal/model"
	"github.com/iliyamo/airport-checkin/internal/seatstore"
	"github.com/iliyamo/airport-checkin/internal/utils"
)

// MaxBaggageWeight is the heaviest bag accepted at the desk, in kilograms.
const MaxBaggageWeight = 50.0

func (c *Coordinator) Flights() []model.Flight { return c.store.Flights() }

func (c *Coordinator) Flight(flightID uint64) (model.Flight, error) {
	return c.store.Flight(flightID)
}

func (c *Coordinator) FlightByNumber(number string) (model.Flight, error) {
	return c.store.FlightByNumber(strings.ToUpper(strings.TrimSpace(number)))
}

// Seats lists a flight's seats; availableOnly drops occupied ones.
func (c *Coordinator) Seats(flightID uint64, availableOnly bool) ([]model.Seat, error) {
	if availableOnly {
		return c.store.ListAvailable(flightID)
	}
	return c.store.ListSeats(flightID)
}

func (c *Coordinator) Seat(flightID uint64, seatNumber string) (model.Seat, error) {
	return c.store.GetSeat(flightID, seatNumber)
}

// PassengerStatus is a passenger with their current check-in state.
type PassengerStatus struct {
	Passenger model.Passenger      `json:"passenger"`
	Seat      *seatstore.Placement `json:"seat,omitempty"`
	Baggage   []model.Baggage      `json:"baggage"`
}

// Passenger looks a passenger up by passport and reports their seat and
// checked bags.
func (c *Coordinator) Passenger(ctx context.Context, passportNumber string) (*PassengerStatus, error) {
	p, err := c.passenger(ctx, strings.TrimSpace(passportNumber))
	if err != nil {
		return nil, err
	}
	st := &PassengerStatus{Passenger: *p, Baggage: []model.Baggage{}}
	if at, ok := c.store.SeatOf(p.ID); ok {
		st.Seat = &at
	}
	if c.records != nil {
		bags, err := c.records.ListBaggageByPassenger(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: list baggage: %v", ErrPersistence, err)
		}
		st.Baggage = bags
	}
	return st, nil
}

// BoardingPass returns the pass issued at check-in.
func (c *Coordinator) BoardingPass(ctx context.Context, passportNumber string) (*model.BoardingPass, error) {
	p, err := c.passenger(ctx, strings.TrimSpace(passportNumber))
	if err != nil {
		return nil, err
	}
	if _, ok := c.store.SeatOf(p.ID); !ok {
		return nil, fmt.Errorf("%s: %w", p.PassportNumber, ErrNotCheckedIn)
	}
	if c.records == nil {
		return nil, fmt.Errorf("%s: %w", p.PassportNumber, ErrBoardingPassNotFound)
	}
	return c.records.GetBoardingPassByPassenger(ctx, p.ID)
}

// CheckBaggage registers a bag for a checked-in passenger.
func (c *Coordinator) CheckBaggage(ctx context.Context, passportNumber string, weight float64) (*model.Baggage, error) {
	if weight <= 0 || weight > MaxBaggageWeight {
		return nil, fmt.Errorf("%w: weight must be between 0 and %.0f kg", ErrInvalidInput, MaxBaggageWeight)
	}
	if c.records == nil {
		return nil, fmt.Errorf("%w: baggage records unavailable", ErrPersistence)
	}
	p, err := c.passenger(ctx, strings.TrimSpace(passportNumber))
	if err != nil {
		return nil, err
	}
	at, ok := c.store.SeatOf(p.ID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", p.PassportNumber, ErrNotCheckedIn)
	}
	flight, err := c.store.Flight(at.FlightID)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	bag := &model.Baggage{
		PassengerID:   p.ID,
		FlightID:      flight.ID,
		Weight:        weight,
		BarcodeNumber: utils.BaggageBarcode(flight.FlightNumber, p.PassportNumber, now),
		CheckInTime:   now,
	}
	if err := c.records.SaveBaggage(ctx, bag); err != nil {
		return nil, fmt.Errorf("%w: save baggage: %v", ErrPersistence, err)
	}
	return bag, nil
}
