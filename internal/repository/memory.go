package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iliyamo/airport-checkin/internal/model"
)

// MemoryRepo keeps every table in process memory.  It backs the demo
// server (STORE_BACKEND=memory) and the tests.  Values are copied in and
// out so callers never share state with the repository.
type MemoryRepo struct {
	mu         sync.RWMutex
	flights    map[uint64]model.Flight
	seats      map[uint64]model.Seat // by seat id
	passengers map[uint64]model.Passenger
	passports  map[string]uint64
	passes     map[uint64]model.BoardingPass // by passenger id
	baggage    map[uint64][]model.Baggage    // by passenger id
	nextPass   uint64
	nextBag    uint64
}

var _ Repository = (*MemoryRepo)(nil)

// NewMemoryRepo returns an empty repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		flights:    make(map[uint64]model.Flight),
		seats:      make(map[uint64]model.Seat),
		passengers: make(map[uint64]model.Passenger),
		passports:  make(map[string]uint64),
		passes:     make(map[uint64]model.BoardingPass),
		baggage:    make(map[uint64][]model.Baggage),
	}
}

// NewSeededMemoryRepo returns a repository holding the demo inventory.
func NewSeededMemoryRepo() *MemoryRepo {
	r := NewMemoryRepo()
	d := SeedData()
	for _, f := range d.Flights {
		r.AddFlight(f)
	}
	for _, s := range d.Seats {
		r.AddSeat(s)
	}
	for _, p := range d.Passengers {
		r.AddPassenger(p)
	}
	return r
}

// AddFlight inserts or replaces a flight.
func (r *MemoryRepo) AddFlight(f model.Flight) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flights[f.ID] = f
}

// AddSeat inserts or replaces a seat.
func (r *MemoryRepo) AddSeat(s model.Seat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.PassengerID = copyID(s.PassengerID)
	r.seats[s.ID] = s
}

// AddPassenger inserts or replaces a passenger.
func (r *MemoryRepo) AddPassenger(p model.Passenger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.FlightID = copyID(p.FlightID)
	r.passengers[p.ID] = p
	r.passports[p.PassportNumber] = p.ID
}

func (r *MemoryRepo) ListFlights(_ context.Context) ([]model.Flight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Flight, 0, len(r.flights))
	for _, f := range r.flights {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) ListSeats(_ context.Context, flightID uint64) ([]model.Seat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []model.Seat
	for _, s := range r.seats {
		if s.FlightID == flightID {
			s.PassengerID = copyID(s.PassengerID)
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) GetPassengerByPassport(_ context.Context, passportNumber string) (*model.Passenger, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.passports[passportNumber]
	if !ok {
		return nil, ErrPassengerNotFound
	}
	p := r.passengers[id]
	p.FlightID = copyID(p.FlightID)
	return &p, nil
}

func (r *MemoryRepo) SaveAssignment(_ context.Context, a Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	seat, ok := r.seats[a.SeatID]
	if !ok || seat.FlightID != a.FlightID {
		return fmt.Errorf("seat %d: %w", a.SeatID, ErrNotFound)
	}
	p, ok := r.passengers[a.PassengerID]
	if !ok {
		return fmt.Errorf("passenger %d: %w", a.PassengerID, ErrPassengerNotFound)
	}
	if seat.Occupied {
		return fmt.Errorf("seat %s: %w", seat.SeatNumber, ErrConflict)
	}
	if _, seated := r.passes[a.PassengerID]; seated {
		return fmt.Errorf("passenger %d already has a boarding pass: %w", a.PassengerID, ErrConflict)
	}

	pid, fid := a.PassengerID, a.FlightID
	seat.Occupied = true
	seat.PassengerID = &pid
	r.seats[seat.ID] = seat
	p.FlightID = &fid
	r.passengers[p.ID] = p
	if a.BoardingPass != nil {
		r.nextPass++
		a.BoardingPass.ID = r.nextPass
		r.passes[a.PassengerID] = *a.BoardingPass
	}
	return nil
}

func (r *MemoryRepo) RevertAssignment(_ context.Context, a Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seat, ok := r.seats[a.SeatID]; ok && seat.PassengerID != nil && *seat.PassengerID == a.PassengerID {
		seat.Occupied = false
		seat.PassengerID = nil
		r.seats[seat.ID] = seat
	}
	if p, ok := r.passengers[a.PassengerID]; ok {
		p.FlightID = nil
		r.passengers[p.ID] = p
	}
	if bp, ok := r.passes[a.PassengerID]; ok && bp.SeatID == a.SeatID {
		delete(r.passes, a.PassengerID)
	}
	return nil
}

func (r *MemoryRepo) SaveFlightStatus(_ context.Context, flightID uint64, status model.FlightStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[flightID]
	if !ok {
		return fmt.Errorf("flight %d: %w", flightID, ErrNotFound)
	}
	f.Status = status
	r.flights[flightID] = f
	return nil
}

func (r *MemoryRepo) GetBoardingPassByPassenger(_ context.Context, passengerID uint64) (*model.BoardingPass, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bp, ok := r.passes[passengerID]
	if !ok {
		return nil, ErrBoardingPassNotFound
	}
	return &bp, nil
}

func (r *MemoryRepo) SaveBaggage(_ context.Context, b *model.Baggage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.passengers[b.PassengerID]; !ok {
		return fmt.Errorf("passenger %d: %w", b.PassengerID, ErrPassengerNotFound)
	}
	r.nextBag++
	b.ID = r.nextBag
	r.baggage[b.PassengerID] = append(r.baggage[b.PassengerID], *b)
	return nil
}

func (r *MemoryRepo) ListBaggageByPassenger(_ context.Context, passengerID uint64) ([]model.Baggage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	bags := r.baggage[passengerID]
	out := make([]model.Baggage, len(bags))
	copy(out, bags)
	return out, nil
}

func copyID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
