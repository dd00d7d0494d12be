// Package seatstore holds the authoritative in-memory seat state of every
// flight: which passenger sits in which seat and, in the other direction,
// which seat a passenger holds.  Both mappings change together under the
// store mutex so readers never see one without the other.
//
// The store does not arbitrate between competing writers.  Callers
// serialize writes to a seat (and to a passenger) with seatlock handles
// and the store re-validates under its own mutex before applying.
package seatstore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/iliyamo/airport-checkin/internal/model"
	"github.com/iliyamo/airport-checkin/internal/repository"
)

var (
	ErrFlightNotFound  = errors.New("flight not found")
	ErrSeatNotFound    = errors.New("seat not found")
	ErrSeatOccupied    = errors.New("seat already occupied")
	ErrPassengerSeated = errors.New("passenger already has a seat")
	ErrPersistence     = errors.New("persistence failure")
)

// Placement locates a seated passenger.
type Placement struct {
	FlightID   uint64 `json:"flight_id"`
	SeatNumber string `json:"seat_number"`
}

type flightState struct {
	flight model.Flight
	seats  map[string]*model.Seat
	order  []string // seat numbers in row, column order
	seq    uint64   // last commit sequence number
}

// Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	flights  map[uint64]*flightState
	byNumber map[string]uint64
	seatOf   map[uint64]Placement // passenger id -> seat
	writer   repository.Writer
}

// New returns an empty store that persists through w.
func New(w repository.Writer) *Store {
	return &Store{
		flights:  make(map[uint64]*flightState),
		byNumber: make(map[string]uint64),
		seatOf:   make(map[uint64]Placement),
		writer:   w,
	}
}

// Load replaces the store contents with the flights and seats of src.
// Seats that already carry a passenger are indexed as assigned.
func (s *Store) Load(ctx context.Context, src repository.Source) error {
	flights, err := src.ListFlights(ctx)
	if err != nil {
		return fmt.Errorf("load flights: %w", err)
	}

	states := make(map[uint64]*flightState, len(flights))
	byNumber := make(map[string]uint64, len(flights))
	seatOf := make(map[uint64]Placement)
	for _, f := range flights {
		seats, err := src.ListSeats(ctx, f.ID)
		if err != nil {
			return fmt.Errorf("load seats of %s: %w", f.FlightNumber, err)
		}
		st := &flightState{flight: f, seats: make(map[string]*model.Seat, len(seats))}
		for i := range seats {
			seat := seats[i]
			seat.SeatNumber = model.NormalizeSeatNumber(seat.SeatNumber)
			seat.Occupied = seat.PassengerID != nil
			seat.PassengerID = copyID(seat.PassengerID)
			st.seats[seat.SeatNumber] = &seat
			st.order = append(st.order, seat.SeatNumber)
			if seat.PassengerID != nil {
				seatOf[*seat.PassengerID] = Placement{FlightID: f.ID, SeatNumber: seat.SeatNumber}
			}
		}
		sort.Slice(st.order, func(i, j int) bool { return model.SeatNumberLess(st.order[i], st.order[j]) })
		states[f.ID] = st
		byNumber[f.FlightNumber] = f.ID
	}

	s.mu.Lock()
	s.flights, s.byNumber, s.seatOf = states, byNumber, seatOf
	s.mu.Unlock()
	log.Printf("seat-store: loaded %d flights, %d assigned seats", len(states), len(seatOf))
	return nil
}

// Flight returns a copy of the flight.
func (s *Store) Flight(flightID uint64) (model.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.flights[flightID]
	if !ok {
		return model.Flight{}, fmt.Errorf("flight %d: %w", flightID, ErrFlightNotFound)
	}
	return st.flight, nil
}

// FlightByNumber resolves a flight by its public designator.
func (s *Store) FlightByNumber(number string) (model.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNumber[number]
	if !ok {
		return model.Flight{}, fmt.Errorf("flight %s: %w", number, ErrFlightNotFound)
	}
	return s.flights[id].flight, nil
}

// Flights returns every flight ordered by id.
func (s *Store) Flights() []model.Flight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Flight, 0, len(s.flights))
	for _, st := range s.flights {
		out = append(out, st.flight)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetSeat returns a copy of one seat.
func (s *Store) GetSeat(flightID uint64, seatNumber string) (model.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seat, err := s.seatLocked(flightID, seatNumber)
	if err != nil {
		return model.Seat{}, err
	}
	return copySeat(seat), nil
}

// ListSeats returns every seat of the flight in seat numbering order.
func (s *Store) ListSeats(flightID uint64) ([]model.Seat, error) {
	return s.list(flightID, false)
}

// ListAvailable returns the unoccupied seats in seat numbering order.
func (s *Store) ListAvailable(flightID uint64) ([]model.Seat, error) {
	return s.list(flightID, true)
}

func (s *Store) list(flightID uint64, freeOnly bool) ([]model.Seat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.flights[flightID]
	if !ok {
		return nil, fmt.Errorf("flight %d: %w", flightID, ErrFlightNotFound)
	}
	out := make([]model.Seat, 0, len(st.order))
	for _, n := range st.order {
		seat := st.seats[n]
		if freeOnly && seat.Occupied {
			continue
		}
		out = append(out, copySeat(seat))
	}
	return out, nil
}

// SeatOf reports where a passenger is seated.
func (s *Store) SeatOf(passengerID uint64) (Placement, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.seatOf[passengerID]
	return p, ok
}

// CommitAssignment gives a free seat to a passenger who holds no seat.
// The seat row, the passenger row and the boarding pass are persisted
// first; the in-memory mappings are applied only after the write
// succeeded.  It returns the flight's new commit sequence number.
//
// Callers must hold the seat and passenger locks.  The store mutex is
// never held across the persistence call.
func (s *Store) CommitAssignment(ctx context.Context, flightID uint64, seatNumber string, passenger model.Passenger, pass *model.BoardingPass) (uint64, error) {
	seatNumber = model.NormalizeSeatNumber(seatNumber)

	s.mu.RLock()
	seat, err := s.seatLocked(flightID, seatNumber)
	if err == nil {
		err = s.checkFreeLocked(seat, passenger.ID)
	}
	var seatID uint64
	if seat != nil {
		seatID = seat.ID
	}
	s.mu.RUnlock()
	if err != nil {
		return 0, err
	}

	if pass != nil {
		pass.FlightID, pass.SeatID, pass.PassengerID = flightID, seatID, passenger.ID
	}
	a := repository.Assignment{
		FlightID:     flightID,
		SeatID:       seatID,
		SeatNumber:   seatNumber,
		PassengerID:  passenger.ID,
		BoardingPass: pass,
	}
	if err := s.writer.SaveAssignment(ctx, a); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return 0, fmt.Errorf("%w: %v", ErrSeatOccupied, err)
		}
		return 0, fmt.Errorf("%w: save assignment: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	st := s.flights[flightID]
	seat = st.seats[seatNumber]
	if err := s.checkFreeLocked(seat, passenger.ID); err != nil {
		s.mu.Unlock()
		// Lost a race the caller's locks should have prevented.  Undo the
		// write so storage matches memory again.
		log.Printf("seat-store: %s on flight %d changed during commit: %v; reverting", seatNumber, flightID, err)
		if rerr := s.writer.RevertAssignment(ctx, a); rerr != nil {
			log.Printf("seat-store: revert %s on flight %d failed: %v", seatNumber, flightID, rerr)
		}
		return 0, err
	}
	pid := passenger.ID
	seat.Occupied = true
	seat.PassengerID = &pid
	s.seatOf[pid] = Placement{FlightID: flightID, SeatNumber: seatNumber}
	st.seq++
	seq := st.seq
	s.mu.Unlock()
	return seq, nil
}

// SetFlightStatus persists and applies a status change and returns the
// updated flight with its new commit sequence number.
func (s *Store) SetFlightStatus(ctx context.Context, flightID uint64, status model.FlightStatus) (model.Flight, uint64, error) {
	if _, err := s.Flight(flightID); err != nil {
		return model.Flight{}, 0, err
	}
	if err := s.writer.SaveFlightStatus(ctx, flightID, status); err != nil {
		return model.Flight{}, 0, fmt.Errorf("%w: save flight status: %v", ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.flights[flightID]
	st.flight.Status = status
	st.seq++
	return st.flight, st.seq, nil
}

// Seq returns the last commit sequence number of a flight, 0 if nothing
// has been committed yet.
func (s *Store) Seq(flightID uint64) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.flights[flightID]; ok {
		return st.seq
	}
	return 0
}

func (s *Store) seatLocked(flightID uint64, seatNumber string) (*model.Seat, error) {
	st, ok := s.flights[flightID]
	if !ok {
		return nil, fmt.Errorf("flight %d: %w", flightID, ErrFlightNotFound)
	}
	seat, ok := st.seats[model.NormalizeSeatNumber(seatNumber)]
	if !ok {
		return nil, fmt.Errorf("seat %s on %s: %w", seatNumber, st.flight.FlightNumber, ErrSeatNotFound)
	}
	return seat, nil
}

func (s *Store) checkFreeLocked(seat *model.Seat, passengerID uint64) error {
	if seat.Occupied {
		return fmt.Errorf("seat %s: %w", seat.SeatNumber, ErrSeatOccupied)
	}
	if p, ok := s.seatOf[passengerID]; ok {
		return fmt.Errorf("passenger %d holds %s: %w", passengerID, p.SeatNumber, ErrPassengerSeated)
	}
	return nil
}

func copySeat(seat *model.Seat) model.Seat {
	c := *seat
	c.PassengerID = copyID(seat.PassengerID)
	return c
}

func copyID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
