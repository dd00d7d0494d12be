// Package service implements check-in on top of the seat store: it
// arbitrates concurrent seat requests with per-seat and per-passenger
// locks, persists the winning assignment and announces it once the locks
// are released.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/airport-checkin/internal/model"
	"github.com/iliyamo/airport-checkin/internal/queue"
	"github.com/iliyamo/airport-checkin/internal/repository"
	"github.com/iliyamo/airport-checkin/internal/seatlock"
	"github.com/iliyamo/airport-checkin/internal/seatstore"
	"github.com/iliyamo/airport-checkin/internal/utils"
)

// Notifier receives committed changes for fan-out to connected clients.
// seq is the flight's commit sequence number of the change.
// Implementations must not block.
type Notifier interface {
	NotifyCheckIn(seq uint64, flight model.Flight, seatNumber, passportNumber string)
	NotifyFlightStatusChanged(seq uint64, flight model.Flight)
}

// EventPublisher forwards check-in events to the message broker.
type EventPublisher interface {
	PublishCheckInCompleted(ctx context.Context, ev queue.CheckInCompletedEvent) error
}

// Options configures a Coordinator.  Store, Locks and Passengers are
// required; everything else has a usable default.
type Options struct {
	Store       *seatstore.Store
	Locks       *seatlock.Table
	Passengers  repository.PassengerFinder
	Records     repository.CheckInRecords
	Notifier    Notifier
	Events      EventPublisher
	LockTimeout time.Duration
	Now         func() time.Time
}

// Coordinator is safe for concurrent use.
type Coordinator struct {
	store       *seatstore.Store
	locks       *seatlock.Table
	passengers  repository.PassengerFinder
	records     repository.CheckInRecords
	notifier    Notifier
	events      EventPublisher
	lockTimeout time.Duration
	now         func() time.Time
}

// NewCoordinator wires a Coordinator from opts.
func NewCoordinator(opts Options) *Coordinator {
	c := &Coordinator{
		store:       opts.Store,
		locks:       opts.Locks,
		passengers:  opts.Passengers,
		records:     opts.Records,
		notifier:    opts.Notifier,
		events:      opts.Events,
		lockTimeout: opts.LockTimeout,
		now:         opts.Now,
	}
	if c.locks == nil {
		c.locks = seatlock.NewTable()
	}
	if c.notifier == nil {
		c.notifier = nopNotifier{}
	}
	if c.lockTimeout <= 0 {
		c.lockTimeout = seatlock.DefaultTimeout
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Assignment is the outcome of a successful AssignSeat.
type Assignment struct {
	Flight       model.Flight       `json:"flight"`
	Seat         model.Seat         `json:"seat"`
	Passenger    model.Passenger    `json:"passenger"`
	BoardingPass model.BoardingPass `json:"boarding_pass"`
	Seq          uint64             `json:"seq"`
}

// AssignSeat gives seatNumber on the flight to the passenger holding
// passportNumber.  At most one of any number of concurrent requests for
// the same seat succeeds; the others fail with ErrSeatOccupied.  A
// passenger who already holds a seat gets ErrPassengerSeated.
func (c *Coordinator) AssignSeat(ctx context.Context, flightID uint64, seatNumber, passportNumber string) (*Assignment, error) {
	seatNumber = model.NormalizeSeatNumber(seatNumber)
	passportNumber = strings.TrimSpace(passportNumber)
	if seatNumber == "" || passportNumber == "" {
		return nil, fmt.Errorf("%w: seat and passport number are required", ErrInvalidInput)
	}

	// resolve everything that does not need a lock first
	flight, err := c.store.Flight(flightID)
	if err != nil {
		return nil, err
	}
	if _, err := c.store.GetSeat(flightID, seatNumber); err != nil {
		return nil, err
	}
	p, err := c.passenger(ctx, passportNumber)
	if err != nil {
		return nil, err
	}

	res, err := c.commitAssignment(ctx, flight, seatNumber, *p)
	if err != nil {
		log.Printf("check-in: %s seat %s for %s rejected: %v", flight.FlightNumber, seatNumber, passportNumber, err)
		return nil, err
	}

	// locks are released here; announce in commit order
	c.notifier.NotifyCheckIn(res.Seq, res.Flight, res.Seat.SeatNumber, p.PassportNumber)
	c.publishCheckIn(res)
	return res, nil
}

func (c *Coordinator) commitAssignment(ctx context.Context, flight model.Flight, seatNumber string, p model.Passenger) (*Assignment, error) {
	seatLock, err := c.acquire(ctx, seatlock.SeatKey(flight.ID, seatNumber))
	if err != nil {
		return nil, err
	}
	defer seatLock.Release()
	passengerLock, err := c.acquire(ctx, seatlock.PassengerKey(p.PassportNumber))
	if err != nil {
		return nil, err
	}
	defer passengerLock.Release()

	seat, err := c.store.GetSeat(flight.ID, seatNumber)
	if err != nil {
		return nil, err
	}
	if seat.Occupied {
		return nil, fmt.Errorf("seat %s: %w", seatNumber, ErrSeatOccupied)
	}
	if at, ok := c.store.SeatOf(p.ID); ok {
		return nil, fmt.Errorf("%s holds %s: %w", p.PassportNumber, at.SeatNumber, ErrPassengerSeated)
	}

	// state may have moved since resolution; use the latest flight details
	flight, err = c.store.Flight(flight.ID)
	if err != nil {
		return nil, err
	}
	now := c.now().UTC()
	pass := &model.BoardingPass{
		FlightID:       flight.ID,
		PassengerID:    p.ID,
		SeatID:         seat.ID,
		PassengerName:  p.FullName(),
		PassportNumber: p.PassportNumber,
		FlightNumber:   flight.FlightNumber,
		Destination:    flight.Destination,
		DepartureTime:  flight.DepartureTime,
		Gate:           flight.Gate,
		SeatNumber:     seat.SeatNumber,
		CheckInTime:    now,
		BoardingGroup:  utils.BoardingGroup(seat.SeatNumber),
		BarCode:        utils.BoardingPassNumber(flight.FlightNumber, p.PassportNumber, seat.SeatNumber, now),
	}

	// once both locks are held the commit runs to completion
	seq, err := c.store.CommitAssignment(context.WithoutCancel(ctx), flight.ID, seat.SeatNumber, p, pass)
	if err != nil {
		return nil, err
	}
	seat, err = c.store.GetSeat(flight.ID, seat.SeatNumber)
	if err != nil {
		return nil, err
	}
	fid := flight.ID
	p.FlightID = &fid
	return &Assignment{Flight: flight, Seat: seat, Passenger: p, BoardingPass: *pass, Seq: seq}, nil
}

// UpdateFlightStatus changes a flight's status and tells every subscriber
// of the flight.  Status changes of one flight are serialized.
func (c *Coordinator) UpdateFlightStatus(ctx context.Context, flightID uint64, status model.FlightStatus) (model.Flight, error) {
	if !status.Valid() {
		return model.Flight{}, fmt.Errorf("%q: %w", status, ErrInvalidStatus)
	}
	if _, err := c.store.Flight(flightID); err != nil {
		return model.Flight{}, err
	}

	flight, seq, err := c.commitStatus(ctx, flightID, status)
	if err != nil {
		log.Printf("check-in: status %s for flight %d rejected: %v", status, flightID, err)
		return model.Flight{}, err
	}
	c.notifier.NotifyFlightStatusChanged(seq, flight)
	return flight, nil
}

func (c *Coordinator) commitStatus(ctx context.Context, flightID uint64, status model.FlightStatus) (model.Flight, uint64, error) {
	l, err := c.acquire(ctx, seatlock.StatusKey(flightID))
	if err != nil {
		return model.Flight{}, 0, err
	}
	defer l.Release()
	return c.store.SetFlightStatus(context.WithoutCancel(ctx), flightID, status)
}

func (c *Coordinator) acquire(ctx context.Context, key string) (*seatlock.Lock, error) {
	l, err := c.locks.Acquire(ctx, key, c.lockTimeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockTimeout, err)
	}
	return l, nil
}

func (c *Coordinator) passenger(ctx context.Context, passportNumber string) (*model.Passenger, error) {
	p, err := c.passengers.GetPassengerByPassport(ctx, passportNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("passport %s: %w", passportNumber, ErrPassengerNotFound)
		}
		return nil, fmt.Errorf("%w: lookup passenger: %v", ErrPersistence, err)
	}
	return p, nil
}

// publishCheckIn sends the broker event without holding up the caller.
// Failures are logged only.
func (c *Coordinator) publishCheckIn(a *Assignment) {
	if c.events == nil {
		return
	}
	ev := queue.CheckInCompletedEvent{
		FlightID:       a.Flight.ID,
		FlightNumber:   a.Flight.FlightNumber,
		Destination:    a.Flight.Destination,
		Gate:           a.Flight.Gate,
		DepartureTime:  a.Flight.DepartureTime.UTC().Format(time.RFC3339),
		PassengerID:    a.Passenger.ID,
		PassportNumber: a.Passenger.PassportNumber,
		PassengerName:  a.BoardingPass.PassengerName,
		SeatNumber:     a.Seat.SeatNumber,
		BoardingGroup:  a.BoardingPass.BoardingGroup,
		BarCode:        a.BoardingPass.BarCode,
		CheckedInAt:    a.BoardingPass.CheckInTime.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.events.PublishCheckInCompleted(ctx, ev); err != nil {
			log.Printf("check-in: publish event for %s failed: %v", ev.PassportNumber, err)
		}
	}()
}

type nopNotifier struct{}

func (nopNotifier) NotifyCheckIn(uint64, model.Flight, string, string) {}
func (nopNotifier) NotifyFlightStatusChanged(uint64, model.Flight) {}
