package seatstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airport-checkin/internal/model"
	"github.com/iliyamo/airport-checkin/internal/repository"
)

// failingWriter wraps the memory repo and fails writes on demand.
type failingWriter struct {
	*repository.MemoryRepo
	failSave   bool
	failStatus bool
	reverts    int
	mu         sync.Mutex
}

func (w *failingWriter) SaveAssignment(ctx context.Context, a repository.Assignment) error {
	if w.failSave {
		return errors.New("connection reset")
	}
	return w.MemoryRepo.SaveAssignment(ctx, a)
}

func (w *failingWriter) RevertAssignment(ctx context.Context, a repository.Assignment) error {
	w.mu.Lock()
	w.reverts++
	w.mu.Unlock()
	return w.MemoryRepo.RevertAssignment(ctx, a)
}

func (w *failingWriter) SaveFlightStatus(ctx context.Context, id uint64, st model.FlightStatus) error {
	if w.failStatus {
		return errors.New("connection reset")
	}
	return w.MemoryRepo.SaveFlightStatus(ctx, id, st)
}

func newStore(t *testing.T) (*Store, *failingWriter) {
	t.Helper()
	repo := repository.NewSeededMemoryRepo()
	w := &failingWriter{MemoryRepo: repo}
	s := New(w)
	require.NoError(t, s.Load(context.Background(), repo))
	return s, w
}

func passenger(id uint64, passport string) model.Passenger {
	return model.Passenger{ID: id, PassportNumber: passport, FirstName: "Bat", LastName: "Bold"}
}

func TestLoadAndLookup(t *testing.T) {
	s, _ := newStore(t)

	f, err := s.FlightByNumber("MN123")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), f.ID)
	assert.Len(t, s.Flights(), 1)

	seats, err := s.ListSeats(f.ID)
	require.NoError(t, err)
	require.Len(t, seats, 180)
	assert.Equal(t, "1A", seats[0].SeatNumber)
	assert.Equal(t, "1F", seats[5].SeatNumber)
	assert.Equal(t, "2A", seats[6].SeatNumber)
	assert.Equal(t, "10A", seats[54].SeatNumber)

	_, err = s.Flight(42)
	assert.ErrorIs(t, err, ErrFlightNotFound)
	_, err = s.GetSeat(1, "99Z")
	assert.ErrorIs(t, err, ErrSeatNotFound)

	seat, err := s.GetSeat(1, "1a")
	require.NoError(t, err)
	assert.Equal(t, "1A", seat.SeatNumber)
}

func TestLoadIndexesExistingAssignments(t *testing.T) {
	repo := repository.NewSeededMemoryRepo()
	pid := uint64(3)
	repo.AddSeat(model.Seat{ID: 7, FlightID: 1, SeatNumber: "2A", PassengerID: &pid})
	s := New(repo)
	require.NoError(t, s.Load(context.Background(), repo))

	seat, err := s.GetSeat(1, "2A")
	require.NoError(t, err)
	assert.True(t, seat.Occupied)
	p, ok := s.SeatOf(3)
	require.True(t, ok)
	assert.Equal(t, Placement{FlightID: 1, SeatNumber: "2A"}, p)
}

func TestCommitAssignment(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	pass := &model.BoardingPass{SeatNumber: "1A"}

	seq, err := s.CommitAssignment(ctx, 1, "1A", passenger(1, "AA12345"), pass)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), seq)
	assert.Equal(t, uint64(1), pass.SeatID)

	seat, _ := s.GetSeat(1, "1A")
	assert.True(t, seat.Occupied)
	require.NotNil(t, seat.PassengerID)
	assert.Equal(t, uint64(1), *seat.PassengerID)
	p, ok := s.SeatOf(1)
	require.True(t, ok)
	assert.Equal(t, "1A", p.SeatNumber)

	avail, _ := s.ListAvailable(1)
	assert.Len(t, avail, 179)
	assert.Equal(t, "1B", avail[0].SeatNumber)

	_, err = s.CommitAssignment(ctx, 1, "1A", passenger(2, "BB99999"), nil)
	assert.ErrorIs(t, err, ErrSeatOccupied)
	_, err = s.CommitAssignment(ctx, 1, "1B", passenger(1, "AA12345"), nil)
	assert.ErrorIs(t, err, ErrPassengerSeated)
	assert.Equal(t, uint64(1), s.Seq(1))
}

func TestCommitAssignmentPersistenceFailureLeavesStateUnchanged(t *testing.T) {
	s, w := newStore(t)
	w.failSave = true

	_, err := s.CommitAssignment(context.Background(), 1, "1A", passenger(1, "AA12345"), nil)
	assert.ErrorIs(t, err, ErrPersistence)

	seat, _ := s.GetSeat(1, "1A")
	assert.False(t, seat.Occupied)
	_, ok := s.SeatOf(1)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), s.Seq(1))
}

func TestCommitAssignmentStorageConflict(t *testing.T) {
	repo := repository.NewSeededMemoryRepo()
	s := New(repo)
	require.NoError(t, s.Load(context.Background(), repo))
	// another instance took the seat after this one loaded
	require.NoError(t, repo.SaveAssignment(context.Background(), repository.Assignment{FlightID: 1, SeatID: 1, PassengerID: 5}))

	_, err := s.CommitAssignment(context.Background(), 1, "1A", passenger(1, "AA12345"), nil)
	assert.ErrorIs(t, err, ErrSeatOccupied)
}

func TestReturnedSeatsAreCopies(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	_, err := s.CommitAssignment(ctx, 1, "1A", passenger(1, "AA12345"), nil)
	require.NoError(t, err)

	seat, _ := s.GetSeat(1, "1A")
	*seat.PassengerID = 99
	seat.Occupied = false

	again, _ := s.GetSeat(1, "1A")
	assert.True(t, again.Occupied)
	assert.Equal(t, uint64(1), *again.PassengerID)
}

func TestSetFlightStatus(t *testing.T) {
	ctx := context.Background()
	s, w := newStore(t)

	f, seq, err := s.SetFlightStatus(ctx, 1, model.FlightStatusDelayed)
	require.NoError(t, err)
	assert.Equal(t, model.FlightStatusDelayed, f.Status)
	assert.Equal(t, uint64(1), seq)

	w.failStatus = true
	_, _, err = s.SetFlightStatus(ctx, 1, model.FlightStatusBoarding)
	assert.ErrorIs(t, err, ErrPersistence)
	got, _ := s.Flight(1)
	assert.Equal(t, model.FlightStatusDelayed, got.Status)

	_, _, err = s.SetFlightStatus(ctx, 9, model.FlightStatusBoarding)
	assert.ErrorIs(t, err, ErrFlightNotFound)
}
