package model

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSeatNumber(t *testing.T) {
	row, col, ok := SplitSeatNumber("12c")
	assert.True(t, ok)
	assert.Equal(t, 12, row)
	assert.Equal(t, "C", col)

	_, _, ok = SplitSeatNumber("A1")
	assert.False(t, ok)
}

func TestSeatNumberLess(t *testing.T) {
	seats := []string{"10A", "2B", "1F", "2A", "1A", "EXIT"}
	sort.Slice(seats, func(i, j int) bool { return SeatNumberLess(seats[i], seats[j]) })
	assert.Equal(t, []string{"1A", "1F", "2A", "2B", "10A", "EXIT"}, seats)
}

func TestParseFlightStatus(t *testing.T) {
	s, err := ParseFlightStatus("Delayed")
	assert.NoError(t, err)
	assert.Equal(t, FlightStatusDelayed, s)

	_, err = ParseFlightStatus("delayed")
	assert.Error(t, err)
	_, err = ParseFlightStatus("")
	assert.Error(t, err)
}

func TestPassengerFullName(t *testing.T) {
	assert.Equal(t, "Bold Bat", Passenger{FirstName: "Bat", LastName: "Bold"}.FullName())
	assert.Equal(t, "Bat", Passenger{FirstName: "Bat"}.FullName())
}
