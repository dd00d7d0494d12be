package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBoardingPassNumber(t *testing.T) {
	at := time.Date(2024, 5, 15, 9, 30, 5, 0, time.UTC)

	assert.Equal(t, "MN123-AA12345-1A-20240515093005", BoardingPassNumber("MN123", "AA12345", "1A", at))
	assert.Equal(t, BoardingPassNumber("MN123", "AA12345", "1A", at), BoardingPassNumber("MN123", "AA12345", "1A", at))
	assert.Equal(t, "MN123-AA12345-1A-20240515093005", BoardingPassNumber("MN 123", "AA12345", " 1A", at))

	local := at.In(time.FixedZone("ULAT", 8*3600))
	assert.Equal(t, BoardingPassNumber("MN123", "AA12345", "1A", at), BoardingPassNumber("MN123", "AA12345", "1A", local))
}

func TestBaggageBarcode(t *testing.T) {
	at := time.Date(2024, 5, 15, 9, 30, 5, 0, time.UTC)
	assert.Equal(t, "MN123-AA12345-BAG-20240515093005", BaggageBarcode("MN123", "AA12345", at))
}

func TestBoardingGroup(t *testing.T) {
	tests := []struct {
		seat  string
		group string
	}{
		{"1A", "1"},
		{"10F", "1"},
		{"11A", "2"},
		{"20C", "2"},
		{"21B", "3"},
		{"30F", "3"},
		{"A1", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.seat, func(t *testing.T) {
			assert.Equal(t, tt.group, BoardingGroup(tt.seat))
		})
	}
}
