package auctionapi

import (
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected uint64
		wantErr  bool
	}{
		{"integer", "100", 1_000_000, false},
		{"two decimal places", "10.50", 105_000, false},
		{"full precision", "0.0001", 1, false},
		{"zero", "0", 0, false},
		{"trailing zeros", "2.5000", 25_000, false},
		{"negative", "-1", 0, true},
		{"too many decimal places", "0.00001", 0, true},
		{"not a number", "ten", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				check.NotNil(t, err)
				return
			}
			check.Nil(t, err)
			check.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		units    uint64
		expected string
	}{
		{"integer", 1_000_000, "100"},
		{"fraction", 105_000, "10.5"},
		{"single base unit", 1, "0.0001"},
		{"zero", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check.Equal(t, tt.expected, FormatAmount(tt.units))
		})
	}
}

func TestParseFormat_RoundTrip(t *testing.T) {
	for _, units := range []uint64{0, 1, 9_999, 105_000, 1_000_000, 123_456_789} {
		parsed, err := ParseAmount(FormatAmount(units))
		check.Nil(t, err)
		check.Equal(t, units, parsed)
	}
}
