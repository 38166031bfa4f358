package auctionapi

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// monetaryPrecision is the number of decimal places carried on the wire.
// One engine base unit is 0.0001 of the auction currency.
const monetaryPrecision int32 = 4

// ParseAmount converts a wire money string ("10.50") into engine base units.
// Amounts must be non-negative and must not carry more than
// monetaryPrecision decimal places; decimal arithmetic avoids float
// representation drift between clients and the engine.
func ParseAmount(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("amount %q is negative", s)
	}
	if !d.Equal(d.Round(monetaryPrecision)) {
		return 0, fmt.Errorf("amount %q exceeds %d decimal places", s, monetaryPrecision)
	}

	units := d.Shift(monetaryPrecision)
	if !units.IsInteger() {
		return 0, fmt.Errorf("amount %q exceeds %d decimal places", s, monetaryPrecision)
	}
	n := units.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("amount %q overflows base units", s)
	}
	return n.Uint64(), nil
}

// FormatAmount renders engine base units back into the wire money format.
func FormatAmount(units uint64) string {
	return decimal.NewFromUint64(units).Shift(-monetaryPrecision).String()
}
