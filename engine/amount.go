package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Fixed-point monetary value, scale 4
// =============================================================================

// Scale is the number of fractional digits every Amount carries.
// Input with more precision is truncated toward zero, never rounded up.
const Scale = 4

// Amount is an exact fixed-point monetary value.
//
// It wraps decimal.Decimal so that balance arithmetic never touches binary
// floating point: repeated add/subtract cycles stay exact at scale 4.
// The zero value is a usable zero amount.
type Amount struct {
	d decimal.Decimal
}

// ParseAmount parses decimal text into an Amount, truncating anything past
// four fractional digits toward zero (1.23456 -> 1.2345, -1.23456 -> -1.2345).
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{d: d.Truncate(Scale)}, nil
}

// MustAmount is ParseAmount for literals known to be valid. Test helper.
func MustAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// AmountFromInt returns a whole-unit Amount.
func AmountFromInt(n int64) Amount {
	return Amount{d: decimal.NewFromInt(n)}
}

// Zero returns the zero Amount.
func Zero() Amount { return Amount{} }

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }
func (a Amount) Neg() Amount         { return Amount{d: a.d.Neg()} }

func (a Amount) Cmp(b Amount) int       { return a.d.Cmp(b.d) }
func (a Amount) Equal(b Amount) bool    { return a.d.Equal(b.d) }
func (a Amount) LessThan(b Amount) bool { return a.d.LessThan(b.d) }
func (a Amount) IsZero() bool           { return a.d.IsZero() }
func (a Amount) IsNegative() bool       { return a.d.IsNegative() }

// String renders the amount as plain decimal text with trailing zeros
// stripped and no exponent: 100.0000 -> "100", 1.5000 -> "1.5".
func (a Amount) String() string { return a.d.String() }
