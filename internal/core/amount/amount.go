package amount

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var (
	// ErrOverflow is returned when an operation would exceed 2^256-1
	ErrOverflow = errors.New("amount overflow")

	// ErrUnderflow is returned when a subtraction would go below zero
	ErrUnderflow = errors.New("amount underflow")

	// ErrDivisionByZero is returned when dividing by a zero amount
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidAmount is returned when a string cannot be parsed as an amount
	ErrInvalidAmount = errors.New("invalid amount")
)

// Amount is an unsigned 256-bit quantity of token smallest units.
// The zero value is a valid zero amount and Amount values are comparable with ==.
type Amount struct {
	v uint256.Int
}

// Zero is the zero amount.
var Zero Amount

// New returns an amount holding n units.
func New(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// FromUint256 copies u into an Amount.
func FromUint256(u *uint256.Int) Amount {
	var a Amount
	a.v.Set(u)
	return a
}

// Pow10 returns 10^n.
func Pow10(n uint) Amount {
	var a Amount
	a.v.Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
	return a
}

// Units returns n whole units of a token with the given number of decimals.
func Units(n uint64, decimals uint) Amount {
	a, err := New(n).Mul(Pow10(decimals))
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Uint256() *uint256.Int {
	return a.v.Clone()
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

func (a Amount) Lt(b Amount) bool  { return a.v.Lt(&b.v) }
func (a Amount) Gt(b Amount) bool  { return a.v.Gt(&b.v) }
func (a Amount) Lte(b Amount) bool { return !a.v.Gt(&b.v) }
func (a Amount) Gte(b Amount) bool { return !a.v.Lt(&b.v) }

func (a Amount) Add(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.v.AddOverflow(&a.v, &b.v); overflow {
		return Zero, ErrOverflow
	}
	return r, nil
}

func (a Amount) Sub(b Amount) (Amount, error) {
	var r Amount
	if _, underflow := r.v.SubOverflow(&a.v, &b.v); underflow {
		return Zero, ErrUnderflow
	}
	return r, nil
}

// SubFloor returns a-b, or zero when b exceeds a.
func (a Amount) SubFloor(b Amount) Amount {
	if a.Lte(b) {
		return Zero
	}
	var r Amount
	r.v.Sub(&a.v, &b.v)
	return r
}

func (a Amount) Mul(b Amount) (Amount, error) {
	var r Amount
	if _, overflow := r.v.MulOverflow(&a.v, &b.v); overflow {
		return Zero, ErrOverflow
	}
	return r, nil
}

// Div returns floor(a/b).
func (a Amount) Div(b Amount) (Amount, error) {
	if b.IsZero() {
		return Zero, ErrDivisionByZero
	}
	var r Amount
	r.v.Div(&a.v, &b.v)
	return r, nil
}

// MulDiv returns floor(a*b/d) using a 512-bit intermediate product.
func (a Amount) MulDiv(b, d Amount) (Amount, error) {
	if d.IsZero() {
		return Zero, ErrDivisionByZero
	}
	var r Amount
	if _, overflow := r.v.MulDivOverflow(&a.v, &b.v, &d.v); overflow {
		return Zero, ErrOverflow
	}
	return r, nil
}

// MulDivUp returns ceil(a*b/d).
func (a Amount) MulDivUp(b, d Amount) (Amount, error) {
	q, err := a.MulDiv(b, d)
	if err != nil {
		return Zero, err
	}
	var rem uint256.Int
	if rem.MulMod(&a.v, &b.v, &d.v); !rem.IsZero() {
		return q.Add(New(1))
	}
	return q, nil
}

// Percent returns floor(a*pct/100).
func (a Amount) Percent(pct uint64) (Amount, error) {
	return a.MulDiv(New(pct), New(100))
}

// Sqrt returns floor(sqrt(a)).
func (a Amount) Sqrt() Amount {
	var r Amount
	r.v.Sqrt(&a.v)
	return r
}

// Uint64 returns the amount as a uint64 and whether it fit.
func (a Amount) Uint64() (uint64, bool) {
	return a.v.Uint64(), a.v.IsUint64()
}

func (a Amount) String() string {
	return a.v.Dec()
}

// Decimal converts the amount to a decimal number of whole units.
func (a Amount) Decimal(decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(a.v.ToBig(), -decimals)
}

// Format renders the amount in whole units with the given number of decimals.
func (a Amount) Format(decimals int32) string {
	return a.Decimal(decimals).String()
}

func Min(a, b Amount) Amount {
	if a.Lt(b) {
		return a
	}
	return b
}

func Max(a, b Amount) Amount {
	if a.Gt(b) {
		return a
	}
	return b
}

// Parse reads a decimal string of whole units ("1.5") into smallest units.
// Digits beyond the token's precision are rejected.
func Parse(s string, decimals int32) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return Zero, fmt.Errorf("%w: negative %q", ErrInvalidAmount, s)
	}
	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return Zero, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, decimals)
	}
	u, overflow := uint256.FromBig(shifted.BigInt())
	if overflow {
		return Zero, ErrOverflow
	}
	return FromUint256(u), nil
}

// ParseUnits reads a plain integer string of smallest units.
func ParseUnits(s string) (Amount, error) {
	u, err := uint256.FromDecimal(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return FromUint256(u), nil
}

// MustParse is Parse for constants; it panics on error.
func MustParse(s string, decimals int32) Amount {
	a, err := Parse(s, decimals)
	if err != nil {
		panic(err)
	}
	return a
}
