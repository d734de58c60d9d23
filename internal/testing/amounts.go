package testing

import (
	"github.com/LeJamon/goExilon/internal/core/amount"
)

// WeiPerETH is the number of wei in one unit of the native asset.
var WeiPerETH = amount.Pow10(18)

// ETH converts whole native units to wei.
// For example, ETH(10) returns 10 * 10^18.
func ETH(n uint64) amount.Amount {
	return amount.Units(n, 18)
}

// ETHFrac parses a decimal native amount such as "0.1".
func ETHFrac(s string) amount.Amount {
	return amount.MustParse(s, 18)
}

// Wei returns n wei.
func Wei(n uint64) amount.Amount {
	return amount.New(n)
}

// Tokens converts whole Exilon tokens (6 decimals) to base units.
func Tokens(n uint64) amount.Amount {
	return amount.Units(n, 6)
}

// USD converts whole USD (18 decimals) to base units.
func USD(n uint64) amount.Amount {
	return amount.Units(n, 18)
}

// Percent returns pct percent of v, rounded down.
func Percent(v amount.Amount, pct uint64) amount.Amount {
	out, err := v.Percent(pct)
	if err != nil {
		panic(err)
	}
	return out
}

// Frac returns v * num / den, rounded down.
func Frac(v amount.Amount, num, den uint64) amount.Amount {
	out, err := v.MulDiv(amount.New(num), amount.New(den))
	if err != nil {
		panic(err)
	}
	return out
}

// Plus returns a + b and panics on overflow.
func Plus(a, b amount.Amount) amount.Amount {
	out, err := a.Add(b)
	if err != nil {
		panic(err)
	}
	return out
}

// Minus returns a - b and panics on underflow.
func Minus(a, b amount.Amount) amount.Amount {
	out, err := a.Sub(b)
	if err != nil {
		panic(err)
	}
	return out
}
