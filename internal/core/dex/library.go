package dex

import (
	"bytes"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
)

// MinimumLiquidity is locked at the zero address by the first mint of every pair.
const MinimumLiquidity = 1000

// Fee is the swap fee kept by liquidity providers, as the share of the input
// that is traded: Numerator/Denominator.
type Fee struct {
	Numerator   uint64 `toml:"numerator" mapstructure:"numerator"`
	Denominator uint64 `toml:"denominator" mapstructure:"denominator"`
}

// DefaultFee is 0.25%.
func DefaultFee() Fee {
	return Fee{Numerator: 9975, Denominator: 10000}
}

// SortTokens orders two token addresses the way pairs store them.
func SortTokens(a, b common.Address) (common.Address, common.Address, error) {
	if a == b {
		return common.Address{}, common.Address{}, ErrIdenticalAddresses
	}
	if bytes.Compare(a.Bytes(), b.Bytes()) > 0 {
		a, b = b, a
	}
	if a == (common.Address{}) {
		return common.Address{}, common.Address{}, ErrZeroAddress
	}
	return a, b, nil
}

// Quote returns the amount of B worth amountA at the given reserves.
func Quote(amountA, reserveA, reserveB amount.Amount) (amount.Amount, error) {
	if amountA.IsZero() {
		return amount.Zero, ErrInsufficientAmount
	}
	if reserveA.IsZero() || reserveB.IsZero() {
		return amount.Zero, ErrInsufficientLiquidity
	}
	return amountA.MulDiv(reserveB, reserveA)
}

// GetAmountOut returns the output of swapping amountIn against the reserves.
func (f Fee) GetAmountOut(amountIn, reserveIn, reserveOut amount.Amount) (amount.Amount, error) {
	if amountIn.IsZero() {
		return amount.Zero, ErrInsufficientInputAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() {
		return amount.Zero, ErrInsufficientLiquidity
	}
	inWithFee, err := amountIn.Mul(amount.New(f.Numerator))
	if err != nil {
		return amount.Zero, err
	}
	numerator, err := inWithFee.Mul(reserveOut)
	if err != nil {
		return amount.Zero, err
	}
	denominator, err := reserveIn.Mul(amount.New(f.Denominator))
	if err != nil {
		return amount.Zero, err
	}
	if denominator, err = denominator.Add(inWithFee); err != nil {
		return amount.Zero, err
	}
	return numerator.Div(denominator)
}

// GetAmountIn returns the input required to receive amountOut.
func (f Fee) GetAmountIn(amountOut, reserveIn, reserveOut amount.Amount) (amount.Amount, error) {
	if amountOut.IsZero() {
		return amount.Zero, ErrInsufficientOutputAmount
	}
	if reserveIn.IsZero() || reserveOut.IsZero() || amountOut.Gte(reserveOut) {
		return amount.Zero, ErrInsufficientLiquidity
	}
	numerator, err := reserveIn.Mul(amountOut)
	if err != nil {
		return amount.Zero, err
	}
	if numerator, err = numerator.Mul(amount.New(f.Denominator)); err != nil {
		return amount.Zero, err
	}
	left, err := reserveOut.Sub(amountOut)
	if err != nil {
		return amount.Zero, err
	}
	denominator, err := left.Mul(amount.New(f.Numerator))
	if err != nil {
		return amount.Zero, err
	}
	q, err := numerator.Div(denominator)
	if err != nil {
		return amount.Zero, err
	}
	return q.Add(amount.New(1))
}
