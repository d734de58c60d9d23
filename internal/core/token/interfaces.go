package token

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/dex"
)

// AccessControl answers the admin capability check.
type AccessControl interface {
	HasRole(role common.Hash, account common.Address) bool
}

// PairFactory deploys the main pair and tells pairs apart from holders.
type PairFactory interface {
	Register(t dex.Token)
	CreatePair(tokenA, tokenB common.Address) (*dex.Pair, error)
	GetPair(tokenA, tokenB common.Address) (*dex.Pair, bool)
	IsPair(addr common.Address) bool
	Fee() dex.Fee
}

// Quoter prices the flat transfer fee along a multi-hop path.
type Quoter interface {
	GetAmountsIn(amountOut amount.Amount, path []common.Address) ([]amount.Amount, error)
}

// WrappedNative is the wrapped native asset the main pair trades against.
type WrappedNative interface {
	dex.Token
	DepositTo(from, to common.Address, value amount.Amount) error
}
