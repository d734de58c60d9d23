package token

import (
	"errors"

	"github.com/LeJamon/goExilon/internal/core/fees"
	"github.com/LeJamon/goExilon/internal/core/registry"
)

var (
	// ErrLiquidityNotAdded is returned by every movement before AddLiquidity
	ErrLiquidityNotAdded = errors.New("liquidity not added")

	// ErrOnlyOnce is returned by a second call to a one-shot initializer
	ErrOnlyOnce = errors.New("only once")

	// ErrSenderIsNotAdmin is returned when the caller lacks the admin role
	ErrSenderIsNotAdmin = errors.New("sender is not admin")

	// ErrWrongAddress is returned when a structurally fixed address is
	// returned to fee distribution
	ErrWrongAddress = errors.New("wrong address")

	// ErrBurnCapExceeded is returned only by direct transfers to the burn
	// sink; burn fees are clamped to the cap instead
	ErrBurnCapExceeded = errors.New("burn cap exceeded")

	// ErrTransferToToken is returned when a user sends tokens to the token
	// address, whose balance backs the fee pool
	ErrTransferToToken = errors.New("transfer to token address")

	ErrAmountExceedsAllowance = errors.New("amount exceeds allowance")
	ErrAmountExceedsBalance   = errors.New("amount exceeds balance")
	ErrZeroAddress            = errors.New("zero address")
	ErrNewPairNotAllowed      = errors.New("not allowed creating new LP pairs of this token")
	ErrTransferAmountTooSmall = errors.New("transfer amount too small")
	ErrMarketingNotFixed      = errors.New("marketing address must be fixed")
	ErrWethReceiverNotSet     = errors.New("weth receiver not set")
	ErrLengthMismatch         = errors.New("recipients and amounts differ in length")
	ErrAllowanceBelowZero     = errors.New("decreased allowance below zero")
	ErrInvalidConfig          = errors.New("invalid token config")
)

// Registry and throttle errors surface from the token unchanged.
var (
	ErrAlreadyExcluded  = registry.ErrAlreadyExcluded
	ErrAlreadyIncluded  = registry.ErrAlreadyIncluded
	ErrAlreadyRemoved   = registry.ErrAlreadyRemoved
	ErrAlreadyImposed   = registry.ErrAlreadyImposed
	ErrBuyLimitExceeded = fees.ErrBuyLimitExceeded
)
