package token

import (
	"errors"

	"github.com/LeJamon/goExilon/internal/core/access"
	"github.com/LeJamon/goExilon/internal/core/dex"
)

// Result is the engine result code of an operation.
type Result string

const (
	ResultSuccess Result = "SUCCESS"

	ResultLiquidityNotAdded   Result = "LIQUIDITY_NOT_ADDED"
	ResultOnlyOnce            Result = "ONLY_ONCE"
	ResultNotAdmin            Result = "NOT_ADMIN"
	ResultWrongAddress        Result = "WRONG_ADDRESS"
	ResultZeroAddress         Result = "ZERO_ADDRESS"
	ResultAlreadyExcluded     Result = "ALREADY_EXCLUDED"
	ResultAlreadyIncluded     Result = "ALREADY_INCLUDED"
	ResultAlreadyRemoved      Result = "ALREADY_REMOVED"
	ResultAlreadyImposed      Result = "ALREADY_IMPOSED"
	ResultBalance             Result = "AMOUNT_EXCEEDS_BALANCE"
	ResultAllowance           Result = "AMOUNT_EXCEEDS_ALLOWANCE"
	ResultAllowanceBelowZero  Result = "ALLOWANCE_BELOW_ZERO"
	ResultNewPairNotAllowed   Result = "NEW_PAIR_NOT_ALLOWED"
	ResultBurnCapExceeded     Result = "BURN_CAP_EXCEEDED"
	ResultTransferToToken     Result = "TRANSFER_TO_TOKEN"
	ResultTransferTooSmall    Result = "TRANSFER_AMOUNT_TOO_SMALL"
	ResultMarketingNotFixed   Result = "MARKETING_NOT_FIXED"
	ResultWethReceiverNotSet  Result = "WETH_RECEIVER_NOT_SET"
	ResultLengthMismatch      Result = "LENGTH_MISMATCH"
	ResultBuyLimitExceeded    Result = "BUY_LIMIT_EXCEEDED"
	ResultTransferFailed      Result = "TRANSFER_FAILED"
	ResultInsufficientOutput  Result = "INSUFFICIENT_OUTPUT_AMOUNT"
	ResultInsufficientBalance Result = "INSUFFICIENT_NATIVE_BALANCE"
	ResultDex                 Result = "DEX_ERROR"
	ResultInternal            Result = "INTERNAL"
)

// resultTable is ordered: the first matching sentinel wins. Token errors
// come before the dex errors that may wrap them.
var resultTable = []struct {
	err    error
	result Result
}{
	{ErrLiquidityNotAdded, ResultLiquidityNotAdded},
	{ErrOnlyOnce, ResultOnlyOnce},
	{ErrSenderIsNotAdmin, ResultNotAdmin},
	{access.ErrMissingRole, ResultNotAdmin},
	{ErrWrongAddress, ResultWrongAddress},
	{ErrZeroAddress, ResultZeroAddress},
	{ErrAlreadyExcluded, ResultAlreadyExcluded},
	{ErrAlreadyIncluded, ResultAlreadyIncluded},
	{ErrAlreadyRemoved, ResultAlreadyRemoved},
	{ErrAlreadyImposed, ResultAlreadyImposed},
	{ErrAmountExceedsBalance, ResultBalance},
	{ErrAmountExceedsAllowance, ResultAllowance},
	{ErrAllowanceBelowZero, ResultAllowanceBelowZero},
	{ErrNewPairNotAllowed, ResultNewPairNotAllowed},
	{ErrBurnCapExceeded, ResultBurnCapExceeded},
	{ErrTransferToToken, ResultTransferToToken},
	{ErrTransferAmountTooSmall, ResultTransferTooSmall},
	{ErrMarketingNotFixed, ResultMarketingNotFixed},
	{ErrWethReceiverNotSet, ResultWethReceiverNotSet},
	{ErrLengthMismatch, ResultLengthMismatch},
	{ErrBuyLimitExceeded, ResultBuyLimitExceeded},
	{dex.ErrTransferFailed, ResultTransferFailed},
	{dex.ErrInsufficientOutputAmount, ResultInsufficientOutput},
	{dex.ErrInsufficientNativeBalance, ResultInsufficientBalance},
}

// ResultOf maps an error returned by the token or the exchange to its
// result code.
func ResultOf(err error) Result {
	if err == nil {
		return ResultSuccess
	}
	for _, r := range resultTable {
		if errors.Is(err, r.err) {
			return r.result
		}
	}
	var dexErr bool
	for _, e := range []error{dex.ErrK, dex.ErrLocked, dex.ErrInsufficientLiquidity, dex.ErrInsufficientInputAmount, dex.ErrInvalidPath} {
		if errors.Is(err, e) {
			dexErr = true
			break
		}
	}
	if dexErr {
		return ResultDex
	}
	return ResultInternal
}

// Success reports whether r is ResultSuccess.
func (r Result) Success() bool { return r == ResultSuccess }
