package dex

import "errors"

var (
	ErrTransferFailed              = errors.New("dex: transfer failed")
	ErrLocked                      = errors.New("dex: locked")
	ErrInsufficientLiquidityMinted = errors.New("dex: insufficient liquidity minted")
	ErrInsufficientLiquidityBurned = errors.New("dex: insufficient liquidity burned")
	ErrInsufficientOutputAmount    = errors.New("dex: insufficient output amount")
	ErrInsufficientInputAmount     = errors.New("dex: insufficient input amount")
	ErrInsufficientLiquidity       = errors.New("dex: insufficient liquidity")
	ErrInsufficientAmount          = errors.New("dex: insufficient amount")
	ErrInsufficientAAmount         = errors.New("dex: insufficient A amount")
	ErrInsufficientBAmount         = errors.New("dex: insufficient B amount")
	ErrExcessiveInputAmount        = errors.New("dex: excessive input amount")
	ErrInvalidTo                   = errors.New("dex: invalid to")
	ErrInvalidPath                 = errors.New("dex: invalid path")
	ErrK                           = errors.New("dex: K")
	ErrIdenticalAddresses          = errors.New("dex: identical addresses")
	ErrZeroAddress                 = errors.New("dex: zero address")
	ErrPairExists                  = errors.New("dex: pair exists")
	ErrPairNotFound                = errors.New("dex: pair not found")
	ErrUnknownToken                = errors.New("dex: unknown token")
	ErrInsufficientBalance         = errors.New("dex: transfer amount exceeds balance")
	ErrInsufficientAllowance       = errors.New("dex: transfer amount exceeds allowance")
	ErrInsufficientNativeBalance   = errors.New("dex: insufficient native balance")
)
