package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
)

// Router is the user-facing entry point of the exchange. Every call takes the
// calling account explicitly; token pulls go through TransferFrom with the
// router as spender, so callers approve the router first.
type Router struct {
	chain   *chain.Chain
	address common.Address
	factory *Factory
	weth    *WETH
}

func NewRouter(c *chain.Chain, address common.Address, factory *Factory, weth *WETH) *Router {
	factory.Register(weth)
	return &Router{chain: c, address: address, factory: factory, weth: weth}
}

func (r *Router) Address() common.Address { return r.address }
func (r *Router) Factory() *Factory       { return r.factory }
func (r *Router) WETH() *WETH             { return r.weth }

func (r *Router) Quote(amountA, reserveA, reserveB amount.Amount) (amount.Amount, error) {
	return Quote(amountA, reserveA, reserveB)
}

func (r *Router) GetAmountOut(amountIn, reserveIn, reserveOut amount.Amount) (amount.Amount, error) {
	return r.factory.fee.GetAmountOut(amountIn, reserveIn, reserveOut)
}

func (r *Router) GetAmountIn(amountOut, reserveIn, reserveOut amount.Amount) (amount.Amount, error) {
	return r.factory.fee.GetAmountIn(amountOut, reserveIn, reserveOut)
}

// GetReserves returns the reserves of the tokenA/tokenB pair in argument order.
func (r *Router) GetReserves(tokenA, tokenB common.Address) (amount.Amount, amount.Amount, error) {
	pair, ok := r.factory.GetPair(tokenA, tokenB)
	if !ok {
		return amount.Zero, amount.Zero, fmt.Errorf("%w: %s/%s", ErrPairNotFound, tokenA.Hex(), tokenB.Hex())
	}
	return pair.ReservesFor(tokenA)
}

// GetAmountsOut chains GetAmountOut along path.
func (r *Router) GetAmountsOut(amountIn amount.Amount, path []common.Address) ([]amount.Amount, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	amounts := make([]amount.Amount, len(path))
	amounts[0] = amountIn
	for i := 0; i < len(path)-1; i++ {
		rIn, rOut, err := r.GetReserves(path[i], path[i+1])
		if err != nil {
			return nil, err
		}
		if amounts[i+1], err = r.GetAmountOut(amounts[i], rIn, rOut); err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

// GetAmountsIn chains GetAmountIn backwards along path.
func (r *Router) GetAmountsIn(amountOut amount.Amount, path []common.Address) ([]amount.Amount, error) {
	if len(path) < 2 {
		return nil, ErrInvalidPath
	}
	amounts := make([]amount.Amount, len(path))
	amounts[len(amounts)-1] = amountOut
	for i := len(path) - 1; i > 0; i-- {
		rIn, rOut, err := r.GetReserves(path[i-1], path[i])
		if err != nil {
			return nil, err
		}
		if amounts[i-1], err = r.GetAmountIn(amounts[i], rIn, rOut); err != nil {
			return nil, err
		}
	}
	return amounts, nil
}

// AddLiquidity deposits tokenA and tokenB at the current ratio and mints LP
// shares to to.
func (r *Router) AddLiquidity(sender, tokenA, tokenB common.Address, amountADesired, amountBDesired, amountAMin, amountBMin amount.Amount, to common.Address) (amountA, amountB, liquidity amount.Amount, err error) {
	err = r.chain.Atomic(func() error {
		var pair *Pair
		pair, amountA, amountB, err = r.addLiquidity(tokenA, tokenB, amountADesired, amountBDesired, amountAMin, amountBMin)
		if err != nil {
			return err
		}
		if err := r.pull(tokenA, sender, pair.address, amountA); err != nil {
			return err
		}
		if err := r.pull(tokenB, sender, pair.address, amountB); err != nil {
			return err
		}
		liquidity, err = pair.Mint(to)
		return err
	})
	return amountA, amountB, liquidity, err
}

// AddLiquidityETH is AddLiquidity against WETH, paid from the sender's
// native balance. Only the native amount actually used is taken.
func (r *Router) AddLiquidityETH(sender, token common.Address, amountTokenDesired, amountTokenMin, amountETHMin amount.Amount, to common.Address, value amount.Amount) (amountToken, amountETH, liquidity amount.Amount, err error) {
	err = r.chain.Atomic(func() error {
		var pair *Pair
		pair, amountToken, amountETH, err = r.addLiquidity(token, r.weth.address, amountTokenDesired, value, amountTokenMin, amountETHMin)
		if err != nil {
			return err
		}
		if err := r.pull(token, sender, pair.address, amountToken); err != nil {
			return err
		}
		if err := r.weth.DepositTo(sender, pair.address, amountETH); err != nil {
			return err
		}
		liquidity, err = pair.Mint(to)
		return err
	})
	return amountToken, amountETH, liquidity, err
}

// RemoveLiquidity burns liquidity shares of sender and pays both tokens to to.
func (r *Router) RemoveLiquidity(sender, tokenA, tokenB common.Address, liquidity, amountAMin, amountBMin amount.Amount, to common.Address) (amountA, amountB amount.Amount, err error) {
	err = r.chain.Atomic(func() error {
		pair, ok := r.factory.GetPair(tokenA, tokenB)
		if !ok {
			return ErrPairNotFound
		}
		if err := pair.TransferFrom(r.address, sender, pair.address, liquidity); err != nil {
			return err
		}
		amount0, amount1, err := pair.Burn(to)
		if err != nil {
			return err
		}
		amountA, amountB = amount0, amount1
		if tokenA != pair.Token0() {
			amountA, amountB = amount1, amount0
		}
		if amountA.Lt(amountAMin) {
			return ErrInsufficientAAmount
		}
		if amountB.Lt(amountBMin) {
			return ErrInsufficientBAmount
		}
		return nil
	})
	return amountA, amountB, err
}

// RemoveLiquidityETH removes token/WETH liquidity and pays the WETH side out
// as native balance.
func (r *Router) RemoveLiquidityETH(sender, token common.Address, liquidity, amountTokenMin, amountETHMin amount.Amount, to common.Address) (amountToken, amountETH amount.Amount, err error) {
	err = r.chain.Atomic(func() error {
		if amountToken, amountETH, err = r.RemoveLiquidity(sender, token, r.weth.address, liquidity, amountTokenMin, amountETHMin, r.address); err != nil {
			return err
		}
		t, err := r.factory.Token(token)
		if err != nil {
			return err
		}
		if err := t.Transfer(r.address, to, amountToken); err != nil {
			return err
		}
		return r.weth.WithdrawTo(r.address, to, amountETH)
	})
	return amountToken, amountETH, err
}

// RemoveLiquidityETHSupportingFeeOnTransferTokens removes liquidity through
// the router, forwards whatever token amount arrived and unwraps the WETH.
func (r *Router) RemoveLiquidityETHSupportingFeeOnTransferTokens(sender, token common.Address, liquidity, amountTokenMin, amountETHMin amount.Amount, to common.Address) (amountETH amount.Amount, err error) {
	err = r.chain.Atomic(func() error {
		if _, amountETH, err = r.RemoveLiquidity(sender, token, r.weth.address, liquidity, amountTokenMin, amountETHMin, r.address); err != nil {
			return err
		}
		t, err := r.factory.Token(token)
		if err != nil {
			return err
		}
		if err := t.Transfer(r.address, to, t.BalanceOf(r.address)); err != nil {
			return err
		}
		return r.weth.WithdrawTo(r.address, to, amountETH)
	})
	return amountETH, err
}

// SwapExactETHForTokens spends value of the sender's native balance along
// path, which must start at WETH.
func (r *Router) SwapExactETHForTokens(sender common.Address, amountOutMin amount.Amount, path []common.Address, to common.Address, value amount.Amount) ([]amount.Amount, error) {
	var amounts []amount.Amount
	err := r.chain.Atomic(func() error {
		if len(path) < 2 || path[0] != r.weth.address {
			return ErrInvalidPath
		}
		var err error
		if amounts, err = r.GetAmountsOut(value, path); err != nil {
			return err
		}
		if amounts[len(amounts)-1].Lt(amountOutMin) {
			return ErrInsufficientOutputAmount
		}
		first, _ := r.factory.GetPair(path[0], path[1])
		if err := r.weth.DepositTo(sender, first.address, amounts[0]); err != nil {
			return err
		}
		return r.swap(amounts, path, to)
	})
	return amounts, err
}

// SwapExactETHForTokensSupportingFeeOnTransferTokens checks the output on
// the recipient's balance, so tokens that tax transfers work.
func (r *Router) SwapExactETHForTokensSupportingFeeOnTransferTokens(sender common.Address, amountOutMin amount.Amount, path []common.Address, to common.Address, value amount.Amount) error {
	return r.chain.Atomic(func() error {
		if len(path) < 2 || path[0] != r.weth.address {
			return ErrInvalidPath
		}
		first, ok := r.factory.GetPair(path[0], path[1])
		if !ok {
			return ErrPairNotFound
		}
		if err := r.weth.DepositTo(sender, first.address, value); err != nil {
			return err
		}
		out, err := r.factory.Token(path[len(path)-1])
		if err != nil {
			return err
		}
		before := out.BalanceOf(to)
		if err := r.swapSupportingFee(path, to); err != nil {
			return err
		}
		if out.BalanceOf(to).SubFloor(before).Lt(amountOutMin) {
			return ErrInsufficientOutputAmount
		}
		return nil
	})
}

// SwapExactTokensForETHSupportingFeeOnTransferTokens sells amountIn of the
// sender's tokens along path, which must end at WETH, and pays the unwrapped
// output to to.
func (r *Router) SwapExactTokensForETHSupportingFeeOnTransferTokens(sender common.Address, amountIn, amountOutMin amount.Amount, path []common.Address, to common.Address) error {
	return r.chain.Atomic(func() error {
		if len(path) < 2 || path[len(path)-1] != r.weth.address {
			return ErrInvalidPath
		}
		first, ok := r.factory.GetPair(path[0], path[1])
		if !ok {
			return ErrPairNotFound
		}
		if err := r.pull(path[0], sender, first.address, amountIn); err != nil {
			return err
		}
		if err := r.swapSupportingFee(path, r.address); err != nil {
			return err
		}
		out := r.weth.BalanceOf(r.address)
		if out.Lt(amountOutMin) {
			return ErrInsufficientOutputAmount
		}
		return r.weth.WithdrawTo(r.address, to, out)
	})
}

// SwapExactTokensForTokensSupportingFeeOnTransferTokens sells amountIn of the
// first token of path for the last one.
func (r *Router) SwapExactTokensForTokensSupportingFeeOnTransferTokens(sender common.Address, amountIn, amountOutMin amount.Amount, path []common.Address, to common.Address) error {
	return r.chain.Atomic(func() error {
		if len(path) < 2 {
			return ErrInvalidPath
		}
		first, ok := r.factory.GetPair(path[0], path[1])
		if !ok {
			return ErrPairNotFound
		}
		out, err := r.factory.Token(path[len(path)-1])
		if err != nil {
			return err
		}
		if err := r.pull(path[0], sender, first.address, amountIn); err != nil {
			return err
		}
		before := out.BalanceOf(to)
		if err := r.swapSupportingFee(path, to); err != nil {
			return err
		}
		if out.BalanceOf(to).SubFloor(before).Lt(amountOutMin) {
			return ErrInsufficientOutputAmount
		}
		return nil
	})
}

func (r *Router) addLiquidity(tokenA, tokenB common.Address, amountADesired, amountBDesired, amountAMin, amountBMin amount.Amount) (*Pair, amount.Amount, amount.Amount, error) {
	pair, ok := r.factory.GetPair(tokenA, tokenB)
	if !ok {
		var err error
		if pair, err = r.factory.CreatePair(tokenA, tokenB); err != nil {
			return nil, amount.Zero, amount.Zero, err
		}
	}
	reserveA, reserveB, err := pair.ReservesFor(tokenA)
	if err != nil {
		return nil, amount.Zero, amount.Zero, err
	}
	if reserveA.IsZero() && reserveB.IsZero() {
		return pair, amountADesired, amountBDesired, nil
	}

	amountBOptimal, err := Quote(amountADesired, reserveA, reserveB)
	if err != nil {
		return nil, amount.Zero, amount.Zero, err
	}
	if amountBOptimal.Lte(amountBDesired) {
		if amountBOptimal.Lt(amountBMin) {
			return nil, amount.Zero, amount.Zero, ErrInsufficientBAmount
		}
		return pair, amountADesired, amountBOptimal, nil
	}
	amountAOptimal, err := Quote(amountBDesired, reserveB, reserveA)
	if err != nil {
		return nil, amount.Zero, amount.Zero, err
	}
	if amountAOptimal.Gt(amountADesired) {
		return nil, amount.Zero, amount.Zero, ErrExcessiveInputAmount
	}
	if amountAOptimal.Lt(amountAMin) {
		return nil, amount.Zero, amount.Zero, ErrInsufficientAAmount
	}
	return pair, amountAOptimal, amountBDesired, nil
}

func (r *Router) pull(token, from, to common.Address, value amount.Amount) error {
	t, err := r.factory.Token(token)
	if err != nil {
		return err
	}
	return t.TransferFrom(r.address, from, to, value)
}

func (r *Router) hopTarget(path []common.Address, i int, to common.Address) common.Address {
	if i < len(path)-2 {
		next, _ := r.factory.GetPair(path[i+1], path[i+2])
		return next.address
	}
	return to
}

func (r *Router) swap(amounts []amount.Amount, path []common.Address, to common.Address) error {
	for i := 0; i < len(path)-1; i++ {
		pair, ok := r.factory.GetPair(path[i], path[i+1])
		if !ok {
			return ErrPairNotFound
		}
		out0, out1 := amount.Zero, amounts[i+1]
		if path[i+1] == pair.Token0() {
			out0, out1 = amounts[i+1], amount.Zero
		}
		if err := pair.Swap(out0, out1, r.hopTarget(path, i, to)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) swapSupportingFee(path []common.Address, to common.Address) error {
	for i := 0; i < len(path)-1; i++ {
		pair, ok := r.factory.GetPair(path[i], path[i+1])
		if !ok {
			return ErrPairNotFound
		}
		reserveIn, reserveOut, err := pair.ReservesFor(path[i])
		if err != nil {
			return err
		}
		in, err := r.factory.Token(path[i])
		if err != nil {
			return err
		}
		amountInput, err := in.BalanceOf(pair.address).Sub(reserveIn)
		if err != nil {
			return ErrInsufficientInputAmount
		}
		amountOutput, err := r.GetAmountOut(amountInput, reserveIn, reserveOut)
		if err != nil {
			return err
		}
		out0, out1 := amount.Zero, amountOutput
		if path[i+1] == pair.Token0() {
			out0, out1 = amountOutput, amount.Zero
		}
		if err := pair.Swap(out0, out1, r.hopTarget(path, i, to)); err != nil {
			return err
		}
	}
	return nil
}
