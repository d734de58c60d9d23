package scenario

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/sim"
)

const nativeDecimals = 18

// session is the state of one running scenario.
type session struct {
	world    *sim.World
	declared map[string]common.Address
}

// opFunc runs a step and returns a short note for the report.
type opFunc func(s *session, st Step) (string, error)

var ops map[string]opFunc

func init() {
	ops = map[string]opFunc{
		"add_liquidity":  opAddLiquidity,
		"advance_blocks": opAdvanceBlocks,
		"advance_time":   opAdvanceTime,
		"transfer":       opTransfer,
		"approve":        opApprove,
		"transfer_from":  opTransferFrom,
		"buy":            opBuy,
		"sell":           opSell,
		"add_lp":         opAddLP(func(w *sim.World) addLPFunc { return w.AddLP }),
		"add_lp_weth":    opAddLP(func(w *sim.World) addLPFunc { return w.AddLPWethFirst }),
		"remove_lp":      opRemoveLP,
		"set_weth_limit": opSetWethLimit,
		"force_lp":       opForceLP,
		"multisend":      opMultisend,

		"exclude_from_fees":         adminOp(func(s *session, caller, addr common.Address) error { return s.world.Token.ExcludeFromPayingFees(caller, addr) }),
		"include_to_fees":           adminOp(func(s *session, caller, addr common.Address) error { return s.world.Token.IncludeToPayingFees(caller, addr) }),
		"exclude_from_distribution": adminOp(func(s *session, caller, addr common.Address) error { return s.world.Token.ExcludeFromFeesDistribution(caller, addr) }),
		"include_to_distribution":   adminOp(func(s *session, caller, addr common.Address) error { return s.world.Token.IncludeToFeesDistribution(caller, addr) }),
		"remove_sell_restrictions":  adminOp(func(s *session, caller, addr common.Address) error { return s.world.Token.RemoveRestrictionsOnSell(caller, addr) }),
		"impose_sell_restrictions":  adminOp(func(s *session, caller, addr common.Address) error { return s.world.Token.ImposeRestrictionsOnSell(caller, addr) }),
		"set_default_lp":            adminOp(func(s *session, caller, addr common.Address) error { return s.world.Token.SetDefaultLpMintAddress(caller, addr) }),
		"set_marketing":             adminOp(func(s *session, caller, addr common.Address) error { return s.world.Token.SetMarketingAddress(caller, addr) }),
	}
}

// address resolves name, falling back to def when name is empty.
func (s *session) address(name, def string) (common.Address, error) {
	if name == "" {
		name = def
	}
	if name == "" {
		return common.Address{}, fmt.Errorf("%w: missing", ErrUnknownAccount)
	}
	return resolve(s.world, s.declared, name)
}

func (s *session) tokens(st string, holder common.Address) (amount.Amount, error) {
	return parseAmount(st, s.world.Token.Decimals(), s.world.Token.BalanceOf(holder))
}

func (s *session) native(st string, holder common.Address) (amount.Amount, error) {
	return parseAmount(st, nativeDecimals, s.world.WETH.NativeBalance(holder))
}

func (s *session) format(v amount.Amount) string {
	return v.Format(int32(s.world.Token.Decimals()))
}

func adminOp(fn func(s *session, caller, addr common.Address) error) opFunc {
	return func(s *session, st Step) (string, error) {
		caller, err := s.address(st.From, "admin")
		if err != nil {
			return "", err
		}
		addr, err := s.address(st.Account, "")
		if err != nil {
			return "", err
		}
		return addr.Hex(), fn(s, caller, addr)
	}
}

func opAddLiquidity(s *session, st Step) (string, error) {
	caller, err := s.address(st.From, "admin")
	if err != nil {
		return "", err
	}
	value, err := s.native(st.Value, caller)
	if err != nil {
		return "", err
	}
	lp, err := s.world.Token.AddLiquidity(caller, value)
	if err != nil {
		return "", err
	}
	return "lp=" + lp.Format(nativeDecimals), nil
}

func opAdvanceBlocks(s *session, st Step) (string, error) {
	s.world.Chain.AdvanceBlocks(st.Blocks)
	return fmt.Sprintf("block=%d", s.world.Chain.BlockNumber()), nil
}

func opAdvanceTime(s *session, st Step) (string, error) {
	if st.Duration < 0 {
		return "", fmt.Errorf("negative duration %s", st.Duration)
	}
	s.world.Chain.AdvanceTime(st.Duration)
	return "time=" + s.world.Chain.Now().UTC().Format(time.RFC3339), nil
}

func opTransfer(s *session, st Step) (string, error) {
	from, err := s.address(st.From, "")
	if err != nil {
		return "", err
	}
	to, err := s.address(st.To, "")
	if err != nil {
		return "", err
	}
	v, err := s.tokens(st.Amount, from)
	if err != nil {
		return "", err
	}
	return s.format(v), s.world.Token.Transfer(from, to, v)
}

func opApprove(s *session, st Step) (string, error) {
	owner, err := s.address(st.From, "")
	if err != nil {
		return "", err
	}
	spender, err := s.address(st.Spender, "")
	if err != nil {
		return "", err
	}
	v, err := s.tokens(st.Amount, owner)
	if err != nil {
		return "", err
	}
	return s.format(v), s.world.Token.Approve(owner, spender, v)
}

func opTransferFrom(s *session, st Step) (string, error) {
	spender, err := s.address(st.Spender, "")
	if err != nil {
		return "", err
	}
	from, err := s.address(st.From, "")
	if err != nil {
		return "", err
	}
	to, err := s.address(st.To, "")
	if err != nil {
		return "", err
	}
	v, err := s.tokens(st.Amount, from)
	if err != nil {
		return "", err
	}
	return s.format(v), s.world.Token.TransferFrom(spender, from, to, v)
}

func opBuy(s *session, st Step) (string, error) {
	buyer, err := s.address(st.From, "")
	if err != nil {
		return "", err
	}
	value, err := s.native(st.Value, buyer)
	if err != nil {
		return "", err
	}
	before := s.world.Token.BalanceOf(buyer)
	if err := s.world.Buy(buyer, value); err != nil {
		return "", err
	}
	return "received=" + s.format(s.world.Token.BalanceOf(buyer).SubFloor(before)), nil
}

func opSell(s *session, st Step) (string, error) {
	seller, err := s.address(st.From, "")
	if err != nil {
		return "", err
	}
	v, err := s.tokens(st.Amount, seller)
	if err != nil {
		return "", err
	}
	before := s.world.WETH.NativeBalance(seller)
	if err := s.world.Sell(seller, v); err != nil {
		return "", err
	}
	return "received=" + s.world.WETH.NativeBalance(seller).SubFloor(before).Format(nativeDecimals), nil
}

type addLPFunc func(provider common.Address, tokens amount.Amount) (amount.Amount, error)

// opAddLP adds liquidity through add. add_lp pays the token side into the
// pair first, add_lp_weth the WETH side.
func opAddLP(add func(w *sim.World) addLPFunc) opFunc {
	return func(s *session, st Step) (string, error) {
		provider, err := s.address(st.From, "")
		if err != nil {
			return "", err
		}
		v, err := s.tokens(st.Amount, provider)
		if err != nil {
			return "", err
		}
		lp, err := add(s.world)(provider, v)
		if err != nil {
			return "", err
		}
		return "lp=" + lp.Format(nativeDecimals), nil
	}
}

func opRemoveLP(s *session, st Step) (string, error) {
	provider, err := s.address(st.From, "")
	if err != nil {
		return "", err
	}
	pair := s.world.Pair()
	lp, err := parseAmount(st.Amount, pair.Decimals(), pair.BalanceOf(provider))
	if err != nil {
		return "", err
	}
	return "lp=" + lp.Format(int32(pair.Decimals())), s.world.RemoveLP(provider, lp)
}

func opSetWethLimit(s *session, st Step) (string, error) {
	caller, err := s.address(st.From, "admin")
	if err != nil {
		return "", err
	}
	v, err := parseAmount(st.Value, nativeDecimals, s.world.Token.WethLimitForLpFee())
	if err != nil {
		return "", err
	}
	return v.Format(nativeDecimals), s.world.Token.SetWethLimitForLpFee(caller, v)
}

func opForceLP(s *session, st Step) (string, error) {
	caller, err := s.address(st.From, "admin")
	if err != nil {
		return "", err
	}
	inj, err := s.world.Token.ForceLpFeesDistribute(caller)
	if err != nil {
		return "", err
	}
	if inj == nil {
		return "nothing due", nil
	}
	return fmt.Sprintf("sold=%s liquidity=%s", s.format(inj.Sold), inj.Liquidity.Format(nativeDecimals)), nil
}

func opMultisend(s *session, st Step) (string, error) {
	sender, err := s.address(st.From, "")
	if err != nil {
		return "", err
	}
	balance := s.world.Token.BalanceOf(sender)
	recipients := make([]common.Address, len(st.Recipients))
	amounts := make([]amount.Amount, len(st.Amounts))
	for i := range st.Recipients {
		if recipients[i], err = s.address(st.Recipients[i], ""); err != nil {
			return "", err
		}
	}
	for i := range st.Amounts {
		if amounts[i], err = parseAmount(st.Amounts[i], s.world.Token.Decimals(), balance); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("recipients=%d", len(recipients)), s.world.Token.Multisend(sender, recipients, amounts)
}
