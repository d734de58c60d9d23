package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
)

// rawScale is the number of raw shares per token unit handed out when the
// not-fixed side is empty.
var rawScale = amount.Pow10(18)

// ledger keeps fixed balances literally and not-fixed balances as raw
// shares of notFixedSupply:
//
//	balanceOf(a) = raw[a] * notFixedSupply / rawSupply
//
// Distributing raises notFixedSupply without touching any share, which
// credits every not-fixed holder pro rata in O(1). Credits round shares
// down and debits round them up, so the sum of balances never exceeds the
// supply. totalSupply == sum(fixed) + notFixedSupply holds exactly.
type ledger struct {
	j *chain.Journal

	fixed          map[common.Address]amount.Amount
	raw            map[common.Address]amount.Amount
	fixedSupply    amount.Amount
	notFixedSupply amount.Amount
	rawSupply      amount.Amount
}

func newLedger(j *chain.Journal) *ledger {
	return &ledger{
		j:     j,
		fixed: make(map[common.Address]amount.Amount),
		raw:   make(map[common.Address]amount.Amount),
	}
}

func (l *ledger) balanceOf(addr common.Address, isFixed bool) amount.Amount {
	if isFixed {
		return l.fixed[addr]
	}
	return l.notFixedBalance(l.raw[addr])
}

func (l *ledger) notFixedBalance(raw amount.Amount) amount.Amount {
	if raw.IsZero() || l.rawSupply.IsZero() {
		return amount.Zero
	}
	bal, err := raw.MulDiv(l.notFixedSupply, l.rawSupply)
	if err != nil {
		return amount.Zero
	}
	return bal
}

func (l *ledger) credit(addr common.Address, isFixed bool, v amount.Amount) error {
	if v.IsZero() {
		return nil
	}
	if isFixed {
		bal, err := l.fixed[addr].Add(v)
		if err != nil {
			return err
		}
		supply, err := l.fixedSupply.Add(v)
		if err != nil {
			return err
		}
		chain.SetMap(l.j, l.fixed, addr, bal)
		chain.Set(l.j, &l.fixedSupply, supply)
		return nil
	}

	share, err := l.sharesFor(v)
	if err != nil {
		return err
	}
	raw, err := l.raw[addr].Add(share)
	if err != nil {
		return err
	}
	rawSupply, err := l.rawSupply.Add(share)
	if err != nil {
		return err
	}
	supply, err := l.notFixedSupply.Add(v)
	if err != nil {
		return err
	}
	chain.SetMap(l.j, l.raw, addr, raw)
	chain.Set(l.j, &l.rawSupply, rawSupply)
	chain.Set(l.j, &l.notFixedSupply, supply)
	return nil
}

// sharesFor returns floor(v * rawSupply / notFixedSupply).
func (l *ledger) sharesFor(v amount.Amount) (amount.Amount, error) {
	if l.rawSupply.IsZero() || l.notFixedSupply.IsZero() {
		return v.Mul(rawScale)
	}
	return v.MulDiv(l.rawSupply, l.notFixedSupply)
}

func (l *ledger) debit(addr common.Address, isFixed bool, v amount.Amount) error {
	if v.IsZero() {
		return nil
	}
	if isFixed {
		bal, err := l.fixed[addr].Sub(v)
		if err != nil {
			return fmt.Errorf("%w: %s holds %s, wants %s", ErrAmountExceedsBalance, addr.Hex(), l.fixed[addr], v)
		}
		supply, err := l.fixedSupply.Sub(v)
		if err != nil {
			return err
		}
		chain.SetMap(l.j, l.fixed, addr, bal)
		chain.Set(l.j, &l.fixedSupply, supply)
		return nil
	}

	raw := l.raw[addr]
	bal := l.notFixedBalance(raw)
	if v.Gt(bal) {
		return fmt.Errorf("%w: %s holds %s, wants %s", ErrAmountExceedsBalance, addr.Hex(), bal, v)
	}
	share := raw
	if v.Lt(bal) {
		up, err := v.MulDivUp(l.rawSupply, l.notFixedSupply)
		if err != nil {
			return err
		}
		share = amount.Min(up, raw)
	}
	rawSupply, err := l.rawSupply.Sub(share)
	if err != nil {
		return err
	}
	supply, err := l.notFixedSupply.Sub(v)
	if err != nil {
		return err
	}
	left, _ := raw.Sub(share)
	if left.IsZero() {
		chain.DeleteMap(l.j, l.raw, addr)
	} else {
		chain.SetMap(l.j, l.raw, addr, left)
	}
	chain.Set(l.j, &l.rawSupply, rawSupply)
	chain.Set(l.j, &l.notFixedSupply, supply)
	return nil
}

// distribute spreads d over the not-fixed holders. It reports false and
// changes nothing when there are none.
func (l *ledger) distribute(d amount.Amount) (bool, error) {
	if l.rawSupply.IsZero() {
		return false, nil
	}
	if d.IsZero() {
		return true, nil
	}
	supply, err := l.notFixedSupply.Add(d)
	if err != nil {
		return false, err
	}
	chain.Set(l.j, &l.notFixedSupply, supply)
	return true, nil
}

// fix converts addr's shares into a literal balance of the same value.
func (l *ledger) fix(addr common.Address) error {
	bal := l.balanceOf(addr, false)
	if err := l.debit(addr, false, bal); err != nil {
		return err
	}
	// A zero balance can still hold dust shares.
	if raw, ok := l.raw[addr]; ok {
		rawSupply, err := l.rawSupply.Sub(raw)
		if err != nil {
			return err
		}
		chain.DeleteMap(l.j, l.raw, addr)
		chain.Set(l.j, &l.rawSupply, rawSupply)
	}
	return l.credit(addr, true, bal)
}

// unfix converts addr's literal balance into shares of the same value.
func (l *ledger) unfix(addr common.Address) error {
	bal := l.fixed[addr]
	if err := l.debit(addr, true, bal); err != nil {
		return err
	}
	chain.DeleteMap(l.j, l.fixed, addr)
	return l.credit(addr, false, bal)
}

// supply returns sum(fixed) + notFixedSupply.
func (l *ledger) supply() (amount.Amount, error) {
	return l.fixedSupply.Add(l.notFixedSupply)
}
