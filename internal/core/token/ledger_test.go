package token

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
)

var (
	alice = chain.AddressFromName("alice")
	bob   = chain.AddressFromName("bob")
	carol = chain.AddressFromName("carol")
	vault = chain.AddressFromName("vault")
)

func newTestLedger(t *testing.T) (*chain.Chain, *ledger) {
	t.Helper()
	c := chain.New()
	return c, newLedger(c.Journal())
}

func requireLedgerSupply(t *testing.T, l *ledger, expected amount.Amount) {
	t.Helper()
	got, err := l.supply()
	require.NoError(t, err)
	require.Equal(t, expected, got)
}

func TestLedgerCreditDebit(t *testing.T) {
	c, l := newTestLedger(t)
	require.NoError(t, c.Atomic(func() error {
		require.NoError(t, l.credit(alice, false, amount.New(600)))
		require.NoError(t, l.credit(bob, false, amount.New(400)))
		require.NoError(t, l.credit(vault, true, amount.New(1000)))
		return nil
	}))

	assert.Equal(t, amount.New(600), l.balanceOf(alice, false))
	assert.Equal(t, amount.New(400), l.balanceOf(bob, false))
	assert.Equal(t, amount.New(1000), l.balanceOf(vault, true))
	requireLedgerSupply(t, l, amount.New(2000))

	require.NoError(t, c.Atomic(func() error { return l.debit(alice, false, amount.New(100)) }))
	assert.Equal(t, amount.New(500), l.balanceOf(alice, false))
	requireLedgerSupply(t, l, amount.New(1900))

	err := c.Atomic(func() error { return l.debit(bob, false, amount.New(401)) })
	require.ErrorIs(t, err, ErrAmountExceedsBalance)
	err = c.Atomic(func() error { return l.debit(vault, true, amount.New(1001)) })
	require.ErrorIs(t, err, ErrAmountExceedsBalance)
}

func TestLedgerDistribute(t *testing.T) {
	c, l := newTestLedger(t)
	require.NoError(t, c.Atomic(func() error {
		require.NoError(t, l.credit(alice, false, amount.New(750)))
		require.NoError(t, l.credit(bob, false, amount.New(250)))
		require.NoError(t, l.credit(vault, true, amount.New(500)))
		return nil
	}))

	var ok bool
	require.NoError(t, c.Atomic(func() error {
		var err error
		ok, err = l.distribute(amount.New(100))
		return err
	}))
	require.True(t, ok)

	// Pro rata over the not-fixed side only
	assert.Equal(t, amount.New(825), l.balanceOf(alice, false))
	assert.Equal(t, amount.New(275), l.balanceOf(bob, false))
	assert.Equal(t, amount.New(500), l.balanceOf(vault, true))
	requireLedgerSupply(t, l, amount.New(1600))
}

func TestLedgerDistributeWithoutHolders(t *testing.T) {
	c, l := newTestLedger(t)
	require.NoError(t, c.Atomic(func() error { return l.credit(vault, true, amount.New(500)) }))

	ok, err := l.distribute(amount.New(100))
	require.NoError(t, err)
	assert.False(t, ok)
	requireLedgerSupply(t, l, amount.New(500))
}

func TestLedgerRoundingNeverInflates(t *testing.T) {
	c, l := newTestLedger(t)
	require.NoError(t, c.Atomic(func() error {
		require.NoError(t, l.credit(alice, false, amount.New(1)))
		require.NoError(t, l.credit(bob, false, amount.New(2)))
		_, err := l.distribute(amount.New(7))
		return err
	}))

	for i := 0; i < 20; i++ {
		require.NoError(t, c.Atomic(func() error {
			if err := l.debit(alice, false, amount.New(1)); err != nil {
				return err
			}
			return l.credit(carol, false, amount.New(1))
		}))
		require.NoError(t, c.Atomic(func() error {
			if err := l.debit(carol, false, amount.New(1)); err != nil {
				return err
			}
			return l.credit(alice, false, amount.New(1))
		}))
	}

	sum := amount.Zero
	for _, addr := range []common.Address{alice, bob, carol} {
		var err error
		sum, err = sum.Add(l.balanceOf(addr, false))
		require.NoError(t, err)
	}
	assert.True(t, sum.Lte(l.notFixedSupply), "balances %s exceed supply %s", sum, l.notFixedSupply)
	requireLedgerSupply(t, l, amount.New(10))
}

func TestLedgerFullDebitClearsShares(t *testing.T) {
	c, l := newTestLedger(t)
	require.NoError(t, c.Atomic(func() error {
		require.NoError(t, l.credit(alice, false, amount.New(3)))
		require.NoError(t, l.credit(bob, false, amount.New(3)))
		_, err := l.distribute(amount.New(1))
		return err
	}))

	bal := l.balanceOf(alice, false)
	require.NoError(t, c.Atomic(func() error { return l.debit(alice, false, bal) }))

	_, held := l.raw[alice]
	assert.False(t, held)
	assert.True(t, l.balanceOf(alice, false).IsZero())
}

func TestLedgerFixUnfix(t *testing.T) {
	c, l := newTestLedger(t)
	require.NoError(t, c.Atomic(func() error {
		require.NoError(t, l.credit(alice, false, amount.New(700)))
		require.NoError(t, l.credit(bob, false, amount.New(300)))
		return nil
	}))

	require.NoError(t, c.Atomic(func() error { return l.fix(alice) }))
	assert.Equal(t, amount.New(700), l.balanceOf(alice, true))
	assert.True(t, l.balanceOf(alice, false).IsZero())
	assert.Equal(t, amount.New(300), l.notFixedSupply)

	// A fixed holder gets nothing from a distribution
	require.NoError(t, c.Atomic(func() error {
		_, err := l.distribute(amount.New(30))
		return err
	}))
	assert.Equal(t, amount.New(700), l.balanceOf(alice, true))
	assert.Equal(t, amount.New(330), l.balanceOf(bob, false))

	// Shares round down on the way back in
	require.NoError(t, c.Atomic(func() error { return l.unfix(alice) }))
	assert.True(t, amount.New(700).SubFloor(l.balanceOf(alice, false)).Lte(amount.New(1)))
	assert.Equal(t, amount.New(330), l.balanceOf(bob, false))
	assert.True(t, l.fixedSupply.IsZero())
	requireLedgerSupply(t, l, amount.New(1030))
}

func TestLedgerRevert(t *testing.T) {
	c, l := newTestLedger(t)
	require.NoError(t, c.Atomic(func() error { return l.credit(alice, false, amount.New(100)) }))

	err := c.Atomic(func() error {
		require.NoError(t, l.credit(bob, false, amount.New(50)))
		if _, err := l.distribute(amount.New(15)); err != nil {
			return err
		}
		return l.debit(alice, false, amount.New(1000))
	})
	require.ErrorIs(t, err, ErrAmountExceedsBalance)

	assert.Equal(t, amount.New(100), l.balanceOf(alice, false))
	assert.True(t, l.balanceOf(bob, false).IsZero())
	requireLedgerSupply(t, l, amount.New(100))
}
