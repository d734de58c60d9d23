package registry

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/core/chain"
)

func addrs(names ...string) []common.Address {
	out := make([]common.Address, len(names))
	for i, n := range names {
		out[i] = chain.AddressFromName(n)
	}
	return out
}

func TestOrderedSet(t *testing.T) {
	c := chain.New()
	s := NewOrderedSet(c.Journal())
	a := addrs("a", "b", "c", "d")

	for _, x := range a {
		require.True(t, s.Add(x))
	}
	require.False(t, s.Add(a[0]))
	require.Equal(t, a, s.Values())

	t.Run("swap and pop keeps indexes consistent", func(t *testing.T) {
		require.True(t, s.Remove(a[1]))
		require.False(t, s.Remove(a[1]))
		assert.Equal(t, []common.Address{a[0], a[3], a[2]}, s.Values())
		for i, x := range s.Values() {
			got, err := s.At(i)
			require.NoError(t, err)
			assert.Equal(t, x, got)
			assert.True(t, s.Contains(x))
		}
		_, err := s.At(3)
		require.ErrorIs(t, err, ErrIndexOutOfRange)
		_, err = s.At(-1)
		require.ErrorIs(t, err, ErrIndexOutOfRange)
	})

	t.Run("reverted mutations restore order", func(t *testing.T) {
		before := s.Values()
		err := c.Atomic(func() error {
			s.Remove(a[0])
			s.Add(a[1])
			s.Remove(a[2])
			return errors.New("abort")
		})
		require.Error(t, err)
		assert.Equal(t, before, s.Values())
		for i, x := range before {
			got, err := s.At(i)
			require.NoError(t, err)
			assert.Equal(t, x, got)
		}
		assert.False(t, s.Contains(a[1]))
	})
}

func TestRegistryTransitions(t *testing.T) {
	c := chain.New()
	r := New(c.Journal())
	x := chain.AddressFromName("holder")

	tests := []struct {
		name        string
		add, remove func(common.Address) error
		has         func(common.Address) bool
		errAdd      error
		errRemove   error
	}{
		{"fee distribution", r.Fix, r.Unfix, r.IsFixed, ErrAlreadyExcluded, ErrAlreadyIncluded},
		{"paying fees", r.ExcludeFromPayingFees, r.IncludeToPayingFees, r.IsExcludedFromPayingFees, ErrAlreadyExcluded, ErrAlreadyIncluded},
		{"sell restrictions", r.RemoveRestrictionsOnSell, r.ImposeRestrictionsOnSell, r.IsNoRestrictionOnSell, ErrAlreadyRemoved, ErrAlreadyImposed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.remove(x), tt.errRemove)

			require.NoError(t, tt.add(x))
			assert.True(t, tt.has(x))
			require.ErrorIs(t, tt.add(x), tt.errAdd)

			require.NoError(t, tt.remove(x))
			assert.False(t, tt.has(x))
			require.ErrorIs(t, tt.remove(x), tt.errRemove)
		})
	}

	t.Run("axes are independent", func(t *testing.T) {
		require.NoError(t, r.Fix(x))
		assert.False(t, r.IsExcludedFromPayingFees(x))
		assert.False(t, r.IsNoRestrictionOnSell(x))
		assert.Equal(t, 1, r.Fixed().Len())
		assert.Equal(t, 0, r.ExcludedFromPayingFees().Len())
		assert.Equal(t, 0, r.NoRestrictionOnSell().Len())
	})
}
