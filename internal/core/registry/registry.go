package registry

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/chain"
)

var (
	ErrAlreadyExcluded = errors.New("already excluded")
	ErrAlreadyIncluded = errors.New("already included")
	ErrAlreadyRemoved  = errors.New("already removed")
	ErrAlreadyImposed  = errors.New("already imposed")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Registry classifies addresses along three independent axes:
//   - fixed: excluded from pro-rata fee distribution, balance held literally
//   - excluded from paying fees
//   - sell restrictions removed (skips the early trade throttle and the
//     decaying sell fee)
type Registry struct {
	fixed         *OrderedSet
	feeExcluded   *OrderedSet
	noRestriction *OrderedSet
}

func New(j *chain.Journal) *Registry {
	return &Registry{
		fixed:         NewOrderedSet(j),
		feeExcluded:   NewOrderedSet(j),
		noRestriction: NewOrderedSet(j),
	}
}

func (r *Registry) IsFixed(addr common.Address) bool {
	return r.fixed.Contains(addr)
}

func (r *Registry) IsExcludedFromPayingFees(addr common.Address) bool {
	return r.feeExcluded.Contains(addr)
}

func (r *Registry) IsNoRestrictionOnSell(addr common.Address) bool {
	return r.noRestriction.Contains(addr)
}

// Fix moves addr out of fee distribution.
func (r *Registry) Fix(addr common.Address) error {
	if !r.fixed.Add(addr) {
		return ErrAlreadyExcluded
	}
	return nil
}

// Unfix returns addr to fee distribution.
func (r *Registry) Unfix(addr common.Address) error {
	if !r.fixed.Remove(addr) {
		return ErrAlreadyIncluded
	}
	return nil
}

func (r *Registry) ExcludeFromPayingFees(addr common.Address) error {
	if !r.feeExcluded.Add(addr) {
		return ErrAlreadyExcluded
	}
	return nil
}

func (r *Registry) IncludeToPayingFees(addr common.Address) error {
	if !r.feeExcluded.Remove(addr) {
		return ErrAlreadyIncluded
	}
	return nil
}

func (r *Registry) RemoveRestrictionsOnSell(addr common.Address) error {
	if !r.noRestriction.Add(addr) {
		return ErrAlreadyRemoved
	}
	return nil
}

func (r *Registry) ImposeRestrictionsOnSell(addr common.Address) error {
	if !r.noRestriction.Remove(addr) {
		return ErrAlreadyImposed
	}
	return nil
}

// Fixed enumerates the fixed addresses.
func (r *Registry) Fixed() *OrderedSet { return r.fixed }

// ExcludedFromPayingFees enumerates the fee-excluded addresses.
func (r *Registry) ExcludedFromPayingFees() *OrderedSet { return r.feeExcluded }

// NoRestrictionOnSell enumerates the addresses with sell restrictions removed.
func (r *Registry) NoRestrictionOnSell() *OrderedSet { return r.noRestriction }
