package registry

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/chain"
)

// OrderedSet is an address set with O(1) membership and indexed access.
// Removal swaps the last element into the freed slot, so indexes are stable
// only while membership is unchanged. Every mutation is journaled.
type OrderedSet struct {
	journal *chain.Journal
	items   []common.Address
	index   map[common.Address]int
}

func NewOrderedSet(j *chain.Journal) *OrderedSet {
	return &OrderedSet{
		journal: j,
		index:   make(map[common.Address]int),
	}
}

func (s *OrderedSet) Contains(addr common.Address) bool {
	_, ok := s.index[addr]
	return ok
}

func (s *OrderedSet) Len() int {
	return len(s.items)
}

// At returns the element at position i.
func (s *OrderedSet) At(i int) (common.Address, error) {
	if i < 0 || i >= len(s.items) {
		return common.Address{}, ErrIndexOutOfRange
	}
	return s.items[i], nil
}

// Values returns a copy of the elements in index order.
func (s *OrderedSet) Values() []common.Address {
	out := make([]common.Address, len(s.items))
	copy(out, s.items)
	return out
}

// Add inserts addr and reports whether it was absent.
func (s *OrderedSet) Add(addr common.Address) bool {
	if s.Contains(addr) {
		return false
	}
	chain.SetMap(s.journal, s.index, addr, len(s.items))
	chain.Push(s.journal, &s.items, addr)
	return true
}

// Remove deletes addr and reports whether it was present.
func (s *OrderedSet) Remove(addr common.Address) bool {
	i, ok := s.index[addr]
	if !ok {
		return false
	}
	last := len(s.items) - 1
	moved := s.items[last]

	s.items[i] = moved
	s.index[moved] = i
	s.items = s.items[:last]
	delete(s.index, addr)

	s.journal.Append(func() {
		s.items = append(s.items, moved)
		s.items[i] = addr
		s.index[moved] = last
		s.index[addr] = i
	})
	return true
}
