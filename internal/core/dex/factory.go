package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/chain"
)

type pairKey struct {
	token0, token1 common.Address
}

// Factory creates pairs and resolves tokens by address.
type Factory struct {
	chain   *chain.Chain
	address common.Address
	fee     Fee

	tokens map[common.Address]Token
	pairs  map[pairKey]*Pair
	byAddr map[common.Address]*Pair
	all    []*Pair
}

func NewFactory(c *chain.Chain, address common.Address, fee Fee) *Factory {
	return &Factory{
		chain:   c,
		address: address,
		fee:     fee,
		tokens:  make(map[common.Address]Token),
		pairs:   make(map[pairKey]*Pair),
		byAddr:  make(map[common.Address]*Pair),
	}
}

func (f *Factory) Address() common.Address { return f.address }
func (f *Factory) Fee() Fee                { return f.fee }

// Register makes a token known to pairs created by this factory.
func (f *Factory) Register(t Token) {
	f.tokens[t.Address()] = t
}

// Token resolves a registered token. Pairs are tokens too.
func (f *Factory) Token(addr common.Address) (Token, error) {
	if t, ok := f.tokens[addr]; ok {
		return t, nil
	}
	if p, ok := f.byAddr[addr]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownToken, addr.Hex())
}

// CreatePair deploys the pair of tokenA and tokenB.
func (f *Factory) CreatePair(tokenA, tokenB common.Address) (*Pair, error) {
	var pair *Pair
	err := f.chain.Atomic(func() error {
		token0, token1, err := SortTokens(tokenA, tokenB)
		if err != nil {
			return err
		}
		key := pairKey{token0, token1}
		if _, exists := f.pairs[key]; exists {
			return fmt.Errorf("%w: %s/%s", ErrPairExists, token0.Hex(), token1.Hex())
		}
		t0, err := f.Token(token0)
		if err != nil {
			return err
		}
		t1, err := f.Token(token1)
		if err != nil {
			return err
		}

		addr := chain.DeriveAddress(f.address, token0.Bytes(), token1.Bytes())
		pair = newPair(f.chain, addr, t0, t1, f.fee)

		chain.SetMap(f.chain.Journal(), f.pairs, key, pair)
		chain.SetMap(f.chain.Journal(), f.byAddr, addr, pair)
		chain.Push(f.chain.Journal(), &f.all, pair)
		f.chain.Emit(chain.Event{
			Contract: f.address,
			Kind:     chain.EventPairCreated,
			From:     token0,
			To:       token1,
			Note:     addr.Hex(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// GetPair returns the pair of two tokens in either order.
func (f *Factory) GetPair(tokenA, tokenB common.Address) (*Pair, bool) {
	token0, token1, err := SortTokens(tokenA, tokenB)
	if err != nil {
		return nil, false
	}
	p, ok := f.pairs[pairKey{token0, token1}]
	return p, ok
}

// IsPair reports whether addr is a pair created by this factory.
func (f *Factory) IsPair(addr common.Address) bool {
	_, ok := f.byAddr[addr]
	return ok
}

// PairAt resolves a pair by its address.
func (f *Factory) PairAt(addr common.Address) (*Pair, bool) {
	p, ok := f.byAddr[addr]
	return p, ok
}

// AllPairs returns the pairs in creation order.
func (f *Factory) AllPairs() []*Pair {
	out := make([]*Pair, len(f.all))
	copy(out, f.all)
	return out
}
