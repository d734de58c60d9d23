package chain

import (
	"sync"
	"time"
)

// DefaultGenesisTime is the wall-clock time of block 1 unless overridden.
var DefaultGenesisTime = time.Date(2021, 10, 1, 0, 0, 0, 0, time.UTC)

// Chain is the execution context shared by every simulated contract: the
// undo journal, the block/time clock and the event log.
//
// Contracts wrap each public mutating call in Atomic. Atomic calls nest; when
// a unit fails, every write made since that unit began is undone, including
// writes made by other contracts it called into. Chain itself does not lock
// inside Atomic; concurrent callers go through Call.
type Chain struct {
	mu sync.Mutex

	journal Journal
	depth   int

	block uint64
	now   time.Time

	events []Event
	seq    uint64
}

// Option configures a Chain.
type Option func(*Chain)

// WithGenesisTime sets the clock of block 1.
func WithGenesisTime(t time.Time) Option {
	return func(c *Chain) { c.now = t }
}

// WithStartBlock sets the initial block number.
func WithStartBlock(n uint64) Option {
	return func(c *Chain) { c.block = n }
}

// New creates a chain at block 1.
func New(opts ...Option) *Chain {
	c := &Chain{
		block: 1,
		now:   DefaultGenesisTime,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Journal exposes the undo journal to contracts.
func (c *Chain) Journal() *Journal {
	return &c.journal
}

// Atomic runs fn as one all-or-nothing unit.
func (c *Chain) Atomic(fn func() error) (err error) {
	mark := c.journal.Mark()
	c.depth++
	defer func() {
		c.depth--
		if r := recover(); r != nil {
			c.journal.RevertTo(mark)
			if c.depth == 0 {
				c.journal.reset()
			}
			panic(r)
		}
		if err != nil {
			c.journal.RevertTo(mark)
		}
		if c.depth == 0 {
			c.journal.reset()
		}
	}()
	return fn()
}

// Call serializes fn against every other Call on this chain and runs it
// atomically.
func (c *Chain) Call(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Atomic(fn)
}

// View runs fn under the chain lock without opening a unit.
func (c *Chain) View(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// InUnit reports whether an atomic unit is open.
func (c *Chain) InUnit() bool {
	return c.depth > 0
}

// BlockNumber returns the current block.
func (c *Chain) BlockNumber() uint64 {
	return c.block
}

// Now returns the timestamp of the current block.
func (c *Chain) Now() time.Time {
	return c.now
}

// AdvanceBlocks mines n empty blocks. Block time is advanced separately.
func (c *Chain) AdvanceBlocks(n uint64) {
	c.block += n
}

// AdvanceTime moves the block timestamp forward by d.
func (c *Chain) AdvanceTime(d time.Duration) {
	c.now = c.now.Add(d)
}
