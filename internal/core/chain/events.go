package chain

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
)

// EventKind names a contract event.
type EventKind string

const (
	EventTransfer          EventKind = "Transfer"
	EventApproval          EventKind = "Approval"
	EventDeposit           EventKind = "Deposit"
	EventWithdrawal        EventKind = "Withdrawal"
	EventMint              EventKind = "Mint"
	EventBurn              EventKind = "Burn"
	EventSwap              EventKind = "Swap"
	EventSync              EventKind = "Sync"
	EventPairCreated       EventKind = "PairCreated"
	EventRoleGranted       EventKind = "RoleGranted"
	EventRoleRevoked       EventKind = "RoleRevoked"
	EventLiquidityAdded    EventKind = "LiquidityAdded"
	EventLiquidityInjected EventKind = "LiquidityInjected"
	EventFeesRouted        EventKind = "FeesRouted"
	EventConfigChanged     EventKind = "ConfigChanged"
)

// Event is a log entry emitted by a contract during a committed unit.
type Event struct {
	Seq      uint64
	Block    uint64
	Contract common.Address
	Kind     EventKind
	From     common.Address
	To       common.Address
	Amount   amount.Amount
	Note     string
}

// Emit appends an event. Events emitted inside a reverted unit are dropped.
func (c *Chain) Emit(e Event) {
	Set(&c.journal, &c.seq, c.seq+1)
	e.Seq = c.seq
	e.Block = c.block
	Push(&c.journal, &c.events, e)
}

// Events returns a copy of the event log starting at sequence number from.
func (c *Chain) Events(from uint64) []Event {
	var out []Event
	for _, e := range c.events {
		if e.Seq >= from {
			out = append(out, e)
		}
	}
	return out
}

// EventCount returns the number of committed events.
func (c *Chain) EventCount() int {
	return len(c.events)
}
