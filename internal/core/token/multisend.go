package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
)

// Multisend transfers amounts[i] from sender to recipients[i] for every i.
// Either every transfer happens or none does; each one pays its own fees.
func (e *Exilon) Multisend(sender common.Address, recipients []common.Address, amounts []amount.Amount) error {
	if len(recipients) != len(amounts) {
		return fmt.Errorf("%w: %d recipients, %d amounts", ErrLengthMismatch, len(recipients), len(amounts))
	}
	return e.chain.Atomic(func() error {
		for i, to := range recipients {
			if err := e.transfer(sender, to, amounts[i]); err != nil {
				return fmt.Errorf("multisend %d to %s: %w", i, to.Hex(), err)
			}
		}
		return nil
	})
}
