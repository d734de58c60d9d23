package fees

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goExilon/internal/core/amount"
)

// ErrBuyLimitExceeded is returned when a buy spends more than the current
// window allows.
var ErrBuyLimitExceeded = errors.New("buy exceeds early trade limit")

// Throttle caps the native amount spent per buy during the first
// Windows*WindowBlocks blocks after liquidity is added. The cap of window i
// is First + i*Step.
type Throttle struct {
	WindowBlocks uint64        `toml:"window_blocks" mapstructure:"window_blocks"`
	Windows      uint64        `toml:"windows" mapstructure:"windows"`
	First        amount.Amount `toml:"-" mapstructure:"-"`
	Step         amount.Amount `toml:"-" mapstructure:"-"`
}

// DefaultThrottle returns four 60-block windows capped at 0.1, 0.3, 0.5 and
// 0.7 of the native asset (18 decimals).
func DefaultThrottle() Throttle {
	return Throttle{
		WindowBlocks: 60,
		Windows:      4,
		First:        amount.MustParse("0.1", 18),
		Step:         amount.MustParse("0.2", 18),
	}
}

// Duration returns the number of restricted blocks.
func (t Throttle) Duration() uint64 {
	return t.WindowBlocks * t.Windows
}

// Active reports whether elapsed blocks are still inside the restricted period.
func (t Throttle) Active(elapsed uint64) bool {
	return elapsed < t.Duration()
}

// Window returns the index of the window containing elapsed.
func (t Throttle) Window(elapsed uint64) uint64 {
	if t.WindowBlocks == 0 {
		return t.Windows
	}
	return elapsed / t.WindowBlocks
}

// Cap returns the largest permitted buy at elapsed blocks. ok is false once
// the restricted period is over.
func (t Throttle) Cap(elapsed uint64) (limit amount.Amount, ok bool) {
	if !t.Active(elapsed) {
		return amount.Zero, false
	}
	steps, err := t.Step.Mul(amount.New(t.Window(elapsed)))
	if err != nil {
		return amount.Zero, false
	}
	limit, err = t.First.Add(steps)
	if err != nil {
		return amount.Zero, false
	}
	return limit, true
}

// Check rejects a buy spending in at elapsed blocks above the window cap.
func (t Throttle) Check(elapsed uint64, in amount.Amount) error {
	limit, ok := t.Cap(elapsed)
	if !ok {
		return nil
	}
	if in.Gt(limit) {
		return fmt.Errorf("%w: %s > %s in window %d", ErrBuyLimitExceeded, in, limit, t.Window(elapsed))
	}
	return nil
}
