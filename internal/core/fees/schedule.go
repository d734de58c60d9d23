package fees

import (
	"errors"
	"fmt"
	"time"

	"github.com/LeJamon/goExilon/internal/core/amount"
)

// DecayWindow adds Extra (or BigSellExtra for a big sell) to the liquidity
// share of sells that happen before Until has elapsed since liquidity was
// added.
type DecayWindow struct {
	Until        time.Duration `toml:"until" mapstructure:"until"`
	Extra        uint64        `toml:"extra" mapstructure:"extra"`
	BigSellExtra uint64        `toml:"big_sell_extra" mapstructure:"big_sell_extra"`
}

// Schedule maps time since liquidity was added to the sell tiers.
type Schedule struct {
	// Base is the tier set every sell starts from.
	Base Tiers `toml:"base" mapstructure:"base"`

	// Windows must be sorted by Until. Sells after the last window pay the
	// floor extras.
	Windows []DecayWindow `toml:"windows" mapstructure:"windows"`

	FloorExtra        uint64 `toml:"floor_extra" mapstructure:"floor_extra"`
	FloorBigSellExtra uint64 `toml:"floor_big_sell_extra" mapstructure:"floor_big_sell_extra"`

	// BigSellPercent: a sell of more than this share of the seller's
	// balance is a big sell.
	BigSellPercent uint64 `toml:"big_sell_percent" mapstructure:"big_sell_percent"`
}

var ErrInvalidSchedule = errors.New("invalid sell fee schedule")

// DefaultSchedule returns the launch schedule: +6/+8 for 30 minutes,
// +3/+5 until the first hour, +0/+2 afterwards; big sells are above 90%.
func DefaultSchedule() Schedule {
	return Schedule{
		Base: DefaultTiers(),
		Windows: []DecayWindow{
			{Until: 30 * time.Minute, Extra: 6, BigSellExtra: 8},
			{Until: 60 * time.Minute, Extra: 3, BigSellExtra: 5},
		},
		FloorExtra:        0,
		FloorBigSellExtra: 2,
		BigSellPercent:    90,
	}
}

func (s Schedule) Validate() error {
	if err := s.Base.Validate(); err != nil {
		return err
	}
	if s.BigSellPercent == 0 || s.BigSellPercent > Denominator {
		return fmt.Errorf("%w: big sell percent %d", ErrInvalidSchedule, s.BigSellPercent)
	}
	prev := time.Duration(0)
	prevExtra, prevBig := ^uint64(0), ^uint64(0)
	for i, w := range s.Windows {
		if w.Until <= prev {
			return fmt.Errorf("%w: window %d ends at %s", ErrInvalidSchedule, i, w.Until)
		}
		if w.Extra > prevExtra || w.BigSellExtra > prevBig {
			return fmt.Errorf("%w: window %d raises the fee", ErrInvalidSchedule, i)
		}
		if err := s.Base.WithExtraLiquidity(max(w.Extra, w.BigSellExtra)).Validate(); err != nil {
			return err
		}
		prev, prevExtra, prevBig = w.Until, w.Extra, w.BigSellExtra
	}
	if s.FloorExtra > prevExtra || s.FloorBigSellExtra > prevBig {
		return fmt.Errorf("%w: floor above the last window", ErrInvalidSchedule)
	}
	return nil
}

// IsBigSell reports whether selling value out of balance is a big sell.
func (s Schedule) IsBigSell(value, balance amount.Amount) bool {
	threshold, err := balance.MulDiv(amount.New(s.BigSellPercent), amount.New(Denominator))
	if err != nil {
		return true
	}
	return value.Gt(threshold)
}

// Extra returns the extra liquidity percentage at elapsed.
func (s Schedule) Extra(elapsed time.Duration, big bool) uint64 {
	for _, w := range s.Windows {
		if elapsed < w.Until {
			if big {
				return w.BigSellExtra
			}
			return w.Extra
		}
	}
	if big {
		return s.FloorBigSellExtra
	}
	return s.FloorExtra
}

// SellTiers returns the tiers for selling value out of balance at elapsed.
func (s Schedule) SellTiers(elapsed time.Duration, value, balance amount.Amount) Tiers {
	return s.Base.WithExtraLiquidity(s.Extra(elapsed, s.IsBigSell(value, balance)))
}
