package config

import (
	"fmt"

	"github.com/LeJamon/goExilon/internal/core/fees"
)

// ValidateConfig performs comprehensive validation on the complete configuration
func ValidateConfig(config *Config) error {
	// Validate token metadata and supply split
	if err := validateToken(&config.Token); err != nil {
		return fmt.Errorf("token validation failed: %w", err)
	}

	// Validate fee tiers and the sell decay schedule
	if err := validateFees(&config.Fees); err != nil {
		return fmt.Errorf("fees validation failed: %w", err)
	}

	if err := validateThrottle(&config.Throttle); err != nil {
		return fmt.Errorf("throttle validation failed: %w", err)
	}

	if config.Burn.CapPercent > fees.Denominator {
		return fmt.Errorf("burn validation failed: cap_percent must be at most %d, got %d", fees.Denominator, config.Burn.CapPercent)
	}

	if err := validateDex(&config.Dex); err != nil {
		return fmt.Errorf("dex validation failed: %w", err)
	}

	// Validate persistence
	if err := config.Storage.Validate(); err != nil {
		return fmt.Errorf("storage validation failed: %w", err)
	}
	if err := config.Journal.Validate(); err != nil {
		return fmt.Errorf("journal validation failed: %w", err)
	}

	if err := validateSimulation(&config.Simulation); err != nil {
		return fmt.Errorf("simulation validation failed: %w", err)
	}

	// Cross-validation checks: every amount must parse at its precision
	opts, err := config.SimOptions()
	if err != nil {
		return fmt.Errorf("amount validation failed: %w", err)
	}
	if err := opts.Token.Validate(); err != nil {
		return fmt.Errorf("token parameters validation failed: %w", err)
	}

	return nil
}

func validateToken(t *TokenConfig) error {
	if t.Name == "" {
		return fmt.Errorf("name is required")
	}
	if t.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if t.Decimals > 18 {
		return fmt.Errorf("decimals must be at most 18, got %d", t.Decimals)
	}
	if t.LiquidityPercent > fees.Denominator {
		return fmt.Errorf("liquidity_percent must be at most %d, got %d", fees.Denominator, t.LiquidityPercent)
	}
	return nil
}

func validateFees(f *FeesConfig) error {
	total := f.Liquidity + f.Burn + f.Distribution + f.Marketing
	if total > fees.Denominator {
		return fmt.Errorf("tiers add up to %d%%", total)
	}

	decay := f.SellDecay
	if decay.BigSellPercent == 0 || decay.BigSellPercent > fees.Denominator {
		return fmt.Errorf("big_sell_percent must be between 1 and %d, got %d", fees.Denominator, decay.BigSellPercent)
	}

	var last int64
	for i, w := range decay.Windows {
		if w.Until <= 0 {
			return fmt.Errorf("sell_decay window %d: until must be positive", i)
		}
		if int64(w.Until) <= last {
			return fmt.Errorf("sell_decay window %d: windows must be sorted by until", i)
		}
		last = int64(w.Until)

		if total+w.BigSellExtra > fees.Denominator || total+w.Extra > fees.Denominator {
			return fmt.Errorf("sell_decay window %d: sell fees exceed 100%%", i)
		}
	}
	if total+decay.FloorBigSellExtra > fees.Denominator || total+decay.FloorExtra > fees.Denominator {
		return fmt.Errorf("sell_decay floor: sell fees exceed 100%%")
	}

	return nil
}

func validateThrottle(t *ThrottleConfig) error {
	if t.Windows > 0 && t.WindowBlocks == 0 {
		return fmt.Errorf("window_blocks must be positive when windows is set")
	}
	return nil
}

func validateDex(d *DexConfig) error {
	if d.FeeDenominator == 0 {
		return fmt.Errorf("fee_denominator must be positive")
	}
	if d.FeeNumerator == 0 || d.FeeNumerator > d.FeeDenominator {
		return fmt.Errorf("fee_numerator must be between 1 and %d, got %d", d.FeeDenominator, d.FeeNumerator)
	}
	return nil
}

func validateSimulation(s *SimulationConfig) error {
	if s.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1, got %d", s.Parallel)
	}
	if s.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot_every must be non-negative, got %d", s.SnapshotEvery)
	}
	return nil
}
