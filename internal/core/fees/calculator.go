package fees

import (
	"errors"
	"fmt"

	"github.com/LeJamon/goExilon/internal/core/amount"
)

// Denominator is the fixed denominator of every fee percentage.
const Denominator = 100

// ErrTiersExceedAmount is returned when a tier set adds up to more than 100%.
var ErrTiersExceedAmount = errors.New("fee tiers exceed 100%")

// Tiers holds the integer percentages taken from a transfer.
type Tiers struct {
	Liquidity    uint64 `toml:"liquidity" mapstructure:"liquidity"`
	Burn         uint64 `toml:"burn" mapstructure:"burn"`
	Distribution uint64 `toml:"distribution" mapstructure:"distribution"`
	Marketing    uint64 `toml:"marketing" mapstructure:"marketing"`
}

// NoFee is the tier set of fee-excluded transfers.
var NoFee = Tiers{}

// DefaultTiers returns the buy and base sell tiers: 8% liquidity, 1% burn,
// 1% distribution, 2% marketing.
func DefaultTiers() Tiers {
	return Tiers{Liquidity: 8, Burn: 1, Distribution: 1, Marketing: 2}
}

// Total returns the sum of all percentages.
func (t Tiers) Total() uint64 {
	return t.Liquidity + t.Burn + t.Distribution + t.Marketing
}

// WithExtraLiquidity returns a copy with extra added to the liquidity share.
func (t Tiers) WithExtraLiquidity(extra uint64) Tiers {
	t.Liquidity += extra
	return t
}

func (t Tiers) Validate() error {
	if t.Total() > Denominator {
		return fmt.Errorf("%w: %d", ErrTiersExceedAmount, t.Total())
	}
	return nil
}

func (t Tiers) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", t.Liquidity, t.Burn, t.Distribution, t.Marketing)
}

// Split is the decomposition of a gross transfer amount.
type Split struct {
	Gross        amount.Amount
	Liquidity    amount.Amount
	Burn         amount.Amount
	Distribution amount.Amount
	Marketing    amount.Amount
	Net          amount.Amount
}

// Untaxed returns the split of a fee-free transfer.
func Untaxed(gross amount.Amount) Split {
	return Split{Gross: gross, Net: gross}
}

// Fees returns the sum of all fee components.
func (s Split) Fees() amount.Amount {
	total, _ := s.Gross.Sub(s.Net)
	return total
}

// IsZero reports whether nothing is taken from the transfer.
func (s Split) IsZero() bool {
	return s.Gross == s.Net
}

// Calculate splits gross by tiers. Each component is floored independently;
// the rounding remainder stays in Net.
func Calculate(gross amount.Amount, tiers Tiers) (Split, error) {
	if err := tiers.Validate(); err != nil {
		return Split{}, err
	}

	s := Split{Gross: gross}
	parts := []struct {
		dst *amount.Amount
		pct uint64
	}{
		{&s.Liquidity, tiers.Liquidity},
		{&s.Burn, tiers.Burn},
		{&s.Distribution, tiers.Distribution},
		{&s.Marketing, tiers.Marketing},
	}

	net := gross
	for _, p := range parts {
		v, err := gross.Percent(p.pct)
		if err != nil {
			return Split{}, err
		}
		*p.dst = v
		if net, err = net.Sub(v); err != nil {
			return Split{}, err
		}
	}
	s.Net = net
	return s, nil
}

// FlatFee takes a fixed marketing fee from gross. It returns
// ErrAmountBelowFee when gross is smaller than the fee.
func FlatFee(gross, fee amount.Amount) (Split, error) {
	net, err := gross.Sub(fee)
	if err != nil {
		return Split{}, ErrAmountBelowFee
	}
	return Split{Gross: gross, Marketing: fee, Net: net}, nil
}

// ErrAmountBelowFee is returned by FlatFee when the amount cannot cover the fee.
var ErrAmountBelowFee = errors.New("amount below flat fee")
