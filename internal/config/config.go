package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/dex"
	"github.com/LeJamon/goExilon/internal/core/fees"
	"github.com/LeJamon/goExilon/internal/core/token"
	"github.com/LeJamon/goExilon/internal/sim"
)

// nativeDecimals is the precision of WETH and of the USD reference token.
const nativeDecimals = 18

// Config represents the complete exilon configuration
type Config struct {
	Token         TokenConfig         `toml:"token" mapstructure:"token"`
	Fees          FeesConfig          `toml:"fees" mapstructure:"fees"`
	Throttle      ThrottleConfig      `toml:"throttle" mapstructure:"throttle"`
	Burn          BurnConfig          `toml:"burn" mapstructure:"burn"`
	AutoLiquidity AutoLiquidityConfig `toml:"auto_liquidity" mapstructure:"auto_liquidity"`
	Dex           DexConfig           `toml:"dex" mapstructure:"dex"`

	// Persistence
	Storage StorageConfig `toml:"storage" mapstructure:"storage"`
	Journal JournalConfig `toml:"journal" mapstructure:"journal"`

	Simulation SimulationConfig `toml:"simulation" mapstructure:"simulation"`

	// Internal fields for configuration management
	configPath string `toml:"-" mapstructure:"-"`
	envPath    string `toml:"-" mapstructure:"-"`
}

// TokenConfig represents the [token] section
type TokenConfig struct {
	Name     string `toml:"name" mapstructure:"name"`
	Symbol   string `toml:"symbol" mapstructure:"symbol"`
	Decimals uint8  `toml:"decimals" mapstructure:"decimals"`

	// TotalSupply is in whole tokens
	TotalSupply      string `toml:"total_supply" mapstructure:"total_supply"`
	LiquidityPercent uint64 `toml:"liquidity_percent" mapstructure:"liquidity_percent"`

	// TransferFeeUSD is the flat fee of peer transfers, in USD
	TransferFeeUSD string `toml:"transfer_fee_usd" mapstructure:"transfer_fee_usd"`
}

// FeesConfig represents the [fees] section: the base tiers paid by buys and
// sells, and the sell decay schedule on top of them.
type FeesConfig struct {
	Liquidity    uint64 `toml:"liquidity" mapstructure:"liquidity"`
	Burn         uint64 `toml:"burn" mapstructure:"burn"`
	Distribution uint64 `toml:"distribution" mapstructure:"distribution"`
	Marketing    uint64 `toml:"marketing" mapstructure:"marketing"`

	SellDecay SellDecayConfig `toml:"sell_decay" mapstructure:"sell_decay"`
}

// SellDecayConfig represents the [fees.sell_decay] section
type SellDecayConfig struct {
	Windows           []DecayWindowConfig `toml:"windows" mapstructure:"windows"`
	FloorExtra        uint64              `toml:"floor_extra" mapstructure:"floor_extra"`
	FloorBigSellExtra uint64              `toml:"floor_big_sell_extra" mapstructure:"floor_big_sell_extra"`
	BigSellPercent    uint64              `toml:"big_sell_percent" mapstructure:"big_sell_percent"`
}

// DecayWindowConfig is one [[fees.sell_decay.windows]] entry
type DecayWindowConfig struct {
	Until        time.Duration `toml:"until" mapstructure:"until"`
	Extra        uint64        `toml:"extra" mapstructure:"extra"`
	BigSellExtra uint64        `toml:"big_sell_extra" mapstructure:"big_sell_extra"`
}

// ThrottleConfig represents the [throttle] section. Caps are in WETH.
type ThrottleConfig struct {
	WindowBlocks uint64 `toml:"window_blocks" mapstructure:"window_blocks"`
	Windows      uint64 `toml:"windows" mapstructure:"windows"`
	FirstCap     string `toml:"first_cap" mapstructure:"first_cap"`
	CapStep      string `toml:"cap_step" mapstructure:"cap_step"`
}

// BurnConfig represents the [burn] section
type BurnConfig struct {
	CapPercent uint64 `toml:"cap_percent" mapstructure:"cap_percent"`
}

// AutoLiquidityConfig represents the [auto_liquidity] section
type AutoLiquidityConfig struct {
	// WethLimitForLpFee is the WETH value the fee pool must reach before a
	// sell or transfer injects it into the pair
	WethLimitForLpFee string `toml:"weth_limit_for_lp_fee" mapstructure:"weth_limit_for_lp_fee"`
}

// DexConfig represents the [dex] section
type DexConfig struct {
	FeeNumerator   uint64 `toml:"fee_numerator" mapstructure:"fee_numerator"`
	FeeDenominator uint64 `toml:"fee_denominator" mapstructure:"fee_denominator"`

	// USD reference pair seeded at deploy time. A zero usd_reserve deploys
	// no USD pair and disables the peer transfer fee.
	USDReserve     string `toml:"usd_reserve" mapstructure:"usd_reserve"`
	USDWethReserve string `toml:"usd_weth_reserve" mapstructure:"usd_weth_reserve"`
}

// SimulationConfig represents the [simulation] section
type SimulationConfig struct {
	Funding     string `toml:"funding" mapstructure:"funding"`
	GenesisTime string `toml:"genesis_time" mapstructure:"genesis_time"`

	// Parallel bounds the number of scenarios run at once
	Parallel int `toml:"parallel" mapstructure:"parallel"`

	// SnapshotEvery stores a state snapshot every n steps; 0 stores only
	// the final state
	SnapshotEvery int `toml:"snapshot_every" mapstructure:"snapshot_every"`
}

// ConfigPaths holds the paths to configuration files
type ConfigPaths struct {
	Main string // Path to main config file (exilon.toml)
	Env  string // Path to the dotenv file (.env), optional
}

// DefaultConfigPaths returns the default configuration file paths
func DefaultConfigPaths() ConfigPaths {
	return ConfigPaths{
		Main: "exilon.toml",
		Env:  ".env",
	}
}

// ConfigPathsFromDir returns configuration paths for a specific directory
func ConfigPathsFromDir(configDir string) ConfigPaths {
	return ConfigPaths{
		Main: filepath.Join(configDir, "exilon.toml"),
		Env:  filepath.Join(configDir, ".env"),
	}
}

// GetConfigPath returns the path to the main configuration file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// GetEnvPath returns the path of the dotenv file that was looked up
func (c *Config) GetEnvPath() string {
	return c.envPath
}

// TokenParams converts the token, fee, throttle, burn and auto liquidity
// sections into the token's launch parameters.
func (c *Config) TokenParams() (token.Config, error) {
	dec := int32(c.Token.Decimals)
	supply, err := amount.Parse(c.Token.TotalSupply, dec)
	if err != nil {
		return token.Config{}, fmt.Errorf("token.total_supply: %w", err)
	}
	transferFee, err := amount.Parse(c.Token.TransferFeeUSD, nativeDecimals)
	if err != nil {
		return token.Config{}, fmt.Errorf("token.transfer_fee_usd: %w", err)
	}
	first, err := amount.Parse(c.Throttle.FirstCap, nativeDecimals)
	if err != nil {
		return token.Config{}, fmt.Errorf("throttle.first_cap: %w", err)
	}
	step, err := amount.Parse(c.Throttle.CapStep, nativeDecimals)
	if err != nil {
		return token.Config{}, fmt.Errorf("throttle.cap_step: %w", err)
	}
	limit, err := amount.Parse(c.AutoLiquidity.WethLimitForLpFee, nativeDecimals)
	if err != nil {
		return token.Config{}, fmt.Errorf("auto_liquidity.weth_limit_for_lp_fee: %w", err)
	}

	base := fees.Tiers{
		Liquidity:    c.Fees.Liquidity,
		Burn:         c.Fees.Burn,
		Distribution: c.Fees.Distribution,
		Marketing:    c.Fees.Marketing,
	}
	schedule := fees.Schedule{
		Base:              base,
		FloorExtra:        c.Fees.SellDecay.FloorExtra,
		FloorBigSellExtra: c.Fees.SellDecay.FloorBigSellExtra,
		BigSellPercent:    c.Fees.SellDecay.BigSellPercent,
	}
	for _, w := range c.Fees.SellDecay.Windows {
		schedule.Windows = append(schedule.Windows, fees.DecayWindow{
			Until:        w.Until,
			Extra:        w.Extra,
			BigSellExtra: w.BigSellExtra,
		})
	}

	return token.Config{
		Name:             c.Token.Name,
		Symbol:           c.Token.Symbol,
		Decimals:         c.Token.Decimals,
		TotalSupply:      supply,
		LiquidityPercent: c.Token.LiquidityPercent,
		BurnCapPercent:   c.Burn.CapPercent,
		Fees:             base,
		Schedule:         schedule,
		Throttle: fees.Throttle{
			WindowBlocks: c.Throttle.WindowBlocks,
			Windows:      c.Throttle.Windows,
			First:        first,
			Step:         step,
		},
		TransferFeeUSD:    transferFee,
		WethLimitForLpFee: limit,
	}, nil
}

// SimOptions returns the deployment options of a simulated world.
func (c *Config) SimOptions() (sim.Options, error) {
	tokenCfg, err := c.TokenParams()
	if err != nil {
		return sim.Options{}, err
	}
	usd, err := amount.Parse(c.Dex.USDReserve, nativeDecimals)
	if err != nil {
		return sim.Options{}, fmt.Errorf("dex.usd_reserve: %w", err)
	}
	usdWeth, err := amount.Parse(c.Dex.USDWethReserve, nativeDecimals)
	if err != nil {
		return sim.Options{}, fmt.Errorf("dex.usd_weth_reserve: %w", err)
	}
	funding, err := amount.Parse(c.Simulation.Funding, nativeDecimals)
	if err != nil {
		return sim.Options{}, fmt.Errorf("simulation.funding: %w", err)
	}
	genesis, err := c.GetGenesisTime()
	if err != nil {
		return sim.Options{}, err
	}

	return sim.Options{
		Token:          tokenCfg,
		DexFee:         dex.Fee{Numerator: c.Dex.FeeNumerator, Denominator: c.Dex.FeeDenominator},
		USDReserve:     usd,
		USDWethReserve: usdWeth,
		Funding:        funding,
		GenesisTime:    genesis,
	}, nil
}

// GetGenesisTime parses simulation.genesis_time (RFC 3339). An empty value
// means the chain default.
func (c *Config) GetGenesisTime() (time.Time, error) {
	if c.Simulation.GenesisTime == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.Simulation.GenesisTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("simulation.genesis_time: %w", err)
	}
	return t, nil
}
