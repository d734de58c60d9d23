package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets all default values that match the launch parameters
func setDefaults(v *viper.Viper) {
	// Token defaults
	v.SetDefault("token.name", "Exilon")
	v.SetDefault("token.symbol", "EXL")
	v.SetDefault("token.decimals", 6)
	v.SetDefault("token.total_supply", "5000000000000")
	v.SetDefault("token.liquidity_percent", 40)
	v.SetDefault("token.transfer_fee_usd", "1")

	// Base fee tiers [liquidity, burn, distribution, marketing]
	v.SetDefault("fees.liquidity", 8)
	v.SetDefault("fees.burn", 1)
	v.SetDefault("fees.distribution", 1)
	v.SetDefault("fees.marketing", 2)

	// Sell decay: +6/+8 for 30 minutes, +3/+5 until the first hour
	v.SetDefault("fees.sell_decay.windows", []map[string]interface{}{
		{"until": 30 * time.Minute, "extra": 6, "big_sell_extra": 8},
		{"until": 60 * time.Minute, "extra": 3, "big_sell_extra": 5},
	})
	v.SetDefault("fees.sell_decay.floor_extra", 0)
	v.SetDefault("fees.sell_decay.floor_big_sell_extra", 2)
	v.SetDefault("fees.sell_decay.big_sell_percent", 90)

	// Early trade throttle: 4 windows of 60 blocks, 0.1 to 0.7 WETH
	v.SetDefault("throttle.window_blocks", 60)
	v.SetDefault("throttle.windows", 4)
	v.SetDefault("throttle.first_cap", "0.1")
	v.SetDefault("throttle.cap_step", "0.2")

	v.SetDefault("burn.cap_percent", 60)

	v.SetDefault("auto_liquidity.weth_limit_for_lp_fee", "1")

	// Exchange defaults (0.25% swap fee)
	v.SetDefault("dex.fee_numerator", 9975)
	v.SetDefault("dex.fee_denominator", 10000)
	v.SetDefault("dex.usd_reserve", "1000")
	v.SetDefault("dex.usd_weth_reserve", "10000")

	// Storage defaults
	v.SetDefault("storage.backend", "pebble")
	v.SetDefault("storage.path", "data/snapshots")
	v.SetDefault("storage.cache_size", 128)
	v.SetDefault("storage.compression", "lz4")

	// Journal defaults
	v.SetDefault("journal.driver", "sqlite")
	v.SetDefault("journal.dsn", "data/events.db")
	v.SetDefault("journal.max_open_conns", 1)

	// Simulation defaults
	v.SetDefault("simulation.funding", "1000000000000000")
	v.SetDefault("simulation.genesis_time", "2021-10-01T00:00:00Z")
	v.SetDefault("simulation.parallel", 4)
	v.SetDefault("simulation.snapshot_every", 0)
}
