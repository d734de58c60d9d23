package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/token"
)

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()

	// Create test main config file
	mainConfigContent := `
[token]
symbol = "TEXL"
total_supply = "1000000"

[fees]
liquidity = 5

[[fees.sell_decay.windows]]
until = "15m"
extra = 4
big_sell_extra = 6

[burn]
cap_percent = 50

[storage]
backend = "leveldb"
path = "/tmp/test/snapshots"
`

	mainConfigPath := filepath.Join(tempDir, "exilon.toml")
	err := os.WriteFile(mainConfigPath, []byte(mainConfigContent), 0644)
	require.NoError(t, err)

	config, err := LoadConfig(ConfigPaths{Main: mainConfigPath})
	require.NoError(t, err)
	require.NotNil(t, config)

	// Verify file values override the defaults
	assert.Equal(t, "TEXL", config.Token.Symbol)
	assert.Equal(t, "Exilon", config.Token.Name)
	assert.Equal(t, uint64(5), config.Fees.Liquidity)
	assert.Equal(t, uint64(2), config.Fees.Marketing)
	assert.Equal(t, uint64(50), config.Burn.CapPercent)
	assert.Equal(t, "leveldb", config.Storage.Backend)
	assert.Equal(t, "/tmp/test/snapshots", config.Storage.Path)
	assert.Equal(t, "lz4", config.Storage.Compression)
	assert.Equal(t, mainConfigPath, config.GetConfigPath())

	require.Len(t, config.Fees.SellDecay.Windows, 1)
	assert.Equal(t, 15*time.Minute, config.Fees.SellDecay.Windows[0].Until)

	// Verify the conversion to token parameters
	params, err := config.TokenParams()
	require.NoError(t, err)
	assert.Equal(t, amount.Units(1_000_000, 6), params.TotalSupply)
	assert.Equal(t, uint64(5), params.Fees.Liquidity)
	assert.Equal(t, params.Fees, params.Schedule.Base)
	assert.Equal(t, uint64(4), params.Schedule.Windows[0].Extra)
	assert.Equal(t, uint64(50), params.BurnCapPercent)
}

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig(ConfigPaths{})
	require.NoError(t, err)

	params, err := config.TokenParams()
	require.NoError(t, err)
	assert.Equal(t, token.DefaultConfig(), params)

	opts, err := config.SimOptions()
	require.NoError(t, err)
	assert.Equal(t, uint64(9975), opts.DexFee.Numerator)
	assert.Equal(t, amount.Units(1_000, 18), opts.USDReserve)
	assert.Equal(t, amount.Units(10_000, 18), opts.USDWethReserve)
	assert.Equal(t, time.Date(2021, 10, 1, 0, 0, 0, 0, time.UTC), opts.GenesisTime)
}

func TestLoadConfigFromDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exilon.toml")
	require.NoError(t, os.WriteFile(path, []byte("[token]\nsymbol = \"DIR\"\n"), 0644))

	config, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "DIR", config.Token.Symbol)
	assert.Equal(t, path, config.GetConfigPath())
	assert.Equal(t, filepath.Join(dir, ".env"), config.GetEnvPath())

	require.NoError(t, os.WriteFile(path, []byte("[token]\nsymbol = \"NEW\"\n"), 0644))
	reloaded, err := ReloadConfig(config)
	require.NoError(t, err)
	assert.Equal(t, "NEW", reloaded.Token.Symbol)
	assert.Equal(t, "DIR", config.Token.Symbol)

	defaults, err := LoadDefaultConfig()
	require.NoError(t, err)
	assert.Equal(t, "EXL", defaults.Token.Symbol)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(ConfigPaths{Main: filepath.Join(t.TempDir(), "missing.toml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file does not exist")
}

func TestLoadConfigEnvironment(t *testing.T) {
	tempDir := t.TempDir()

	envPath := filepath.Join(tempDir, ".env")
	envContent := "EXILON_TOKEN_SYMBOL=ENV\nEXILON_BURN_CAP_PERCENT=10\n"
	require.NoError(t, os.WriteFile(envPath, []byte(envContent), 0644))
	t.Cleanup(func() {
		os.Unsetenv("EXILON_TOKEN_SYMBOL")
	})

	// Variables already set win over the dotenv file
	t.Setenv("EXILON_BURN_CAP_PERCENT", "30")
	t.Setenv("EXILON_AUTO_LIQUIDITY_WETH_LIMIT_FOR_LP_FEE", "2.5")

	config, err := LoadConfig(ConfigPaths{Env: envPath})
	require.NoError(t, err)

	assert.Equal(t, "ENV", config.Token.Symbol)
	assert.Equal(t, uint64(30), config.Burn.CapPercent)
	assert.Equal(t, envPath, config.GetEnvPath())

	params, err := config.TokenParams()
	require.NoError(t, err)
	assert.Equal(t, amount.MustParse("2.5", 18), params.WethLimitForLpFee)
}

func TestConfigValidation(t *testing.T) {
	config, err := LoadConfig(ConfigPaths{})
	require.NoError(t, err)
	assert.NoError(t, ValidateConfig(config))
}

func TestConfigValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		want   string
	}{
		{"empty symbol", func(c *Config) { c.Token.Symbol = "" }, "symbol is required"},
		{"liquidity percent", func(c *Config) { c.Token.LiquidityPercent = 101 }, "liquidity_percent"},
		{"tiers", func(c *Config) { c.Fees.Liquidity = 97 }, "tiers add up to 101%"},
		{"big sell percent", func(c *Config) { c.Fees.SellDecay.BigSellPercent = 0 }, "big_sell_percent"},
		{"unsorted windows", func(c *Config) {
			c.Fees.SellDecay.Windows[1].Until = c.Fees.SellDecay.Windows[0].Until
		}, "sorted"},
		{"decaying window too high", func(c *Config) { c.Fees.SellDecay.Windows[0].BigSellExtra = 90 }, "exceed 100%"},
		{"throttle", func(c *Config) { c.Throttle.WindowBlocks = 0 }, "window_blocks"},
		{"burn cap", func(c *Config) { c.Burn.CapPercent = 120 }, "cap_percent"},
		{"dex fee", func(c *Config) { c.Dex.FeeNumerator = 10001 }, "fee_numerator"},
		{"storage backend", func(c *Config) { c.Storage.Backend = "nudb" }, "invalid storage backend"},
		{"storage path", func(c *Config) { c.Storage.Path = "" }, "storage path is required"},
		{"compression", func(c *Config) { c.Storage.Compression = "zstd" }, "invalid compression"},
		{"journal driver", func(c *Config) { c.Journal.Driver = "mysql" }, "invalid journal driver"},
		{"journal dsn", func(c *Config) { c.Journal.DSN = "" }, "journal dsn is required"},
		{"parallel", func(c *Config) { c.Simulation.Parallel = 0 }, "parallel"},
		{"supply precision", func(c *Config) { c.Token.TotalSupply = "1.0000001" }, "token.total_supply"},
		{"throttle cap", func(c *Config) { c.Throttle.FirstCap = "abc" }, "throttle.first_cap"},
		{"genesis time", func(c *Config) { c.Simulation.GenesisTime = "yesterday" }, "simulation.genesis_time"},
		{"window raises fee", func(c *Config) { c.Fees.SellDecay.Windows[1].Extra = 7 }, "raises the fee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfig(ConfigPaths{})
			require.NoError(t, err)

			tt.modify(config)
			err = ValidateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestJournalDisabled(t *testing.T) {
	j := JournalConfig{}
	assert.False(t, j.Enabled())
	assert.NoError(t, j.Validate())
}

func TestSaveExampleConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exilon.toml")
	require.NoError(t, SaveExampleConfig(path))

	config, err := LoadConfig(ConfigPaths{Main: path})
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/exilon/snapshots", config.Storage.Path)

	params, err := config.TokenParams()
	require.NoError(t, err)
	assert.Equal(t, token.DefaultConfig(), params)
}
