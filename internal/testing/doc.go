// Package testing provides test infrastructure for Exilon token scenarios.
//
// It wraps a complete deployment (chain, exchange, USD reference pair, role
// table and token) behind a TestEnv with named accounts, so that scenario
// tests read like the operations they exercise.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: a deployed token with block and time control
//   - Account: deterministic named accounts
//   - Amount helpers: ETH, Tokens and USD unit conversions
//   - Snapshots: balances of every party before and after an operation
//   - Assertions: balance, tolerance and result code checks
//
// # Basic Usage
//
//	func TestBuy(t *testing.T) {
//	    env := jtx.NewTestEnv(t)
//	    env.AddLiquidity(jtx.ETH(10))
//	    env.AdvanceBlocks(env.ThrottleBlocks())
//
//	    buyer := env.Distribution[0]
//	    jtx.RequireSuccess(t, env.Buy(buyer, jtx.ETH(1)))
//	}
//
// # TestEnv
//
// NewTestEnv deploys the token with the launch configuration, seeds the
// USD/WETH pair with 1000 USD against 10000 WETH and sets the WETH
// receiver. Liquidity is not added; tests call AddLiquidity themselves so
// they can also cover the uninitialized state.
//
//	env := jtx.NewTestEnv(t, jtx.WithConfig(func(c *token.Config) {
//	    c.TransferFeeUSD = amount.Zero
//	}))
//	env.AddLiquidity(jtx.ETH(8_000_000_000_000))
//	env.AdvanceBlocks(240)
//	env.AdvanceTime(time.Hour)
//
// # Account
//
// Accounts are derived from their names, so the same name always yields the
// same address:
//
//	env.Admin, env.Marketing, env.DefaultLpMint, env.WethReceiver
//	env.Distribution[0] ... env.Distribution[7]
//	jtx.NewAccount("alice")
//
// # Assertions
//
//	jtx.RequireBalance(t, env, alice, jtx.Tokens(100))
//	jtx.RequireNear(t, expected, actual)
//	jtx.RequireResult(t, err, token.ResultOnlyOnce)
//	jtx.RequireSupply(t, env)
package testing
