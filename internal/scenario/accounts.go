package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/sim"
)

// Names that resolve to deployment addresses. Distribution addresses are
// d1 to d8.
var wellKnown = map[string]bool{
	"admin":         true,
	"marketing":     true,
	"default_lp":    true,
	"weth_receiver": true,
	"usd_provider":  true,
	"token":         true,
	"pair":          true,
	"router":        true,
	"dead":          true,
	"zero":          true,
}

func isWellKnown(name string) bool {
	if wellKnown[name] {
		return true
	}
	_, ok := distributionIndex(name)
	return ok
}

func distributionIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, "d") {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 1 || n > sim.DistributionAccounts {
		return 0, false
	}
	return n - 1, true
}

func isHexAddress(name string) bool {
	return strings.HasPrefix(name, "0x") && common.IsHexAddress(name)
}

// resolve maps an account name to its address in w.
func resolve(w *sim.World, declared map[string]common.Address, name string) (common.Address, error) {
	if addr, ok := declared[name]; ok {
		return addr, nil
	}
	if i, ok := distributionIndex(name); ok {
		return w.Accounts.Distribution[i], nil
	}
	switch name {
	case "admin":
		return w.Accounts.Admin, nil
	case "marketing":
		return w.Token.MarketingAddress(), nil
	case "default_lp":
		return w.Token.DefaultLpMintAddress(), nil
	case "weth_receiver":
		return w.Accounts.WethReceiver, nil
	case "usd_provider":
		return w.Accounts.USDProvider, nil
	case "token":
		return w.Token.Address(), nil
	case "pair":
		return w.Pair().Address(), nil
	case "router":
		return w.Router.Address(), nil
	case "dead":
		return chain.DeadAddress, nil
	case "zero":
		return chain.ZeroAddress, nil
	}
	if isHexAddress(name) {
		return common.HexToAddress(name), nil
	}
	return common.Address{}, fmt.Errorf("%w: %s", ErrUnknownAccount, name)
}

// parseAmount reads a decimal amount in whole units, or NN% of balance.
func parseAmount(s string, decimals uint8, balance amount.Amount) (amount.Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return amount.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	if pct, ok := strings.CutSuffix(s, "%"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(pct), 10, 64)
		if err != nil || n > 100 {
			return amount.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		return balance.Percent(n)
	}
	v, err := amount.Parse(s, int32(decimals))
	if err != nil {
		return amount.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	return v, nil
}
