// Package scenario runs scripted trading sessions against a fresh Exilon
// deployment. A scenario is a YAML file naming extra accounts, their native
// funding and a list of steps; every step is one token or exchange
// operation with an optional expected result code.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownOp is returned for a step whose op is not supported
	ErrUnknownOp = errors.New("unknown op")

	// ErrUnknownAccount is returned when a step names an account that is
	// neither declared nor well known
	ErrUnknownAccount = errors.New("unknown account")

	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyScenario = errors.New("scenario has no steps")
)

// Scenario is the file format of a scripted session.
type Scenario struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Accounts    []string          `yaml:"accounts,omitempty"`
	Fund        map[string]string `yaml:"fund,omitempty"`
	Steps       []Step            `yaml:"steps"`
}

// Step is one operation. Which fields matter depends on Op:
//
//	add_liquidity        from (admin), value
//	advance_blocks       blocks
//	advance_time         duration
//	transfer             from, to, amount
//	approve              from, spender, amount
//	transfer_from        spender, from, to, amount
//	buy                  from, value
//	sell                 from, amount
//	add_lp               from, amount
//	add_lp_weth          from, amount (WETH paid into the pair first)
//	remove_lp            from, amount (LP tokens)
//	exclude_from_fees    from (admin), account
//	include_to_fees      from (admin), account
//	exclude_from_distribution, include_to_distribution,
//	remove_sell_restrictions, impose_sell_restrictions,
//	set_default_lp, set_marketing
//	                     from (admin), account
//	set_weth_limit       from (admin), value
//	force_lp             from (admin)
//	multisend            from, recipients, amounts
//
// Token amounts and values are decimal strings in whole units, or NN% of
// the current balance of the paying account.
type Step struct {
	Op          string        `yaml:"op"`
	From        string        `yaml:"from,omitempty"`
	To          string        `yaml:"to,omitempty"`
	Spender     string        `yaml:"spender,omitempty"`
	Account     string        `yaml:"account,omitempty"`
	Amount      string        `yaml:"amount,omitempty"`
	Value       string        `yaml:"value,omitempty"`
	Blocks      uint64        `yaml:"blocks,omitempty"`
	Duration    time.Duration `yaml:"duration,omitempty"`
	Recipients  []string      `yaml:"recipients,omitempty"`
	Amounts     []string      `yaml:"amounts,omitempty"`
	ExpectError string        `yaml:"expect_error,omitempty"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the ops and the account names. Amounts are checked when
// the step runs, against the balances of that moment.
func (sc *Scenario) Validate() error {
	if sc.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(sc.Steps) == 0 {
		return ErrEmptyScenario
	}

	declared := make(map[string]bool, len(sc.Accounts))
	for _, name := range sc.Accounts {
		if name == "" {
			return fmt.Errorf("empty account name")
		}
		if isWellKnown(name) {
			return fmt.Errorf("account %q shadows a deployment account", name)
		}
		if declared[name] {
			return fmt.Errorf("account %q declared twice", name)
		}
		declared[name] = true
	}
	known := func(name string) bool {
		return name == "" || declared[name] || isWellKnown(name) || isHexAddress(name)
	}

	for name := range sc.Fund {
		if !declared[name] && !isWellKnown(name) {
			return fmt.Errorf("fund: %w: %s", ErrUnknownAccount, name)
		}
	}

	for i, st := range sc.Steps {
		if _, ok := ops[st.Op]; !ok {
			return fmt.Errorf("step %d: %w: %q", i, ErrUnknownOp, st.Op)
		}
		names := append([]string{st.From, st.To, st.Spender, st.Account}, st.Recipients...)
		for _, name := range names {
			if !known(name) {
				return fmt.Errorf("step %d: %w: %s", i, ErrUnknownAccount, name)
			}
		}
		if st.Op == "multisend" && len(st.Recipients) != len(st.Amounts) {
			return fmt.Errorf("step %d: %d recipients for %d amounts", i, len(st.Recipients), len(st.Amounts))
		}
	}
	return nil
}
