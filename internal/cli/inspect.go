package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/storage/snapshot"
)

var (
	inspectBlock   uint64
	inspectHolders int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [run-id]",
	Short: "Show stored state snapshots",
	Long: `Inspect reads the snapshot store. Without arguments it lists the runs
that have snapshots; with a run id it prints the latest snapshot of that
run, or the one taken at --block.

Example:
    exilon inspect
    exilon inspect 0b7e5d0c-4c39-4f43-8a55-2f2f0d9e1c4a --block 240`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().Uint64Var(&inspectBlock, "block", 0, "block of the snapshot (default: latest)")
	inspectCmd.Flags().IntVar(&inspectHolders, "holders", 20, "accounts to print, 0 for all")
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	p, err := newProvider(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	store, err := p.SnapshotStore()
	if err != nil {
		return fmt.Errorf("failed to open snapshot store: %w", err)
	}
	ctx := runContext(cmd)
	out := output(cmd)

	if len(args) == 0 {
		runs, err := store.Runs(ctx)
		if err != nil {
			return err
		}
		for _, run := range runs {
			blocks, err := store.Blocks(ctx, run)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s  %d snapshots\n", run, len(blocks))
		}
		return nil
	}

	var snap *snapshot.Snapshot
	if cmd.Flags().Changed("block") {
		snap, err = store.Get(ctx, args[0], inspectBlock)
	} else {
		snap, err = store.Latest(ctx, args[0])
	}
	if err != nil {
		return err
	}
	return printSnapshot(out, snap, inspectHolders)
}

func printSnapshot(out io.Writer, snap *snapshot.Snapshot, holders int) error {
	dec := int32(snap.Decimals)
	tokens := func(s string) string { return formatUnits(s, dec) }
	native := func(s string) string { return formatUnits(s, 18) }

	fmt.Fprintf(out, "--- Snapshot %s ---\n", snap.Run)
	fmt.Fprintf(out, "Step:           %d\n", snap.Step)
	fmt.Fprintf(out, "Block:          %d\n", snap.Block)
	fmt.Fprintf(out, "Time:           %s\n", time.Unix(snap.Time, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "Token:          %s (%s), %d decimals\n", snap.Name, snap.Symbol, snap.Decimals)
	fmt.Fprintf(out, "Total supply:   %s\n", tokens(snap.TotalSupply))
	fmt.Fprintf(out, "Liquidity:      %s\n", snap.State)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Pool reserves:  %s %s / %s WETH\n", tokens(snap.TokenReserve), snap.Symbol, native(snap.WethReserve))
	fmt.Fprintf(out, "LP supply:      %s\n", native(snap.LPSupply))
	fmt.Fprintf(out, "Fee pool:       %s\n", tokens(snap.FeePool))
	fmt.Fprintf(out, "WETH limit:     %s\n", native(snap.WethLimit))
	fmt.Fprintf(out, "Burned:         %s\n", tokens(snap.BurnBalance))
	fmt.Fprintln(out)

	rows := snap.Accounts
	if holders > 0 && len(rows) > holders {
		rows = rows[:holders]
	}
	fmt.Fprintf(out, "%-42s %24s %24s  %s\n", "Account", "Balance", "LP", "Flags")
	for _, a := range rows {
		flags := ""
		if a.Fixed {
			flags += "F"
		}
		if a.ExcludedFromFees {
			flags += "X"
		}
		if a.NoSellRestriction {
			flags += "S"
		}
		fmt.Fprintf(out, "%-42s %24s %24s  %s\n", a.Address, tokens(a.Balance), native(a.LP), flags)
	}
	if len(rows) < len(snap.Accounts) {
		fmt.Fprintf(out, "... %d more accounts\n", len(snap.Accounts)-len(rows))
	}
	fmt.Fprintln(out, "Flags: F fixed, X excluded from fees, S no sell restriction")
	return nil
}

// formatUnits renders a base unit string as a decimal; unparsable input is
// returned unchanged.
func formatUnits(s string, decimals int32) string {
	v, err := amount.ParseUnits(s)
	if err != nil {
		return s
	}
	return v.Format(decimals)
}
