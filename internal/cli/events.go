package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/LeJamon/goExilon/internal/storage/eventlog"
)

var (
	eventsKind  string
	eventsFrom  uint64
	eventsLimit int
)

// eventsCmd represents the events command
var eventsCmd = &cobra.Command{
	Use:   "events [run-id]",
	Short: "Query the event journal",
	Long: `Events reads the SQL journal. Without arguments it lists the recorded
runs; with a run id it prints the events of that run in order.

Example:
    exilon events
    exilon events 0b7e5d0c-4c39-4f43-8a55-2f2f0d9e1c4a --kind FeesRouted --limit 50`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().StringVar(&eventsKind, "kind", "", "only events of this kind (e.g. Transfer, Swap, FeesRouted)")
	eventsCmd.Flags().Uint64Var(&eventsFrom, "from", 0, "first sequence number")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 0, "maximum number of events, 0 for all")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled() {
		return fmt.Errorf("no journal configured")
	}
	p, err := newProvider(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	journal, err := p.Journal()
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	ctx := runContext(cmd)
	out := output(cmd)

	if len(args) == 0 {
		runs, err := journal.Runs(ctx)
		if err != nil {
			return err
		}
		for _, r := range runs {
			outcome := r.Outcome
			if outcome == "" {
				outcome = "running"
			}
			fmt.Fprintf(out, "%s  %-24s %-8s %s\n", r.ID, r.Name, outcome, r.StartedAt.UTC().Format(time.RFC3339))
		}
		return nil
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}
	if _, err := journal.Run(ctx, id); err != nil {
		return err
	}
	records, err := journal.Events(ctx, id, eventlog.Filter{Kind: eventsKind, FromSeq: eventsFrom, Limit: eventsLimit})
	if err != nil {
		return err
	}
	for _, r := range records {
		line := fmt.Sprintf("%6d  block %-6d %-18s %s -> %s  %s", r.Seq, r.Block, r.Kind, short(r.From), short(r.To), r.Amount)
		if r.Note != "" {
			line += "  " + r.Note
		}
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "%d events\n", len(records))
	return nil
}

// short abbreviates a hex address.
func short(addr string) string {
	if len(addr) < 12 {
		return addr
	}
	return addr[:6] + ".." + addr[len(addr)-4:]
}
