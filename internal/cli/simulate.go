package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goExilon/internal/scenario"
)

var (
	parallel      int
	snapshotEvery int
)

// simulateCmd represents the simulate command
var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario.yaml>...",
	Short: "Run scenarios against fresh deployments",
	Long: `Simulate deploys a fresh token for every scenario file and runs its
steps in order. Each step must end with its expected result code; the
first step that does not fails the scenario.

Scenarios run concurrently, up to simulation.parallel at a time. Every run
gets an id under which its events are journaled and its snapshots stored.

Example:
    exilon simulate scenarios/launch.yaml
    exilon simulate --conf exilon.toml --parallel 8 scenarios/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSimulate,
}

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().IntVarP(&parallel, "parallel", "p", 0, "scenarios run at once (default: simulation.parallel)")
	simulateCmd.Flags().IntVar(&snapshotEvery, "snapshot-every", -1, "snapshot every n steps (default: simulation.snapshot_every)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	// Load every scenario before deploying anything
	scenarios := make([]*scenario.Scenario, len(args))
	for i, path := range args {
		sc, err := scenario.Load(path)
		if err != nil {
			return err
		}
		scenarios[i] = sc
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if parallel > 0 {
		cfg.Simulation.Parallel = parallel
	}
	if snapshotEvery >= 0 {
		cfg.Simulation.SnapshotEvery = snapshotEvery
	}

	p, err := newProvider(cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	runner, err := p.Runner()
	if err != nil {
		return fmt.Errorf("failed to set up runner: %w", err)
	}

	ctx, stop := signal.NotifyContext(runContext(cmd), os.Interrupt)
	defer stop()

	reports := make([]*scenario.Report, len(scenarios))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Simulation.Parallel)
	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			report, err := runner.Run(gCtx, sc)
			if err != nil {
				return fmt.Errorf("%s: %w", args[i], err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := output(cmd)
	failed := 0
	for _, report := range reports {
		report.Write(out)
		fmt.Fprintln(out)
		if !report.Success {
			failed++
		}
	}
	fmt.Fprintf(out, "%d scenarios, %d passed, %d failed in %v\n",
		len(reports), len(reports)-failed, failed, time.Since(startTime).Round(time.Millisecond))

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(reports))
	}
	return nil
}
