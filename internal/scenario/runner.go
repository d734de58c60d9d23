package scenario

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/LeJamon/goExilon/internal/core/amount"
	"github.com/LeJamon/goExilon/internal/core/chain"
	"github.com/LeJamon/goExilon/internal/core/token"
	"github.com/LeJamon/goExilon/internal/sim"
	"github.com/LeJamon/goExilon/internal/storage/eventlog"
	"github.com/LeJamon/goExilon/internal/storage/snapshot"
)

// Run outcomes stored in the journal.
const (
	OutcomePassed = "passed"
	OutcomeFailed = "failed"
)

// Runner executes scenarios on fresh deployments. A Runner holds no
// per-run state and may run scenarios concurrently.
type Runner struct {
	opts          sim.Options
	journal       *eventlog.Journal
	snapshots     *snapshot.Store
	snapshotEvery int
	log           *log.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithJournal records every run and its events in j.
func WithJournal(j *eventlog.Journal) Option {
	return func(r *Runner) { r.journal = j }
}

// WithSnapshots stores the state after every n-th step, and after the last
// one, in store. n = 0 keeps the final state only.
func WithSnapshots(store *snapshot.Store, n int) Option {
	return func(r *Runner) {
		r.snapshots = store
		r.snapshotEvery = n
	}
}

// WithLogger sets the logger for step progress.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// NewRunner creates a runner deploying worlds with opts.
func NewRunner(opts sim.Options, options ...Option) *Runner {
	r := &Runner{
		opts: opts,
		log:  log.New(io.Discard, "", 0),
	}
	for _, o := range options {
		o(r)
	}
	return r
}

// Run deploys a world, funds the scenario accounts and executes every step.
// A step whose outcome differs from its expectation fails the run and stops
// it. The returned error reports infrastructure failures only; a failed run
// is a Report with Success false.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	startTime := time.Now()
	report := &Report{
		Name:  sc.Name,
		RunID: uuid.New(),
	}

	if r.journal != nil {
		run, err := r.journal.StartRun(ctx, sc.Name, startTime)
		if err != nil {
			return nil, fmt.Errorf("start run: %w", err)
		}
		report.RunID = run.ID
	}

	if err := r.execute(ctx, sc, report); err != nil {
		if r.journal != nil {
			// The run context may be cancelled already
			if ferr := r.journal.FinishRun(context.Background(), report.RunID, OutcomeFailed, time.Now()); ferr != nil {
				r.log.Printf("finish run %s: %v", report.RunID, ferr)
			}
		}
		return nil, err
	}
	report.Duration = time.Since(startTime)

	if r.journal != nil {
		outcome := OutcomePassed
		if !report.Success {
			outcome = OutcomeFailed
		}
		if err := r.journal.FinishRun(ctx, report.RunID, outcome, time.Now()); err != nil {
			return nil, fmt.Errorf("finish run: %w", err)
		}
	}
	return report, nil
}

// execute deploys the world and runs the steps, filling in report.
func (r *Runner) execute(ctx context.Context, sc *Scenario, report *Report) error {
	opts := r.opts
	if opts.Logger == nil {
		opts.Logger = r.log
	}
	world, err := sim.NewWorld(opts)
	if err != nil {
		return fmt.Errorf("deploy: %w", err)
	}
	s := &session{world: world, declared: make(map[string]common.Address)}
	if err := r.setup(s, sc); err != nil {
		return err
	}

	var nextSeq uint64
	record := func() error {
		events := world.Chain.Events(nextSeq)
		if len(events) == 0 {
			return nil
		}
		nextSeq = events[len(events)-1].Seq + 1
		report.Events += len(events)
		if r.journal == nil {
			return nil
		}
		return r.journal.Append(ctx, report.RunID, events)
	}
	if err := record(); err != nil {
		return fmt.Errorf("record deployment events: %w", err)
	}

	report.Success = true
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := r.step(s, i, st)
		report.Steps = append(report.Steps, res)
		if err := record(); err != nil {
			return fmt.Errorf("step %d: record events: %w", i, err)
		}

		if !res.Passed {
			report.Success = false
			report.Errors = append(report.Errors, res.failure())
			r.log.Printf("step %d %s: %s", i, st.Op, res.failure())
			break
		}
		r.log.Printf("step %d %s: %s %s", i, st.Op, res.Result, res.Note)

		if r.snapshots != nil && r.snapshotEvery > 0 && (i+1)%r.snapshotEvery == 0 {
			if err := r.snapshot(ctx, world, report, i+1); err != nil {
				return err
			}
		}
	}

	if err := world.Token.CheckSupply(); err != nil {
		report.Success = false
		report.Errors = append(report.Errors, fmt.Sprintf("supply check: %v", err))
	}
	if r.snapshots != nil {
		if err := r.snapshot(ctx, world, report, len(report.Steps)); err != nil {
			return err
		}
	}

	report.Block = world.Chain.BlockNumber()
	return nil
}

// setup resolves the declared accounts and pays their native funding.
func (r *Runner) setup(s *session, sc *Scenario) error {
	for _, name := range sc.Accounts {
		s.declared[name] = chain.AddressFromName(name)
	}
	for name, v := range sc.Fund {
		addr, err := resolve(s.world, s.declared, name)
		if err != nil {
			return err
		}
		value, err := amount.Parse(v, nativeDecimals)
		if err != nil {
			return fmt.Errorf("fund %s: %w: %v", name, ErrInvalidAmount, err)
		}
		if err := s.world.WETH.Fund(addr, value); err != nil {
			return fmt.Errorf("fund %s: %w", name, err)
		}
	}
	return nil
}

func (r *Runner) step(s *session, i int, st Step) StepResult {
	res := StepResult{
		Index:    i,
		Op:       st.Op,
		Expected: token.ResultSuccess,
	}
	if st.ExpectError != "" {
		res.Expected = token.Result(st.ExpectError)
	}

	note, err := ops[st.Op](s, st)
	res.Result = token.ResultOf(err)
	res.Note = note
	if err != nil {
		res.Error = err.Error()
	}
	res.Block = s.world.Chain.BlockNumber()
	res.Passed = res.Result == res.Expected
	return res
}

// snapshot stores the state after the given number of executed steps.
func (r *Runner) snapshot(ctx context.Context, world *sim.World, report *Report, step int) error {
	snap, err := snapshot.Capture(world, report.RunID.String(), step)
	if err != nil {
		return err
	}
	if err := r.snapshots.Put(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	report.Snapshots++
	return nil
}
