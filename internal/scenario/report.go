package scenario

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LeJamon/goExilon/internal/core/token"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int
	Op       string
	Result   token.Result
	Expected token.Result
	Passed   bool
	Block    uint64
	Note     string
	Error    string
}

func (r StepResult) failure() string {
	if r.Error != "" {
		return fmt.Sprintf("step %d %s: expected %s, got %s (%s)", r.Index, r.Op, r.Expected, r.Result, r.Error)
	}
	return fmt.Sprintf("step %d %s: expected %s, got %s", r.Index, r.Op, r.Expected, r.Result)
}

// Report contains the results of a scenario run
type Report struct {
	Name      string
	RunID     uuid.UUID
	Success   bool
	Steps     []StepResult
	Errors    []string
	Events    int
	Snapshots int
	Block     uint64
	Duration  time.Duration
}

// Write prints the report in the layout of the simulate command.
func (r *Report) Write(w io.Writer) {
	status := "PASSED"
	if !r.Success {
		status = "FAILED"
	}
	fmt.Fprintf(w, "--- %s (%s) ---\n", r.Name, r.RunID)
	for _, st := range r.Steps {
		mark := "ok  "
		if !st.Passed {
			mark = "FAIL"
		}
		line := fmt.Sprintf("  [%s] %3d %-26s %-26s block=%d", mark, st.Index, st.Op, st.Result, st.Block)
		if st.Note != "" {
			line += " " + st.Note
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  error: %s\n", e)
	}
	fmt.Fprintf(w, "Result: %s  steps=%d events=%d snapshots=%d block=%d duration=%v\n",
		status, len(r.Steps), r.Events, r.Snapshots, r.Block, r.Duration)
}
