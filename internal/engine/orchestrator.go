package engine

import (
	"context"
	"math"
	"sort"

	"github.com/caseflow/caseflow/internal/model"
)

// Stats are the pass/fail statistics aggregated across a case's flattened
// step results.
type Stats struct {
	TotalSteps   int     `json:"total_steps"`
	SuccessSteps int     `json:"success_steps"`
	FailedSteps  int     `json:"failed_steps"`
	PassRatio    float64 `json:"pass_ratio"`
}

// Run is the orchestrator's output: the per-root result trees, the
// aggregated statistics, and whether a LOOP's on_error=STOP strategy
// aborted the run before every root step had a chance to execute.
type Run struct {
	Roots   []*Result
	Stats   Stats
	Aborted bool
}

// Flatten returns the deduped, execution-ordered step results backing
// Run.Stats. Detail rows come from ec.FinalizeDetails instead, which keeps
// one row per executed step instance.
func (r *Run) Flatten() []*Result {
	return flatten(r.Roots)
}

// Orchestrate drives the engine: sort root steps by step_no, execute each
// with a fresh executor, aggregate descendant logs onto each root, and
// compute the flattened pass/fail statistics. It does not persist
// anything — that is the Case Runner's job, consuming Run plus ec's
// accumulated state.
func Orchestrate(ctx context.Context, ec *Context, roots []*model.Step) *Run {
	ec.Enter()
	defer ec.Exit()

	sorted := sortedBySteNo(roots)
	run := &Run{}

	for _, step := range sorted {
		res, err := runStep(ctx, ec, step)
		run.Roots = append(run.Roots, res)
		aggregateLogs(ec, res)
		if err != nil {
			run.Aborted = true
			break
		}
	}

	run.Stats = computeStats(run.Roots)
	return run
}

// aggregateLogs concatenates the logs of every descendant step_code, in
// ascending order, onto the root step's own log buffer — so a root's log reads as one per-branch transcript.
func aggregateLogs(ec *Context, root *Result) {
	codes := descendantStepCodes(root)
	sort.Strings(codes)
	for i, code := range codes {
		if i > 0 && codes[i-1] == code {
			continue
		}
		ec.logs[root.StepCode] = append(ec.logs[root.StepCode], ec.logs[code]...)
	}
}

func descendantStepCodes(r *Result) []string {
	var out []string
	for _, c := range r.Children {
		out = append(out, c.StepCode)
		out = append(out, descendantStepCodes(c)...)
	}
	return out
}

// computeStats flattens the result tree (dedupe by step_code, first-seen
// wins, a later failing result with the same step_code flips the kept
// entry) and derives
// total/success/failed/pass_ratio.
func computeStats(roots []*Result) Stats {
	flat := flatten(roots)
	var success, failed int
	for _, r := range flat {
		if r.Success {
			success++
		} else {
			failed++
		}
	}
	total := success + failed
	ratio := 0.0
	if total > 0 {
		ratio = math.Round(float64(success)/float64(total)*100*100) / 100
	}
	return Stats{TotalSteps: total, SuccessSteps: success, FailedSteps: failed, PassRatio: ratio}
}
