package caserun

import (
	"context"
)

// BatchResult is one case's outcome within a batch run. Err is set
// instead of Result when the case failed to load or run at all (a
// missing case, an empty step tree); a case that ran but failed its
// assertions is still Result.Success=false with Err nil.
type BatchResult struct {
	CaseID int64
	Result *Result
	Err    error
}

// BatchSummary aggregates a batch run's case results.
type BatchSummary struct {
	TotalCases   int
	SuccessCases int
	FailedCases  int
	Results      []BatchResult
	SuccessRate  float64
	AllSuccess   bool
}

// RunBatch runs each case ID in caseIDs sequentially, one deferred-save
// transaction per case — a case that errors out does not stop the
// batch; it is recorded and the next case proceeds.
func (r *Runner) RunBatch(ctx context.Context, caseIDs []int64, opts Options) *BatchSummary {
	summary := &BatchSummary{TotalCases: len(caseIDs)}

	for _, id := range caseIDs {
		res, err := r.Run(ctx, id, opts)
		br := BatchResult{CaseID: id, Result: res, Err: err}
		summary.Results = append(summary.Results, br)

		switch {
		case err != nil, res != nil && !res.Success:
			summary.FailedCases++
		default:
			summary.SuccessCases++
		}
	}

	if summary.TotalCases > 0 {
		summary.SuccessRate = float64(summary.SuccessCases) / float64(summary.TotalCases) * 100
	}
	summary.AllSuccess = summary.TotalCases > 0 && summary.FailedCases == 0
	return summary
}
