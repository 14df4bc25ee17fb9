package engine

import (
	"context"

	"github.com/caseflow/caseflow/internal/model"
)

// executeQuoteCase implements the QUOTE step executor:
// look up the referenced PUBLIC_SCRIPT case, run its root steps in the
// current context (variables flow through), and tag each result as a
// quote.
func executeQuoteCase(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	if step.QuoteCaseID == nil {
		return model.NewParameterError("quote_case_id", "required for QUOTE steps")
	}
	if ec.LookupQuoteCase == nil {
		return model.NewNotFoundError("case", "quote case lookup not configured")
	}

	quoted, roots, err := ec.LookupQuoteCase(ctx, *step.QuoteCaseID)
	if err != nil {
		return model.NewNotFoundError("case", err.Error())
	}
	if quoted.CaseType != model.CaseTypePublicScript {
		return model.NewParameterError("quote_case_id", "referenced case is not PUBLIC_SCRIPT")
	}

	failed := 0
	for _, child := range sortedBySteNo(roots) {
		childRes, runErr := runStep(ctx, ec, child)
		childRes.IsQuote = true
		res.Children = append(res.Children, childRes)
		if !childRes.Success {
			failed++
		}
		if runErr != nil {
			res.Success = false
			res.Message = "quoted case completed with failures"
			return runErr
		}
	}

	res.Success = failed == 0
	if failed > 0 {
		res.Message = "quoted case completed with failures"
	} else {
		res.Message = "quoted case completed"
	}
	return nil
}
