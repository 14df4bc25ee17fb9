package engine

import (
	"context"

	"github.com/caseflow/caseflow/internal/model"
)

// executeWait implements the WAIT step executor.
func executeWait(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	if step.Wait < 0 {
		return model.NewParameterError("wait", "must be a non-negative number")
	}
	if err := ec.Sleep(ctx, step.Wait); err != nil {
		return err
	}
	res.Success = true
	res.Message = "waited"
	return nil
}
