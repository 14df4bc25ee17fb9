package engine

import (
	"context"

	"github.com/caseflow/caseflow/internal/model"
)

// executeIf implements the IF step executor: parse
// conditions, resolve the condition's value, compare via the operator
// table, and either run children or short-circuit as an unmet-condition
// skip.
func executeIf(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	cond, err := parseConditions(step.Conditions)
	if err != nil {
		return model.NewParameterError("conditions", err.Error())
	}
	cond.Value = ec.ResolvePlaceholders(cond.Value)

	met, err := evaluateCondition(cond)
	if err != nil {
		return model.NewStepExecutionError(model.ErrKindUnknown, err.Error(), err)
	}

	if !met {
		res.Success = true
		res.Message = "condition not met"
		return nil
	}

	failed, err := executeChildren(ctx, ec, step.Children, res)
	res.Success = failed == 0
	if failed > 0 {
		res.Message = "condition met, one or more children failed"
	} else {
		res.Message = "condition met"
	}
	return err
}
