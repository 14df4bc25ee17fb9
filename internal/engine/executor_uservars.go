package engine

import (
	"context"

	"github.com/caseflow/caseflow/internal/model"
)

// executeUserVariables implements the USER_VARIABLES step executor:
// deep-copy the step's session_variables, resolve each value (variable
// and function placeholders in one pass), then merge into the
// context's session pool.
func executeUserVariables(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	resolved := ec.ResolveList(step.SessionVariables.Clone())
	ec.UpdateVariables(resolved, ScopeSessionVariables)
	res.Success = true
	res.Message = "session variables updated"
	return nil
}
