package engine

import (
	"context"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/caseflow/caseflow/internal/model"
)

// executeScript implements the scripted-step executor: a restricted
// expression evaluator limited to arithmetic, collection ops, and a
// fixed mini-library, never evaluating into the host namespace. It
// accepts one expr-lang/expr expression that must evaluate to a map —
// expr has no function definitions or assignment statements, so the
// map-literal expression stands in for "exactly one function defined" /
// "result local set".
func executeScript(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	if strings.TrimSpace(step.Code) == "" {
		return model.NewParameterError("code", "required")
	}

	code := ec.ResolveCode(step.Code)
	env := scriptNamespace(ec)

	output, err := expr.Eval(code, env)
	if err != nil {
		return model.NewStepExecutionError(model.ErrKindScript, "script evaluation failed: "+err.Error(), err)
	}

	m, ok := output.(map[string]any)
	if !ok {
		return model.NewStepExecutionError(model.ErrKindScript, "script result must be a mapping, got a different type", nil)
	}

	result := model.FromAny(m)
	res.Response = model.Map(map[string]model.Value{
		"elapsed": model.Float(0),
		"headers": model.Map(map[string]model.Value{}),
		"cookies": model.Null(),
		"text":    model.String(result.AsString()),
	})
	res.Success = true

	resultMap, _ := result.AsMap()
	for key, value := range resultMap {
		res.ExtractVariables = append(res.ExtractVariables, ExtractResult{
			Name:         key,
			Source:       "python",
			Range:        rangeAll,
			ExtractValue: value,
			Success:      true,
		})
	}
	return nil
}

// scriptNamespace seeds the one-shot convenience dict the script body
// reads from: a flattened name->value view of session_variables then
// defined_variables, later keys winning, so a defined variable wins on a
// name collision. Mutations made
// during evaluation never feed back — only the expression's own return
// value does.
func scriptNamespace(ec *Context) map[string]any {
	out := map[string]any{}
	for _, e := range ec.SessionVariables {
		out[e.Key] = e.Value.Raw()
	}
	for _, e := range ec.DefinedVariables {
		out[e.Key] = e.Value.Raw()
	}
	return out
}
