package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/caseflow/caseflow/internal/model"
)

// maxLoopIterations is the hard safety cap on COUNT/CONDITION loops
// regardless of configuration.
const maxLoopIterations = 100

// abortCaseError signals a LOOP step's on_error=STOP strategy: the
// orchestrator checks for it after each root step and, if found, stops
// iterating further root steps entirely.
type abortCaseError struct {
	cause error
}

func (e *abortCaseError) Error() string { return e.cause.Error() }
func (e *abortCaseError) Unwrap() error { return e.cause }

// executeLoop implements the LOOP step executor.
func executeLoop(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	switch step.LoopMode {
	case model.LoopModeCount:
		return runCountLoop(ctx, ec, step, res)
	case model.LoopModeIterable:
		return runIterableLoop(ctx, ec, step, res)
	case model.LoopModeDict:
		return runDictLoop(ctx, ec, step, res)
	case model.LoopModeCondition:
		return runConditionLoop(ctx, ec, step, res)
	default:
		return model.NewParameterError("loop_mode", "must be one of COUNT, ITERABLE, DICT, CONDITION")
	}
}

// loopSleep honors loop_interval between iterations, never after the
// last one — callers pass isLast for the final iteration and the
// function then returns without sleeping.
func loopSleep(ctx context.Context, ec *Context, interval float64, isLast bool) error {
	if isLast || interval <= 0 {
		return nil
	}
	return ec.Sleep(ctx, interval)
}

func applyOnError(onError model.LoopOnError, failedThisIter bool, res *Result) (stop bool, abort error) {
	if !failedThisIter {
		return false, nil
	}
	switch onError {
	case model.LoopOnErrorContinue, "":
		return false, nil
	case model.LoopOnErrorBreak:
		return true, nil
	case model.LoopOnErrorStop:
		return true, &abortCaseError{cause: fmt.Errorf("loop step %s stopped the case on child failure", res.StepCode)}
	default:
		return true, model.NewParameterError("loop_on_error", "must be one of CONTINUE, BREAK, STOP")
	}
}

func runCountLoop(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	n := step.LoopMaximums
	if n > maxLoopIterations {
		return model.NewStepExecutionError(model.ErrKindUnknown, "suspected infinite loop: loop_maximums exceeds 100", nil)
	}
	anyFailed := false
	for i := 1; i <= n; i++ {
		failedCount, childErr := executeChildren(ctx, ec, step.Children, res)
		if childErr != nil {
			return childErr
		}
		if failedCount > 0 {
			anyFailed = true
			stop, abort := applyOnError(step.LoopOnError, true, res)
			if abort != nil {
				return abort
			}
			if stop {
				break
			}
		}
		if err := loopSleep(ctx, ec, step.LoopInterval, i == n); err != nil {
			return err
		}
	}
	res.Success = !anyFailed
	return nil
}

func runIterableLoop(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	items, err := resolveIterableItems(ec, step.LoopIterable)
	if err != nil {
		return model.NewParameterError("loop_iterable", err.Error())
	}
	idxName := step.LoopIterIdx
	if idxName == "" {
		idxName = "loop_index"
	}
	valName := step.LoopIterVal
	if valName == "" {
		valName = "loop_value"
	}

	anyFailed := false
	for i, item := range items {
		idx := i + 1
		ec.SessionVariables.Upsert(idxName, model.Int(int64(idx)), "")
		ec.SessionVariables.Upsert(valName, item, "")

		failedCount, childErr := executeChildren(ctx, ec, step.Children, res)
		if childErr != nil {
			return childErr
		}
		if failedCount > 0 {
			anyFailed = true
			stop, abort := applyOnError(step.LoopOnError, true, res)
			if abort != nil {
				return abort
			}
			if stop {
				break
			}
		}
		if err := loopSleep(ctx, ec, step.LoopInterval, idx == len(items)); err != nil {
			return err
		}
	}
	res.Success = !anyFailed
	return nil
}

func runDictLoop(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	m, err := resolveIterableMap(ec, step.LoopIterable)
	if err != nil {
		return model.NewParameterError("loop_iterable", err.Error())
	}
	idxName := step.LoopIterIdx
	if idxName == "" {
		idxName = "loop_index"
	}
	keyName := step.LoopIterKey
	if keyName == "" {
		keyName = "loop_key"
	}
	valName := step.LoopIterVal
	if valName == "" {
		valName = "loop_value"
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	anyFailed := false
	for i, k := range keys {
		idx := i + 1
		ec.SessionVariables.Upsert(idxName, model.Int(int64(idx)), "")
		ec.SessionVariables.Upsert(keyName, model.String(k), "")
		ec.SessionVariables.Upsert(valName, m[k], "")

		failedCount, childErr := executeChildren(ctx, ec, step.Children, res)
		if childErr != nil {
			return childErr
		}
		if failedCount > 0 {
			anyFailed = true
			stop, abort := applyOnError(step.LoopOnError, true, res)
			if abort != nil {
				return abort
			}
			if stop {
				break
			}
		}
		if err := loopSleep(ctx, ec, step.LoopInterval, idx == len(keys)); err != nil {
			return err
		}
	}
	res.Success = !anyFailed
	return nil
}

func runConditionLoop(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	cond, err := parseConditions(step.Conditions)
	if err != nil {
		return model.NewParameterError("conditions", err.Error())
	}

	var deadline time.Time
	if step.LoopTimeout > 0 {
		deadline = time.Now().Add(time.Duration(step.LoopTimeout * float64(time.Second)))
	}

	anyFailed := false
	for i := 1; i <= maxLoopIterations; i++ {
		failedCount, childErr := executeChildren(ctx, ec, step.Children, res)
		if childErr != nil {
			return childErr
		}
		if failedCount > 0 {
			anyFailed = true
			stop, abort := applyOnError(step.LoopOnError, true, res)
			if abort != nil {
				return abort
			}
			if stop {
				break
			}
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		evalCond := cond
		evalCond.Value = ec.ResolvePlaceholders(evalCond.Value)
		shouldContinue, err := evaluateCondition(evalCond)
		if err != nil {
			return model.NewStepExecutionError(model.ErrKindUnknown, err.Error(), err)
		}
		if !shouldContinue {
			break
		}

		if i == maxLoopIterations {
			return model.NewStepExecutionError(model.ErrKindUnknown, "suspected infinite loop: CONDITION loop exceeded 100 iterations", nil)
		}
		if err := loopSleep(ctx, ec, step.LoopInterval, false); err != nil {
			return err
		}
	}
	res.Success = !anyFailed
	return nil
}

// resolveIterableItems resolves loop_iterable to a list, rejecting
// strings and non-iterables.
func resolveIterableItems(ec *Context, raw string) ([]model.Value, error) {
	v, err := resolveLoopIterableValue(ec, raw)
	if err != nil {
		return nil, err
	}
	items, ok := v.AsList()
	if !ok {
		return nil, fmt.Errorf("loop_iterable must resolve to a list, not a string or scalar")
	}
	return items, nil
}

func resolveIterableMap(ec *Context, raw string) (map[string]model.Value, error) {
	v, err := resolveLoopIterableValue(ec, raw)
	if err != nil {
		return nil, err
	}
	m, ok := v.AsMap()
	if !ok {
		return nil, fmt.Errorf("loop_iterable must resolve to a map")
	}
	return m, nil
}

// resolveLoopIterableValue resolves loop_iterable either as a bare
// "${name}" variable reference (preserving the variable's structural
// type) or as an inline JSON array/object literal.
func resolveLoopIterableValue(ec *Context, raw string) (model.Value, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "${") && strings.HasSuffix(trimmed, "}") && strings.Count(trimmed, "${") == 1 {
		name := strings.TrimSuffix(strings.TrimPrefix(trimmed, "${"), "}")
		if v, ok := ec.GetVariable(name); ok {
			return v, nil
		}
		return model.Value{}, fmt.Errorf("variable not defined: %s", name)
	}

	resolved := ec.ResolvePlaceholders(model.String(raw)).AsString()
	var parsed any
	if err := json.Unmarshal([]byte(resolved), &parsed); err != nil {
		return model.Value{}, fmt.Errorf("not a JSON array/object: %w", err)
	}
	return model.FromAny(parsed), nil
}
