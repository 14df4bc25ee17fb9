package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caseflow/caseflow/internal/model"
)

// stepExecuteFunc is the per-step-type hook a concrete executor supplies;
// it fills in res's type-specific fields (response, extract/assert
// results, message) and returns a *model.StepExecutionError on failure, or
// an *abortCaseError to escalate a LOOP's on_error=STOP strategy past
// this step entirely. The shared pre/post lifecycle in runStep wraps
// every call uniformly.
type stepExecuteFunc func(ctx context.Context, ec *Context, step *model.Step, res *Result) error

// executorFor dispatches by step_type to the concrete executor function.
func executorFor(step *model.Step) stepExecuteFunc {
	switch step.StepType {
	case model.StepTypeHTTP:
		return executeHTTP
	case model.StepTypePython:
		return executeScript
	case model.StepTypeWait:
		return executeWait
	case model.StepTypeUserVariable:
		return executeUserVariables
	case model.StepTypeIf:
		return executeIf
	case model.StepTypeLoop:
		return executeLoop
	case model.StepTypeQuote:
		return executeQuoteCase
	case model.StepTypeTCP, model.StepTypeDatabase:
		// Thin stubs identical to Default, reserved for future
		// transport-specific behavior.
		return executeDefault
	default:
		return executeDefault
	}
}

// runStep executes one step, applying the common pre/post lifecycle:
// cycle index, current-step-code bookkeeping, defined_variables reset,
// extraction-to-session-variable merge, and elapsed-time capture. It also
// buffers one Detail for the step via ec.appendDetail (a no-op when
// ec.ReportCode is empty) and returns the populated Result. The returned
// error is non-nil only when a LOOP's on_error=STOP strategy escalated
// past this step (*abortCaseError); every other failure is captured on
// the Result instead, so a failed step never prevents siblings from
// running.
func runStep(ctx context.Context, ec *Context, step *model.Step) (*Result, error) {
	start := time.Now()

	res := &Result{
		CaseID:      step.CaseID,
		StepID:      step.ID,
		StepNo:      step.StepNo,
		StepCode:    step.StepCode,
		StepName:    step.StepName,
		StepType:    step.StepType,
		QuoteCaseID: step.QuoteCaseID,
	}

	res.NumCycles = ec.NextCycle(step.StepCode)
	prevStep := ec.SetCurrentStep(step.StepCode)
	defer ec.RestoreCurrentStep(prevStep)

	ec.SetDefinedVariables(ec.ResolveList(step.DefinedVariables))

	res.StartTime = start

	if step.StepDisabled {
		res.Success = true
		res.Message = "step disabled"
		res.ElapsedSec = roundElapsed(time.Since(start))
		res.EndTime = start.Add(time.Duration(res.ElapsedSec * float64(time.Second)))
		ec.appendDetail(res)
		return res, nil
	}

	var abort *abortCaseError
	if err := executorFor(step)(ctx, ec, step, res); err != nil {
		res.Success = false
		var stepErr *model.StepExecutionError
		switch {
		case errors.As(err, &abort):
			res.Error = abort.Error()
		case errors.As(err, &stepErr):
			res.Error = stepErr.Error()
		default:
			res.Error = err.Error()
		}
	}

	for _, e := range res.ExtractVariables {
		if e.Success {
			ec.SessionVariables.Upsert(e.Name, e.ExtractValue, "")
		}
	}

	if n := res.failingAssertionCount(); n > 0 {
		res.Success = false
		res.Message = fmt.Sprintf("%d assertion(s) failed", n)
	}

	res.ElapsedSec = roundElapsed(time.Since(start))
	res.EndTime = time.Now()
	ec.appendDetail(res)
	if abort != nil {
		return res, abort
	}
	return res, nil
}

func roundElapsed(d time.Duration) float64 {
	// 6 decimal places of seconds precision.
	us := d.Microseconds()
	return float64(us) / 1e6
}

// executeChildren runs step's children in step_no order, appending each
// result to res.Children. Returns the count of failed children and, if
// one child's LOOP escalated on_error=STOP, the abort error — the caller
// must stop iterating its own siblings too.
func executeChildren(ctx context.Context, ec *Context, children []*model.Step, res *Result) (int, error) {
	failed := 0
	for _, child := range sortedBySteNo(children) {
		childRes, err := runStep(ctx, ec, child)
		res.Children = append(res.Children, childRes)
		if !childRes.Success {
			failed++
		}
		if err != nil {
			return failed, err
		}
	}
	return failed, nil
}

func sortedBySteNo(steps []*model.Step) []*model.Step {
	out := make([]*model.Step, len(steps))
	copy(out, steps)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].StepNo < out[j-1].StepNo; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// executeDefault runs children with no own behavior,
// also covering the TCP/DATABASE stubs.
func executeDefault(ctx context.Context, ec *Context, step *model.Step, res *Result) error {
	_, err := executeChildren(ctx, ec, step.Children, res)
	res.Success = true
	return err
}
