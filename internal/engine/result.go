// Package engine implements the step execution engine: the execution
// context, the per-step-type executors, the extract/assert pipeline, and
// the orchestrator that drives a case's root steps.
package engine

import (
	"time"

	"github.com/caseflow/caseflow/internal/model"
)

// ExtractResult is one entry of a step's resolved extract_variables pipeline.
type ExtractResult struct {
	Name         string       `json:"name"`
	Source       string       `json:"source"`
	Range        string       `json:"range"`
	Expr         string       `json:"expr,omitempty"`
	Index        *int         `json:"index,omitempty"`
	ExtractValue model.Value  `json:"extract_value"`
	Success      bool         `json:"success"`
	Error        string       `json:"error,omitempty"`
}

// AssertResult is one entry of a step's resolved assert_validators pipeline.
type AssertResult struct {
	Name        string      `json:"name"`
	Operation   string      `json:"operation"`
	ExceptValue model.Value `json:"except_value"`
	ActualValue model.Value `json:"actual_value"`
	Success     bool        `json:"success"`
	Error       string      `json:"error,omitempty"`
}

// Result is the uniform per-step outcome shape from : every
// executor fills the same struct, so orchestration and persistence never
// need to know which step type ran.
type Result struct {
	CaseID      int64    `json:"case_id"`
	StepID      int64    `json:"step_id"`
	StepNo      int      `json:"step_no"`
	StepCode    string   `json:"step_code"`
	StepName    string   `json:"step_name"`
	StepType    model.StepType `json:"step_type"`

	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`

	Request  model.Value `json:"request,omitempty"`
	Response model.Value `json:"response,omitempty"`

	ElapsedSec float64   `json:"elapsed"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`

	QuoteCaseID *int64 `json:"quote_case_id,omitempty"`

	ExtractVariables []ExtractResult `json:"extract_variables,omitempty"`
	AssertValidators []AssertResult  `json:"assert_validators,omitempty"`

	Children []*Result `json:"children,omitempty"`

	NumCycles int `json:"num_cycles"`
	IsQuote   bool `json:"-"`
}

// failingAssertionCount counts the assert pipeline's failing entries —
// any more than zero flips an otherwise-successful step to failed.
func (r *Result) failingAssertionCount() int {
	n := 0
	for _, a := range r.AssertValidators {
		if !a.Success {
			n++
		}
	}
	return n
}

// flatten walks the result tree in execution order, dedupe-by-step_code
// first-seen-wins; a later failing result with the same step_code flips
// the kept entry to failed.
func flatten(roots []*Result) []*Result {
	seen := map[string]*Result{}
	order := []string{}
	var walk func(r *Result)
	walk = func(r *Result) {
		if existing, ok := seen[r.StepCode]; ok {
			if !r.Success {
				existing.Success = false
			}
		} else {
			seen[r.StepCode] = r
			order = append(order, r.StepCode)
		}
		for _, c := range r.Children {
			walk(c)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	out := make([]*Result, 0, len(order))
	for _, code := range order {
		out = append(out, seen[code])
	}
	return out
}
