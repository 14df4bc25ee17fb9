package engine

import "github.com/caseflow/caseflow/internal/model"

// appendDetail buffers one Detail row for a finished step instance when
// the case is running persisted (ReportCode set). runStep calls this
// exactly once per invocation, so a LOOP's repeated children each get
// their own buffered row instead of later ones collapsing into the
// first, the way flatten's dedupe-by-step_code would. Session/defined
// variable snapshots and the step's log buffer are filled in later by
// FinalizeDetails.
func (c *Context) appendDetail(r *Result) {
	if c.ReportCode == "" {
		return
	}
	c.PendingDetails = append(c.PendingDetails, &model.Detail{
		ReportCode:       c.ReportCode,
		CaseCode:         c.CaseCode,
		StepCode:         r.StepCode,
		StepName:         r.StepName,
		StepType:         r.StepType,
		NumCycles:        r.NumCycles,
		Success:          r.Success,
		Message:          r.Message,
		ErrorText:        r.Error,
		Request:          r.Request,
		Response:         r.Response,
		ExtractVariables: extractVariablesToDetail(r.ExtractVariables),
		AssertValidators: assertValidatorsToDetail(r.AssertValidators),
		StartTime:        r.StartTime,
		EndTime:          r.EndTime,
		ElapsedSec:       r.ElapsedSec,
	})
}

// FinalizeDetails stamps the end-of-run session/defined variable
// snapshot and each step's aggregated log buffer across every buffered
// Detail, then returns them ready to persist. Every row for a given
// report shares the same end-of-run pool contents, since the engine
// keeps one shared pool per case rather than a per-step snapshot.
func (c *Context) FinalizeDetails() []*model.Detail {
	sessionVars := c.SessionVariables.Clone()
	definedVars := c.DefinedVariables.Clone()
	for _, d := range c.PendingDetails {
		d.SessionVariables = sessionVars
		d.DefinedVariables = definedVars
		d.Logs = c.LogsFor(d.StepCode)
	}
	return c.PendingDetails
}

func extractVariablesToDetail(results []ExtractResult) []model.ExtractVariable {
	if len(results) == 0 {
		return nil
	}
	out := make([]model.ExtractVariable, len(results))
	for i, e := range results {
		out[i] = model.ExtractVariable{
			Name:   e.Name,
			Source: e.Source,
			Range:  e.Range,
			Expr:   e.Expr,
			Index:  e.Index,
		}
	}
	return out
}

func assertValidatorsToDetail(results []AssertResult) []model.AssertValidator {
	if len(results) == 0 {
		return nil
	}
	out := make([]model.AssertValidator, len(results))
	for i, a := range results {
		out[i] = model.AssertValidator{
			Name:        a.Name,
			Operation:   a.Operation,
			ExceptValue: a.ExceptValue,
		}
	}
	return out
}
