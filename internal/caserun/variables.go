package caserun

import "github.com/caseflow/caseflow/internal/model"

// collectStepVariables walks roots in execution order (LoadTree already
// sorts by step_no) and returns each step's own session_variables list,
// preorder, for mergeVariables to fold in.
func collectStepVariables(roots []*model.Step) []model.VariableList {
	var out []model.VariableList
	var walk func(steps []*model.Step)
	walk = func(steps []*model.Step) {
		for _, s := range steps {
			if len(s.SessionVariables) > 0 {
				out = append(out, s.SessionVariables)
			}
			walk(s.Children)
		}
	}
	walk(roots)
	return out
}

// mergeVariables folds case-level session_variables, then every
// collected step-level list in tree order, then the caller-provided
// initial variables, into one list — same key, later write wins.
func mergeVariables(caseVars model.VariableList, stepVars []model.VariableList, initial model.VariableList) model.VariableList {
	var merged model.VariableList
	for _, e := range caseVars {
		merged.Upsert(e.Key, e.Value, e.Desc)
	}
	for _, list := range stepVars {
		for _, e := range list {
			merged.Upsert(e.Key, e.Value, e.Desc)
		}
	}
	for _, e := range initial {
		merged.Upsert(e.Key, e.Value, e.Desc)
	}
	return merged
}
