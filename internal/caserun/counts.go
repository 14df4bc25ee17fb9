package caserun

import "github.com/caseflow/caseflow/internal/model"

// StepCounts is the recursive step-tree census taken before a case runs.
type StepCounts struct {
	Direct int
	Child  int
	Quote  int
	Total  int
}

// countSteps walks roots and their descendants, counting each step as
// either a root ("direct") or a nested LOOP/IF child, and additionally
// counting every QUOTE step in Quote.
func countSteps(roots []*model.Step) StepCounts {
	var c StepCounts
	var walk func(steps []*model.Step, isRoot bool)
	walk = func(steps []*model.Step, isRoot bool) {
		for _, s := range steps {
			c.Total++
			switch {
			case isRoot:
				c.Direct++
			default:
				c.Child++
			}
			if s.StepType == model.StepTypeQuote {
				c.Quote++
			}
			walk(s.Children, false)
		}
	}
	walk(roots, true)
	return c
}
