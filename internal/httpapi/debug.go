package httpapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/caseflow/caseflow/internal/engine"
	"github.com/caseflow/caseflow/internal/model"
	"github.com/caseflow/caseflow/internal/resolver"
)

// newDebugContext builds a standalone engine.Context for the single-step
// dry-run endpoints:
// no case, no report, nothing persisted — callers run Orchestrate
// directly and return the Result.
func (h *Handler) newDebugContext(envName string, projectID int64, initial model.VariableList) *engine.Context {
	ec := engine.New(nil, 0, "debug", envName, projectID, initial)
	res := resolver.New(ec.GetVariable, h.catalog, func(msg string) { h.logger.Debug(msg, "debug", true) })
	ec.Resolve = res.Resolve
	ec.ResolveList = res.ResolveVariableList
	ec.ResolveCode = res.ResolveCode
	ec.Logf = func(format string, args ...any) { h.logger.Debug(fmt.Sprintf(format, args...), "debug", true) }
	ec.LookupEnvironment = h.lookupEnvironment
	ec.LookupQuoteCase = h.lookupQuoteCase
	return ec
}

func (h *Handler) lookupEnvironment(ctx context.Context, projectID int64, envName string) (*model.Environment, bool, error) {
	env, err := h.store.Environments().GetByProjectAndName(ctx, projectID, envName)
	if err != nil {
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return env, true, nil
}

func (h *Handler) lookupQuoteCase(ctx context.Context, quoteCaseID int64) (*model.Case, []*model.Step, error) {
	c, err := h.store.Cases().GetByID(ctx, quoteCaseID)
	if err != nil {
		return nil, nil, err
	}
	roots, err := h.store.Steps().LoadTree(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}
	return c, roots, nil
}

// runSingleStep wraps step in a one-root tree and runs it through the
// orchestrator directly, no case/report involved.
func runSingleStep(ctx context.Context, ec *engine.Context, step *model.Step) *engine.Run {
	return engine.Orchestrate(ctx, ec, []*model.Step{step})
}
