// Package caserun implements the Case Runner: load a case and its step
// tree, merge variables, drive the engine in deferred-save mode, and
// commit the Report/Detail/case-state write as one transaction.
package caserun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/caseflow/internal/engine"
	"github.com/caseflow/caseflow/internal/model"
	"github.com/caseflow/caseflow/internal/resolver"
	"github.com/caseflow/caseflow/internal/store"
)

// ErrNoReportRequested is returned instead of a zero-value summary when a
// persisted run is asked to skip the report: surface an explicit error
// rather than silently returning nothing (see DESIGN.md).
var ErrNoReportRequested = errors.New("caserun: no report requested for a persisted run")

// Runner drives case executions against a Store.
type Runner struct {
	store   store.Store
	catalog *resolver.Catalog
	logger  *slog.Logger
}

// New builds a Runner. logger may be nil.
func New(st store.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{store: st, catalog: resolver.NewCatalog(), logger: logger}
}

// Options configures one case run.
type Options struct {
	EnvName          string
	InitialVariables model.VariableList
	ReportType       model.ReportType
	TaskCode         string
	BatchCode        string
	// Persist selects whether a Report/Detail row set is committed.
	// With Persist=false nothing is written and the caller reads Result
	// directly (the run subcommand does this unless --persist is given).
	Persist bool
}

// Result is the summary returned to every caller, persisted or not.
type Result struct {
	Success         bool
	Total           int
	SuccessCount    int
	FailedCount     int
	PassRatio       float64
	ReportCode      string
	CaseID          int64
	CaseCode        string
	CaseName        string
	SavedToDatabase bool
	Aborted         bool
}

// Run executes caseID's saved step tree per opts.
func (r *Runner) Run(ctx context.Context, caseID int64, opts Options) (*Result, error) {
	c, err := r.store.Cases().GetByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("load case %d: %w", caseID, err)
	}

	roots, err := r.store.Steps().LoadTree(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("load step tree for case %d: %w", c.ID, err)
	}

	return r.run(ctx, c, roots, opts)
}

// RunWithSteps executes an explicitly provided step tree against
// caseID's project/session-variable context instead of its saved tree —
// the debug variant of POST /step/execute_or_debugging:
// "if case_id + steps, debug (save as DEBUG_EXEC)".
func (r *Runner) RunWithSteps(ctx context.Context, caseID int64, roots []*model.Step, opts Options) (*Result, error) {
	c, err := r.store.Cases().GetByID(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("load case %d: %w", caseID, err)
	}
	return r.run(ctx, c, roots, opts)
}

func (r *Runner) run(ctx context.Context, c *model.Case, roots []*model.Step, opts Options) (*Result, error) {
	if len(roots) == 0 {
		return nil, model.NewParameterError("case", "has no root steps")
	}
	if opts.Persist && opts.ReportType == "" {
		// A persisted run with no report_type is ambiguous: surface it
		// rather than minting a report no caller asked for.
		return nil, ErrNoReportRequested
	}

	counts := countSteps(roots)
	merged := mergeVariables(c.SessionVariables, collectStepVariables(roots), opts.InitialVariables)

	ec := engine.New(nil, c.ID, c.Code, opts.EnvName, c.CaseProject, merged)
	res := resolver.New(ec.GetVariable, r.catalog, func(msg string) { r.logger.Debug(msg, "case_code", c.Code) })
	ec.Resolve = res.Resolve
	ec.ResolveList = res.ResolveVariableList
	ec.ResolveCode = res.ResolveCode
	ec.Logf = func(format string, args ...any) { r.logger.Debug(fmt.Sprintf(format, args...), "case_code", c.Code) }
	ec.LookupEnvironment = r.lookupEnvironment
	ec.LookupQuoteCase = r.lookupQuoteCase

	var reportCode string
	if opts.Persist {
		reportCode = "rp_" + uuid.NewString()
		ec.ReportCode = reportCode
	}

	run := engine.Orchestrate(ctx, ec, roots)

	result := &Result{
		Success:      !run.Aborted && run.Stats.FailedSteps == 0,
		Total:        run.Stats.TotalSteps,
		SuccessCount: run.Stats.SuccessSteps,
		FailedCount:  run.Stats.FailedSteps,
		PassRatio:    run.Stats.PassRatio,
		CaseID:       c.ID,
		CaseCode:     c.Code,
		CaseName:     c.CaseName,
		Aborted:      run.Aborted,
	}
	r.logger.Info("case run finished", "case_code", c.Code, "total_steps", counts.Total,
		"direct_steps", counts.Direct, "child_steps", counts.Child, "quote_steps", counts.Quote,
		"success", result.Success, "pass_ratio", result.PassRatio)

	if !opts.Persist {
		return result, nil
	}

	now := time.Now()
	startTime := now
	if len(run.Roots) > 0 {
		startTime = now.Add(-time.Duration(totalElapsed(run) * float64(time.Second)))
	}
	report := &model.Report{
		ReportCode:    reportCode,
		CaseID:        c.ID,
		CaseCode:      c.Code,
		ReportType:    opts.ReportType,
		TaskCode:      opts.TaskCode,
		BatchCode:     opts.BatchCode,
		StepTotal:     result.Total,
		StepFailCount: result.FailedCount,
		StepPassCount: result.SuccessCount,
		StepPassRatio: result.PassRatio,
		StartTime:     startTime,
		EndTime:       now,
		ElapsedSec:    totalElapsed(run),
	}
	details := ec.FinalizeDetails()

	runState := "SUCCESS"
	if !result.Success {
		runState = "FAILURE"
	}

	err = r.store.CaseRuns().RunAtomic(ctx, func(ctx context.Context, reports store.ReportRepository, detailsRepo store.DetailRepository, cases store.CaseRepository) error {
		if _, err := reports.Create(ctx, report); err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		if err := detailsRepo.CreateBatch(ctx, details); err != nil {
			return fmt.Errorf("create details: %w", err)
		}
		return cases.UpdateLastRun(ctx, c.ID, runState, now)
	})
	if err != nil {
		// A rolled-back transaction still returns the execution result,
		// just unsaved.
		r.logger.Error("case run transaction failed", "case_code", c.Code, "error", err)
		result.SavedToDatabase = false
		return result, nil
	}

	result.ReportCode = reportCode
	result.SavedToDatabase = true
	return result, nil
}

func totalElapsed(run *engine.Run) float64 {
	var total float64
	for _, r := range run.Roots {
		total += r.ElapsedSec
	}
	return total
}

func (r *Runner) lookupEnvironment(ctx context.Context, projectID int64, envName string) (*model.Environment, bool, error) {
	env, err := r.store.Environments().GetByProjectAndName(ctx, projectID, envName)
	if err != nil {
		var nf *model.NotFoundError
		if errors.As(err, &nf) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return env, true, nil
}

func (r *Runner) lookupQuoteCase(ctx context.Context, quoteCaseID int64) (*model.Case, []*model.Step, error) {
	c, err := r.store.Cases().GetByID(ctx, quoteCaseID)
	if err != nil {
		return nil, nil, err
	}
	roots, err := r.store.Steps().LoadTree(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}
	return c, roots, nil
}
