// Package store declares the opaque repository interfaces every other
// package depends on instead of a concrete database driver: callers hold
// the interface bundle, never a concrete store.
package store

import (
	"context"
	"time"

	"github.com/caseflow/caseflow/internal/model"
)

// ProjectRepository persists projects.
type ProjectRepository interface {
	Create(ctx context.Context, p *model.Project) (*model.Project, error)
	GetByCode(ctx context.Context, code string) (*model.Project, error)
	List(ctx context.Context) ([]*model.Project, error)
}

// EnvironmentRepository persists per-project environments, looked up by
// (project, env_name) when an HTTP step's request_url is relative.
type EnvironmentRepository interface {
	Create(ctx context.Context, e *model.Environment) (*model.Environment, error)
	GetByProjectAndName(ctx context.Context, projectID int64, envName string) (*model.Environment, error)
	List(ctx context.Context, projectID int64) ([]*model.Environment, error)
}

// TagRepository persists case/task classification tags.
type TagRepository interface {
	Create(ctx context.Context, t *model.Tag) (*model.Tag, error)
	List(ctx context.Context, projectID int64) ([]*model.Tag, error)
}

// CaseRepository persists cases and their step trees. Steps live in
// StepRepository; LoadTree stitches a case and its full step tree
// together for the case runner.
type CaseRepository interface {
	Create(ctx context.Context, c *model.Case) (*model.Case, error)
	GetByCode(ctx context.Context, code string) (*model.Case, error)
	GetByID(ctx context.Context, id int64) (*model.Case, error)
	// EnsureQuotable returns an error unless id names an existing,
	// non-deleted PUBLIC_SCRIPT case. StepRepository.CreateTree does not
	// call it.
	EnsureQuotable(ctx context.Context, id int64) error
	UpdateLastRun(ctx context.Context, caseID int64, state string, at time.Time) error
}

// StepRepository persists a case's step tree.
type StepRepository interface {
	CreateTree(ctx context.Context, caseID int64, roots []*model.Step) error
	// LoadTree returns a case's root steps with Children populated,
	// ordered by step_no at every level. QuoteSteps is left empty; a
	// QUOTE step carries only QuoteCaseID.
	LoadTree(ctx context.Context, caseID int64) ([]*model.Step, error)
}

// ReportRepository persists case-run summaries.
type ReportRepository interface {
	Create(ctx context.Context, r *model.Report) (*model.Report, error)
	GetByCode(ctx context.Context, code string) (*model.Report, error)
}

// DetailRepository persists one row per executed step instance.
type DetailRepository interface {
	CreateBatch(ctx context.Context, details []*model.Detail) error
	ListByReport(ctx context.Context, reportCode string) ([]*model.Detail, error)
}

// TaskRepository persists scheduled task declarations.
type TaskRepository interface {
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	GetByCode(ctx context.Context, code string) (*model.Task, error)
	// ListDue returns enabled, non-deleted tasks that may fire at or
	// before asOf: interval and datetime tasks are filtered by their due
	// time, while every enabled cron task is returned for the caller's
	// own cron check.
	ListDue(ctx context.Context, asOf time.Time) ([]*model.Task, error)
	UpdateLastExecute(ctx context.Context, taskID int64, state string, at time.Time) error
}

// RecordRepository persists one row per task dispatch.
type RecordRepository interface {
	Create(ctx context.Context, r *model.Record) (*model.Record, error)
	UpdateStatus(ctx context.Context, id int64, status model.RecordStatus, endTime time.Time, summary, errText string) error
}

// CaseRunStore bundles the three repositories the case runner writes to
// inside a single atomic transaction: the report, its details, and the
// case's last-run state.
type CaseRunStore interface {
	// RunAtomic executes fn inside one transaction: fn receives
	// transaction-scoped Report/Detail/Case repositories so a partial
	// write (e.g. details without a report row) can never land.
	RunAtomic(ctx context.Context, fn func(ctx context.Context, reports ReportRepository, details DetailRepository, cases CaseRepository) error) error
}

// Store bundles every repository behind one handle.
type Store interface {
	Projects() ProjectRepository
	Environments() EnvironmentRepository
	Tags() TagRepository
	Cases() CaseRepository
	Steps() StepRepository
	Reports() ReportRepository
	Details() DetailRepository
	Tasks() TaskRepository
	Records() RecordRepository
	CaseRuns() CaseRunStore

	Close()
}
