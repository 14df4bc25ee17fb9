package httpapi

import (
	"context"
	"time"

	"github.com/caseflow/caseflow/internal/model"
	"github.com/caseflow/caseflow/internal/store"
)

// fakeStore is a minimal in-memory store.Store for exercising the HTTP
// surface end to end without a database.
type fakeStore struct {
	cases map[int64]*model.Case
	trees map[int64][]*model.Step

	reports []*model.Report
	details []*model.Detail
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cases: map[int64]*model.Case{},
		trees: map[int64][]*model.Step{},
	}
}

func (s *fakeStore) Projects() store.ProjectRepository { panic("not used") }
func (s *fakeStore) Tags() store.TagRepository         { panic("not used") }
func (s *fakeStore) Tasks() store.TaskRepository       { panic("not used") }
func (s *fakeStore) Records() store.RecordRepository   { panic("not used") }
func (s *fakeStore) Close()                            {}

func (s *fakeStore) Environments() store.EnvironmentRepository { return fakeEnvRepo{s} }
func (s *fakeStore) Cases() store.CaseRepository               { return fakeCaseRepo{s} }
func (s *fakeStore) Steps() store.StepRepository               { return fakeStepRepo{s} }
func (s *fakeStore) Reports() store.ReportRepository           { return fakeReportRepo{s} }
func (s *fakeStore) Details() store.DetailRepository           { return fakeDetailRepo{s} }
func (s *fakeStore) CaseRuns() store.CaseRunStore              { return fakeCaseRunStore{s} }

type fakeEnvRepo struct{ s *fakeStore }

func (r fakeEnvRepo) Create(ctx context.Context, e *model.Environment) (*model.Environment, error) {
	panic("not used")
}
func (r fakeEnvRepo) GetByProjectAndName(ctx context.Context, projectID int64, envName string) (*model.Environment, error) {
	return nil, model.NewNotFoundError("environment", envName)
}
func (r fakeEnvRepo) List(ctx context.Context, projectID int64) ([]*model.Environment, error) {
	panic("not used")
}

type fakeCaseRepo struct{ s *fakeStore }

func (r fakeCaseRepo) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	panic("not used")
}
func (r fakeCaseRepo) GetByCode(ctx context.Context, code string) (*model.Case, error) {
	panic("not used")
}
func (r fakeCaseRepo) GetByID(ctx context.Context, id int64) (*model.Case, error) {
	c, ok := r.s.cases[id]
	if !ok {
		return nil, model.NewNotFoundError("case", "")
	}
	return c, nil
}
func (r fakeCaseRepo) EnsureQuotable(ctx context.Context, id int64) error { panic("not used") }
func (r fakeCaseRepo) UpdateLastRun(ctx context.Context, caseID int64, state string, at time.Time) error {
	c := r.s.cases[caseID]
	c.LastRunState = state
	c.LastRunAt = &at
	return nil
}

type fakeStepRepo struct{ s *fakeStore }

func (r fakeStepRepo) CreateTree(ctx context.Context, caseID int64, roots []*model.Step) error {
	panic("not used")
}
func (r fakeStepRepo) LoadTree(ctx context.Context, caseID int64) ([]*model.Step, error) {
	return r.s.trees[caseID], nil
}

type fakeReportRepo struct{ s *fakeStore }

func (r fakeReportRepo) Create(ctx context.Context, rp *model.Report) (*model.Report, error) {
	r.s.reports = append(r.s.reports, rp)
	return rp, nil
}
func (r fakeReportRepo) GetByCode(ctx context.Context, code string) (*model.Report, error) {
	panic("not used")
}

type fakeDetailRepo struct{ s *fakeStore }

func (r fakeDetailRepo) CreateBatch(ctx context.Context, details []*model.Detail) error {
	r.s.details = append(r.s.details, details...)
	return nil
}
func (r fakeDetailRepo) ListByReport(ctx context.Context, reportCode string) ([]*model.Detail, error) {
	panic("not used")
}

type fakeCaseRunStore struct{ s *fakeStore }

func (r fakeCaseRunStore) RunAtomic(ctx context.Context, fn func(ctx context.Context, reports store.ReportRepository, details store.DetailRepository, cases store.CaseRepository) error) error {
	return fn(ctx, fakeReportRepo{r.s}, fakeDetailRepo{r.s}, fakeCaseRepo{r.s})
}
