package scheduler

import (
	"context"
	"time"

	"github.com/caseflow/caseflow/internal/model"
	"github.com/caseflow/caseflow/internal/store"
)

// fakeStore is a minimal in-memory store.Store covering what the
// scheduler and the caserun.Runner it drives actually touch.
type fakeStore struct {
	cases   map[int64]*model.Case
	trees   map[int64][]*model.Step
	records []*model.Record
	tasks   []*model.Task

	nextRecordID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{cases: map[int64]*model.Case{}, trees: map[int64][]*model.Step{}}
}

func (s *fakeStore) Projects() store.ProjectRepository         { panic("not used") }
func (s *fakeStore) Environments() store.EnvironmentRepository { panic("not used") }
func (s *fakeStore) Tags() store.TagRepository                 { panic("not used") }
func (s *fakeStore) Close()                                    {}

func (s *fakeStore) Cases() store.CaseRepository     { return fakeCaseRepo{s} }
func (s *fakeStore) Steps() store.StepRepository     { return fakeStepRepo{s} }
func (s *fakeStore) Reports() store.ReportRepository { return fakeReportRepo{s} }
func (s *fakeStore) Details() store.DetailRepository { return fakeDetailRepo{s} }
func (s *fakeStore) Tasks() store.TaskRepository     { return fakeTaskRepo{s} }
func (s *fakeStore) Records() store.RecordRepository { return fakeRecordRepo{s} }
func (s *fakeStore) CaseRuns() store.CaseRunStore    { return fakeCaseRunStore{s} }

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
	r.s.cases[caseID].LastRunState = state
	r.s.cases[caseID].LastRunAt = &at
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
	return rp, nil
}
func (r fakeReportRepo) GetByCode(ctx context.Context, code string) (*model.Report, error) {
	panic("not used")
}

type fakeDetailRepo struct{ s *fakeStore }

func (r fakeDetailRepo) CreateBatch(ctx context.Context, details []*model.Detail) error {
	return nil
}
func (r fakeDetailRepo) ListByReport(ctx context.Context, reportCode string) ([]*model.Detail, error) {
	panic("not used")
}

type fakeCaseRunStore struct{ s *fakeStore }

func (r fakeCaseRunStore) RunAtomic(ctx context.Context, fn func(ctx context.Context, reports store.ReportRepository, details store.DetailRepository, cases store.CaseRepository) error) error {
	return fn(ctx, fakeReportRepo{r.s}, fakeDetailRepo{r.s}, fakeCaseRepo{r.s})
}

type fakeTaskRepo struct{ s *fakeStore }

func (r fakeTaskRepo) Create(ctx context.Context, t *model.Task) (*model.Task, error) {
	panic("not used")
}
func (r fakeTaskRepo) GetByCode(ctx context.Context, code string) (*model.Task, error) {
	panic("not used")
}
func (r fakeTaskRepo) ListDue(ctx context.Context, asOf time.Time) ([]*model.Task, error) {
	return r.s.tasks, nil
}
func (r fakeTaskRepo) UpdateLastExecute(ctx context.Context, taskID int64, state string, at time.Time) error {
	for _, t := range r.s.tasks {
		if t.ID == taskID {
			t.LastExecuteState = state
			t.LastExecuteTime = &at
		}
	}
	return nil
}

type fakeRecordRepo struct{ s *fakeStore }

func (r fakeRecordRepo) Create(ctx context.Context, rec *model.Record) (*model.Record, error) {
	r.s.nextRecordID++
	rec.ID = r.s.nextRecordID
	r.s.records = append(r.s.records, rec)
	return rec, nil
}
func (r fakeRecordRepo) UpdateStatus(ctx context.Context, id int64, status model.RecordStatus, endTime time.Time, summary, errText string) error {
	for _, rec := range r.s.records {
		if rec.ID == id {
			rec.CeleryStatus = status
			rec.EndTime = &endTime
			rec.TaskSummary = summary
			rec.TaskError = errText
		}
	}
	return nil
}
