package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/caseflow/caseflow/internal/caserun"
	"github.com/caseflow/caseflow/internal/model"
	"github.com/caseflow/caseflow/internal/worker"
)

func TestDispatchRunsBatchAndRecordsOutcome(t *testing.T) {
	s := newFakeStore()
	s.cases[1] = &model.Case{ID: 1, Code: "case-1", CaseName: "smoke", CaseProject: 1}
	s.trees[1] = []*model.Step{
		{ID: 100, CaseID: 1, StepNo: 1, StepCode: "s1", StepType: model.StepTypeWait},
	}
	task := &model.Task{
		ID:           1,
		Code:         "task-1",
		TaskName:     "nightly smoke",
		TaskProject:  1,
		ScheduleKind: model.ScheduleInterval,
		TaskEnabled:  true,
		TaskKwargs:   model.TaskKwargs{CaseIDs: []int64{1}},
	}
	s.tasks = []*model.Task{task}

	runner := caserun.New(s, nil)
	pool := worker.NewPool(4)
	sched := New(s, runner, pool, nil, time.Hour, "test-node")

	sched.dispatch(context.Background(), task)

	if len(s.records) != 1 {
		t.Fatalf("expected one record, got %d", len(s.records))
	}
	rec := s.records[0]
	if rec.CeleryStatus != model.RecordStatusSuccess {
		t.Fatalf("expected SUCCESS, got %s (summary=%s error=%s)", rec.CeleryStatus, rec.TaskSummary, rec.TaskError)
	}
	if rec.EndTime == nil {
		t.Fatalf("expected end_time to be set")
	}
	if rec.CeleryTraceID == "" || rec.CeleryID == "" {
		t.Fatalf("expected trace_id/celery_id to be populated")
	}
	if task.LastExecuteState != string(model.RecordStatusSuccess) {
		t.Fatalf("expected task last_execute_state SUCCESS, got %q", task.LastExecuteState)
	}
}

func TestDispatchMarksFailureWhenACaseFails(t *testing.T) {
	s := newFakeStore()
	// Case 2 is never seeded, so the batch records a load failure.
	task := &model.Task{
		ID:           1,
		Code:         "task-1",
		TaskName:     "broken",
		ScheduleKind: model.ScheduleInterval,
		TaskEnabled:  true,
		TaskKwargs:   model.TaskKwargs{CaseIDs: []int64{2}},
	}
	s.tasks = []*model.Task{task}

	runner := caserun.New(s, nil)
	pool := worker.NewPool(4)
	sched := New(s, runner, pool, nil, time.Hour, "test-node")

	sched.dispatch(context.Background(), task)

	if len(s.records) != 1 || s.records[0].CeleryStatus != model.RecordStatusFailure {
		t.Fatalf("expected a FAILURE record, got %+v", s.records)
	}
}

func TestScanDispatchesOnlyDueTasks(t *testing.T) {
	s := newFakeStore()
	s.cases[1] = &model.Case{ID: 1, Code: "case-1", CaseName: "smoke", CaseProject: 1}
	s.trees[1] = []*model.Step{{ID: 100, CaseID: 1, StepNo: 1, StepCode: "s1", StepType: model.StepTypeWait}}

	due := &model.Task{ID: 1, Code: "due", ScheduleKind: model.ScheduleInterval, TaskEnabled: true, TaskKwargs: model.TaskKwargs{CaseIDs: []int64{1}}}
	notDue := &model.Task{ID: 2, Code: "not-due", ScheduleKind: model.ScheduleCron, CrontabExpr: "not a cron expr", TaskEnabled: true}
	s.tasks = []*model.Task{due, notDue}

	runner := caserun.New(s, nil)
	pool := worker.NewPool(4)
	sched := New(s, runner, pool, nil, time.Hour, "test-node")

	sched.scan(context.Background())
	// dispatch runs in its own goroutine; give it a moment to land.
	deadline := time.Now().Add(2 * time.Second)
	for len(s.records) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	if len(s.records) != 1 {
		t.Fatalf("expected exactly one dispatched task's record, got %d", len(s.records))
	}
	if s.records[0].TaskID != due.ID {
		t.Fatalf("expected the due task to be dispatched, got task_id=%d", s.records[0].TaskID)
	}
}
