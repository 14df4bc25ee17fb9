package scheduler

import (
	"testing"
	"time"

	"github.com/caseflow/caseflow/internal/model"
)

func TestIsDueIntervalAndDatetimeAlwaysTrue(t *testing.T) {
	now := time.Now()
	for _, kind := range []model.ScheduleKind{model.ScheduleInterval, model.ScheduleDatetime} {
		task := &model.Task{ScheduleKind: kind}
		if !isDue(task, now) {
			t.Fatalf("%s: expected true (already filtered by SQL)", kind)
		}
	}
}

func TestIsDueCronNeverRun(t *testing.T) {
	now := time.Now()
	task := &model.Task{
		ScheduleKind: model.ScheduleCron,
		CrontabExpr:  "* * * * *",
		CreatedAt:    now.Add(-2 * time.Minute),
	}
	if !isDue(task, now) {
		t.Fatalf("expected a never-run every-minute cron task to be due")
	}
}

func TestIsDueCronNotYet(t *testing.T) {
	now := time.Now()
	last := now
	task := &model.Task{
		ScheduleKind:    model.ScheduleCron,
		CrontabExpr:     "0 0 * * *", // once a day at midnight
		LastExecuteTime: &last,
	}
	if isDue(task, now.Add(time.Minute)) {
		t.Fatalf("expected a daily cron task to not be due one minute after its last run")
	}
}

func TestIsDueCronInvalidExprNotDue(t *testing.T) {
	task := &model.Task{ScheduleKind: model.ScheduleCron, CrontabExpr: "not a cron expr"}
	if isDue(task, time.Now()) {
		t.Fatalf("an invalid cron expression must never be reported due")
	}
}
