package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/caseflow/caseflow/internal/model"
)

// isDue reports whether task should fire at now. Interval and datetime
// tasks are already filtered by the SQL in TaskRepository.ListDue; this
// only has real work left to do for cron tasks, whose next-fire
// calculation SQL can't express.
func isDue(task *model.Task, now time.Time) bool {
	if task.ScheduleKind != model.ScheduleCron {
		return true
	}
	sched, err := cron.ParseStandard(task.CrontabExpr)
	if err != nil {
		return false
	}
	base := task.CreatedAt
	if task.LastExecuteTime != nil {
		base = *task.LastExecuteTime
	}
	return !sched.Next(base).After(now)
}
