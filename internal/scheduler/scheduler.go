// Package scheduler implements the scan-and-dispatch component: a
// periodic due-scan over cron/interval/datetime tasks, dispatch to the
// worker queue, and the RUNNING->SUCCESS/FAILURE record lifecycle.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/caseflow/caseflow/internal/caserun"
	"github.com/caseflow/caseflow/internal/metrics"
	"github.com/caseflow/caseflow/internal/model"
	"github.com/caseflow/caseflow/internal/store"
	"github.com/caseflow/caseflow/internal/worker"
)

// DefaultScanInterval is recommended scan cadence.
const DefaultScanInterval = 30 * time.Second

// Scheduler periodically scans for due tasks and dispatches each to its
// own goroutine, serializing Record writes through pool so the pre-run
// and post-run updates for one celery_id never race.
type Scheduler struct {
	store    store.Store
	runner   *caserun.Runner
	pool     *worker.Pool
	logger   *slog.Logger
	interval time.Duration
	node     string
}

// New builds a Scheduler. logger may be nil; node identifies this
// process in Record.CeleryNode.
func New(st store.Store, runner *caserun.Runner, pool *worker.Pool, logger *slog.Logger, interval time.Duration, node string) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultScanInterval
	}
	return &Scheduler{store: st, runner: runner, pool: pool, logger: logger, interval: interval, node: node}
}

// Start runs the scan loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shut down")
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

// scan lists candidate due tasks and dispatches the ones that actually
// are due.
func (s *Scheduler) scan(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.SchedulerScanDuration.Observe(time.Since(start).Seconds())
	}()

	tasks, err := s.store.Tasks().ListDue(ctx, start)
	if err != nil {
		s.logger.Error("scheduler scan failed", "error", err)
		return
	}

	for _, task := range tasks {
		if !isDue(task, start) {
			continue
		}
		go s.dispatch(ctx, task)
	}
}

// dispatch runs one task's case batch to completion: create the RUNNING
// record, run the batch, then update the record to SUCCESS or FAILURE.
// Both record writes go through the worker pool's single loop.
func (s *Scheduler) dispatch(ctx context.Context, task *model.Task) {
	traceID := uuid.NewString()
	celeryID := uuid.NewString()
	logger := s.logger.With("task_code", task.Code, "trace_id", traceID, "celery_id", celeryID)

	metrics.SchedulerDispatches.WithLabelValues(string(task.ScheduleKind)).Inc()

	recStart := time.Now()
	recVal, err := s.pool.Submit(ctx, func(ctx context.Context) (any, error) {
		return s.store.Records().Create(ctx, &model.Record{
			TaskID:          task.ID,
			TaskName:        task.TaskName,
			TaskKwargs:      task.TaskKwargs,
			CeleryID:        celeryID,
			CeleryNode:      s.node,
			CeleryTraceID:   traceID,
			CeleryStatus:    model.RecordStatusRunning,
			CeleryScheduler: task.ScheduleKind,
			StartTime:       recStart,
		})
	})
	if err != nil {
		logger.Error("dispatch: create running record failed", "error", err)
		return
	}
	record := recVal.(*model.Record)

	// Advance last_execute_time before running the batch, not after: a
	// batch that outruns the scan interval must not still look un-dispatched
	// to the next due-scan and fire a second time for the same occurrence.
	if err := s.store.Tasks().UpdateLastExecute(ctx, task.ID, string(model.RecordStatusRunning), recStart); err != nil {
		logger.Error("dispatch: mark task running failed", "error", err)
	}

	summary := s.runner.RunBatch(ctx, task.TaskKwargs.CaseIDs, caserun.Options{
		EnvName:          task.TaskKwargs.EnvName,
		InitialVariables: task.TaskKwargs.InitialVariables,
		ReportType:       model.ReportTypeAsync,
		TaskCode:         task.Code,
		Persist:          true,
	})

	status := model.RecordStatusSuccess
	errText := ""
	if !summary.AllSuccess {
		status = model.RecordStatusFailure
		errText = fmt.Sprintf("%d/%d cases failed", summary.FailedCases, summary.TotalCases)
	}
	summaryText := fmt.Sprintf("success_rate=%.2f total=%d success=%d failed=%d",
		summary.SuccessRate, summary.TotalCases, summary.SuccessCases, summary.FailedCases)

	endTime := time.Now()
	_, err = s.pool.Submit(ctx, func(ctx context.Context) (any, error) {
		return nil, s.store.Records().UpdateStatus(ctx, record.ID, status, endTime, summaryText, errText)
	})
	if err != nil {
		logger.Error("dispatch: update record status failed", "error", err)
	}

	if err := s.store.Tasks().UpdateLastExecute(ctx, task.ID, string(status), endTime); err != nil {
		logger.Error("dispatch: update task last-execute failed", "error", err)
	}

	logger.Info("dispatch finished", "status", status, "summary", summaryText)
}
