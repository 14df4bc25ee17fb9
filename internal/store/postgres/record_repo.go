package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/caseflow/caseflow/internal/model"
)

type recordRepo struct {
	q querier
}

func (r *recordRepo) Create(ctx context.Context, rec *model.Record) (*model.Record, error) {
	kwargs, err := marshalJSONB(rec.TaskKwargs)
	if err != nil {
		return nil, err
	}
	row := r.q.QueryRow(ctx, `
		INSERT INTO records (task_id, task_name, task_kwargs, celery_id, celery_node, celery_trace_id,
		                      celery_status, celery_scheduler, celery_start_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, task_id, task_name, task_kwargs, celery_id, celery_node, celery_trace_id,
		          celery_status, celery_scheduler, celery_start_time, celery_end_time,
		          celery_duration, task_summary, task_error`,
		rec.TaskID, rec.TaskName, kwargs, rec.CeleryID, rec.CeleryNode, rec.CeleryTraceID,
		rec.CeleryStatus, rec.CeleryScheduler, rec.StartTime)
	var out model.Record
	var rawKwargs []byte
	err = row.Scan(&out.ID, &out.TaskID, &out.TaskName, &rawKwargs, &out.CeleryID, &out.CeleryNode,
		&out.CeleryTraceID, &out.CeleryStatus, &out.CeleryScheduler, &out.StartTime, &out.EndTime,
		&out.DurationSec, &out.TaskSummary, &out.TaskError)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}
	if err := unmarshalJSONB(rawKwargs, &out.TaskKwargs); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *recordRepo) UpdateStatus(ctx context.Context, id int64, status model.RecordStatus, endTime time.Time, summary, errText string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE records
		SET celery_status = $2, celery_end_time = $3,
		    celery_duration = EXTRACT(EPOCH FROM ($3 - celery_start_time)),
		    task_summary = $4, task_error = $5
		WHERE id = $1`, id, status, endTime, summary, errText)
	if err != nil {
		return fmt.Errorf("update record %d: %w", id, err)
	}
	return nil
}
