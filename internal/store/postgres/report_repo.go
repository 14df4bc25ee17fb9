package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/model"
)

type reportRepo struct {
	q querier
}

func (r *reportRepo) Create(ctx context.Context, rep *model.Report) (*model.Report, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO reports (report_code, case_id, case_code, report_type, task_code, batch_code,
		                      step_total, step_fail_count, step_pass_count, step_pass_ratio,
		                      start_time, end_time, elapsed_seconds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, report_code, case_id, case_code, report_type, task_code, batch_code,
		          step_total, step_fail_count, step_pass_count, step_pass_ratio,
		          start_time, end_time, elapsed_seconds, created_at`,
		rep.ReportCode, rep.CaseID, rep.CaseCode, rep.ReportType, rep.TaskCode, rep.BatchCode,
		rep.StepTotal, rep.StepFailCount, rep.StepPassCount, rep.StepPassRatio,
		rep.StartTime, rep.EndTime, rep.ElapsedSec)
	return scanReport(row)
}

func (r *reportRepo) GetByCode(ctx context.Context, code string) (*model.Report, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, report_code, case_id, case_code, report_type, task_code, batch_code,
		       step_total, step_fail_count, step_pass_count, step_pass_ratio,
		       start_time, end_time, elapsed_seconds, created_at
		FROM reports WHERE report_code = $1`, code)
	rep, err := scanReport(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewNotFoundError("report", code)
		}
		return nil, err
	}
	return rep, nil
}

func scanReport(row rowScanner) (*model.Report, error) {
	var rep model.Report
	err := row.Scan(&rep.ID, &rep.ReportCode, &rep.CaseID, &rep.CaseCode, &rep.ReportType,
		&rep.TaskCode, &rep.BatchCode, &rep.StepTotal, &rep.StepFailCount, &rep.StepPassCount,
		&rep.StepPassRatio, &rep.StartTime, &rep.EndTime, &rep.ElapsedSec, &rep.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan report: %w", err)
	}
	return &rep, nil
}
