package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/model"
)

type detailRepo struct {
	q querier
}

// CreateBatch inserts every detail row via pgx's binary CopyFrom protocol
// — every case run emits one detail per step instance (one per loop
// cycle), so batching avoids a round trip per row).
func (r *detailRepo) CreateBatch(ctx context.Context, details []*model.Detail) error {
	if len(details) == 0 {
		return nil
	}
	rows := make([][]any, len(details))
	for i, d := range details {
		req, err := marshalJSONB(d.Request)
		if err != nil {
			return err
		}
		resp, err := marshalJSONB(d.Response)
		if err != nil {
			return err
		}
		sv, err := marshalJSONB(d.SessionVariables)
		if err != nil {
			return err
		}
		dv, err := marshalJSONB(d.DefinedVariables)
		if err != nil {
			return err
		}
		ev, err := marshalJSONB(d.ExtractVariables)
		if err != nil {
			return err
		}
		av, err := marshalJSONB(d.AssertValidators)
		if err != nil {
			return err
		}
		logs, err := marshalJSONB(d.Logs)
		if err != nil {
			return err
		}
		rows[i] = []any{
			d.ReportCode, d.CaseCode, d.StepCode, d.StepName, d.StepType, d.NumCycles,
			d.Success, d.Message, d.ErrorText, req, resp, sv, dv, ev, av, logs,
			d.StartTime, d.EndTime, d.ElapsedSec,
		}
	}

	columns := []string{
		"report_code", "case_code", "step_code", "step_name", "step_type", "num_cycles",
		"success", "message", "error", "request", "response", "session_variables",
		"defined_variables", "extract_variables", "assert_validators", "logs",
		"start_time", "end_time", "elapsed_seconds",
	}
	_, err := r.q.(interface {
		CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	}).CopyFrom(ctx, pgx.Identifier{"details"}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("batch insert details: %w", err)
	}
	return nil
}

func (r *detailRepo) ListByReport(ctx context.Context, reportCode string) ([]*model.Detail, error) {
	rows, err := r.q.Query(ctx, `
		SELECT report_code, case_code, step_code, step_name, step_type, num_cycles,
		       success, message, error, request, response, session_variables,
		       defined_variables, extract_variables, assert_validators, logs,
		       start_time, end_time, elapsed_seconds
		FROM details WHERE report_code = $1 ORDER BY id`, reportCode)
	if err != nil {
		return nil, fmt.Errorf("list details: %w", err)
	}
	defer rows.Close()

	var out []*model.Detail
	for rows.Next() {
		var d model.Detail
		var req, resp, sv, dv, ev, av, logs []byte
		if err := rows.Scan(&d.ReportCode, &d.CaseCode, &d.StepCode, &d.StepName, &d.StepType,
			&d.NumCycles, &d.Success, &d.Message, &d.ErrorText, &req, &resp, &sv, &dv, &ev, &av, &logs,
			&d.StartTime, &d.EndTime, &d.ElapsedSec); err != nil {
			return nil, fmt.Errorf("scan detail: %w", err)
		}
		if err := unmarshalJSONB(req, &d.Request); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(resp, &d.Response); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(sv, &d.SessionVariables); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(dv, &d.DefinedVariables); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(ev, &d.ExtractVariables); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(av, &d.AssertValidators); err != nil {
			return nil, err
		}
		if err := unmarshalJSONB(logs, &d.Logs); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}
