package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/model"
)

type caseRepo struct {
	q querier
}

func (r *caseRepo) Create(ctx context.Context, c *model.Case) (*model.Case, error) {
	sv, err := marshalJSONB(c.SessionVariables)
	if err != nil {
		return nil, err
	}
	tags, err := marshalJSONB(c.CaseTags)
	if err != nil {
		return nil, err
	}
	row := r.q.QueryRow(ctx, `
		INSERT INTO cases (code, case_name, case_project, created_user, case_type, case_tags,
		                    case_version, session_variables, case_desc, case_priority)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, code, case_name, case_project, created_user, case_type, case_tags, case_version,
		          session_variables, case_desc, case_priority, last_run_state, last_run_at,
		          state, created_at, updated_at`,
		c.Code, c.CaseName, c.CaseProject, c.CreatedUser, c.CaseType, tags,
		c.CaseVersion, sv, c.CaseDesc, c.CasePriority)
	return scanCase(row)
}

func (r *caseRepo) GetByCode(ctx context.Context, code string) (*model.Case, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, code, case_name, case_project, created_user, case_type, case_tags, case_version,
		       session_variables, case_desc, case_priority, last_run_state, last_run_at,
		       state, created_at, updated_at
		FROM cases WHERE code = $1 AND state = 0`, code)
	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewNotFoundError("case", code)
		}
		return nil, err
	}
	return c, nil
}

func (r *caseRepo) GetByID(ctx context.Context, id int64) (*model.Case, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, code, case_name, case_project, created_user, case_type, case_tags, case_version,
		       session_variables, case_desc, case_priority, last_run_state, last_run_at,
		       state, created_at, updated_at
		FROM cases WHERE id = $1 AND state = 0`, id)
	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewNotFoundError("case", fmt.Sprintf("%d", id))
		}
		return nil, err
	}
	return c, nil
}

func (r *caseRepo) EnsureQuotable(ctx context.Context, id int64) error {
	var caseType model.CaseType
	err := r.q.QueryRow(ctx, `SELECT case_type FROM cases WHERE id = $1 AND state = 0`, id).Scan(&caseType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.NewNotFoundError("case", fmt.Sprintf("%d", id))
		}
		return fmt.Errorf("check quotable case %d: %w", id, err)
	}
	if caseType != model.CaseTypePublicScript {
		return model.NewParameterError("quote_case_id", "referenced case is not a PUBLIC_SCRIPT case")
	}
	return nil
}

func (r *caseRepo) UpdateLastRun(ctx context.Context, caseID int64, state string, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		UPDATE cases SET last_run_state = $2, last_run_at = $3, updated_at = NOW()
		WHERE id = $1`, caseID, state, at)
	if err != nil {
		return fmt.Errorf("update case last-run %d: %w", caseID, err)
	}
	return nil
}

func scanCase(row rowScanner) (*model.Case, error) {
	var c model.Case
	var tags, sv []byte
	err := row.Scan(&c.ID, &c.Code, &c.CaseName, &c.CaseProject, &c.CreatedUser, &c.CaseType, &tags,
		&c.CaseVersion, &sv, &c.CaseDesc, &c.CasePriority, &c.LastRunState, &c.LastRunAt,
		&c.State, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan case: %w", err)
	}
	if err := unmarshalJSONB(tags, &c.CaseTags); err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(sv, &c.SessionVariables); err != nil {
		return nil, err
	}
	return &c, nil
}
