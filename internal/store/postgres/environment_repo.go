package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/model"
)

type environmentRepo struct {
	q querier
}

func (r *environmentRepo) Create(ctx context.Context, e *model.Environment) (*model.Environment, error) {
	headers, err := marshalJSONB(e.GlobalHeaders)
	if err != nil {
		return nil, err
	}
	row := r.q.QueryRow(ctx, `
		INSERT INTO environments (code, project_id, env_name, host, port, env_desc, env_global_headers)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, code, project_id, env_name, host, port, env_desc, env_global_headers, state, created_at, updated_at`,
		e.Code, e.ProjectID, e.EnvName, e.Host, e.Port, e.Desc, headers)
	return scanEnvironment(row)
}

func (r *environmentRepo) GetByProjectAndName(ctx context.Context, projectID int64, envName string) (*model.Environment, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, code, project_id, env_name, host, port, env_desc, env_global_headers, state, created_at, updated_at
		FROM environments WHERE project_id = $1 AND env_name = $2 AND state = 0`,
		projectID, envName)
	e, err := scanEnvironment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewNotFoundError("environment", envName)
		}
		return nil, err
	}
	return e, nil
}

func (r *environmentRepo) List(ctx context.Context, projectID int64) ([]*model.Environment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, code, project_id, env_name, host, port, env_desc, env_global_headers, state, created_at, updated_at
		FROM environments WHERE project_id = $1 AND state = 0 ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list environments: %w", err)
	}
	defer rows.Close()

	var out []*model.Environment
	for rows.Next() {
		e, err := scanEnvironment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEnvironment(row rowScanner) (*model.Environment, error) {
	var e model.Environment
	var headers []byte
	err := row.Scan(&e.ID, &e.Code, &e.ProjectID, &e.EnvName, &e.Host, &e.Port, &e.Desc,
		&headers, &e.State, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan environment: %w", err)
	}
	if err := unmarshalJSONB(headers, &e.GlobalHeaders); err != nil {
		return nil, err
	}
	return &e, nil
}
