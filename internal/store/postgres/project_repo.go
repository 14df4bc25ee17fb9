package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/model"
)

type projectRepo struct {
	q querier
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) (*model.Project, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO projects (code, name, description)
		VALUES ($1, $2, $3)
		RETURNING id, code, name, description, state, created_at, updated_at`,
		p.Code, p.Name, p.Description)
	return scanProject(row)
}

func (r *projectRepo) GetByCode(ctx context.Context, code string) (*model.Project, error) {
	row := r.q.QueryRow(ctx, `
		SELECT id, code, name, description, state, created_at, updated_at
		FROM projects WHERE code = $1 AND state = 0`, code)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewNotFoundError("project", code)
		}
		return nil, err
	}
	return p, nil
}

func (r *projectRepo) List(ctx context.Context) ([]*model.Project, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, code, name, description, state, created_at, updated_at
		FROM projects WHERE state = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []*model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Description, &p.State, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &p, nil
}
