package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/caseflow/caseflow/internal/model"
)

type tagRepo struct {
	q querier
}

func (r *tagRepo) Create(ctx context.Context, t *model.Tag) (*model.Tag, error) {
	row := r.q.QueryRow(ctx, `
		INSERT INTO tags (code, tag_project, tag_type, tag_mode, tag_name)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, code, tag_project, tag_type, tag_mode, tag_name, state, created_at`,
		t.Code, t.Project, t.TagType, t.TagMode, t.TagName)
	return scanTag(row)
}

func (r *tagRepo) List(ctx context.Context, projectID int64) ([]*model.Tag, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, code, tag_project, tag_type, tag_mode, tag_name, state, created_at
		FROM tags WHERE tag_project = $1 AND state = 0 ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var out []*model.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTag(row rowScanner) (*model.Tag, error) {
	var t model.Tag
	err := row.Scan(&t.ID, &t.Code, &t.Project, &t.TagType, &t.TagMode, &t.TagName, &t.State, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan tag: %w", err)
	}
	return &t, nil
}
