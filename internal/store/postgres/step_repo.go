package postgres

import (
	"context"
	"fmt"

	"github.com/caseflow/caseflow/internal/model"
)

type stepRepo struct {
	q querier
}

// CreateTree inserts roots and their full descendant tree (Children and,
// for QUOTE steps, QuoteSteps are not separately persisted — a QUOTE
// step only stores QuoteCaseID and resolves the referenced case's own
// tree at run time) under caseID, depth-first, so a child's
// parent_step_id is always already committed.
func (r *stepRepo) CreateTree(ctx context.Context, caseID int64, roots []*model.Step) error {
	for _, root := range roots {
		if err := r.insertSubtree(ctx, caseID, nil, root); err != nil {
			return err
		}
	}
	return nil
}

func (r *stepRepo) insertSubtree(ctx context.Context, caseID int64, parentID *int64, s *model.Step) error {
	payload, err := marshalJSONB(toStepPayload(s))
	if err != nil {
		return err
	}
	row := r.q.QueryRow(ctx, `
		INSERT INTO steps (case_id, step_no, step_code, step_name, step_type, parent_step_id, quote_case_id, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING step_id`,
		caseID, s.StepNo, s.StepCode, s.StepName, s.StepType, parentID, s.QuoteCaseID, payload)
	var id int64
	if err := row.Scan(&id); err != nil {
		return fmt.Errorf("insert step %s: %w", s.StepCode, err)
	}
	s.ID = id
	s.CaseID = caseID
	for _, child := range s.Children {
		if err := r.insertSubtree(ctx, caseID, &id, child); err != nil {
			return err
		}
	}
	return nil
}

// LoadTree returns caseID's root steps (parent_step_id IS NULL) with
// Children stitched in, ordered by step_no at every level.
func (r *stepRepo) LoadTree(ctx context.Context, caseID int64) ([]*model.Step, error) {
	rows, err := r.q.Query(ctx, `
		SELECT step_id, case_id, step_no, step_code, step_name, step_type,
		       parent_step_id, quote_case_id, payload, state, created_at, updated_at
		FROM steps WHERE case_id = $1 AND state = 0 ORDER BY step_no`, caseID)
	if err != nil {
		return nil, fmt.Errorf("load step tree: %w", err)
	}
	defer rows.Close()

	byID := map[int64]*model.Step{}
	children := map[int64][]int64{}
	var roots []int64

	for rows.Next() {
		var s model.Step
		var parentID *int64
		var payload []byte
		if err := rows.Scan(&s.ID, &s.CaseID, &s.StepNo, &s.StepCode, &s.StepName, &s.StepType,
			&parentID, &s.QuoteCaseID, &payload, &s.State, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		var p stepPayload
		if err := unmarshalJSONB(payload, &p); err != nil {
			return nil, err
		}
		applyStepPayload(&s, p)
		s.ParentStepID = parentID
		byID[s.ID] = &s
		if parentID == nil {
			roots = append(roots, s.ID)
		} else {
			children[*parentID] = append(children[*parentID], s.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var attach func(id int64) *model.Step
	attach = func(id int64) *model.Step {
		s := byID[id]
		for _, childID := range children[id] {
			s.Children = append(s.Children, attach(childID))
		}
		return s
	}

	out := make([]*model.Step, 0, len(roots))
	for _, id := range roots {
		out = append(out, attach(id))
	}
	return out, nil
}
