package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caseflow/caseflow/internal/store"
)

// caseRunStore implements store.CaseRunStore: one pgx transaction shared
// by a Report/Detail/Case repository triple, wrapping the multi-table
// write in a single pgx.Tx.
type caseRunStore struct {
	pool *pgxpool.Pool
}

func (s *caseRunStore) RunAtomic(ctx context.Context, fn func(ctx context.Context, reports store.ReportRepository, details store.DetailRepository, cases store.CaseRepository) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin case-run transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	reports := &reportRepo{q: tx}
	details := &detailRepo{q: tx}
	cases := &caseRepo{q: tx}

	if err := fn(ctx, reports, details, cases); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit case-run transaction: %w", err)
	}
	return nil
}
