// Package postgres is the pgx-backed implementation of internal/store's
// repository interfaces, grounded on ErlanBelekov-dist-job-scheduler's
// internal/infrastructure/postgres package (pool construction, one
// struct-per-entity repository, pgx.Row/Rows scan helpers).
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caseflow/caseflow/internal/store"
)

// NewPool opens a connection pool against dsn, sized per cfg, and
// verifies connectivity with a ping before returning.
func NewPool(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// querier is the subset of *pgxpool.Pool and pgx.Tx that repositories
// need; satisfied by both so every repository runs identically whether
// it holds the pool or a CaseRunStore.RunAtomic transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the pgxpool-backed store.Store implementation.
type Store struct {
	pool *pgxpool.Pool
}

// New builds a Store over an already-opened pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Projects() store.ProjectRepository         { return &projectRepo{q: s.pool} }
func (s *Store) Environments() store.EnvironmentRepository { return &environmentRepo{q: s.pool} }
func (s *Store) Tags() store.TagRepository                 { return &tagRepo{q: s.pool} }
func (s *Store) Cases() store.CaseRepository               { return &caseRepo{q: s.pool} }
func (s *Store) Steps() store.StepRepository                { return &stepRepo{q: s.pool} }
func (s *Store) Reports() store.ReportRepository           { return &reportRepo{q: s.pool} }
func (s *Store) Details() store.DetailRepository           { return &detailRepo{q: s.pool} }
func (s *Store) Tasks() store.TaskRepository                { return &taskRepo{q: s.pool} }
func (s *Store) Records() store.RecordRepository           { return &recordRepo{q: s.pool} }
func (s *Store) CaseRuns() store.CaseRunStore               { return &caseRunStore{pool: s.pool} }

func (s *Store) Close() { s.pool.Close() }
