// Package postgres implements the persistence ports on PostgreSQL via
// pgx. Every state-machine transition is a conditional UPDATE so the
// precondition is re-validated by the database at write time.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"performer-marketplace/internal/core/ports"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting the same
// repository code run pooled or transaction-scoped.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL implementation of the ports.Store port.
type Store struct {
	pool *pgxpool.Pool
	q    querier
}

// NewStore connects a pgx pool and verifies the connection.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Store{pool: pool, q: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Users() ports.UserRepository           { return &UserRepo{q: s.q} }
func (s *Store) Services() ports.ServiceRepository     { return &ServiceRepo{q: s.q} }
func (s *Store) Bookings() ports.BookingRepository     { return &BookingRepo{q: s.q} }
func (s *Store) Referrals() ports.ReferralRepository   { return &ReferralRepo{q: s.q} }
func (s *Store) Vetting() ports.VettingRepository      { return &VettingRepo{q: s.q} }
func (s *Store) Performers() ports.PerformerRepository { return &PerformerRepo{q: s.q} }
func (s *Store) Audit() ports.AuditRecorder            { return &AuditRepo{q: s.q} }

// WithTx runs fn against a transaction-bound Store. Commit on nil, full
// rollback on error; partial application is never left behind.
func (s *Store) WithTx(ctx context.Context, fn func(ports.Store) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&Store{pool: s.pool, q: tx})
	})
}
