package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

// Unique indexes whose violations carry domain meaning
const (
	constraintActiveBooking         = "slot_bookings_active_key"
	constraintActiveInterview       = "interviews_active_application_key"
	constraintInterviewSlot         = "interviews_employer_slot_key"
	constraintSpecificGoverningDate = "specific_availabilities_governing_key"
	constraintActiveRecurringRule   = "recurring_rules_active_employer_key"
)

// dbtx is the subset shared by *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// conn returns the transaction carried by ctx, or the pool.
func conn(ctx context.Context, pool *pgxpool.Pool) dbtx {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return pool
}

type txManager struct {
	db *pgxpool.Pool
}

func NewTransactor(db *pgxpool.Pool) domain.Transactor {
	return &txManager{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
// Nested calls join the outer transaction.
func (m *txManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Log.Warn("rollback failed", "error", rbErr)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapConstraintError(fmt.Errorf("commit tx: %w", err))
	}
	return nil
}

// mapConstraintError translates unique violations on known indexes into domain errors.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case constraintActiveBooking, constraintInterviewSlot:
		return domain.ErrSlotTaken
	case constraintActiveInterview:
		return domain.ErrActiveInterviewExists
	case constraintSpecificGoverningDate:
		return domain.ErrScheduleDateTaken
	case constraintActiveRecurringRule:
		return domain.ErrRecurringRuleExists
	}
	return err
}

// notFound maps pgx.ErrNoRows to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
