package postgres

import (
	"context"
	"encoding/json"
	"time"

	"go-interview-scheduler/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type recurringAvailabilityRepo struct {
	db *pgxpool.Pool
}

// NewRecurringAvailabilityRepository creates the weekly rule store
func NewRecurringAvailabilityRepository(db *pgxpool.Pool) domain.RecurringAvailabilityRepository {
	return &recurringAvailabilityRepo{db: db}
}

const recurringColumns = `id, employer_id, days, status, effective_from, effective_until, created_at, updated_at`

func (r *recurringAvailabilityRepo) Create(ctx context.Context, rule *domain.RecurringAvailabilityRule) error {
	days, err := json.Marshal(rule.Days)
	if err != nil {
		return err
	}

	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	if rule.Status == "" {
		rule.Status = domain.AvailabilityStatusActive
	}

	query := `
		INSERT INTO recurring_availability_rules (employer_id, days, status, effective_from, effective_until, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err = conn(ctx, r.db).QueryRow(ctx, query,
		rule.EmployerID, string(days), rule.Status, rule.EffectiveFrom.Time, dateArg(rule.EffectiveUntil),
		rule.CreatedAt, rule.UpdatedAt,
	).Scan(&rule.ID)
	return mapConstraintError(err)
}

func (r *recurringAvailabilityRepo) GetByID(ctx context.Context, id int64) (*domain.RecurringAvailabilityRule, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_availability_rules WHERE id = $1`
	rule, err := scanRecurringRule(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return rule, nil
}

func (r *recurringAvailabilityRepo) Update(ctx context.Context, rule *domain.RecurringAvailabilityRule) error {
	days, err := json.Marshal(rule.Days)
	if err != nil {
		return err
	}
	rule.UpdatedAt = time.Now()

	query := `
		UPDATE recurring_availability_rules
		SET days = $2, effective_from = $3, effective_until = $4, updated_at = $5
		WHERE id = $1`
	tag, err := conn(ctx, r.db).Exec(ctx, query,
		rule.ID, string(days), rule.EffectiveFrom.Time, dateArg(rule.EffectiveUntil), rule.UpdatedAt,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *recurringAvailabilityRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE recurring_availability_rules SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, status)
	if err != nil {
		return mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *recurringAvailabilityRepo) ListByEmployer(ctx context.Context, employerID string) ([]domain.RecurringAvailabilityRule, error) {
	query := `SELECT ` + recurringColumns + `
		FROM recurring_availability_rules
		WHERE employer_id = $1 AND status <> 'inactive'
		ORDER BY created_at DESC`
	return r.list(ctx, query, employerID)
}

func (r *recurringAvailabilityRepo) ListActive(ctx context.Context, employerID string, from, to domain.Date) ([]domain.RecurringAvailabilityRule, error) {
	query := `SELECT ` + recurringColumns + `
		FROM recurring_availability_rules
		WHERE employer_id = $1
		  AND status = 'active'
		  AND effective_from <= $3
		  AND (effective_until IS NULL OR effective_until >= $2)
		ORDER BY id`
	return r.list(ctx, query, employerID, from.Time, to.Time)
}

func (r *recurringAvailabilityRepo) list(ctx context.Context, query string, args ...any) ([]domain.RecurringAvailabilityRule, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []domain.RecurringAvailabilityRule
	for rows.Next() {
		rule, err := scanRecurringRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *rule)
	}
	return rules, rows.Err()
}

func scanRecurringRule(row pgx.Row) (*domain.RecurringAvailabilityRule, error) {
	var (
		rule  domain.RecurringAvailabilityRule
		days  []byte
		from  time.Time
		until *time.Time
	)
	if err := row.Scan(
		&rule.ID, &rule.EmployerID, &days, &rule.Status, &from, &until, &rule.CreatedAt, &rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(days, &rule.Days); err != nil {
		return nil, err
	}
	rule.EffectiveFrom = domain.DateOf(from)
	if until != nil {
		d := domain.DateOf(*until)
		rule.EffectiveUntil = &d
	}
	return &rule, nil
}
