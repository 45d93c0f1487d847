// Package repository persists installment plans in Postgres.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"estate_sales_backend/internal/paymentplans/domain"
	"estate_sales_backend/internal/paymentplans/service"
	"estate_sales_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides plan persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new payment plans repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const planColumns = `
	id, sale_id, client_id, amount, frequency, interval_days, start_date, next_due_date,
	status, update_history, created_by, created_at, updated_at`

func scanPlan(row pgx.Row) (*domain.Plan, error) {
	var p domain.Plan
	var frequency, status string
	var intervalDays *int
	var history []byte
	err := row.Scan(&p.ID, &p.SaleID, &p.ClientID, &p.Amount, &frequency, &intervalDays,
		&p.StartDate, &p.NextDueDate, &status, &history, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("plan not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scan plan: %w", err)
	}
	p.Frequency = domain.Frequency(frequency)
	p.Status = domain.Status(status)
	if intervalDays != nil {
		p.IntervalDays = *intervalDays
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &p.UpdateHistory); err != nil {
			return nil, fmt.Errorf("decode plan history: %w", err)
		}
	}
	return &p, nil
}

// Create inserts a new plan.
func (r *Repository) Create(ctx context.Context, plan *domain.Plan) error {
	var intervalDays *int
	if plan.IntervalDays > 0 {
		intervalDays = &plan.IntervalDays
	}
	history, err := json.Marshal(plan.UpdateHistory)
	if err != nil {
		return fmt.Errorf("encode plan history: %w", err)
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO payment_plans (id, sale_id, client_id, amount, frequency, interval_days, start_date, next_due_date, status, update_history, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		plan.ID, plan.SaleID, plan.ClientID, plan.Amount, string(plan.Frequency), intervalDays,
		plan.StartDate, plan.NextDueDate, string(plan.Status), history, plan.CreatedBy,
	).Scan(&plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// GetByID returns a plan by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	return scanPlan(r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM payment_plans WHERE id = $1`, id))
}

// ListBySale returns a sale's plans, newest first.
func (r *Repository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]domain.Plan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+planColumns+` FROM payment_plans
		WHERE sale_id = $1 ORDER BY created_at DESC`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// ListDue returns active plans due on or before the cutoff, joined with
// the sale code and client contact for the reminder.
func (r *Repository) ListDue(ctx context.Context, cutoff time.Time) ([]service.DuePlan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.sale_id, p.client_id, p.amount, p.frequency, p.interval_days,
		       p.start_date, p.next_due_date, p.status, p.update_history,
		       p.created_by, p.created_at, p.updated_at,
		       s.code, c.full_name, c.email, c.phone
		FROM payment_plans p
		JOIN sales s ON s.id = p.sale_id
		JOIN clients c ON c.id = p.client_id
		WHERE p.status = 'ACTIVE' AND p.next_due_date <= $1
		ORDER BY p.next_due_date`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list due plans: %w", err)
	}
	defer rows.Close()

	var due []service.DuePlan
	for rows.Next() {
		var d service.DuePlan
		var frequency, status string
		var intervalDays *int
		var history []byte
		err := rows.Scan(&d.Plan.ID, &d.Plan.SaleID, &d.Plan.ClientID, &d.Plan.Amount, &frequency, &intervalDays,
			&d.Plan.StartDate, &d.Plan.NextDueDate, &status, &history,
			&d.Plan.CreatedBy, &d.Plan.CreatedAt, &d.Plan.UpdatedAt,
			&d.SaleCode, &d.ClientName, &d.ClientEmail, &d.ClientPhone)
		if err != nil {
			return nil, fmt.Errorf("scan due plan: %w", err)
		}
		d.Plan.Frequency = domain.Frequency(frequency)
		d.Plan.Status = domain.Status(status)
		if intervalDays != nil {
			d.Plan.IntervalDays = *intervalDays
		}
		if len(history) > 0 {
			if err := json.Unmarshal(history, &d.Plan.UpdateHistory); err != nil {
				return nil, fmt.Errorf("decode plan history: %w", err)
			}
		}
		due = append(due, d)
	}
	return due, rows.Err()
}

// Advance moves an active plan's due date forward.
func (r *Repository) Advance(ctx context.Context, id uuid.UUID, nextDue time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE payment_plans SET next_due_date = $2, updated_at = now()
		WHERE id = $1 AND status = 'ACTIVE'`, id, nextDue)
	if err != nil {
		return fmt.Errorf("advance plan: %w", err)
	}
	return nil
}

// SetStatus updates a plan's lifecycle status and appends the audit entry.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status domain.Status, entry domain.HistoryEntry) error {
	encoded, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode plan history entry: %w", err)
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE payment_plans
		SET status = $2, update_history = update_history || $3::jsonb, updated_at = now()
		WHERE id = $1`, id, string(status), encoded)
	if err != nil {
		return fmt.Errorf("update plan status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("plan not found")
	}
	return nil
}

// FindSale returns the sale and client a plan would bind to.
func (r *Repository) FindSale(ctx context.Context, saleID uuid.UUID) (*service.SaleRef, error) {
	var ref service.SaleRef
	err := r.pool.QueryRow(ctx, `SELECT id, client_id FROM sales WHERE id = $1`, saleID).
		Scan(&ref.ID, &ref.ClientID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("sale not found")
	}
	if err != nil {
		return nil, fmt.Errorf("find sale: %w", err)
	}
	return &ref, nil
}

// Compile-time check that Repository satisfies the service port.
var _ service.Store = (*Repository)(nil)
