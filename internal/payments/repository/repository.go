// Package repository implements the payment ledger against Postgres.
// Allocation and reversal lock the sale row with SELECT ... FOR UPDATE so
// two concurrent payments on one sale serialize instead of racing the
// read-modify-write of the ledger fields.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"estate_sales_backend/internal/payments/service"
	"estate_sales_backend/internal/sales/domain"
	salesrepo "estate_sales_backend/internal/sales/repository"
	"estate_sales_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentNotFoundMsg = "payment not found"

// Repository provides transactional ledger operations.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new payments repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const paymentColumns = `
	id, sale_id, client_id, amount, payment_type, payment_method, status, transaction_ref,
	house_id, plot_id, recorded_by, created_at`

func scanPayment(row pgx.Row) (*service.Payment, error) {
	var p service.Payment
	var ptype, method string
	err := row.Scan(&p.ID, &p.SaleID, &p.ClientID, &p.Amount, &ptype, &method, &p.Status,
		&p.TransactionRef, &p.HouseID, &p.PlotID, &p.RecordedBy, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(paymentNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	p.Type = domain.PaymentType(ptype)
	p.Method = domain.PaymentMethod(method)
	return &p, nil
}

// Allocate applies a payment inside a single transaction: the sale row is
// locked, the ledger rules run in memory, and the payment row plus the
// updated sale are committed together.
func (r *Repository) Allocate(ctx context.Context, params service.AllocationParams) (*service.AllocationResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin allocate: %w", err)
	}
	defer tx.Rollback(ctx)

	sale, err := lockSale(ctx, tx, params.SaleID)
	if err != nil {
		return nil, err
	}

	if err := sale.ApplyPayment(params.Amount, params.Type); err != nil {
		return nil, err
	}

	paymentID := uuid.New()
	settled := sale.PaymentStatus == domain.PaymentPaid

	entry := domain.HistoryEntry{
		Action:   domain.ActionUpdate,
		ActionBy: params.RecordedBy,
		Update: &domain.UpdatePayload{
			Operation:  "PAYMENT",
			PaymentID:  paymentID,
			Amount:     params.Amount,
			PaidAmount: sale.PaidAmount,
		},
	}
	if settled {
		entry = domain.HistoryEntry{
			Action:   domain.ActionSettle,
			ActionBy: params.RecordedBy,
			Settle: &domain.SettlePayload{
				PaymentID:    paymentID,
				Amount:       params.Amount,
				TotalPayable: sale.TotalPayable,
			},
		}
	}
	sale.AppendHistory(entry)

	if err := updateSaleLedger(ctx, tx, sale); err != nil {
		return nil, err
	}

	var houseID, plotID *uuid.UUID
	if sale.PropertyKind == domain.PropertyHouse {
		houseID = &sale.PropertyID
	} else {
		plotID = &sale.PropertyID
	}

	payment := service.Payment{
		ID:             paymentID,
		SaleID:         sale.ID,
		ClientID:       sale.ClientID,
		Amount:         params.Amount,
		Type:           params.Type,
		Method:         params.Method,
		Status:         "SUCCESS",
		TransactionRef: uuid.NewString(),
		HouseID:        houseID,
		PlotID:         plotID,
		RecordedBy:     &params.RecordedBy,
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (id, sale_id, client_id, amount, payment_type, payment_method, status, transaction_ref, house_id, plot_id, recorded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`,
		payment.ID, payment.SaleID, payment.ClientID, payment.Amount,
		string(payment.Type), string(payment.Method), payment.Status, payment.TransactionRef,
		payment.HouseID, payment.PlotID, payment.RecordedBy,
	).Scan(&payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	name, email, phone, err := clientContact(ctx, tx, sale.ClientID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit allocate: %w", err)
	}

	return &service.AllocationResult{
		Payment:      payment,
		SaleCode:     sale.Code,
		PaidAmount:   sale.PaidAmount,
		TotalPayable: sale.TotalPayable,
		Settled:      settled,
		ClientName:   name,
		ClientEmail:  email,
		ClientPhone:  phone,
	}, nil
}

// Reverse rolls back a payment inside a single transaction. Deleting the
// payment row first makes re-deletion fail with not-found instead of
// double-reversing the ledger.
func (r *Repository) Reverse(ctx context.Context, paymentID, reversedBy uuid.UUID) (*service.ReversalResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reverse: %w", err)
	}
	defer tx.Rollback(ctx)

	payment, err := scanPayment(tx.QueryRow(ctx, `
		DELETE FROM payments WHERE id = $1
		RETURNING `+paymentColumns, paymentID))
	if err != nil {
		return nil, err
	}

	sale, err := lockSale(ctx, tx, payment.SaleID)
	if err != nil {
		return nil, err
	}

	if err := sale.ReversePayment(payment.Amount, payment.Type); err != nil {
		return nil, err
	}

	sale.AppendHistory(domain.HistoryEntry{
		Action:   domain.ActionCancel,
		ActionBy: reversedBy,
		Cancel: &domain.CancelPayload{
			PaymentID:  payment.ID,
			Amount:     payment.Amount,
			PaidAmount: sale.PaidAmount,
		},
	})

	if err := updateSaleLedger(ctx, tx, sale); err != nil {
		return nil, err
	}

	name, email, phone, err := clientContact(ctx, tx, sale.ClientID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reverse: %w", err)
	}

	return &service.ReversalResult{
		Payment:     *payment,
		SaleCode:    sale.Code,
		PaidAmount:  sale.PaidAmount,
		ClientName:  name,
		ClientEmail: email,
		ClientPhone: phone,
	}, nil
}

// GetPayment returns a payment by id.
func (r *Repository) GetPayment(ctx context.Context, id uuid.UUID) (*service.Payment, error) {
	return scanPayment(r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

// ListBySale returns a sale's payments, newest first.
func (r *Repository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]service.Payment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE sale_id = $1 ORDER BY created_at DESC`, saleID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []service.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func lockSale(ctx context.Context, tx pgx.Tx, saleID uuid.UUID) (*domain.Sale, error) {
	return salesrepo.ScanSale(tx.QueryRow(ctx, `
		SELECT `+salesrepo.SaleColumns+`
		FROM sales WHERE id = $1
		FOR UPDATE`, saleID))
}

func updateSaleLedger(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error {
	history, err := json.Marshal(sale.UpdateHistory)
	if err != nil {
		return fmt.Errorf("encode sale history: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE sales SET
			sale_status = $2, payment_status = $3,
			property_payable_paid = $4, agency_fee_paid = $5,
			infrastructure_paid = $6, facility_paid = $7, water_paid = $8, electricity_paid = $9,
			supervision_paid = $10, authority_paid = $11, other_paid = $12,
			paid_amount = $13, update_history = $14, updated_at = now()
		WHERE id = $1`,
		sale.ID, string(sale.Status), string(sale.PaymentStatus),
		sale.PropertyPayablePaid, sale.AgencyFeePaid,
		sale.FeesPaid.Infrastructure, sale.FeesPaid.Facility, sale.FeesPaid.Water, sale.FeesPaid.Electricity,
		sale.FeesPaid.Supervision, sale.FeesPaid.Authority, sale.FeesPaid.Other,
		sale.PaidAmount, history,
	)
	if err != nil {
		return fmt.Errorf("update sale ledger: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("sale not found")
	}
	return nil
}

func clientContact(ctx context.Context, tx pgx.Tx, clientID uuid.UUID) (name, email, phone string, err error) {
	err = tx.QueryRow(ctx, `
		SELECT full_name, email, phone FROM clients WHERE id = $1`, clientID,
	).Scan(&name, &email, &phone)
	if errors.Is(err, pgx.ErrNoRows) {
		// The sale exists without a client row only in broken data; keep
		// the allocation and send no contact.
		return "", "", "", nil
	}
	if err != nil {
		return "", "", "", fmt.Errorf("client contact: %w", err)
	}
	return name, email, phone, nil
}

// Compile-time check that Repository satisfies the service port.
var _ service.Ledger = (*Repository)(nil)
