package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"estate_sales_backend/internal/sales/domain"
	"estate_sales_backend/internal/sales/service"
	"estate_sales_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const saleNotFoundMsg = "sale not found"

// Repository persists the sale aggregate. Creation and approval run in a
// single transaction together with the property and counter updates so a
// failure never leaves the records half consistent.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new sales repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaleColumns is the select list matching ScanSale. The payments
// repository reuses it when locking the sale row.
const SaleColumns = `
	id, code, transaction_ref, client_id, agent_id, property_kind, property_id, reservation_id,
	sale_status, payment_status, registration_fees_status,
	property_payable, discount, agency_fee,
	infrastructure_fee, facility_fee, water_fee, electricity_fee, supervision_fee, authority_fee, other_fee,
	total_payable,
	property_payable_paid, agency_fee_paid,
	infrastructure_paid, facility_paid, water_paid, electricity_paid, supervision_paid, authority_paid, other_paid,
	paid_amount,
	applicant_name, applicant_email, applicant_phone, applicant_occupation, applicant_address,
	next_of_kin_name, next_of_kin_phone,
	update_history, created_by, approved_by, approved_at, created_at, updated_at`

// ScanSale decodes one sales row in SaleColumns order.
func ScanSale(row pgx.Row) (*domain.Sale, error) {
	var s domain.Sale
	var kind, saleStatus, payStatus, regStatus string
	var history []byte

	err := row.Scan(
		&s.ID, &s.Code, &s.TransactionRef, &s.ClientID, &s.AgentID, &kind, &s.PropertyID, &s.ReservationID,
		&saleStatus, &payStatus, &regStatus,
		&s.PropertyPayable, &s.Discount, &s.AgencyFee,
		&s.Fees.Infrastructure, &s.Fees.Facility, &s.Fees.Water, &s.Fees.Electricity,
		&s.Fees.Supervision, &s.Fees.Authority, &s.Fees.Other,
		&s.TotalPayable,
		&s.PropertyPayablePaid, &s.AgencyFeePaid,
		&s.FeesPaid.Infrastructure, &s.FeesPaid.Facility, &s.FeesPaid.Water, &s.FeesPaid.Electricity,
		&s.FeesPaid.Supervision, &s.FeesPaid.Authority, &s.FeesPaid.Other,
		&s.PaidAmount,
		&s.Applicant.Name, &s.Applicant.Email, &s.Applicant.Phone, &s.Applicant.Occupation, &s.Applicant.Address,
		&s.Applicant.NextOfKinName, &s.Applicant.NextOfKinPhone,
		&history, &s.CreatedBy, &s.ApprovedBy, &s.ApprovedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(saleNotFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("scan sale: %w", err)
	}

	s.PropertyKind = domain.PropertyKind(kind)
	s.Status = domain.SaleStatus(saleStatus)
	s.PaymentStatus = domain.PaymentStatus(payStatus)
	s.RegistrationFeesStatus = domain.RegistrationFeesStatus(regStatus)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &s.UpdateHistory); err != nil {
			return nil, fmt.Errorf("decode sale history: %w", err)
		}
	}
	return &s, nil
}

// NextSaleCode allocates the next sale code from the per-year counter.
func (r *Repository) NextSaleCode(ctx context.Context) (string, error) {
	year := time.Now().Year()
	var counter int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO sale_counters (year, counter)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET counter = sale_counters.counter + 1
		RETURNING counter`, year,
	).Scan(&counter)
	if err != nil {
		return "", fmt.Errorf("next sale code: %w", err)
	}
	return fmt.Sprintf("SAL-%d-%05d", year, counter), nil
}

// CreateSale inserts the sale and, when markSold is set, moves the
// property to SOLD, bumps the owning estate or layout counter and
// consumes the reservation, all in one transaction.
func (r *Repository) CreateSale(ctx context.Context, sale *domain.Sale, markSold bool) error {
	history, err := json.Marshal(sale.UpdateHistory)
	if err != nil {
		return fmt.Errorf("encode sale history: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create sale: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO sales (
			id, code, transaction_ref, client_id, agent_id, property_kind, property_id, reservation_id,
			sale_status, payment_status, registration_fees_status,
			property_payable, discount, agency_fee,
			infrastructure_fee, facility_fee, water_fee, electricity_fee, supervision_fee, authority_fee, other_fee,
			total_payable,
			applicant_name, applicant_email, applicant_phone, applicant_occupation, applicant_address,
			next_of_kin_name, next_of_kin_phone,
			update_history, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11,
			$12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21,
			$22,
			$23, $24, $25, $26, $27,
			$28, $29,
			$30, $31
		)
		RETURNING created_at, updated_at`,
		sale.ID, sale.Code, sale.TransactionRef, sale.ClientID, sale.AgentID,
		string(sale.PropertyKind), sale.PropertyID, sale.ReservationID,
		string(sale.Status), string(sale.PaymentStatus), string(sale.RegistrationFeesStatus),
		sale.PropertyPayable, sale.Discount, sale.AgencyFee,
		sale.Fees.Infrastructure, sale.Fees.Facility, sale.Fees.Water, sale.Fees.Electricity,
		sale.Fees.Supervision, sale.Fees.Authority, sale.Fees.Other,
		sale.TotalPayable,
		sale.Applicant.Name, sale.Applicant.Email, sale.Applicant.Phone,
		sale.Applicant.Occupation, sale.Applicant.Address,
		sale.Applicant.NextOfKinName, sale.Applicant.NextOfKinPhone,
		history, sale.CreatedBy,
	).Scan(&sale.CreatedAt, &sale.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}

	if markSold {
		if err := markPropertySold(ctx, tx, sale); err != nil {
			return err
		}
	}

	if sale.ReservationID != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE reservations SET status = 'CONVERTED', updated_at = now() WHERE id = $1`,
			*sale.ReservationID); err != nil {
			return fmt.Errorf("consume reservation: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ApproveSale persists the approved sale and marks the property SOLD if
// another sale has not claimed it, in one transaction.
func (r *Repository) ApproveSale(ctx context.Context, sale *domain.Sale) error {
	history, err := json.Marshal(sale.UpdateHistory)
	if err != nil {
		return fmt.Errorf("encode sale history: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin approve sale: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE sales SET
			sale_status = $2, registration_fees_status = $3,
			property_payable = $4, agency_fee = $5, total_payable = $6,
			update_history = $7, approved_by = $8, approved_at = $9, updated_at = now()
		WHERE id = $1 AND sale_status = 'PENDING'`,
		sale.ID, string(sale.Status), string(sale.RegistrationFeesStatus),
		sale.PropertyPayable, sale.AgencyFee, sale.TotalPayable,
		history, sale.ApprovedBy, sale.ApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("approve sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("sale is not pending approval")
	}

	if err := markPropertySold(ctx, tx, sale); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// markPropertySold transitions the property to SOLD and increments the
// owning group's sold counter. A property already SOLD by this same sale
// is left untouched; SOLD by another sale is a conflict.
func markPropertySold(ctx context.Context, tx pgx.Tx, sale *domain.Sale) error {
	var table, groupTable, groupFK, groupCounter string
	switch sale.PropertyKind {
	case domain.PropertyHouse:
		table, groupTable, groupFK, groupCounter = "houses", "estates", "estate_id", "sold_units"
	case domain.PropertyPlot:
		table, groupTable, groupFK, groupCounter = "plots", "layouts", "layout_id", "sold_plots"
	default:
		return apperr.Validation("unknown property kind")
	}

	tag, err := tx.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET status = 'SOLD', client_id = $2, sale_id = $3, updated_at = now()
		WHERE id = $1 AND status <> 'SOLD'`, table),
		sale.PropertyID, sale.ClientID, sale.ID)
	if err != nil {
		return fmt.Errorf("mark property sold: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var owner *uuid.UUID
		err := tx.QueryRow(ctx, fmt.Sprintf(`SELECT sale_id FROM %s WHERE id = $1`, table),
			sale.PropertyID).Scan(&owner)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("property not found")
		}
		if err != nil {
			return fmt.Errorf("check property owner: %w", err)
		}
		if owner == nil || *owner != sale.ID {
			return apperr.Conflict("property is not available for sale")
		}
		// Already sold by this sale; nothing to count.
		return nil
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf(`
		UPDATE %s SET %s = %s + 1, updated_at = now()
		WHERE id = (SELECT %s FROM %s WHERE id = $1)`,
		groupTable, groupCounter, groupCounter, groupFK, table),
		sale.PropertyID); err != nil {
		return fmt.Errorf("increment sold counter: %w", err)
	}
	return nil
}

// GetByID returns a sale by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+SaleColumns+` FROM sales WHERE id = $1`, id)
	return ScanSale(row)
}

// List returns sales matching the filter, newest first.
func (r *Repository) List(ctx context.Context, params service.ListParams) ([]domain.Sale, error) {
	query := `SELECT ` + SaleColumns + ` FROM sales WHERE 1=1`
	args := []interface{}{}
	n := 1
	if params.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", n)
		args = append(args, *params.ClientID)
		n++
	}
	if params.Status != "" {
		query += fmt.Sprintf(" AND sale_status = $%d", n)
		args = append(args, params.Status)
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		sale, err := ScanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	return sales, rows.Err()
}

// LatestByClient returns the client's most recent sale, used to copy the
// applicant profile onto a new sale.
func (r *Repository) LatestByClient(ctx context.Context, clientID uuid.UUID) (*domain.Sale, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+SaleColumns+` FROM sales
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, clientID)
	return ScanSale(row)
}

// Compile-time check that Repository satisfies the service port.
var _ service.SaleStore = (*Repository)(nil)
