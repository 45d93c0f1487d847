package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"estate_sales_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Reservation is a temporary hold on a property tied to a code and the
// holder's contact details.
type Reservation struct {
	ID           uuid.UUID  `db:"id"`
	Code         string     `db:"code"`
	PropertyKind string     `db:"property_kind"`
	PropertyID   uuid.UUID  `db:"property_id"`
	ClientName   string     `db:"client_name"`
	ClientEmail  string     `db:"client_email"`
	ClientPhone  string     `db:"client_phone"`
	Status       string     `db:"status"`
	ExpiresAt    *time.Time `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// Reservation statuses.
const (
	StatusPending   = "PENDING"
	StatusConverted = "CONVERTED"
	StatusCancelled = "CANCELLED"
)

const notFoundMsg = "reservation not found"

// Repository provides database operations for reservations.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new reservations repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `id, code, property_kind, property_id, client_name, client_email, client_phone, status, expires_at, created_at, updated_at`

func scanReservation(row pgx.Row) (*Reservation, error) {
	var r Reservation
	err := row.Scan(&r.ID, &r.Code, &r.PropertyKind, &r.PropertyID, &r.ClientName, &r.ClientEmail,
		&r.ClientPhone, &r.Status, &r.ExpiresAt, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(notFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("scan reservation: %w", err)
	}
	return &r, nil
}

// Create inserts a new pending reservation.
func (r *Repository) Create(ctx context.Context, code, propertyKind string, propertyID uuid.UUID, name, email, phone string, expiresAt *time.Time) (*Reservation, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reservations (code, property_kind, property_id, client_name, client_email, client_phone, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+selectColumns,
		code, propertyKind, propertyID, name, email, phone, expiresAt)
	return scanReservation(row)
}

// FindByProperty returns the most recent pending reservation for a property.
func (r *Repository) FindByProperty(ctx context.Context, propertyKind string, propertyID uuid.UUID) (*Reservation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM reservations
		WHERE property_kind = $1 AND property_id = $2 AND status = $3
		ORDER BY created_at DESC
		LIMIT 1`,
		propertyKind, propertyID, StatusPending)
	return scanReservation(row)
}

// FindByCode returns the reservation with the given code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*Reservation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM reservations WHERE code = $1`, code)
	return scanReservation(row)
}

// MarkConverted records that the reservation was consumed by a sale.
func (r *Repository) MarkConverted(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reservations SET status = $1, updated_at = now() WHERE id = $2`,
		StatusConverted, id)
	if err != nil {
		return fmt.Errorf("mark reservation converted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}
