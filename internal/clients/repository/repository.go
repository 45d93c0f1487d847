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

// Client is a purchaser account. Clients authenticate with the CLIENT
// role and can only view their own ledger.
type Client struct {
	ID           uuid.UUID `db:"id"`
	FullName     string    `db:"full_name"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const notFoundMsg = "client not found"

// Repository provides database operations for clients.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new clients repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectColumns = `id, full_name, email, phone, password_hash, created_at, updated_at`

func scanClient(row pgx.Row) (*Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(notFoundMsg)
	}
	if err != nil {
		return nil, fmt.Errorf("scan client: %w", err)
	}
	return &c, nil
}

// Create inserts a new client account.
func (r *Repository) Create(ctx context.Context, fullName, email, phone, passwordHash string) (*Client, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO clients (full_name, email, phone, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+selectColumns,
		fullName, email, phone, passwordHash)
	return scanClient(row)
}

// GetByID returns a client by id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM clients WHERE id = $1`, id)
	return scanClient(row)
}

// SetPasswordHash replaces a client's credential.
func (r *Repository) SetPasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE clients SET password_hash = $2, updated_at = now()
		WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("set password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(notFoundMsg)
	}
	return nil
}

// FindByContact looks up a client by email or normalized phone. Either
// field may be empty; an empty field never matches.
func (r *Repository) FindByContact(ctx context.Context, email, phone string) (*Client, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM clients
		WHERE (lower(email) = lower($1) AND $1 <> '')
		   OR (phone = $2 AND $2 <> '')
		ORDER BY created_at
		LIMIT 1`,
		email, phone)
	return scanClient(row)
}

// List returns all clients ordered by name.
func (r *Repository) List(ctx context.Context) ([]Client, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+selectColumns+` FROM clients ORDER BY full_name`)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}
