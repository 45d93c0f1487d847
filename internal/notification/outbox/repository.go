// Package outbox persists notifications awaiting delivery. Rows are
// claimed with FOR UPDATE SKIP LOCKED so multiple dispatcher instances
// never enqueue the same record twice.
package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusEnqueued   Status = "enqueued"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

// Record is one notification awaiting delivery.
type Record struct {
	ID             uuid.UUID
	Category       string
	RecipientName  string
	RecipientEmail string
	RecipientPhone string
	Subject        string
	Body           string
	Channels       []string
	Status         Status
	Attempts       int
	ScheduledAt    time.Time
}

// InsertParams describes a notification to persist.
type InsertParams struct {
	Category       string
	RecipientName  string
	RecipientEmail string
	RecipientPhone string
	Subject        string
	Body           string
	Channels       []string
	ScheduledAt    time.Time // optional; defaults to now
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, p InsertParams) (uuid.UUID, error) {
	if p.Category == "" {
		return uuid.Nil, fmt.Errorf("category is required")
	}
	if p.ScheduledAt.IsZero() {
		p.ScheduledAt = time.Now().UTC()
	}
	if len(p.Channels) == 0 {
		p.Channels = []string{"email"}
	}

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notification_outbox (category, recipient_name, recipient_email, recipient_phone, subject, body, channels, scheduled_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		p.Category, p.RecipientName, p.RecipientEmail, p.RecipientPhone,
		p.Subject, p.Body, p.Channels, p.ScheduledAt,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert outbox record: %w", err)
	}
	return id, nil
}

const recordColumns = `
	id, category, recipient_name, recipient_email, recipient_phone, subject, body, channels, status, attempts, scheduled_at`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	var status string
	err := row.Scan(&rec.ID, &rec.Category, &rec.RecipientName, &rec.RecipientEmail, &rec.RecipientPhone,
		&rec.Subject, &rec.Body, &rec.Channels, &status, &rec.Attempts, &rec.ScheduledAt)
	if err != nil {
		return Record{}, err
	}
	rec.Status = Status(status)
	return rec, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Record, error) {
	rec, err := scanRecord(r.pool.QueryRow(ctx, `
		SELECT `+recordColumns+` FROM notification_outbox WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, fmt.Errorf("outbox record %s not found", id)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get outbox record: %w", err)
	}
	return rec, nil
}

// ClaimPending atomically flips due pending records to enqueued and
// returns them.
func (r *Repository) ClaimPending(ctx context.Context, limit int) ([]Record, error) {
	if limit < 1 {
		limit = 50
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `WITH due AS (
		SELECT id
		FROM notification_outbox
		WHERE status = 'pending' AND scheduled_at <= now()
		ORDER BY scheduled_at ASC
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	)
	UPDATE notification_outbox o
	SET status = 'enqueued', updated_at = now()
	FROM due
	WHERE o.id = due.id
	RETURNING `+recordColumns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return results, nil
}

// MarkPending returns a record to the pending state for retry.
func (r *Repository) MarkPending(ctx context.Context, id uuid.UUID, lastError string, retryAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = 'pending', last_error = $2, scheduled_at = $3, updated_at = now()
		WHERE id = $1`, id, lastError, retryAt)
	return err
}

func (r *Repository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = 'processing', attempts = attempts + 1, updated_at = now()
		WHERE id = $1`, id)
	return err
}

func (r *Repository) MarkSucceeded(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = 'succeeded', last_error = '', sent_at = now(), updated_at = now()
		WHERE id = $1`, id)
	return err
}

func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_outbox
		SET status = 'failed', last_error = $2, updated_at = now()
		WHERE id = $1`, id, lastError)
	return err
}
