// Package scheduler runs the background side of the system: the outbox
// dispatcher moves pending notifications onto the asynq queue, the worker
// delivers them, and the plan scanner emits installment reminders.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"estate_sales_backend/internal/notification/outbox"
	"estate_sales_backend/platform/config"
	"estate_sales_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// outboxSource is the slice of the outbox repository the dispatcher uses.
type outboxSource interface {
	ClaimPending(ctx context.Context, limit int) ([]outbox.Record, error)
	MarkPending(ctx context.Context, id uuid.UUID, lastError string, retryAt time.Time) error
}

// OutboxDispatcher claims pending outbox records and enqueues a delivery
// task for each.
type OutboxDispatcher struct {
	client *asynq.Client
	queue  string
	repo   outboxSource
	log    *logger.Logger
}

func NewOutboxDispatcher(cfg config.SchedulerConfig, pool *pgxpool.Pool, log *logger.Logger) (*OutboxDispatcher, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &OutboxDispatcher{
		client: asynq.NewClient(opt),
		queue:  queue,
		repo:   outbox.New(pool),
		log:    log,
	}, nil
}

func (d *OutboxDispatcher) Close() error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Close()
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		d.dispatchOnce(ctx)
	}
}

// dispatchOnce claims one batch of due records and enqueues a task per
// record. Records that fail to enqueue are pushed back to pending with a
// retry delay.
func (d *OutboxDispatcher) dispatchOnce(ctx context.Context) {
	records, err := d.repo.ClaimPending(ctx, 50)
	if err != nil {
		d.log.Warn("outbox claim failed", "error", err)
		return
	}

	for _, rec := range records {
		task, err := NewNotificationOutboxDueTask(NotificationOutboxDuePayload{OutboxID: rec.ID.String()})
		if err != nil {
			_ = d.repo.MarkPending(ctx, rec.ID, err.Error(), time.Now().UTC().Add(time.Minute))
			continue
		}

		if _, err := d.client.EnqueueContext(ctx, task, asynq.Queue(d.queue)); err != nil {
			_ = d.repo.MarkPending(ctx, rec.ID, err.Error(), time.Now().UTC().Add(time.Minute))
			continue
		}
	}
}
