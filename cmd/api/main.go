package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estate_sales_backend/internal/adapters"
	"estate_sales_backend/internal/clients"
	"estate_sales_backend/internal/email"
	"estate_sales_backend/internal/events"
	apphttp "estate_sales_backend/internal/http"
	"estate_sales_backend/internal/notification"
	"estate_sales_backend/internal/notification/outbox"
	"estate_sales_backend/internal/paymentplans"
	"estate_sales_backend/internal/payments"
	"estate_sales_backend/internal/properties"
	reservationsrepo "estate_sales_backend/internal/reservations/repository"
	reservationssvc "estate_sales_backend/internal/reservations/service"
	"estate_sales_backend/internal/sales"
	"estate_sales_backend/platform/config"
	"estate_sales_backend/platform/db"
	"estate_sales_backend/platform/logger"
	"estate_sales_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting api", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	if err := withRetry(ctx, log, "database migrations", 3, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run migrations", "error", err)
		panic("failed to run migrations: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	propertiesModule := properties.NewModule(pool, val)
	clientsModule := clients.NewModule(pool, cfg, eventBus)
	reservationsService := reservationssvc.New(reservationsrepo.New(pool))

	salesModule := sales.NewModule(
		pool,
		adapters.NewPropertyStore(propertiesModule.Service()),
		adapters.NewReservationChecker(reservationsService),
		adapters.NewClientDirectory(clientsModule.Service()),
		eventBus,
		val,
		log,
	)
	paymentsModule := payments.NewModule(pool, eventBus, val, log)
	salesModule.Service().SetPaymentRecorder(paymentsModule.Service())

	plansModule := paymentplans.NewModule(pool, eventBus, val, log)

	// Domain events raised in this process become outbox rows; the
	// scheduler process delivers them.
	sender := email.NewSender(cfg, log)
	notificationModule := notification.New(outbox.New(pool), sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	app := apphttp.New(cfg, log, db.NewPoolAdapter(pool),
		propertiesModule,
		clientsModule,
		salesModule,
		paymentsModule,
		plansModule,
	)

	if err := app.Run(ctx); err != nil {
		log.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
