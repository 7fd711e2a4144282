package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace_backend/internal/adapters"
	"marketplace_backend/internal/bookings"
	"marketplace_backend/internal/catalog"
	"marketplace_backend/internal/email"
	"marketplace_backend/internal/events"
	"marketplace_backend/internal/leads"
	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/payments"
	"marketplace_backend/internal/scheduler"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/db"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

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

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// The worker settles intents and fires reminders, so it needs the same
	// domain services the API wires, minus anything HTTP-facing.
	taskClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = taskClient.Close() }()

	catalogModule := catalog.NewModule(pool, nil, cfg.GetMinioBucketServiceImages(), log, val)
	bookingsModule := bookings.NewModule(pool,
		adapters.NewBookingServiceReader(catalogModule.Service()),
		taskClient, eventBus, log, val)
	bookingsModule.RegisterHandlers(eventBus)

	paymentsModule := payments.NewModule(pool,
		adapters.NewPaymentBookingReader(bookingsModule.Service()),
		taskClient, eventBus, cfg, log, val)

	leadsModule := leads.NewModule(pool, paymentsModule.Service(), catalogModule.Service(),
		eventBus, cfg, log, val)

	// Settled payments and due reminders produce emails here, not in the API.
	sender := email.NewSenderFromConfig(cfg)
	notificationModule := notification.New(notification.NewPgDirectory(pool), sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	// Periodic enqueuer for the recurring lead sweep.
	periodic, err := scheduler.NewPeriodic(cfg, log)
	if err != nil {
		log.Error("failed to initialize periodic enqueuer", "error", err)
		panic("failed to initialize periodic enqueuer: " + err.Error())
	}
	go func() {
		if err := periodic.Run(); err != nil {
			log.Error("periodic enqueuer stopped", "error", err)
		}
	}()
	defer periodic.Shutdown()

	worker, err := scheduler.NewWorker(cfg,
		leadsModule.Service(),
		paymentsModule.Service(),
		bookingsModule.Service(),
		eventBus, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
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
