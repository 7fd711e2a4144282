package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"marketplace_backend/internal/adapters"
	"marketplace_backend/internal/adapters/storage"
	"marketplace_backend/internal/admin"
	"marketplace_backend/internal/auth"
	"marketplace_backend/internal/bookings"
	"marketplace_backend/internal/catalog"
	"marketplace_backend/internal/email"
	"marketplace_backend/internal/events"
	apphttp "marketplace_backend/internal/http"
	"marketplace_backend/internal/http/router"
	"marketplace_backend/internal/leads"
	"marketplace_backend/internal/messaging"
	"marketplace_backend/internal/notification"
	"marketplace_backend/internal/payments"
	profilesmodule "marketplace_backend/internal/profiles"
	profilesvc "marketplace_backend/internal/profiles/service"
	"marketplace_backend/internal/reviews"
	"marketplace_backend/internal/scheduler"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/db"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"
)

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Asynq client for delayed tasks (payment settlement, booking reminders)
	taskScheduler, closeScheduler := initTaskScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// Redis cache client for unread message counts
	cacheClient := initCacheClient(cfg, log)
	if cacheClient != nil {
		defer func() { _ = cacheClient.Close() }()
	}

	sender := email.NewSenderFromConfig(cfg)
	if !cfg.GetEmailEnabled() {
		log.Warn("email delivery disabled; notification emails will be dropped")
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for file uploads (MinIO)
	storageSvc, err := storage.NewMinIOService(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	ensureBucket(ctx, log, storageSvc, "service-images", cfg.GetMinioBucketServiceImages())
	ensureBucket(ctx, log, storageSvc, "avatars", cfg.GetMinioBucketAvatars())
	ensureBucket(ctx, log, storageSvc, "portfolio", cfg.GetMinioBucketPortfolio())
	log.Info(
		"storage service initialized",
		"serviceImagesBucket", cfg.GetMinioBucketServiceImages(),
		"avatarsBucket", cfg.GetMinioBucketAvatars(),
		"portfolioBucket", cfg.GetMinioBucketPortfolio(),
	)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, log, val)
	profilesModule := profilesmodule.NewModule(pool, storageSvc, profilesvc.Buckets{
		Avatars:   cfg.GetMinioBucketAvatars(),
		Portfolio: cfg.GetMinioBucketPortfolio(),
	}, log, val)
	catalogModule := catalog.NewModule(pool, storageSvc, cfg.GetMinioBucketServiceImages(), log, val)

	// Bookings read the booked listing through the catalog adapter.
	bookingsModule := bookings.NewModule(pool,
		adapters.NewBookingServiceReader(catalogModule.Service()),
		taskScheduler, eventBus, log, val)
	bookingsModule.RegisterHandlers(eventBus)

	// Payments resolve bookings through the bookings adapter.
	paymentsModule := payments.NewModule(pool,
		adapters.NewPaymentBookingReader(bookingsModule.Service()),
		taskScheduler, eventBus, cfg, log, val)

	// Leads charge fees on the payments service and price leads off the catalog.
	leadsModule := leads.NewModule(pool, paymentsModule.Service(), catalogModule.Service(),
		eventBus, cfg, log, val)

	// Messaging claims open leads on the provider's first reply.
	messagingModule := messaging.NewModule(pool, cacheClient, leadsModule.Service(),
		eventBus, log, val)

	// The winning lead reply is written through messaging (breaks the
	// leads <-> messaging cycle).
	leadsModule.Service().SetReplyWriter(messagingModule.Service())

	// Reviews write the denormalized rating back onto the listing.
	reviewsModule := reviews.NewModule(pool, catalogModule.Service(), eventBus, log, val)

	// Admin review moderation goes through the reviews service so rating
	// aggregates stay correct.
	adminModule := admin.NewModule(pool, adapters.NewReviewModerator(reviewsModule.Service()), log)

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(notification.NewPgDirectory(pool), sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			profilesModule,
			catalogModule,
			leadsModule,
			bookingsModule,
			messagingModule,
			reviewsModule,
			paymentsModule,
			adminModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initTaskScheduler builds the asynq client. A missing Redis URL disables
// delayed settlement and reminders rather than failing startup.
func initTaskScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*scheduler.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; delayed settlement and reminders disabled")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initCacheClient builds the Redis client for the unread-count cache.
func initCacheClient(cfg config.CacheConfig, log *logger.Logger) *redis.Client {
	if !cfg.IsCacheEnabled() {
		log.Warn("REDIS_URL not configured; unread count cache disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to parse redis url for cache", "error", err)
		return nil
	}
	return redis.NewClient(opt)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
