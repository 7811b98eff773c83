// Package dependency provides dependency injection for the application.
package dependency

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dental-clinic/backend/config"
	"github.com/dental-clinic/backend/internal/application/adapter"
	"github.com/dental-clinic/backend/internal/application/usecase/finance"
	"github.com/dental-clinic/backend/internal/infra/db"
	"github.com/dental-clinic/backend/internal/infra/server/router"
	"github.com/dental-clinic/backend/internal/integration/adapters"
	"github.com/dental-clinic/backend/internal/integration/cache"
	"github.com/dental-clinic/backend/internal/integration/entrypoint/controller"
	"github.com/dental-clinic/backend/internal/integration/entrypoint/middleware"
	"github.com/dental-clinic/backend/internal/integration/events"
	"github.com/dental-clinic/backend/internal/integration/notification"
	"github.com/dental-clinic/backend/internal/integration/notification/templates"
	"github.com/dental-clinic/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config *config.Config
	DB     *db.Database
	Redis  *redis.Client // Nil when Redis is not configured
	Router *router.Router

	// Background jobs. Nil when disabled by configuration.
	Worker      *notification.Worker
	Publisher   *events.Publisher
	RateLimiter *middleware.RateLimiter
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, database *db.Database) (*Injector, error) {
	gormDB := database.DB()

	rdb, err := newRedisClient(&cfg.Redis)
	if err != nil {
		return nil, err
	}

	// Create repositories
	store := persistence.NewFinanceStore(gormDB, database.TxOptions())
	reportRepo := persistence.NewReportRepository(gormDB)
	appointmentRepo := persistence.NewAppointmentRepository(gormDB)
	doctorRepo := persistence.NewDoctorRepository(gormDB)
	queueRepo := persistence.NewNotificationQueueRepository(gormDB)
	outboxRepo := persistence.NewOutboxRepository(gormDB)

	// Create adapters/services
	var reportCache adapter.ReportCache = cache.NewNoopReportCache()
	if rdb != nil {
		reportCache = cache.NewRedisReportCache(rdb, cfg.Redis.ReportTTL)
	}

	notifier := notification.NewService(queueRepo, notification.ServiceConfig{
		ClinicName:             cfg.Notification.FromName,
		AdminName:              cfg.Admin.Name,
		AdminEmail:             cfg.Admin.Email,
		PaymentReceiptsEnabled: cfg.Notification.PaymentReceiptEnabled,
	})

	tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTokenExpiry)

	// Create finance use cases
	recordEventUseCase := finance.NewRecordEventUseCase(store, reportRepo, appointmentRepo, reportCache, notifier)
	getReportUseCase := finance.NewGetReportUseCase(reportRepo, reportCache)
	getReportsInRangeUseCase := finance.NewGetReportsInRangeUseCase(reportRepo)
	listAppointmentsUseCase := finance.NewListAppointmentsUseCase(appointmentRepo)
	recomputeStatusUseCase := finance.NewRecomputeAppointmentStatusUseCase(store, notifier)
	doctorLedgerUseCase := finance.NewGetDoctorLedgerUseCase(doctorRepo)
	reconcileBalancesUseCase := finance.NewReconcileBalancesUseCase(doctorRepo, notifier)

	// Create controllers
	var cacheHealthChecker func() bool
	if rdb != nil {
		cacheHealthChecker = func() bool {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return rdb.Ping(ctx).Err() == nil
		}
	}
	healthController := controller.NewHealthController(database.HealthCheck, cacheHealthChecker)

	reportController := controller.NewReportController(
		recordEventUseCase,
		getReportUseCase,
		getReportsInRangeUseCase,
	)

	appointmentController := controller.NewAppointmentController(
		listAppointmentsUseCase,
		recomputeStatusUseCase,
	)

	doctorController := controller.NewDoctorController(
		doctorLedgerUseCase,
		reconcileBalancesUseCase,
	)

	// Create middleware
	// Use higher rate limits for E2E/test environments to prevent flaky tests
	maxRequests := cfg.RateLimit.MaxRequests
	if cfg.Server.Environment == "e2e" || cfg.Server.Environment == "test" {
		maxRequests = 1000
	}

	injector := &Injector{
		Config: cfg,
		DB:     database,
		Redis:  rdb,
	}

	var writeLimiter middleware.Limiter
	if rdb != nil {
		writeLimiter = middleware.NewRedisRateLimiter(rdb, maxRequests, cfg.RateLimit.Window, "rl:finance")
	} else {
		injector.RateLimiter = middleware.NewRateLimiterWithConfig(maxRequests, cfg.RateLimit.Window)
		writeLimiter = injector.RateLimiter
	}
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	injector.Router = router.NewRouter(
		healthController,
		reportController,
		appointmentController,
		doctorController,
		authMiddleware,
		writeLimiter,
	)

	// Create background jobs
	if cfg.Notification.WorkerEnabled {
		worker, err := newNotificationWorker(&cfg.Notification, queueRepo)
		if err != nil {
			return nil, err
		}
		injector.Worker = worker
	}

	injector.Publisher = events.NewPublisher(outboxRepo, events.PublisherConfig{
		Brokers:   cfg.Kafka.Brokers,
		Topic:     cfg.Kafka.Topic,
		PollEvery: cfg.Kafka.PollEvery,
		BatchSize: cfg.Kafka.BatchSize,
	})
	if injector.Publisher == nil {
		slog.Warn("KAFKA_BROKERS not set; financial events stay in the outbox")
	}

	return injector, nil
}

// Start launches the background jobs. They stop when ctx is cancelled.
func (i *Injector) Start(ctx context.Context) {
	if i.Worker != nil {
		go i.Worker.Start(ctx)
	}
	if i.Publisher != nil {
		go i.Publisher.Run(ctx)
	}
	if i.RateLimiter != nil {
		go i.RateLimiter.StartCleanup(ctx)
	}
}

// Close releases connections held by the injector.
func (i *Injector) Close() {
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			slog.Error("Failed to close redis connection", "error", err)
		}
	}
}

func newRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		slog.Warn("REDIS_URL not set; report cache disabled and rate limiting is per instance")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB != 0 {
		opts.DB = cfg.DB
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// The cache and limiter degrade gracefully, so an unreachable Redis is not fatal.
		slog.Warn("Redis ping failed", "error", err)
	}

	slog.Info("Redis client configured", "addr", opts.Addr, "db", opts.DB)
	return rdb, nil
}

func newNotificationWorker(cfg *config.NotificationConfig, queue adapter.NotificationQueueRepository) (*notification.Worker, error) {
	renderer, err := templates.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to load notification templates: %w", err)
	}

	var sms adapter.SMSSender = notification.NewNoopSMSSender()
	if cfg.SMSWebhookURL != "" {
		sms = notification.NewWebhookSMSSender(cfg.SMSWebhookURL, cfg.SMSWebhookToken)
	} else {
		slog.Warn("SMS_WEBHOOK_URL not set; SMS notifications will be logged only")
	}

	var email adapter.EmailSender = notification.NewNoopEmailSender()
	if cfg.ResendAPIKey != "" {
		email = notification.NewResendClient(cfg.ResendAPIKey, cfg.FromName, cfg.FromEmail)
	} else {
		slog.Warn("RESEND_API_KEY not set; e-mail notifications will be logged only")
	}

	return notification.NewWorker(queue, sms, email, renderer, notification.WorkerConfig{
		PollInterval: cfg.PollInterval,
		BatchSize:    cfg.BatchSize,
	}), nil
}
