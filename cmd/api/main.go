package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"credsaathi_backend/internal/adapters/storage"
	"credsaathi_backend/internal/email"
	apphttp "credsaathi_backend/internal/http"
	"credsaathi_backend/internal/http/router"
	"credsaathi_backend/internal/loans"
	"credsaathi_backend/internal/scheduler"
	"credsaathi_backend/platform/config"
	"credsaathi_backend/platform/db"
	"credsaathi_backend/platform/events"
	"credsaathi_backend/platform/logger"
	"credsaathi_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

const storageBucketEnsureErrPrefix = "failed to ensure storage bucket exists: "
const storageBucketEnsureErrMsg = "failed to ensure storage bucket exists"

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error(storageBucketEnsureErrMsg, "error", err, "bucket", bucket)
		panic(storageBucketEnsureErrPrefix + err.Error())
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

	rescan, closeRescan := initSlipRescan(cfg, log)
	if closeRescan != nil {
		defer closeRescan()
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	// Shared validator instance for dependency injection
	val := validator.New()

	// Storage service for salary slips and sanction letters (MinIO)
	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		storageSvc = minioSvc
		ensureBucket(ctx, log, storageSvc, "salary-slips", cfg.GetMinioBucketSalarySlips())
		ensureBucket(ctx, log, storageSvc, "sanction-letters", cfg.GetMinioBucketSanctionLetters())
		log.Info(
			"storage service initialized",
			"salarySlipsBucket", cfg.GetMinioBucketSalarySlips(),
			"sanctionLettersBucket", cfg.GetMinioBucketSanctionLetters(),
		)
	} else {
		log.Warn("MINIO_ENDPOINT not configured; document storage disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	loansModule, err := loans.NewModule(pool, eventBus, storageSvc, rescan, val, cfg, log)
	if err != nil {
		log.Error("failed to initialize loans module", "error", err)
		panic("failed to initialize loans module: " + err.Error())
	}

	// Mail reacts to pipeline outcomes (sanction issued, manual review)
	emailSubscriber := email.NewSubscriber(sender, loansModule.Sessions(), storageSvc, cfg.GetMinioBucketSanctionLetters(), cfg.GetOpsAlertEmail(), log)
	emailSubscriber.Register(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			loansModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: engine,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initSlipRescan(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.SlipRescanScheduler, func()) {
	if cfg.GetRedisAddr() == "" {
		log.Warn("REDIS_ADDR not configured; slip rescans disabled")
		return nil, nil
	}

	rescanClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize slip rescan client", "error", err)
		return nil, nil
	}

	return rescanClient, func() {
		_ = rescanClient.Close()
	}
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
