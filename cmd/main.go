package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loan-underwriter/internal/api"
	mw "loan-underwriter/internal/api/middleware"
	"loan-underwriter/internal/batch"
	"loan-underwriter/internal/config"
	"loan-underwriter/internal/domain/applicant"
	"loan-underwriter/internal/domain/loan"
	"loan-underwriter/internal/domain/underwriting"
	"loan-underwriter/internal/event"
	"loan-underwriter/internal/infrastructure/database/postgres"
	"loan-underwriter/internal/infrastructure/logging"
	"loan-underwriter/internal/notify"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// @title Loan Underwriter API
// @version 1.0
// @description Scores loan applications, stores amortization schedules and tracks installment payments.
// @termsOfService http://loan-underwriter.local/terms/

// @contact.name API Support
// @contact.email support@loan-underwriter.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	scorer := initializeScorer(cfg.Underwriting, logger)
	// A policy file may override the inline cap; the HTTP layer follows the scorer.
	cfg.Underwriting.MaxTermMonths = scorer.Policy().MaxTermMonths

	publisher, closePublisher := initializePublisher(cfg, logger)
	defer closePublisher()

	loanService, loanRepo := initializeServices(dbPool, scorer, publisher, logger)

	redisClient := initializeRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	limiter := mw.NewRateLimiter(cfg.Server.RateLimit, redisClient, logger)
	if memLimiter, ok := limiter.(*mw.RateLimiterMiddleware); ok {
		defer memLimiter.Stop()
	}

	recoveryJob := batch.NewScheduleRecoveryJob(loanRepo, loanService, cfg.Batch.ScheduleRecoveryBatchSize, logger)
	cronScheduler := startBatchJobs(cfg, logger, recoveryJob)

	router := api.SetupRouter(loanService, dbPool, limiter, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.Logger)
	logger.Info("Application starting...", "port", cfg.Server.Port)

	return cfg, logger
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

func initializeScorer(cfg config.UnderwritingConfig, logger *slog.Logger) *underwriting.Scorer {
	policy, err := loadPolicy(cfg)
	if err != nil {
		logger.Error("Invalid underwriting policy", "error", err)
		os.Exit(1)
	}
	logger.Info("Underwriting policy loaded",
		"min_income", policy.MinIncome,
		"high_tier_income", policy.HighTierIncome,
		"preferential_rate", policy.PreferentialRate,
		"standard_rate", policy.StandardRate,
		"max_term_months", policy.MaxTermMonths,
	)
	return underwriting.NewScorer(policy)
}

// loadPolicy prefers the policy file over the inline config values.
func loadPolicy(cfg config.UnderwritingConfig) (underwriting.Policy, error) {
	if cfg.PolicyFile != "" {
		return underwriting.LoadPolicyFile(cfg.PolicyFile)
	}

	policy := underwriting.Policy{
		MinIncome:                   cfg.MinIncome,
		MaxPaymentRatio:             cfg.MaxPaymentRatio,
		AffordabilityMonths:         cfg.AffordabilityMonths,
		HighTierIncome:              cfg.HighTierIncome,
		PreferentialRate:            cfg.PreferentialRate,
		StandardRate:                cfg.StandardRate,
		PreferentialLimitMultiplier: cfg.PreferentialLimitMultiplier,
		StandardLimitMultiplier:     cfg.StandardLimitMultiplier,
		ReducedLimitIncomeShare:     cfg.ReducedLimitIncomeShare,
		ReducedLimitMonths:          cfg.ReducedLimitMonths,
		MaxTermMonths:               cfg.MaxTermMonths,
	}
	if err := policy.Validate(); err != nil {
		return underwriting.Policy{}, err
	}
	return policy, nil
}

// initializePublisher combines the enabled event sinks. Sinks that fail to
// start are logged and skipped.
func initializePublisher(cfg *config.Config, logger *slog.Logger) (event.EventPublisher, func()) {
	var publishers event.MultiPublisher
	closers := []func(){}

	if cfg.RabbitMQ.Enabled {
		conn, err := connectRabbitMQ(cfg.RabbitMQ, logger)
		if err != nil {
			logger.Error("RabbitMQ unavailable, decision events will not be published", "error", err)
		} else {
			rabbitPublisher, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
			if err != nil {
				logger.Error("Failed to create RabbitMQ publisher", "error", err)
				_ = conn.Close()
			} else {
				publishers = append(publishers, rabbitPublisher)
				closers = append(closers, func() {
					logger.Info("Closing RabbitMQ connection...")
					if err := conn.Close(); err != nil {
						logger.Warn("Error closing RabbitMQ connection", "error", err)
					}
				})
			}
		}
	}

	if cfg.SMTP.Enabled {
		publishers = append(publishers, notify.NewEmailNotifier(cfg.SMTP, logger))
		logger.Info("Decision e-mails enabled", "smtp_host", cfg.SMTP.Host)
	}

	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	if len(publishers) == 0 {
		logger.Info("No event publishers enabled")
		return event.NoopPublisher{}, closeAll
	}
	return publishers, closeAll
}

func connectRabbitMQ(cfg config.RabbitMQConfig, logger *slog.Logger) (*amqp.Connection, error) {
	logger.Info("Connecting to RabbitMQ", "host", cfg.Host)
	uri := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	logger.Info("RabbitMQ connection established.")

	go func() {
		errChan := conn.NotifyClose(make(chan *amqp.Error, 1))
		if closeErr, ok := <-errChan; ok {
			logger.Error("RabbitMQ connection closed unexpectedly", slog.Any("error", closeErr))
		}
	}()

	return conn, nil
}

// initializeRedis returns nil unless the redis rate limit backend is
// configured and reachable.
func initializeRedis(cfg *config.Config, logger *slog.Logger) *redis.Client {
	if !cfg.Server.RateLimit.Enabled || cfg.Server.RateLimit.Backend != mw.BackendRedis {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Redis unreachable, falling back to in-memory rate limiting", "addr", cfg.Redis.Addr, "error", err)
		_ = client.Close()
		return nil
	}

	logger.Info("Redis connection established.", "addr", cfg.Redis.Addr)
	return client
}

func initializeServices(
	dbPool *pgxpool.Pool,
	scorer *underwriting.Scorer,
	publisher event.EventPublisher,
	logger *slog.Logger,
) (loan.LoanService, loan.Repository) {
	logger.Info("Initializing application components...")
	loanRepo := postgres.NewLoanRepository(dbPool, logger)
	applicantRepo := postgres.NewApplicantRepository(dbPool, logger)
	applicantService := applicant.NewApplicantService(applicantRepo, logger)
	return loan.NewLoanService(loanRepo, applicantService, scorer, publisher, logger), loanRepo
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
			return
		}
		serverErrors <- nil
	}()
	return srv, serverErrors, shutdownChan
}

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	select {
	case sig := <-shutdownChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil {
			logger.Error("Server stopped before a shutdown signal", "error", err)
			os.Exit(1)
		}
		logger.Info("Server stopped before a shutdown signal")
	}

	stopCron(cronScheduler, 15*time.Second, logger)
	stopServer(srv, 20*time.Second, logger)

	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Warn("Server goroutine reported an error after shutdown", "error", err)
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine")
	}

	logger.Info("Shutdown complete")
}

// stopCron waits for running jobs up to timeout.
func stopCron(c *cron.Cron, timeout time.Duration, logger *slog.Logger) {
	select {
	case <-c.Stop().Done():
		logger.Info("Cron scheduler stopped")
	case <-time.After(timeout):
		logger.Warn("Cron scheduler did not stop in time", "timeout", timeout)
	}
}

func stopServer(srv *http.Server, timeout time.Duration, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("HTTP server graceful shutdown failed, forcing close", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
		return
	}
	logger.Info("HTTP server stopped")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, recoveryJob *batch.ScheduleRecoveryJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.ScheduleRecoverySchedule
	if scheduleSpec == "" {
		scheduleSpec = "*/15 * * * *"
		logger.Warn("Schedule recovery cron spec not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.ScheduleRecoveryTimeout
	if jobTimeout <= 0 {
		jobTimeout = 5 * time.Minute
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "ScheduleRecovery")
		jobLogger.Info("Cron triggered: Running schedule recovery job.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := recoveryJob.Run(ctx); runErr != nil {
			jobLogger.Error("Schedule recovery job finished with error", slog.Any("error", runErr))
		} else {
			jobLogger.Info("Schedule recovery job finished successfully.")
		}
	}))

	if err != nil {
		logger.Error("Failed to schedule recovery job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled recovery job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}

func setupLogger(cfg config.LoggerConfig) *slog.Logger {
	return logging.NewLogger(cfg)
}
