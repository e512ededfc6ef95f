package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-interview-scheduler/config"
	_ "go-interview-scheduler/docs"
	v1 "go-interview-scheduler/internal/delivery/http/v1"
	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/internal/notification"
	"go-interview-scheduler/internal/repository/postgres"
	"go-interview-scheduler/internal/usecase"
	"go-interview-scheduler/pkg/audit"
	"go-interview-scheduler/pkg/auth"
	"go-interview-scheduler/pkg/database"
	"go-interview-scheduler/pkg/logger"
	"go-interview-scheduler/pkg/redis"
	"go-interview-scheduler/pkg/validation"
)

// @title           Interview Scheduling API
// @version         1.0
// @description     Employer availability, slot booking and interview lifecycle.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting interview scheduler", "port", cfg.Port, "env", cfg.Environment)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (rate limiting) and the notification queue
	redisCfg := redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword}
	redisReady := false
	if cfg.RedisURL != "" {
		if err := redis.Initialize(redisCfg); err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting falls back to memory", "error", err)
		} else {
			redisReady = true
			defer redis.Close()
		}
	}

	var notifier domain.NotificationDispatcher = notification.LogDispatcher{}
	if redisReady {
		opt, err := notification.RedisConnOpt(redisCfg)
		if err != nil {
			logger.Log.Error("Invalid Redis configuration for notification queue", "error", err)
			os.Exit(1)
		}
		dispatcher := notification.NewQueueDispatcher(opt, cfg.NotificationQueue)
		defer dispatcher.Close()
		notifier = dispatcher
	}

	// 5. Setup Repositories
	tx := postgres.NewTransactor(dbPool)
	userRepo := postgres.NewUserRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	recurringRepo := postgres.NewRecurringAvailabilityRepository(dbPool)
	specificRepo := postgres.NewSpecificAvailabilityRepository(dbPool)
	bookingRepo := postgres.NewSlotBookingRepository(dbPool)
	interviewRepo := postgres.NewInterviewRepository(dbPool)
	eventRepo := postgres.NewInterviewEventRepository(dbPool)

	// 6. Setup Audit Logger
	auditLogger := audit.NewLogger(cfg.ServiceName, cfg.Environment)
	defer auditLogger.Sync()
	if cfg.AuditLogToDB {
		auditLogger.SetPersistFunc(usecase.PersistAuditEvents(eventRepo))
	}

	// 7. Setup UseCases
	validate := validation.New()
	availabilityUC := usecase.NewAvailabilityUsecase(tx, recurringRepo, specificRepo, bookingRepo, userRepo, validate, auditLogger,
		usecase.AvailabilityConfig{
			WindowDays:    cfg.AvailabilityWindowDays,
			MaxWindowDays: cfg.AvailabilityMaxWindowDays,
		})
	exceptionUC := usecase.NewExceptionUsecase(tx, recurringRepo, specificRepo, bookingRepo, validate, auditLogger, nil)
	bookingUC := usecase.NewBookingUsecase(tx, availabilityUC, bookingRepo, specificRepo, auditLogger,
		usecase.BookingConfig{MaxWindowDays: cfg.AvailabilityMaxWindowDays})
	interviewUC := usecase.NewInterviewUsecase(usecase.InterviewDeps{
		Tx:              tx,
		InterviewRepo:   interviewRepo,
		EventRepo:       eventRepo,
		ApplicationRepo: applicationRepo,
		JobRepo:         jobRepo,
		Booking:         bookingUC,
		Notifier:        notifier,
		Validate:        validate,
		Audit:           auditLogger,
	})

	healthDeps := map[string]usecase.Pinger{"database": dbPool}
	if redisReady {
		healthDeps["redis"] = usecase.PingFunc(redis.HealthCheck)
	}
	healthUC := usecase.NewHealthUsecase(healthDeps)

	// 8. Setup token verification
	var keySet *auth.KeySet
	if cfg.JWKSUrl != "" {
		keySet = auth.NewKeySet(cfg.JWKSUrl)
	}

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AvailabilityUC: availabilityUC,
		ExceptionUC:    exceptionUC,
		BookingUC:      bookingUC,
		InterviewUC:    interviewUC,
		Health:         healthUC,
		KeySet:         keySet,
		Config:         cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
