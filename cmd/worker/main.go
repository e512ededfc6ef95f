package main

import (
	"context"
	"log"
	"os"

	"go-interview-scheduler/config"
	"go-interview-scheduler/internal/notification"
	"go-interview-scheduler/internal/repository/postgres"
	"go-interview-scheduler/pkg/database"
	"go-interview-scheduler/pkg/logger"
	"go-interview-scheduler/pkg/redis"

	"github.com/hibiken/asynq"
)

// Worker delivers queued notifications into the in-app notifications table.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init()
	logger.Log.Info("Starting notification worker", "queue", cfg.NotificationQueue, "concurrency", cfg.WorkerConcurrency)

	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	opt, err := notification.RedisConnOpt(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	if err != nil {
		logger.Log.Error("Notification worker requires Redis", "error", err)
		os.Exit(1)
	}

	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency:  cfg.WorkerConcurrency,
		Queues:       map[string]int{cfg.NotificationQueue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Log.Error("notification task failed", "type", task.Type(), "error", err)
		}),
	})

	mux := notification.NewServeMux(notification.NewHandler(postgres.NewNotificationRepository(dbPool)))

	// Run blocks until SIGTERM/SIGINT and drains in-flight tasks
	if err := srv.Run(mux); err != nil {
		logger.Log.Error("Notification worker stopped", "error", err)
		os.Exit(1)
	}
}
