package notification

import (
	"context"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/logger"
	"go-interview-scheduler/pkg/redis"

	"github.com/hibiken/asynq"
)

// RedisConnOpt builds the asynq connection from the shared Redis settings.
func RedisConnOpt(cfg redis.Config) (asynq.RedisClientOpt, error) {
	opts, err := redis.Options(cfg)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}
	return asynq.RedisClientOpt{
		Addr:      opts.Addr,
		Username:  opts.Username,
		Password:  opts.Password,
		DB:        opts.DB,
		TLSConfig: opts.TLSConfig,
	}, nil
}

// QueueDispatcher enqueues notifications for the worker process.
type QueueDispatcher struct {
	client *asynq.Client
	queue  string
}

func NewQueueDispatcher(opt asynq.RedisConnOpt, queue string) *QueueDispatcher {
	if queue == "" {
		queue = "notifications"
	}
	return &QueueDispatcher{client: asynq.NewClient(opt), queue: queue}
}

func (d *QueueDispatcher) Notify(ctx context.Context, n domain.Notification) error {
	task, err := NewDeliverTask(n, d.queue)
	if err != nil {
		return err
	}
	info, err := d.client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}
	logger.Log.Debug("notification enqueued", "task_id", info.ID, "queue", info.Queue, "user_id", n.UserID)
	return nil
}

func (d *QueueDispatcher) Close() error {
	return d.client.Close()
}

// LogDispatcher only logs. Used when no queue is configured.
type LogDispatcher struct{}

func (LogDispatcher) Notify(_ context.Context, n domain.Notification) error {
	logger.Log.Info("notification",
		"user_id", n.UserID,
		"type", string(n.Type),
		"title", n.Title,
	)
	return nil
}

var (
	_ domain.NotificationDispatcher = (*QueueDispatcher)(nil)
	_ domain.NotificationDispatcher = LogDispatcher{}
)
