package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"go-interview-scheduler/internal/domain"

	"github.com/hibiken/asynq"
)

// TypeDeliver is the asynq task type for in-app notification delivery.
const TypeDeliver = "notification:deliver"

// NewDeliverTask wraps n in a task bound to queue.
func NewDeliverTask(n domain.Notification, queue string) (*asynq.Task, error) {
	payload, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	return asynq.NewTask(TypeDeliver, payload,
		asynq.Queue(queue),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}

// ParseDeliverTask decodes the payload produced by NewDeliverTask.
func ParseDeliverTask(t *asynq.Task) (domain.Notification, error) {
	var n domain.Notification
	if err := json.Unmarshal(t.Payload(), &n); err != nil {
		return domain.Notification{}, err
	}
	if n.UserID == "" {
		return domain.Notification{}, fmt.Errorf("notification without recipient")
	}
	return n, nil
}
