package notification

import (
	"context"
	"fmt"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/logger"

	"github.com/hibiken/asynq"
)

// Handler persists delivered notifications as in-app messages.
type Handler struct {
	repo domain.NotificationRepository
}

func NewHandler(repo domain.NotificationRepository) *Handler {
	return &Handler{repo: repo}
}

// ProcessTask implements asynq.Handler. Malformed payloads are not retried.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	n, err := ParseDeliverTask(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if err := h.repo.Create(ctx, &n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	logger.Log.Info("notification delivered", "notification_id", n.ID, "user_id", n.UserID, "type", string(n.Type))
	return nil
}

// NewServeMux routes notification tasks to h.
func NewServeMux(h *Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeDeliver, h)
	return mux
}
