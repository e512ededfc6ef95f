package domain

import (
	"context"
	"time"
)

type NotificationType string

const (
	NotificationInterviewInvitation  NotificationType = "interview_invitation"
	NotificationInterviewScheduled   NotificationType = "interview_scheduled"
	NotificationInterviewCancelled   NotificationType = "interview_cancelled"
	NotificationInterviewRescheduled NotificationType = "interview_rescheduled"
	NotificationInterviewCompleted   NotificationType = "interview_completed"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID        int64                  `json:"id"`
	UserID    string                 `json:"user_id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      NotificationType       `json:"type"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	IsRead    bool                   `json:"is_read"`
	CreatedAt time.Time              `json:"created_at"`
}

// NotificationDispatcher hands a notification off for delivery. Callers treat it as fire-and-forget.
type NotificationDispatcher interface {
	Notify(ctx context.Context, n Notification) error
}

// NotificationRepository persists delivered in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
}
