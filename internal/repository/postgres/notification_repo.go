package postgres

import (
	"context"
	"encoding/json"
	"time"

	"go-interview-scheduler/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

type notificationRepo struct {
	db *pgxpool.Pool
}

// NewNotificationRepository stores in-app notifications written by the worker
func NewNotificationRepository(db *pgxpool.Pool) domain.NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	metadata, err := json.Marshal(n.Metadata)
	if err != nil {
		return err
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO notifications (user_id, title, message, type, metadata, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, false, $6)
		RETURNING id`
	return conn(ctx, r.db).QueryRow(ctx, query,
		n.UserID, n.Title, n.Message, n.Type, string(metadata), n.CreatedAt,
	).Scan(&n.ID)
}
