package notification_test

import (
	"context"
	"errors"
	"testing"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/internal/notification"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func TestDeliverTaskRoundTrip(t *testing.T) {
	n := domain.Notification{
		UserID:   "seeker-1",
		Title:    "Interview scheduled",
		Type:     domain.NotificationInterviewScheduled,
		Metadata: map[string]interface{}{"interview_id": "iv-1"},
	}
	task, err := notification.NewDeliverTask(n, "notifications")
	require.NoError(t, err)
	assert.Equal(t, notification.TypeDeliver, task.Type())

	got, err := notification.ParseDeliverTask(task)
	require.NoError(t, err)
	assert.Equal(t, "seeker-1", got.UserID)
	assert.Equal(t, "iv-1", got.Metadata["interview_id"])
}

func TestHandler_ProcessTask(t *testing.T) {
	t.Run("stores the notification", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == "emp-1" && n.Type == domain.NotificationInterviewCancelled
		})).Return(nil)

		task, err := notification.NewDeliverTask(domain.Notification{UserID: "emp-1", Type: domain.NotificationInterviewCancelled}, "notifications")
		require.NoError(t, err)

		require.NoError(t, notification.NewHandler(repo).ProcessTask(context.Background(), task))
		repo.AssertExpectations(t)
	})

	t.Run("malformed payload is not retried", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		err := notification.NewHandler(repo).ProcessTask(context.Background(), asynq.NewTask(notification.TypeDeliver, []byte("{")))
		assert.True(t, errors.Is(err, asynq.SkipRetry))
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing recipient is not retried", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		task := asynq.NewTask(notification.TypeDeliver, []byte(`{"title":"orphan"}`))
		err := notification.NewHandler(repo).ProcessTask(context.Background(), task)
		assert.True(t, errors.Is(err, asynq.SkipRetry))
	})

	t.Run("store failure is retried", func(t *testing.T) {
		repo := new(MockNotificationRepo)
		repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))
		task, _ := notification.NewDeliverTask(domain.Notification{UserID: "emp-1"}, "notifications")

		err := notification.NewHandler(repo).ProcessTask(context.Background(), task)
		require.Error(t, err)
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})
}
