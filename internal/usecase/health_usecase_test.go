package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go-interview-scheduler/internal/usecase"

	"github.com/stretchr/testify/assert"
)

func TestHealthUsecase(t *testing.T) {
	up := usecase.PingFunc(func(context.Context) error { return nil })
	down := usecase.PingFunc(func(context.Context) error { return errors.New("connection refused") })

	status, healthy := usecase.NewHealthUsecase(map[string]usecase.Pinger{"database": up, "redis": nil}).Check(context.Background())
	assert.True(t, healthy)
	assert.Equal(t, map[string]string{"status": "ok", "database": "ok"}, status)

	status, healthy = usecase.NewHealthUsecase(map[string]usecase.Pinger{"database": up, "redis": down}).Check(context.Background())
	assert.False(t, healthy)
	assert.Equal(t, "degraded", status["status"])
	assert.Equal(t, "unavailable", status["redis"])
}
