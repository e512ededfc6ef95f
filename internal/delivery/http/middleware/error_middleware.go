package middleware

import (
	"errors"
	"net/http"

	"go-interview-scheduler/internal/delivery/http/response"
	"go-interview-scheduler/pkg/apperror"
	"go-interview-scheduler/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		requestID := c.GetString("RequestID")

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Kind == apperror.KindInternal {
				logger.Log.Error("request failed", "request_id", requestID, "path", c.FullPath(), "error", appErr.Err)
				response.Error(c, appErr.Code, "An unexpected error occurred. Please try again later.", gin.H{"kind": appErr.Kind})
				return
			}
			response.Error(c, appErr.Code, appErr.Message, gin.H{"kind": appErr.Kind})
			return
		}

		// Never expose internal error details to clients
		logger.Log.Error("unhandled error", "request_id", requestID, "path", c.FullPath(), "error", err)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
