package v1

import (
	"context"
	"net/http"
	"time"

	"go-interview-scheduler/config"
	"go-interview-scheduler/internal/delivery/http/middleware"
	"go-interview-scheduler/internal/delivery/http/response"
	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// HealthChecker reports per-dependency status.
type HealthChecker interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type RouterDeps struct {
	AvailabilityUC domain.AvailabilityUsecase
	ExceptionUC    domain.ExceptionUsecase
	BookingUC      domain.BookingUsecase
	InterviewUC    domain.InterviewUsecase
	Health         HealthChecker
	KeySet         *auth.KeySet // nil when only HS256 tokens are accepted
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	production := deps.Config.Environment == "production"
	window := time.Duration(deps.Config.RateLimitWindowSeconds) * time.Second

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL, production)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimitConfig(deps.Config.GlobalRateLimit, window)))
	r.Use(middleware.CSRFMiddleware(production))
	r.Use(middleware.ErrorHandler())

	v1 := r.Group("/v1")

	v1.GET("/health", func(c *gin.Context) {
		status, healthy := deps.Health.Check(c.Request.Context())
		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.KeySet, deps.Config))
	{
		bookingLimit := middleware.RateLimitMiddleware(middleware.BookingRateLimitConfig(deps.Config.BookingRateLimit, window))

		NewAvailabilityHandler(protected, deps.AvailabilityUC, deps.ExceptionUC, deps.BookingUC)
		NewInterviewHandler(protected, deps.InterviewUC, bookingLimit)
	}

	return r
}
