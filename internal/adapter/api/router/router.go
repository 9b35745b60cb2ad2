package router

import (
	"filehub/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, uploadLimiter *middleware.RateLimiter) {
	SetupFileRouter(e, uploadLimiter)
	SetupHealthRouter(e)
	SetupMetricsRouter(e)
}
