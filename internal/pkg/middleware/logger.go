package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/givehub/payments/internal/pkg/logger"
)

// RequestLogger logs one line per request with latency and status.
func RequestLogger(zapLogger *logger.ZapLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			path := c.Request().URL.Path

			err := next(c)

			latency := time.Since(start)
			status := c.Response().Status

			fields := []logger.Field{
				logger.Int("status", status),
				logger.String("method", c.Request().Method),
				logger.String("path", path),
				logger.String("client_ip", c.RealIP()),
				logger.Duration("latency", latency),
			}

			switch {
			case status >= 500:
				zapLogger.Error("Request failed", fields...)
			case status >= 400:
				zapLogger.Warn("Request rejected", fields...)
			default:
				zapLogger.Info("Request processed", fields...)
			}

			return err
		}
	}
}
