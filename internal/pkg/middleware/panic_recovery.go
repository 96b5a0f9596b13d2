package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/labstack/echo/v4"

	"github.com/givehub/payments/internal/pkg/logger"
	"github.com/givehub/payments/internal/pkg/security"
)

// PanicRecovery recovers from handler panics, logs the sanitized stack and
// returns a 500 without leaking internals to the caller.
func PanicRecovery(zapLogger *logger.ZapLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			defer func() {
				if r := recover(); r != nil {
					stack := string(debug.Stack())

					zapLogger.Error("Panic recovered in HTTP handler",
						logger.Any("panic", r),
						logger.String("method", c.Request().Method),
						logger.String("path", c.Request().URL.Path),
						logger.String("client_ip", c.RealIP()),
						logger.String("stacktrace", security.Sanitize(stack)))

					_ = c.JSON(http.StatusInternalServerError, map[string]string{
						"error": "internal server error",
					})
				}
			}()

			return next(c)
		}
	}
}
