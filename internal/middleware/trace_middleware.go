package middleware

import (
	"context"

	"promoPilot/business/bandit"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TraceMiddleware attaches a trace id to every request context so service
// debug logs can be correlated.
func TraceMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tid := c.Request().Header.Get("X-Trace-ID")
			if tid == "" {
				tid = uuid.NewString()
			}

			req := c.Request()
			ctx := context.WithValue(req.Context(), bandit.TraceIDKey, tid)
			c.SetRequest(req.WithContext(ctx))
			c.Response().Header().Set("X-Trace-ID", tid)

			return next(c)
		}
	}
}
