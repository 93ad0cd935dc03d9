package middleware

import (
	"errors"
	"net/http"

	"promoPilot/pkg/logger"

	jsonres "promoPilot/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the echo-level fallback for errors handlers did not map
// themselves.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("unhandled_request_error",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	}

	if err := c.JSON(code, jsonres.Error("ERROR", message, nil)); err != nil {
		logger.Error("error_response_write_failed", "error", err)
	}
}
