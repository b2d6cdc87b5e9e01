package middleware

import (
	"net/http"

	"ecomRecommender/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the fallback for errors that escape the handlers, echo's
// own routing errors included. Handler-level failures are answered in place,
// so anything arriving here is either a 404/405 from the router or a bug.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "internal server error"

	if httpErr, ok := err.(*echo.HTTPError); ok {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Error("Unhandled request error",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"error", err,
		)
	}

	if err := c.JSON(code, echo.Map{"message": message}); err != nil {
		logger.Error("Failed to write error response", "error", err)
	}
}
