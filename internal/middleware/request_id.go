package middleware

import (
	"context"

	"ecomRecommender/business/recommender"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestID tags every request with an ID, honoring one supplied by the
// caller, and threads it through the request context so service logs can be
// correlated with the response header.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			c.Response().Header().Set(echo.HeaderXRequestID, requestID)

			ctx := context.WithValue(c.Request().Context(), recommender.RequestIDKey, requestID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
