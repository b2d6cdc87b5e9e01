package rest

import (
	"context"
	"net/http"

	"ecomRecommender/domain"
	"ecomRecommender/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	InsightsHandler struct {
		insightsService InsightsService
	}

	InsightsService interface {
		GetUserPreferences(ctx context.Context, userID string) (domain.UserPreferences, error)
		GetRecommendationReasons(ctx context.Context, productID string) (domain.RecommendationReasons, error)
		GetSentimentOverview(ctx context.Context) (map[string]int, error)
	}
)

func NewInsightsHandler(svc InsightsService) *InsightsHandler {
	return &InsightsHandler{insightsService: svc}
}

// GET /api/v1/insights/user/:user_id/preferences
func (h *InsightsHandler) GetUserPreferences(c echo.Context) error {
	userID := c.Param("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "user_id is required"})
	}

	preferences, err := h.insightsService.GetUserPreferences(c.Request().Context(), userID)
	if err != nil {
		logger.Error("Failed to get user preferences", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(preferences))
}

// GET /api/v1/insights/product/:product_id/recommendation-reasons
func (h *InsightsHandler) GetRecommendationReasons(c echo.Context) error {
	productID := c.Param("product_id")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "product_id is required"})
	}

	reasons, err := h.insightsService.GetRecommendationReasons(c.Request().Context(), productID)
	if err != nil {
		logger.Error("Failed to get recommendation reasons", "product_id", productID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(reasons))
}

// GET /api/v1/insights/sentiment/distribution
func (h *InsightsHandler) GetSentimentDistribution(c echo.Context) error {
	distribution, err := h.insightsService.GetSentimentOverview(c.Request().Context())
	if err != nil {
		logger.Error("Failed to get sentiment distribution", "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(distribution))
}
