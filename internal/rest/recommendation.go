package rest

import (
	"context"
	"net/http"
	"time"

	"ecomRecommender/domain"
	"ecomRecommender/pkg/logger"
	"ecomRecommender/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	RecommendationHandler struct {
		validate              *validator.Validate
		recommendationService RecommendationService
	}

	RecommendationService interface {
		GetRecommendationsForUser(ctx context.Context, userID string, limit int, includeSentiment bool) ([]domain.RecommendedProduct, error)
		GetSimilarProducts(ctx context.Context, productID string, limit int, includeSentiment bool) ([]domain.RecommendedProduct, error)
		GetSentimentRecommendations(ctx context.Context, category string, limit int) ([]domain.RecommendedProduct, error)
		GetPopularProducts(ctx context.Context, category string, limit int) ([]domain.RecommendedProduct, error)
		GetSentimentFocusedRecommendations(ctx context.Context, userID string, limit int) ([]domain.RecommendedProduct, error)
	}

	RecommendationsQuery struct {
		Limit            int  `query:"limit" validate:"omitempty,min=1"`
		IncludeSentiment bool `query:"include_sentiment"`
	}

	ListingQuery struct {
		Category string `query:"category"`
		Limit    int    `query:"limit" validate:"omitempty,min=1"`
	}

	SentimentBasedQuery struct {
		UserID string `query:"user_id" validate:"required"`
		Limit  int    `query:"limit" validate:"omitempty,min=1"`
	}
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

func NewRecommendationHandler(svc RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{
		validate:              validator.New(),
		recommendationService: svc,
	}
}

// GET /api/v1/recommendations/user/:user_id?limit=10&include_sentiment=true
func (h *RecommendationHandler) GetForUser(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecommendLatency.WithLabelValues("user").Observe(time.Since(start).Seconds())
	}()
	metrics.RecommendRequests.WithLabelValues("user").Inc()

	userID := c.Param("user_id")
	if userID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "user_id is required"})
	}

	var q RecommendationsQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	recs, err := h.recommendationService.GetRecommendationsForUser(c.Request().Context(), userID, q.Limit, q.IncludeSentiment)
	if err != nil {
		logger.Error("Failed to get user recommendations", "user_id", userID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// GET /api/v1/recommendations/product/:product_id/similar?limit=10&include_sentiment=true
func (h *RecommendationHandler) GetSimilar(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecommendLatency.WithLabelValues("similar").Observe(time.Since(start).Seconds())
	}()
	metrics.RecommendRequests.WithLabelValues("similar").Inc()

	productID := c.Param("product_id")
	if productID == "" {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "product_id is required"})
	}

	var q RecommendationsQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	recs, err := h.recommendationService.GetSimilarProducts(c.Request().Context(), productID, q.Limit, q.IncludeSentiment)
	if err != nil {
		logger.Error("Failed to get similar products", "product_id", productID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// GET /api/v1/recommendations/sentiment?category=book&limit=10
func (h *RecommendationHandler) GetSentiment(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecommendLatency.WithLabelValues("sentiment").Observe(time.Since(start).Seconds())
	}()
	metrics.RecommendRequests.WithLabelValues("sentiment").Inc()

	var q ListingQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	recs, err := h.recommendationService.GetSentimentRecommendations(c.Request().Context(), q.Category, q.Limit)
	if err != nil {
		logger.Error("Failed to get sentiment recommendations", "category", q.Category, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// GET /api/v1/recommendations/popular?category=shoe&limit=10
func (h *RecommendationHandler) GetPopular(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecommendLatency.WithLabelValues("popular").Observe(time.Since(start).Seconds())
	}()
	metrics.RecommendRequests.WithLabelValues("popular").Inc()

	var q ListingQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	recs, err := h.recommendationService.GetPopularProducts(c.Request().Context(), q.Category, q.Limit)
	if err != nil {
		logger.Error("Failed to get popular products", "category", q.Category, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

// GET /api/v1/recommendations/sentiment-based?user_id=u1&limit=10
func (h *RecommendationHandler) GetSentimentBased(c echo.Context) error {
	start := time.Now()
	defer func() {
		metrics.RecommendLatency.WithLabelValues("sentiment_based").Observe(time.Since(start).Seconds())
	}()
	metrics.RecommendRequests.WithLabelValues("sentiment_based").Inc()

	var q SentimentBasedQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "user_id is required"})
	}

	recs, err := h.recommendationService.GetSentimentFocusedRecommendations(c.Request().Context(), q.UserID, q.Limit)
	if err != nil {
		logger.Error("Failed to get sentiment based recommendations", "user_id", q.UserID, "error", err)
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}
