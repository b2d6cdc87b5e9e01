package router

import (
	"ecomRecommender/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupRecommendationRoutes(api *echo.Group, handler *rest.RecommendationHandler) {
	recommendations := api.Group("/recommendations")

	recommendations.GET("/user/:user_id", handler.GetForUser)
	recommendations.GET("/product/:product_id/similar", handler.GetSimilar)
	recommendations.GET("/sentiment", handler.GetSentiment)
	recommendations.GET("/popular", handler.GetPopular)
	recommendations.GET("/sentiment-based", handler.GetSentimentBased)
}

func SetupInsightsRoutes(api *echo.Group, handler *rest.InsightsHandler) {
	insights := api.Group("/insights")

	insights.GET("/user/:user_id/preferences", handler.GetUserPreferences)
	insights.GET("/product/:product_id/recommendation-reasons", handler.GetRecommendationReasons)
	insights.GET("/sentiment/distribution", handler.GetSentimentDistribution)
}

func SetupCacheAdminRoutes(api *echo.Group, handler *rest.CacheAdminHandler) {
	admin := api.Group("/admin/cache")

	admin.GET("/stats", handler.GetStats)
	admin.POST("/sweep", handler.Sweep)
	admin.POST("/clear", handler.Clear)
}
