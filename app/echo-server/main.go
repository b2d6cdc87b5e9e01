package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecomRecommender/app/echo-server/router"
	"ecomRecommender/business/collaborative"
	"ecomRecommender/business/contentbased"
	"ecomRecommender/business/hybrid"
	"ecomRecommender/business/recommender"
	"ecomRecommender/internal/middleware"
	"ecomRecommender/internal/repository/catalog"
	"ecomRecommender/internal/repository/review"
	"ecomRecommender/internal/repository/sentiment"
	"ecomRecommender/internal/rest"
	"ecomRecommender/pkg/cache"
	"ecomRecommender/pkg/config"
	"ecomRecommender/pkg/logger"
	"ecomRecommender/pkg/metrics"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting recommendation service", "version", cfg.App.Version)

	metrics.Init()

	// Shared result cache
	store := cache.NewStore(cfg.Cache.Enabled)

	// Init repo
	catalogRepo := catalog.NewCatalogRepository(catalog.Config{
		ProductServiceURL: cfg.Services.ProductServiceURL,
		BookServiceURL:    cfg.Services.BookServiceURL,
		ShoeServiceURL:    cfg.Services.ShoeServiceURL,
		Timeout:           cfg.Services.RequestTimeout,
	}, store)
	reviewRepo := review.NewReviewRepository(review.Config{
		ReviewServiceURL: cfg.Services.ReviewServiceURL,
		Timeout:          cfg.Services.RequestTimeout,
	}, store)
	sentimentRepo := sentiment.NewSentimentRepository(sentiment.Config{
		SentimentServiceURL: cfg.Services.SentimentServiceURL,
		Timeout:             cfg.Services.RequestTimeout,
	}, store)

	// Init service
	collaborativeFilter := collaborative.NewFilter(reviewRepo)
	contentFilter := contentbased.NewFilter(catalogRepo, reviewRepo)
	combiner := hybrid.NewCombiner(collaborativeFilter, contentFilter, sentimentRepo, cfg.Weights)
	recommenderService := recommender.NewService(
		store, cfg.Cache, cfg.Weights, cfg.Limits,
		combiner, catalogRepo, reviewRepo, sentimentRepo,
	)

	// Init handler
	recommendationHandler := rest.NewRecommendationHandler(recommenderService)
	insightsHandler := rest.NewInsightsHandler(recommenderService)
	cacheAdminHandler := rest.NewCacheAdminHandler(store)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:3000", "http://localhost:8080"},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "healthy",
			"service": cfg.App.Name,
			"version": cfg.App.Version,
		})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Setup routes
	api := e.Group("/api/v1")
	router.SetupRecommendationRoutes(api, recommendationHandler)
	router.SetupInsightsRoutes(api, insightsHandler)
	router.SetupCacheAdminRoutes(api, cacheAdminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	logger.Info("Server stopped")
}
