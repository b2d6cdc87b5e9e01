package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Services ServicesConfig
	Cache    CacheConfig
	Weights  WeightsConfig
	Limits   LimitsConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

// ServicesConfig holds the base URLs of the external collaborators. Every
// call to them is a single blocking round trip bounded by RequestTimeout.
type ServicesConfig struct {
	ProductServiceURL   string
	BookServiceURL      string
	ShoeServiceURL      string
	ReviewServiceURL    string
	SentimentServiceURL string
	RequestTimeout      time.Duration
}

type CacheConfig struct {
	Enabled                bool
	DefaultTTL             time.Duration
	UserRecommendationsTTL time.Duration
	ProductSimilarityTTL   time.Duration
	SentimentTTL           time.Duration
	PopularProductsTTL     time.Duration
}

// WeightsConfig controls score fusion. Collaborative and Content must sum
// to 1. Sentiment is the blend weight applied when a request asks for
// sentiment adjustment; SentimentFocus is the separate, smaller weight used
// by the pure sentiment-weighted ranking paths.
type WeightsConfig struct {
	Collaborative  float64
	Content        float64
	Sentiment      float64
	SentimentFocus float64
}

type LimitsConfig struct {
	DefaultRecommendations int
	MaxRecommendations     int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Recommendation API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Services: ServicesConfig{
			ProductServiceURL:   getEnv("PRODUCT_SERVICE_URL", "http://product-service:8000"),
			BookServiceURL:      getEnv("BOOK_SERVICE_URL", "http://book-service:8002"),
			ShoeServiceURL:      getEnv("SHOE_SERVICE_URL", "http://shoe-service:8010"),
			ReviewServiceURL:    getEnv("REVIEW_SERVICE_URL", "http://review-service:8004"),
			SentimentServiceURL: getEnv("SENTIMENT_SERVICE_URL", "http://sentiment-service:5000/api"),
			RequestTimeout:      getEnvSeconds("DEFAULT_REQUEST_TIMEOUT", 5),
		},
		Cache: CacheConfig{
			Enabled:                getEnvBool("CACHE_ENABLED", true),
			DefaultTTL:             getEnvSeconds("CACHE_TTL", 3600),
			UserRecommendationsTTL: getEnvSeconds("USER_RECOMMENDATIONS_TTL", 1800),
			ProductSimilarityTTL:   getEnvSeconds("PRODUCT_SIMILARITY_TTL", 1800),
			SentimentTTL:           getEnvSeconds("SENTIMENT_RECOMMENDATIONS_TTL", 3600),
			PopularProductsTTL:     getEnvSeconds("POPULAR_PRODUCTS_TTL", 1800),
		},
		Weights: WeightsConfig{
			Collaborative:  getEnvFloat("COLLABORATIVE_WEIGHT", 0.7),
			Sentiment:      getEnvFloat("SENTIMENT_WEIGHT", 0.3),
			SentimentFocus: getEnvFloat("SENTIMENT_FOCUS_WEIGHT", 0.2),
		},
		Limits: LimitsConfig{
			DefaultRecommendations: getEnvInt("DEFAULT_RECOMMENDATIONS", 10),
			MaxRecommendations:     getEnvInt("MAX_RECOMMENDATIONS", 50),
		},
	}

	if cfg.Weights.Collaborative < 0 || cfg.Weights.Collaborative > 1 {
		return nil, errors.New("collaborative weight must be in [0, 1]")
	}
	cfg.Weights.Content = 1.0 - cfg.Weights.Collaborative

	if cfg.Weights.Sentiment < 0 || cfg.Weights.Sentiment > 1 {
		return nil, errors.New("sentiment weight must be in [0, 1]")
	}
	if cfg.Weights.SentimentFocus < 0 || cfg.Weights.SentimentFocus > 1 {
		return nil, errors.New("sentiment focus weight must be in [0, 1]")
	}

	if cfg.Limits.MaxRecommendations <= 0 {
		return nil, errors.New("max recommendations must be positive")
	}
	if cfg.Limits.DefaultRecommendations <= 0 || cfg.Limits.DefaultRecommendations > cfg.Limits.MaxRecommendations {
		return nil, fmt.Errorf("default recommendations must be in [1, %d]", cfg.Limits.MaxRecommendations)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}

	return parsed
}

func getEnvSeconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(getEnvInt(key, defaultSeconds)) * time.Second
}
