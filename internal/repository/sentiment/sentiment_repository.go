package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ecomRecommender/domain"
	"ecomRecommender/pkg/cache"
	"ecomRecommender/pkg/logger"
	"ecomRecommender/pkg/metrics"
)

type Config struct {
	SentimentServiceURL string
	Timeout             time.Duration
}

// SentimentRepository consumes the sentiment analysis service as an opaque
// signal. A product with no sentiment data, or any upstream failure, yields
// the neutral default (0.5) so recommendations degrade instead of failing.
type SentimentRepository struct {
	cfg    Config
	client *http.Client

	getProductSentiment *cache.CachedFn[string, domain.Sentiment]
	getTopProducts      *cache.CachedFn[topArgs, []domain.SentimentProduct]
}

type topArgs struct {
	Category string
	Limit    int
}

func NewSentimentRepository(cfg Config, store *cache.Store) *SentimentRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	r := &SentimentRepository{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}

	r.getProductSentiment = cache.NewCachedFn(store, "sentiment.product", time.Hour,
		func(id string) string { return id },
		r.fetchProductSentiment,
	)
	r.getTopProducts = cache.NewCachedFn(store, "sentiment.top_products", time.Hour,
		func(a topArgs) string { return fmt.Sprintf("%s|%d", a.Category, a.Limit) },
		r.fetchTopProducts,
	)

	return r
}

func (r *SentimentRepository) GetProductSentiment(ctx context.Context, productID string) (domain.Sentiment, error) {
	return r.getProductSentiment.Call(ctx, productID)
}

// GetProductsSentiment fetches sentiment for a batch of products, one
// blocking call each, reusing per-product cache entries.
func (r *SentimentRepository) GetProductsSentiment(ctx context.Context, productIDs []string) (map[string]domain.Sentiment, error) {
	results := make(map[string]domain.Sentiment, len(productIDs))
	for _, id := range productIDs {
		s, err := r.GetProductSentiment(ctx, id)
		if err != nil {
			return nil, err
		}
		results[id] = s
	}

	return results, nil
}

func (r *SentimentRepository) GetTopSentimentProducts(ctx context.Context, category string, limit int) ([]domain.SentimentProduct, error) {
	if limit <= 0 {
		limit = 10
	}

	return r.getTopProducts.Call(ctx, topArgs{Category: category, Limit: limit})
}

// GetSentimentDistribution reports the overall positive/neutral/negative
// split across all analyzed reviews.
func (r *SentimentRepository) GetSentimentDistribution(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var payload struct {
		Distribution map[string]int `json:"distribution"`
	}
	endpoint := fmt.Sprintf("%s/trends/distribution", r.cfg.SentimentServiceURL)
	if !r.getJSON(ctx, endpoint, &payload) || payload.Distribution == nil {
		return map[string]int{"positive": 0, "neutral": 0, "negative": 0}, nil
	}

	return payload.Distribution, nil
}

func neutral(productID string) domain.Sentiment {
	return domain.Sentiment{
		ProductID:             productID,
		SentimentScore:        domain.NeutralSentiment,
		SentimentDistribution: map[string]int{"positive": 0, "neutral": 0, "negative": 0},
	}
}

func (r *SentimentRepository) fetchProductSentiment(ctx context.Context, productID string) (domain.Sentiment, error) {
	if err := ctx.Err(); err != nil {
		return domain.Sentiment{}, fmt.Errorf("context error: %w", err)
	}

	var payload domain.Sentiment
	endpoint := fmt.Sprintf("%s/product/%s/sentiment", r.cfg.SentimentServiceURL, url.PathEscape(productID))
	if !r.getJSON(ctx, endpoint, &payload) {
		return neutral(productID), nil
	}

	if payload.ProductID == "" {
		payload.ProductID = productID
	}

	return payload, nil
}

func (r *SentimentRepository) fetchTopProducts(ctx context.Context, args topArgs) ([]domain.SentimentProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/products/top", r.cfg.SentimentServiceURL)
	query := url.Values{}
	query.Set("limit", strconv.Itoa(args.Limit))
	if args.Category != "" {
		query.Set("category", args.Category)
	}
	endpoint += "?" + query.Encode()

	var payload struct {
		Products []domain.SentimentProduct `json:"products"`
	}
	if !r.getJSON(ctx, endpoint, &payload) {
		return []domain.SentimentProduct{}, nil
	}

	return payload.Products, nil
}

func (r *SentimentRepository) getJSON(ctx context.Context, endpoint string, out any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logger.Error("failed to build sentiment request", "url", endpoint, err)
		return false
	}

	res, err := r.client.Do(req)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("sentiment-service").Inc()
		logger.Error("sentiment request failed", "url", endpoint, err)
		return false
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		if res.StatusCode != http.StatusNotFound {
			metrics.UpstreamErrors.WithLabelValues("sentiment-service").Inc()
			logger.Warn("sentiment request returned non-200", "url", endpoint, "status", res.StatusCode)
		}
		return false
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		metrics.UpstreamErrors.WithLabelValues("sentiment-service").Inc()
		logger.Error("failed to decode sentiment response", "url", endpoint, err)
		return false
	}

	return true
}
