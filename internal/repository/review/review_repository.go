package review

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ecomRecommender/domain"
	"ecomRecommender/pkg/cache"
	"ecomRecommender/pkg/logger"
	"ecomRecommender/pkg/metrics"
)

type Config struct {
	ReviewServiceURL string
	Timeout          time.Duration
}

// ReviewRepository talks to the review service. Failed calls degrade to
// empty review sets so a review-service outage only lowers recommendation
// quality, it never fails a request.
type ReviewRepository struct {
	cfg    Config
	client *http.Client

	getProductReviews *cache.CachedFn[reviewArgs, domain.ProductReviews]
	getUserReviews    *cache.CachedFn[string, domain.UserReviews]
}

type reviewArgs struct {
	ProductID string
	Limit     int
}

func NewReviewRepository(cfg Config, store *cache.Store) *ReviewRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	r := &ReviewRepository{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}

	r.getProductReviews = cache.NewCachedFn(store, "review.product_reviews", 30*time.Minute,
		func(a reviewArgs) string { return fmt.Sprintf("%s|%d", a.ProductID, a.Limit) },
		r.fetchProductReviews,
	)
	r.getUserReviews = cache.NewCachedFn(store, "review.user_reviews", 30*time.Minute,
		func(userID string) string { return userID },
		r.fetchUserReviews,
	)

	return r
}

func (r *ReviewRepository) GetProductReviews(ctx context.Context, productID string, limit int) (domain.ProductReviews, error) {
	if limit <= 0 {
		limit = 50
	}

	return r.getProductReviews.Call(ctx, reviewArgs{ProductID: productID, Limit: limit})
}

func (r *ReviewRepository) GetUserReviews(ctx context.Context, userID string) (domain.UserReviews, error) {
	return r.getUserReviews.Call(ctx, userID)
}

// GetUserRatedProducts flattens a user's verified and general reviews into a
// product -> rating map. General reviews never overwrite a verified rating
// for the same product.
func (r *ReviewRepository) GetUserRatedProducts(ctx context.Context, userID string) (map[string]float64, error) {
	reviews, err := r.GetUserReviews(ctx, userID)
	if err != nil {
		return nil, err
	}

	rated := make(map[string]float64, len(reviews.VerifiedReviews)+len(reviews.GeneralReviews))
	for _, rv := range reviews.GeneralReviews {
		rated[rv.ProductID] = rv.Rating
	}
	for _, rv := range reviews.VerifiedReviews {
		rated[rv.ProductID] = rv.Rating
	}

	return rated, nil
}

type reviewStatsPayload struct {
	TotalReviews  int     `json:"total_reviews"`
	AverageRating float64 `json:"average_rating"`
}

type productReviewsPayload struct {
	Stats           reviewStatsPayload `json:"stats"`
	VerifiedReviews []domain.Review    `json:"verified_reviews"`
	GeneralReviews  []domain.Review    `json:"general_reviews"`
}

type userReviewsPayload struct {
	TotalReviews    int             `json:"total_reviews"`
	VerifiedReviews []domain.Review `json:"verified_reviews"`
	GeneralReviews  []domain.Review `json:"general_reviews"`
}

func (r *ReviewRepository) fetchProductReviews(ctx context.Context, args reviewArgs) (domain.ProductReviews, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProductReviews{}, fmt.Errorf("context error: %w", err)
	}

	empty := domain.ProductReviews{ProductID: args.ProductID}

	var payload productReviewsPayload
	endpoint := fmt.Sprintf("%s/reviews/product_reviews/%s/", r.cfg.ReviewServiceURL, url.PathEscape(args.ProductID))
	if !r.getJSON(ctx, endpoint, &payload) {
		return empty, nil
	}

	return domain.ProductReviews{
		ProductID:       args.ProductID,
		TotalReviews:    payload.Stats.TotalReviews,
		AverageRating:   payload.Stats.AverageRating,
		VerifiedReviews: truncate(payload.VerifiedReviews, args.Limit),
		GeneralReviews:  truncate(payload.GeneralReviews, args.Limit),
	}, nil
}

func (r *ReviewRepository) fetchUserReviews(ctx context.Context, userID string) (domain.UserReviews, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserReviews{}, fmt.Errorf("context error: %w", err)
	}

	empty := domain.UserReviews{UserID: userID}

	var payload userReviewsPayload
	endpoint := fmt.Sprintf("%s/reviews/user_reviews/%s/", r.cfg.ReviewServiceURL, url.PathEscape(userID))
	if !r.getJSON(ctx, endpoint, &payload) {
		return empty, nil
	}

	return domain.UserReviews{
		UserID:          userID,
		TotalReviews:    payload.TotalReviews,
		VerifiedReviews: payload.VerifiedReviews,
		GeneralReviews:  payload.GeneralReviews,
	}, nil
}

func truncate(reviews []domain.Review, limit int) []domain.Review {
	if len(reviews) > limit {
		return reviews[:limit]
	}
	return reviews
}

func (r *ReviewRepository) getJSON(ctx context.Context, endpoint string, out any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logger.Error("failed to build review request", "url", endpoint, err)
		return false
	}

	res, err := r.client.Do(req)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("review-service").Inc()
		logger.Error("review request failed", "url", endpoint, err)
		return false
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		if res.StatusCode != http.StatusNotFound {
			metrics.UpstreamErrors.WithLabelValues("review-service").Inc()
			logger.Warn("review request returned non-200", "url", endpoint, "status", res.StatusCode)
		}
		return false
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		metrics.UpstreamErrors.WithLabelValues("review-service").Inc()
		logger.Error("failed to decode review response", "url", endpoint, err)
		return false
	}

	return true
}
