package recommender

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"ecomRecommender/domain"
	"ecomRecommender/pkg/cache"
	"ecomRecommender/pkg/config"
	"ecomRecommender/pkg/logger"
)

const (
	// sentimentThreshold is the minimum sentiment score a candidate needs
	// on the sentiment-focused path before the fallback kicks in.
	sentimentThreshold = 0.7
	// favoriteCount caps how many favorite categories, brands, and authors
	// the preferences summary reports.
	favoriteCount = 3
)

// HybridRecommender is the fusion layer the orchestrator delegates scoring
// to.
type HybridRecommender interface {
	RecommendForUser(ctx context.Context, userID string, limit int, includeSentiment bool) ([]domain.RecommendationCandidate, error)
	RecommendSimilarProducts(ctx context.Context, productID string, limit int, includeSentiment bool) ([]domain.RecommendationCandidate, error)
	TopSentiment(ctx context.Context, category string, limit int) ([]domain.SentimentProduct, error)
}

type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	GetProducts(ctx context.Context, category string, limit int) ([]domain.Product, error)
}

type ReviewReader interface {
	GetUserRatedProducts(ctx context.Context, userID string) (map[string]float64, error)
	GetProductReviews(ctx context.Context, productID string, limit int) (domain.ProductReviews, error)
}

type SentimentReader interface {
	GetProductSentiment(ctx context.Context, productID string) (domain.Sentiment, error)
	GetSentimentDistribution(ctx context.Context) (map[string]int, error)
}

type userRecArgs struct {
	UserID           string
	Limit            int
	IncludeSentiment bool
}

type similarArgs struct {
	ProductID        string
	Limit            int
	IncludeSentiment bool
}

type listArgs struct {
	Category string
	Limit    int
}

// Service is the orchestration layer behind the REST handlers. Every public
// listing is memoized through the shared cache store; the per-request
// degradation policy (drop what cannot be enriched, never fail the whole
// request for one missing product) lives here.
type Service struct {
	hybrid    HybridRecommender
	catalog   CatalogReader
	reviews   ReviewReader
	sentiment SentimentReader
	weights   config.WeightsConfig
	limits    config.LimitsConfig

	userRecommendations *cache.CachedFn[userRecArgs, []domain.RecommendedProduct]
	similarProducts     *cache.CachedFn[similarArgs, []domain.RecommendedProduct]
	sentimentProducts   *cache.CachedFn[listArgs, []domain.RecommendedProduct]
	popularProducts     *cache.CachedFn[listArgs, []domain.RecommendedProduct]
}

func NewService(
	store *cache.Store,
	cacheCfg config.CacheConfig,
	weights config.WeightsConfig,
	limits config.LimitsConfig,
	hybrid HybridRecommender,
	catalog CatalogReader,
	reviews ReviewReader,
	sentiment SentimentReader,
) *Service {
	s := &Service{
		hybrid:    hybrid,
		catalog:   catalog,
		reviews:   reviews,
		sentiment: sentiment,
		weights:   weights,
		limits:    limits,
	}

	s.userRecommendations = cache.NewCachedFn(store, "recommendations.user", cacheCfg.UserRecommendationsTTL,
		func(a userRecArgs) string {
			return a.UserID + "|" + strconv.Itoa(a.Limit) + "|" + strconv.FormatBool(a.IncludeSentiment)
		}, s.computeUserRecommendations)
	s.similarProducts = cache.NewCachedFn(store, "recommendations.similar", cacheCfg.ProductSimilarityTTL,
		func(a similarArgs) string {
			return a.ProductID + "|" + strconv.Itoa(a.Limit) + "|" + strconv.FormatBool(a.IncludeSentiment)
		}, s.computeSimilarProducts)
	s.sentimentProducts = cache.NewCachedFn(store, "recommendations.sentiment", cacheCfg.SentimentTTL,
		func(a listArgs) string {
			return a.Category + "|" + strconv.Itoa(a.Limit)
		}, s.computeSentimentRecommendations)
	s.popularProducts = cache.NewCachedFn(store, "recommendations.popular", cacheCfg.PopularProductsTTL,
		func(a listArgs) string {
			return a.Category + "|" + strconv.Itoa(a.Limit)
		}, s.computePopularProducts)

	return s
}

// GetRecommendationsForUser returns the personalized hybrid ranking enriched
// with catalog detail.
func (s *Service) GetRecommendationsForUser(ctx context.Context, userID string, limit int, includeSentiment bool) ([]domain.RecommendedProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	args := userRecArgs{UserID: userID, Limit: s.clampLimit(limit), IncludeSentiment: includeSentiment}
	return s.userRecommendations.Call(ctx, args)
}

func (s *Service) computeUserRecommendations(ctx context.Context, args userRecArgs) ([]domain.RecommendedProduct, error) {
	logger.Info("computing user recommendations",
		"request_id", RequestIDFromContext(ctx),
		"user_id", args.UserID,
		"limit", args.Limit,
		"include_sentiment", args.IncludeSentiment,
	)

	candidates, err := s.hybrid.RecommendForUser(ctx, args.UserID, args.Limit, args.IncludeSentiment)
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, candidates, domain.RecommendationTypeHybrid, args.IncludeSentiment)
}

// GetSimilarProducts returns products similar to a reference product.
func (s *Service) GetSimilarProducts(ctx context.Context, productID string, limit int, includeSentiment bool) ([]domain.RecommendedProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	args := similarArgs{ProductID: productID, Limit: s.clampLimit(limit), IncludeSentiment: includeSentiment}
	return s.similarProducts.Call(ctx, args)
}

func (s *Service) computeSimilarProducts(ctx context.Context, args similarArgs) ([]domain.RecommendedProduct, error) {
	candidates, err := s.hybrid.RecommendSimilarProducts(ctx, args.ProductID, args.Limit, args.IncludeSentiment)
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, candidates, domain.RecommendationTypeContent, args.IncludeSentiment)
}

// GetSentimentRecommendations lists the products with the best review
// sentiment, independent of any user.
func (s *Service) GetSentimentRecommendations(ctx context.Context, category string, limit int) ([]domain.RecommendedProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	return s.sentimentProducts.Call(ctx, listArgs{Category: category, Limit: s.clampLimit(limit)})
}

func (s *Service) computeSentimentRecommendations(ctx context.Context, args listArgs) ([]domain.RecommendedProduct, error) {
	top, err := s.hybrid.TopSentiment(ctx, args.Category, args.Limit)
	if err != nil {
		return nil, err
	}

	recommendations := make([]domain.RecommendedProduct, 0, len(top))
	for _, item := range top {
		product := domain.Product{ID: item.ProductID, Name: item.Name, Category: item.Category}
		if item.Name == "" {
			// bare sentiment rows carry only the product ID
			detail, err := s.catalog.GetProduct(ctx, item.ProductID)
			if err != nil {
				return nil, err
			}
			if detail == nil {
				logger.Debug("dropping sentiment product without catalog entry",
					"request_id", RequestIDFromContext(ctx), "product_id", item.ProductID)
				continue
			}
			product = *detail
		}

		score := item.SentimentScore
		recommendations = append(recommendations, domain.RecommendedProduct{
			Product:               product,
			RecommendationScore:   score,
			RecommendationType:    domain.RecommendationTypeSentiment,
			SentimentScore:        &score,
			SentimentDistribution: item.SentimentDistribution,
		})
	}

	return recommendations, nil
}

// GetPopularProducts lists the highest-rated products in a category.
func (s *Service) GetPopularProducts(ctx context.Context, category string, limit int) ([]domain.RecommendedProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	return s.popularProducts.Call(ctx, listArgs{Category: category, Limit: s.clampLimit(limit)})
}

func (s *Service) computePopularProducts(ctx context.Context, args listArgs) ([]domain.RecommendedProduct, error) {
	products, err := s.catalog.GetProducts(ctx, args.Category, args.Limit)
	if err != nil {
		return nil, err
	}

	recommendations := make([]domain.RecommendedProduct, 0, len(products))
	for _, product := range products {
		recommendations = append(recommendations, domain.RecommendedProduct{
			Product:             product,
			RecommendationScore: product.Rating / 5.0,
			RecommendationType:  domain.RecommendationTypePopularity,
		})
	}

	return recommendations, nil
}

// GetSentimentFocusedRecommendations is the personalized list restricted to
// products with strong review sentiment. It over-fetches, keeps candidates at
// or above the sentiment threshold re-ranked by the sentiment-focus blend,
// and falls back to the unfiltered top when too few qualify.
func (s *Service) GetSentimentFocusedRecommendations(ctx context.Context, userID string, limit int) ([]domain.RecommendedProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	limit = s.clampLimit(limit)

	candidates, err := s.hybrid.RecommendForUser(ctx, userID, limit*2, true)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		candidates[i].FinalScore = (1-s.weights.SentimentFocus)*candidates[i].WeightedScore +
			s.weights.SentimentFocus*candidates[i].SentimentScore
	}

	qualified := make([]domain.RecommendationCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.SentimentScore >= sentimentThreshold {
			qualified = append(qualified, candidate)
		}
	}
	if len(qualified) < limit {
		logger.Info("not enough well-reviewed candidates, falling back to unfiltered ranking",
			"request_id", RequestIDFromContext(ctx),
			"user_id", userID,
			"qualified", len(qualified),
		)
		qualified = candidates
	}

	sort.Slice(qualified, func(i, j int) bool {
		if qualified[i].FinalScore == qualified[j].FinalScore {
			return qualified[i].ProductID < qualified[j].ProductID
		}
		return qualified[i].FinalScore > qualified[j].FinalScore
	})
	if len(qualified) > limit {
		qualified = qualified[:limit]
	}

	return s.enrich(ctx, qualified, domain.RecommendationTypeSentiment, true)
}

// GetUserPreferences derives a profile summary from the user's rated
// products.
func (s *Service) GetUserPreferences(ctx context.Context, userID string) (domain.UserPreferences, error) {
	if err := ctx.Err(); err != nil {
		return domain.UserPreferences{}, fmt.Errorf("context error: %w", err)
	}

	rated, err := s.reviews.GetUserRatedProducts(ctx, userID)
	if err != nil {
		return domain.UserPreferences{}, err
	}

	preferences := domain.UserPreferences{UserID: userID, RatedProducts: len(rated)}
	if len(rated) == 0 {
		return preferences, nil
	}

	var total float64
	categories := make(map[string]int)
	brands := make(map[string]int)
	authors := make(map[string]int)
	for productID, rating := range rated {
		total += rating

		product, err := s.catalog.GetProduct(ctx, productID)
		if err != nil {
			return domain.UserPreferences{}, err
		}
		if product == nil {
			continue
		}
		if product.Category != "" {
			categories[product.Category]++
		}
		if product.Brand != "" {
			brands[product.Brand]++
		}
		for _, author := range product.Authors {
			authors[author]++
		}
	}

	preferences.AverageRating = total / float64(len(rated))
	preferences.FavoriteCategories = topKeys(categories, favoriteCount)
	preferences.FavoriteBrands = topKeys(brands, favoriteCount)
	preferences.FavoriteAuthors = topKeys(authors, favoriteCount)

	return preferences, nil
}

// GetRecommendationReasons explains in plain language why a product would be
// recommended, from its live catalog, review, and sentiment signals.
func (s *Service) GetRecommendationReasons(ctx context.Context, productID string) (domain.RecommendationReasons, error) {
	if err := ctx.Err(); err != nil {
		return domain.RecommendationReasons{}, fmt.Errorf("context error: %w", err)
	}

	reasons := domain.RecommendationReasons{ProductID: productID, Reasons: []string{}}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return domain.RecommendationReasons{}, err
	}
	if product == nil {
		return reasons, nil
	}

	reviews, err := s.reviews.GetProductReviews(ctx, productID, 0)
	if err != nil {
		return domain.RecommendationReasons{}, err
	}
	if reviews.AverageRating >= 4.0 && reviews.TotalReviews > 0 {
		reasons.Reasons = append(reasons.Reasons,
			fmt.Sprintf("Highly rated: %.1f average across %d reviews", reviews.AverageRating, reviews.TotalReviews))
	}
	if len(reviews.VerifiedReviews) > len(reviews.GeneralReviews) {
		reasons.Reasons = append(reasons.Reasons, "Most reviews come from verified purchases")
	}

	sentiment, err := s.sentiment.GetProductSentiment(ctx, productID)
	if err != nil {
		return domain.RecommendationReasons{}, err
	}
	if sentiment.SentimentScore >= sentimentThreshold {
		reasons.Reasons = append(reasons.Reasons, "Review sentiment is strongly positive")
	}

	if product.Category != "" {
		reasons.Reasons = append(reasons.Reasons,
			fmt.Sprintf("Popular with shoppers browsing the %s category", product.Category))
	}

	return reasons, nil
}

// GetSentimentOverview reports how reviews across the whole catalog split
// between positive, neutral, and negative.
func (s *Service) GetSentimentOverview(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	return s.sentiment.GetSentimentDistribution(ctx)
}

// enrich resolves each candidate against the catalog and drops the ones with
// no product detail rather than failing the request.
func (s *Service) enrich(ctx context.Context, candidates []domain.RecommendationCandidate, recommendationType string, includeSentiment bool) ([]domain.RecommendedProduct, error) {
	recommendations := make([]domain.RecommendedProduct, 0, len(candidates))
	for _, candidate := range candidates {
		product, err := s.catalog.GetProduct(ctx, candidate.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			logger.Debug("dropping candidate without catalog entry",
				"request_id", RequestIDFromContext(ctx), "product_id", candidate.ProductID)
			continue
		}

		recommended := domain.RecommendedProduct{
			Product:             *product,
			RecommendationScore: candidate.FinalScore,
			RecommendationType:  recommendationType,
		}
		if includeSentiment {
			score := candidate.SentimentScore
			recommended.SentimentScore = &score
			recommended.SentimentDistribution = candidate.SentimentDistribution
		}
		recommendations = append(recommendations, recommended)
	}

	return recommendations, nil
}

// clampLimit applies the configured default and maximum.
func (s *Service) clampLimit(limit int) int {
	if limit <= 0 {
		return s.limits.DefaultRecommendations
	}
	if limit > s.limits.MaxRecommendations {
		return s.limits.MaxRecommendations
	}
	return limit
}

// topKeys returns up to n keys ordered by count descending, name ascending.
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] == counts[keys[j]] {
			return keys[i] < keys[j]
		}
		return counts[keys[i]] > counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}
