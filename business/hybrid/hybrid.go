package hybrid

import (
	"context"
	"fmt"
	"sort"

	"ecomRecommender/domain"
	"ecomRecommender/pkg/config"
	"ecomRecommender/pkg/logger"
)

// CollaborativeRecommender produces user-based scores.
type CollaborativeRecommender interface {
	Recommend(ctx context.Context, userID string, limit int) ([]domain.ScoredProduct, error)
}

// ContentRecommender produces content similarity scores.
type ContentRecommender interface {
	RecommendForUser(ctx context.Context, userID string, limit int) ([]domain.ScoredProduct, error)
	FindSimilar(ctx context.Context, productID string, limit int) ([]domain.ScoredProduct, error)
}

// SentimentReader provides review sentiment signals for re-ranking.
type SentimentReader interface {
	GetProductsSentiment(ctx context.Context, productIDs []string) (map[string]domain.Sentiment, error)
	GetTopSentimentProducts(ctx context.Context, category string, limit int) ([]domain.SentimentProduct, error)
}

// Combiner fuses collaborative and content scores into one ranking and
// optionally blends in review sentiment.
type Combiner struct {
	collaborative CollaborativeRecommender
	content       ContentRecommender
	sentiment     SentimentReader
	weights       config.WeightsConfig
}

func NewCombiner(collaborative CollaborativeRecommender, content ContentRecommender, sentiment SentimentReader, weights config.WeightsConfig) *Combiner {
	return &Combiner{
		collaborative: collaborative,
		content:       content,
		sentiment:     sentiment,
		weights:       weights,
	}
}

// RecommendForUser over-fetches limit*2 candidates from both filters, unions
// them by product ID, and ranks by the weighted blend. When includeSentiment
// is set the weighted score is further blended with the sentiment score.
func (c *Combiner) RecommendForUser(ctx context.Context, userID string, limit int, includeSentiment bool) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	fetchLimit := limit * 2

	collaborative, err := c.collaborative.Recommend(ctx, userID, fetchLimit)
	if err != nil {
		return nil, err
	}
	content, err := c.content.RecommendForUser(ctx, userID, fetchLimit)
	if err != nil {
		return nil, err
	}

	candidates := c.merge(collaborative, content)
	if err := c.score(ctx, candidates, includeSentiment); err != nil {
		return nil, err
	}

	return rank(candidates, limit), nil
}

// RecommendSimilarProducts ranks products similar to a reference product.
// There is no collaborative signal on this path, so the weighted score is
// the content similarity itself.
func (c *Combiner) RecommendSimilarProducts(ctx context.Context, productID string, limit int, includeSentiment bool) ([]domain.RecommendationCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	similar, err := c.content.FindSimilar(ctx, productID, limit*2)
	if err != nil {
		return nil, err
	}

	candidates := make(map[string]*domain.RecommendationCandidate, len(similar))
	for _, scored := range similar {
		candidates[scored.ProductID] = &domain.RecommendationCandidate{
			ProductID:      scored.ProductID,
			ContentScore:   scored.Score,
			SentimentScore: domain.NeutralSentiment,
			WeightedScore:  scored.Score,
		}
	}

	if err := c.applySentiment(ctx, candidates, includeSentiment); err != nil {
		return nil, err
	}

	return rank(candidates, limit), nil
}

// TopSentiment bypasses fusion entirely and ranks purely by sentiment score,
// for trending listings independent of any user.
func (c *Combiner) TopSentiment(ctx context.Context, category string, limit int) ([]domain.SentimentProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	return c.sentiment.GetTopSentimentProducts(ctx, category, limit)
}

// merge unions both score lists by product ID; a candidate missing from one
// side keeps that side's score at 0.
func (c *Combiner) merge(collaborative, content []domain.ScoredProduct) map[string]*domain.RecommendationCandidate {
	candidates := make(map[string]*domain.RecommendationCandidate, len(collaborative)+len(content))

	for _, scored := range collaborative {
		candidates[scored.ProductID] = &domain.RecommendationCandidate{
			ProductID:          scored.ProductID,
			CollaborativeScore: scored.Score,
			SentimentScore:     domain.NeutralSentiment,
		}
	}
	for _, scored := range content {
		candidate, ok := candidates[scored.ProductID]
		if !ok {
			candidate = &domain.RecommendationCandidate{
				ProductID:      scored.ProductID,
				SentimentScore: domain.NeutralSentiment,
			}
			candidates[scored.ProductID] = candidate
		}
		candidate.ContentScore = scored.Score
	}

	return candidates
}

func (c *Combiner) score(ctx context.Context, candidates map[string]*domain.RecommendationCandidate, includeSentiment bool) error {
	for _, candidate := range candidates {
		candidate.WeightedScore = c.weights.Collaborative*candidate.CollaborativeScore +
			c.weights.Content*candidate.ContentScore
	}
	return c.applySentiment(ctx, candidates, includeSentiment)
}

// applySentiment batch-fetches sentiment for every candidate and blends it
// into the final score. Without sentiment the final score is the weighted
// score unchanged.
func (c *Combiner) applySentiment(ctx context.Context, candidates map[string]*domain.RecommendationCandidate, includeSentiment bool) error {
	if !includeSentiment {
		for _, candidate := range candidates {
			candidate.FinalScore = candidate.WeightedScore
		}
		return nil
	}

	productIDs := make([]string, 0, len(candidates))
	for productID := range candidates {
		productIDs = append(productIDs, productID)
	}

	sentiments, err := c.sentiment.GetProductsSentiment(ctx, productIDs)
	if err != nil {
		return err
	}

	for productID, candidate := range candidates {
		sentiment, ok := sentiments[productID]
		if !ok {
			logger.Debug("no sentiment for product, using neutral", "product_id", productID)
			sentiment = domain.Sentiment{ProductID: productID, SentimentScore: domain.NeutralSentiment}
		}
		candidate.SentimentScore = sentiment.SentimentScore
		candidate.SentimentDistribution = sentiment.SentimentDistribution
		candidate.FinalScore = (1-c.weights.Sentiment)*candidate.WeightedScore +
			c.weights.Sentiment*candidate.SentimentScore
	}

	return nil
}

// rank sorts by final score descending, product ID breaking ties, and
// truncates to limit.
func rank(candidates map[string]*domain.RecommendationCandidate, limit int) []domain.RecommendationCandidate {
	ranked := make([]domain.RecommendationCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, *candidate)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].FinalScore == ranked[j].FinalScore {
			return ranked[i].ProductID < ranked[j].ProductID
		}
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
