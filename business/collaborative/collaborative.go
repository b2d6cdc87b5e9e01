package collaborative

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"ecomRecommender/domain"
	"ecomRecommender/pkg/logger"
)

// ReviewReader is the slice of the review service this filter needs.
type ReviewReader interface {
	GetUserRatedProducts(ctx context.Context, userID string) (map[string]float64, error)
}

// Filter predicts ratings through user-user cosine similarity over the
// rating vectors seen so far this process. The rating table and the
// per-user similarity cache live in memory only and are guarded by one
// mutex; nothing is persisted across restarts.
type Filter struct {
	reviews ReviewReader

	mu           sync.Mutex
	ratings      map[string]map[string]float64
	similarities map[string]map[string]float64
}

func NewFilter(reviews ReviewReader) *Filter {
	return &Filter{
		reviews:      reviews,
		ratings:      make(map[string]map[string]float64),
		similarities: make(map[string]map[string]float64),
	}
}

// Recommend returns up to limit products the user has not rated, scored by
// similarity-weighted predicted rating normalized to [0, 1]. A user with no
// rating history, or no similar users, gets the popularity fallback instead.
func (f *Filter) Recommend(ctx context.Context, userID string, limit int) ([]domain.ScoredProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	userRatings, err := f.reviews.GetUserRatedProducts(ctx, userID)
	if err != nil {
		return nil, err
	}

	if len(userRatings) == 0 {
		logger.Warn("no ratings found for user, using popularity fallback", "user_id", userID)
		return f.popularityFallback(limit), nil
	}

	f.updateRatings(userID, userRatings)

	similarities := f.userSimilarities(userID)
	if len(similarities) == 0 {
		logger.Warn("no similar users found, using popularity fallback", "user_id", userID)
		return f.popularityFallback(limit), nil
	}

	return f.predict(userID, userRatings, similarities, limit), nil
}

// updateRatings stores the user's current rating vector and drops that
// user's cached similarities, which are now stale.
func (f *Filter) updateRatings(userID string, ratings map[string]float64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ratings[userID] = ratings
	delete(f.similarities, userID)
}

// userSimilarities returns cosine similarity against every other known user,
// keeping only positive scores. Results are cached per user until that
// user's rating vector changes.
func (f *Filter) userSimilarities(userID string) map[string]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cached, ok := f.similarities[userID]; ok {
		return cached
	}

	similarities := make(map[string]float64)
	for otherID := range f.ratings {
		if otherID == userID {
			continue
		}
		if sim := cosineSimilarity(f.ratings[userID], f.ratings[otherID]); sim > 0 {
			similarities[otherID] = sim
		}
	}

	f.similarities[userID] = similarities
	return similarities
}

// cosineSimilarity is computed over the products both users rated. It is 0
// when the intersection is empty or either restricted vector has zero norm.
func cosineSimilarity(a, b map[string]float64) float64 {
	var dot, normA, normB float64
	for productID, ra := range a {
		rb, ok := b[productID]
		if !ok {
			continue
		}
		dot += ra * rb
		normA += ra * ra
		normB += rb * rb
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// predict computes the similarity-weighted average rating for every product
// rated by a similar user but not by the target user, normalized by the
// 5-point rating scale.
func (f *Filter) predict(userID string, exclude map[string]float64, similarities map[string]float64, limit int) []domain.ScoredProduct {
	f.mu.Lock()
	defer f.mu.Unlock()

	type accum struct {
		weightedSum   float64
		similaritySum float64
	}

	scores := make(map[string]*accum)
	for otherID, sim := range similarities {
		for productID, rating := range f.ratings[otherID] {
			if _, rated := exclude[productID]; rated {
				continue
			}
			acc, ok := scores[productID]
			if !ok {
				acc = &accum{}
				scores[productID] = acc
			}
			acc.weightedSum += sim * rating
			acc.similaritySum += sim
		}
	}

	recommendations := make([]domain.ScoredProduct, 0, len(scores))
	for productID, acc := range scores {
		if acc.similaritySum <= 0 {
			continue
		}
		predicted := acc.weightedSum / acc.similaritySum
		recommendations = append(recommendations, domain.ScoredProduct{
			ProductID: productID,
			Score:     predicted / 5.0,
		})
	}

	sortScored(recommendations)
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}

	return recommendations
}

// popularityFallback ranks every known product by its average rating damped
// by how many users rated it, so a single 5-star rating does not outrank a
// well-reviewed bestseller.
func (f *Filter) popularityFallback(limit int) []domain.ScoredProduct {
	f.mu.Lock()
	defer f.mu.Unlock()

	type accum struct {
		sum   float64
		count int
	}

	totals := make(map[string]*accum)
	for _, userRatings := range f.ratings {
		for productID, rating := range userRatings {
			acc, ok := totals[productID]
			if !ok {
				acc = &accum{}
				totals[productID] = acc
			}
			acc.sum += rating
			acc.count++
		}
	}

	recommendations := make([]domain.ScoredProduct, 0, len(totals))
	for productID, acc := range totals {
		avg := acc.sum / float64(acc.count)
		weight := float64(acc.count) / float64(acc.count+1)
		recommendations = append(recommendations, domain.ScoredProduct{
			ProductID: productID,
			Score:     (avg / 5.0) * weight,
		})
	}

	sortScored(recommendations)
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}

	return recommendations
}

// sortScored orders by score descending with product ID as the stable
// tie-break.
func sortScored(recs []domain.ScoredProduct) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score == recs[j].Score {
			return recs[i].ProductID < recs[j].ProductID
		}
		return recs[i].Score > recs[j].Score
	})
}
