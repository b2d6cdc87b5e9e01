package contentbased

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ecomRecommender/domain"
)

const (
	// candidatePoolSize bounds how many same-category products are scored
	// against the reference product.
	candidatePoolSize = 50
	// seedSimilarLimit is how many similar products each seed contributes
	// on the user path.
	seedSimilarLimit = 5
	// seedRatingThreshold selects the user's top-rated products as seeds.
	seedRatingThreshold = 4.0
	// crossCategoryScore is the flat floor for products from another
	// category, skipping the full formula.
	crossCategoryScore = 0.1
	// minKeywordLength drops short filler words from the keyword bags.
	minKeywordLength = 3
)

// CatalogReader is the slice of the catalog service this filter needs.
type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	GetProducts(ctx context.Context, category string, limit int) ([]domain.Product, error)
}

// ReviewReader provides the user's rating history for the user path.
type ReviewReader interface {
	GetUserRatedProducts(ctx context.Context, userID string) (map[string]float64, error)
}

// attributeBonuses maps category-specific attributes to their exact-match
// weight. The weights per category sum to 0.3.
var attributeBonuses = map[string]map[string]float64{
	domain.CategoryBook: {
		"author":    0.15,
		"publisher": 0.05,
		"language":  0.10,
	},
	domain.CategoryShoe: {
		"brand":    0.15,
		"color":    0.05,
		"style":    0.10,
		"gender":   0.05,
		"material": 0.05,
	},
}

type productFeatures struct {
	category   string
	nameWords  map[string]struct{}
	descWords  map[string]struct{}
	attributes map[string]string
}

// Filter scores products by category, keyword overlap, and exact-match
// attribute bonuses. Extracted features are cached per product ID behind a
// mutex for the lifetime of the process.
type Filter struct {
	catalog CatalogReader
	reviews ReviewReader

	mu       sync.Mutex
	features map[string]*productFeatures
}

func NewFilter(catalog CatalogReader, reviews ReviewReader) *Filter {
	return &Filter{
		catalog:  catalog,
		reviews:  reviews,
		features: make(map[string]*productFeatures),
	}
}

// FindSimilar returns up to limit products ranked by similarity to the
// reference product. Candidates come from the reference's own category and
// the reference itself is never returned. An unknown reference product
// yields an empty result, not an error.
func (f *Filter) FindSimilar(ctx context.Context, productID string, limit int) ([]domain.ScoredProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	target, err := f.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return []domain.ScoredProduct{}, nil
	}

	candidates, err := f.catalog.GetProducts(ctx, target.Category, candidatePoolSize)
	if err != nil {
		return nil, err
	}

	targetFeatures := f.featuresFor(target)

	similar := make([]domain.ScoredProduct, 0, len(candidates))
	for i := range candidates {
		candidate := &candidates[i]
		if candidate.ID == productID {
			continue
		}
		score := similarity(targetFeatures, f.featuresFor(candidate))
		if score <= 0 {
			continue
		}
		similar = append(similar, domain.ScoredProduct{ProductID: candidate.ID, Score: score})
	}

	sortScored(similar)
	if len(similar) > limit {
		similar = similar[:limit]
	}

	return similar, nil
}

// RecommendForUser aggregates FindSimilar over the user's highest-rated
// products, keeping the best similarity score each candidate earns across
// all seeds. Products the user already rated are excluded.
func (f *Filter) RecommendForUser(ctx context.Context, userID string, limit int) ([]domain.ScoredProduct, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}
	if limit <= 0 {
		limit = 10
	}

	rated, err := f.reviews.GetUserRatedProducts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rated) == 0 {
		return []domain.ScoredProduct{}, nil
	}

	seeds := make([]string, 0, len(rated))
	for productID, rating := range rated {
		if rating >= seedRatingThreshold {
			seeds = append(seeds, productID)
		}
	}
	if len(seeds) == 0 {
		for productID := range rated {
			seeds = append(seeds, productID)
		}
	}
	// Seed order must not affect the outcome; max-merge makes it
	// commutative, sorting keeps the walk itself reproducible.
	sort.Strings(seeds)

	best := make(map[string]float64)
	for _, seed := range seeds {
		similar, err := f.FindSimilar(ctx, seed, seedSimilarLimit)
		if err != nil {
			return nil, err
		}
		for _, candidate := range similar {
			if _, alreadyRated := rated[candidate.ProductID]; alreadyRated {
				continue
			}
			if candidate.Score > best[candidate.ProductID] {
				best[candidate.ProductID] = candidate.Score
			}
		}
	}

	recommendations := make([]domain.ScoredProduct, 0, len(best))
	for productID, score := range best {
		recommendations = append(recommendations, domain.ScoredProduct{ProductID: productID, Score: score})
	}

	sortScored(recommendations)
	if len(recommendations) > limit {
		recommendations = recommendations[:limit]
	}

	return recommendations, nil
}

// featuresFor returns the cached feature set for a product, extracting it on
// first sight.
func (f *Filter) featuresFor(product *domain.Product) *productFeatures {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cached, ok := f.features[product.ID]; ok {
		return cached
	}

	features := extractFeatures(product)
	f.features[product.ID] = features
	return features
}

func extractFeatures(product *domain.Product) *productFeatures {
	attributes := make(map[string]string)
	for key, value := range product.Attributes {
		attributes[strings.ToLower(key)] = strings.ToLower(strings.TrimSpace(value))
	}
	if product.Brand != "" {
		attributes["brand"] = strings.ToLower(strings.TrimSpace(product.Brand))
	}
	if len(product.Authors) > 0 {
		attributes["author"] = strings.ToLower(strings.Join(product.Authors, ", "))
	}

	return &productFeatures{
		category:   product.Category,
		nameWords:  keywords(product.Name),
		descWords:  keywords(product.Description),
		attributes: attributes,
	}
}

// keywords lower-cases the text and keeps words longer than three
// characters.
func keywords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(text)) {
		if len(word) > minKeywordLength {
			words[word] = struct{}{}
		}
	}
	return words
}

// similarity is a weighted sum capped at 1.0. Cross-category pairs short out
// to a flat 0.1 instead of running the full formula.
func similarity(a, b *productFeatures) float64 {
	if a.category != b.category {
		return crossCategoryScore
	}

	score := 0.2
	score += 0.3 * jaccard(a.descWords, b.descWords)
	score += 0.2 * jaccard(a.nameWords, b.nameWords)

	for attribute, bonus := range attributeBonuses[a.category] {
		value := a.attributes[attribute]
		if value == "" {
			continue
		}
		if value == b.attributes[attribute] {
			score += bonus
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// jaccard is |intersection| / |union|, 0 when either set is empty.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for word := range a {
		if _, ok := b[word]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

func sortScored(recs []domain.ScoredProduct) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Score == recs[j].Score {
			return recs[i].ProductID < recs[j].ProductID
		}
		return recs[i].Score > recs[j].Score
	})
}
