package contentbased

import (
	"context"
	"math"
	"testing"

	"ecomRecommender/domain"
)

type fakeCatalog struct {
	products []domain.Product
}

func (f *fakeCatalog) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	for i := range f.products {
		if f.products[i].ID == productID {
			return &f.products[i], nil
		}
	}
	return nil, nil
}

// GetProducts ignores the category filter on purpose: the real aggregate
// listing mixes in generic catalog entries from other categories.
func (f *fakeCatalog) GetProducts(_ context.Context, _ string, limit int) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeReviews struct {
	ratings map[string]map[string]float64
}

func (f *fakeReviews) GetUserRatedProducts(_ context.Context, userID string) (map[string]float64, error) {
	return f.ratings[userID], nil
}

func book(id, name, description string, attrs map[string]string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        name,
		Description: description,
		Category:    domain.CategoryBook,
		Attributes:  attrs,
	}
}

func findScore(t *testing.T, recs []domain.ScoredProduct, productID string) float64 {
	t.Helper()
	for _, rec := range recs {
		if rec.ProductID == productID {
			return rec.Score
		}
	}
	t.Fatalf("product %s not in results: %v", productID, recs)
	return 0
}

func TestFindSimilarExcludesSelf(t *testing.T) {
	catalog := &fakeCatalog{products: []domain.Product{
		book("b1", "first", "apple banana", nil),
		book("b2", "second", "apple cherry", nil),
	}}
	filter := NewFilter(catalog, &fakeReviews{})

	recs, err := filter.FindSimilar(context.Background(), "b1", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	for _, rec := range recs {
		if rec.ProductID == "b1" {
			t.Fatal("reference product returned as its own match")
		}
	}
}

func TestFindSimilarKeywordOverlap(t *testing.T) {
	// Description keyword sets {apple, banana} and {apple, cherry} share
	// one of three distinct words, so the Jaccard term contributes
	// 0.3 * 1/3 on top of the 0.2 same-category base. Names share
	// nothing and no attributes match.
	catalog := &fakeCatalog{products: []domain.Product{
		book("b1", "first", "apple banana", nil),
		book("b2", "second", "apple cherry", nil),
	}}
	filter := NewFilter(catalog, &fakeReviews{})

	recs, err := filter.FindSimilar(context.Background(), "b1", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	score := findScore(t, recs, "b2")
	if math.Abs(score-0.3) > 1e-9 {
		t.Fatalf("expected score 0.3, got %f", score)
	}
}

func TestFindSimilarCrossCategoryFloor(t *testing.T) {
	catalog := &fakeCatalog{products: []domain.Product{
		book("b1", "running guide", "running training plans", nil),
		{
			ID:          "s1",
			Name:        "running guide",
			Description: "running training plans",
			Category:    domain.CategoryShoe,
		},
	}}
	filter := NewFilter(catalog, &fakeReviews{})

	recs, err := filter.FindSimilar(context.Background(), "b1", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	score := findScore(t, recs, "s1")
	// Identical text does not matter across categories.
	if math.Abs(score-0.1) > 1e-9 {
		t.Fatalf("expected cross-category floor 0.1, got %f", score)
	}
}

func TestFindSimilarAttributeBonuses(t *testing.T) {
	catalog := &fakeCatalog{products: []domain.Product{
		book("b1", "first", "apple", map[string]string{"publisher": "acme", "language": "en"}),
		book("b2", "second", "cherry", map[string]string{"publisher": "acme", "language": "en"}),
		book("b3", "third", "grape", map[string]string{"publisher": "other", "language": "fr"}),
	}}
	filter := NewFilter(catalog, &fakeReviews{})

	recs, err := filter.FindSimilar(context.Background(), "b1", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	// Matching publisher and language add 0.05 + 0.10 over the base 0.2.
	score := findScore(t, recs, "b2")
	if math.Abs(score-0.35) > 1e-9 {
		t.Fatalf("expected score 0.35 for matching attributes, got %f", score)
	}
	score = findScore(t, recs, "b3")
	if math.Abs(score-0.2) > 1e-9 {
		t.Fatalf("expected base score 0.2 for differing attributes, got %f", score)
	}
}

func TestEmptyAttributeEarnsNoBonus(t *testing.T) {
	catalog := &fakeCatalog{products: []domain.Product{
		book("b1", "first", "apple", map[string]string{"publisher": ""}),
		book("b2", "second", "cherry", map[string]string{"publisher": ""}),
	}}
	filter := NewFilter(catalog, &fakeReviews{})

	recs, err := filter.FindSimilar(context.Background(), "b1", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	score := findScore(t, recs, "b2")
	if math.Abs(score-0.2) > 1e-9 {
		t.Fatalf("two empty publishers must not match, got %f", score)
	}
}

func TestSimilarityCappedAtOne(t *testing.T) {
	attrs := map[string]string{"color": "black", "style": "running", "gender": "men", "material": "mesh"}
	catalog := &fakeCatalog{products: []domain.Product{
		{ID: "s1", Name: "speed runner", Description: "lightweight racing shoe", Category: domain.CategoryShoe, Brand: "acme", Attributes: attrs},
		{ID: "s2", Name: "speed runner", Description: "lightweight racing shoe", Category: domain.CategoryShoe, Brand: "acme", Attributes: attrs},
	}}
	filter := NewFilter(catalog, &fakeReviews{})

	recs, err := filter.FindSimilar(context.Background(), "s1", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	score := findScore(t, recs, "s2")
	if math.Abs(score-1.0) > 1e-9 {
		t.Fatalf("identical shoes should cap at 1.0, got %f", score)
	}
}

func TestFindSimilarUnknownProduct(t *testing.T) {
	filter := NewFilter(&fakeCatalog{}, &fakeReviews{})

	recs, err := filter.FindSimilar(context.Background(), "missing", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty result for unknown product, got %v", recs)
	}
}

func TestRecommendForUserSeedsAndExclusions(t *testing.T) {
	catalog := &fakeCatalog{products: []domain.Product{
		book("seed", "first", "apple banana", nil),
		book("rated", "second", "apple banana", nil),
		book("fresh", "third", "apple cherry", nil),
	}}
	reviews := &fakeReviews{ratings: map[string]map[string]float64{
		"alice": {"seed": 5, "rated": 2},
	}}
	filter := NewFilter(catalog, reviews)

	recs, err := filter.RecommendForUser(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected only the unrated candidate, got %v", recs)
	}
	if recs[0].ProductID != "fresh" {
		t.Fatalf("expected fresh, got %s", recs[0].ProductID)
	}
}

func TestRecommendForUserFallsBackToAllRated(t *testing.T) {
	catalog := &fakeCatalog{products: []domain.Product{
		book("seed", "first", "apple banana", nil),
		book("fresh", "second", "apple cherry", nil),
	}}
	// No rating reaches the threshold, so every rated product seeds.
	reviews := &fakeReviews{ratings: map[string]map[string]float64{
		"alice": {"seed": 2},
	}}
	filter := NewFilter(catalog, reviews)

	recs, err := filter.RecommendForUser(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(recs) != 1 || recs[0].ProductID != "fresh" {
		t.Fatalf("expected fresh from fallback seeds, got %v", recs)
	}
}

func TestRecommendForUserNoHistory(t *testing.T) {
	filter := NewFilter(&fakeCatalog{}, &fakeReviews{})

	recs, err := filter.RecommendForUser(context.Background(), "nobody", 10)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("expected empty result without rating history, got %v", recs)
	}
}

func TestDeterministicOrdering(t *testing.T) {
	catalog := &fakeCatalog{products: []domain.Product{
		book("b1", "first", "apple", nil),
		book("zz", "second", "cherry", nil),
		book("aa", "third", "grape", nil),
	}}
	filter := NewFilter(catalog, &fakeReviews{})

	first, err := filter.FindSimilar(context.Background(), "b1", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	second, err := filter.FindSimilar(context.Background(), "b1", 10)
	if err != nil {
		t.Fatalf("FindSimilar: %v", err)
	}
	if len(first) != 2 || first[0].ProductID != "aa" || first[1].ProductID != "zz" {
		t.Fatalf("expected tie broken by product ID, got %v", first)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("ordering not deterministic: %v vs %v", first, second)
		}
	}
}
