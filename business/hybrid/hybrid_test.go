package hybrid

import (
	"context"
	"math"
	"testing"

	"ecomRecommender/domain"
	"ecomRecommender/pkg/config"
)

type fakeCollaborative struct {
	recs      []domain.ScoredProduct
	lastLimit int
}

func (f *fakeCollaborative) Recommend(_ context.Context, _ string, limit int) ([]domain.ScoredProduct, error) {
	f.lastLimit = limit
	return f.recs, nil
}

type fakeContent struct {
	userRecs  []domain.ScoredProduct
	similar   []domain.ScoredProduct
	lastLimit int
}

func (f *fakeContent) RecommendForUser(_ context.Context, _ string, limit int) ([]domain.ScoredProduct, error) {
	f.lastLimit = limit
	return f.userRecs, nil
}

func (f *fakeContent) FindSimilar(_ context.Context, _ string, limit int) ([]domain.ScoredProduct, error) {
	f.lastLimit = limit
	return f.similar, nil
}

type fakeSentiment struct {
	scores map[string]domain.Sentiment
	top    []domain.SentimentProduct
}

func (f *fakeSentiment) GetProductsSentiment(_ context.Context, productIDs []string) (map[string]domain.Sentiment, error) {
	out := make(map[string]domain.Sentiment)
	for _, id := range productIDs {
		if s, ok := f.scores[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

func (f *fakeSentiment) GetTopSentimentProducts(_ context.Context, _ string, limit int) ([]domain.SentimentProduct, error) {
	if len(f.top) > limit {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func defaultWeights() config.WeightsConfig {
	return config.WeightsConfig{
		Collaborative:  0.7,
		Content:        0.3,
		Sentiment:      0.3,
		SentimentFocus: 0.2,
	}
}

func TestRecommendForUserWeightedBlend(t *testing.T) {
	collaborative := &fakeCollaborative{recs: []domain.ScoredProduct{{ProductID: "p1", Score: 0.8}}}
	content := &fakeContent{userRecs: []domain.ScoredProduct{{ProductID: "p1", Score: 0.4}}}
	combiner := NewCombiner(collaborative, content, &fakeSentiment{}, defaultWeights())

	recs, err := combiner.RecommendForUser(context.Background(), "alice", 5, false)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(recs))
	}
	want := 0.7*0.8 + 0.3*0.4
	if math.Abs(recs[0].WeightedScore-want) > 1e-9 {
		t.Fatalf("expected weighted score %f, got %f", want, recs[0].WeightedScore)
	}
	if recs[0].FinalScore != recs[0].WeightedScore {
		t.Fatal("without sentiment the final score must equal the weighted score")
	}
}

func TestRecommendForUserOverFetches(t *testing.T) {
	collaborative := &fakeCollaborative{}
	content := &fakeContent{}
	combiner := NewCombiner(collaborative, content, &fakeSentiment{}, defaultWeights())

	if _, err := combiner.RecommendForUser(context.Background(), "alice", 5, false); err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if collaborative.lastLimit != 10 || content.lastLimit != 10 {
		t.Fatalf("expected both filters asked for limit*2, got %d and %d", collaborative.lastLimit, content.lastLimit)
	}
}

func TestRecommendForUserMissingSideDefaultsToZero(t *testing.T) {
	collaborative := &fakeCollaborative{recs: []domain.ScoredProduct{{ProductID: "onlycollab", Score: 0.5}}}
	content := &fakeContent{userRecs: []domain.ScoredProduct{{ProductID: "onlycontent", Score: 0.5}}}
	combiner := NewCombiner(collaborative, content, &fakeSentiment{}, defaultWeights())

	recs, err := combiner.RecommendForUser(context.Background(), "alice", 5, false)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected union of 2 candidates, got %d", len(recs))
	}
	for _, rec := range recs {
		switch rec.ProductID {
		case "onlycollab":
			if rec.ContentScore != 0 || math.Abs(rec.WeightedScore-0.7*0.5) > 1e-9 {
				t.Fatalf("unexpected scores for %s: %+v", rec.ProductID, rec)
			}
		case "onlycontent":
			if rec.CollaborativeScore != 0 || math.Abs(rec.WeightedScore-0.3*0.5) > 1e-9 {
				t.Fatalf("unexpected scores for %s: %+v", rec.ProductID, rec)
			}
		}
	}
}

func TestSentimentBlendIsConvex(t *testing.T) {
	collaborative := &fakeCollaborative{recs: []domain.ScoredProduct{{ProductID: "p1", Score: 1.0}}}
	sentiment := &fakeSentiment{scores: map[string]domain.Sentiment{
		"p1": {ProductID: "p1", SentimentScore: 0.9, SentimentDistribution: map[string]int{"positive": 9, "negative": 1}},
	}}
	combiner := NewCombiner(collaborative, &fakeContent{}, sentiment, defaultWeights())

	recs, err := combiner.RecommendForUser(context.Background(), "alice", 5, true)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	weighted := 0.7 * 1.0
	want := 0.7*weighted + 0.3*0.9
	if math.Abs(recs[0].FinalScore-want) > 1e-9 {
		t.Fatalf("expected final score %f, got %f", want, recs[0].FinalScore)
	}
	if recs[0].FinalScore < 0 || recs[0].FinalScore > 1 {
		t.Fatalf("final score out of bounds: %f", recs[0].FinalScore)
	}
	if recs[0].SentimentDistribution["positive"] != 9 {
		t.Fatalf("sentiment distribution not carried: %+v", recs[0])
	}
}

func TestMissingSentimentDefaultsToNeutral(t *testing.T) {
	collaborative := &fakeCollaborative{recs: []domain.ScoredProduct{{ProductID: "p1", Score: 1.0}}}
	combiner := NewCombiner(collaborative, &fakeContent{}, &fakeSentiment{}, defaultWeights())

	recs, err := combiner.RecommendForUser(context.Background(), "alice", 5, true)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if math.Abs(recs[0].SentimentScore-domain.NeutralSentiment) > 1e-9 {
		t.Fatalf("expected neutral sentiment 0.5, got %f", recs[0].SentimentScore)
	}
	want := 0.7*0.7 + 0.3*0.5
	if math.Abs(recs[0].FinalScore-want) > 1e-9 {
		t.Fatalf("expected final score %f, got %f", want, recs[0].FinalScore)
	}
}

func TestRecommendSimilarProductsUsesContentAsWeighted(t *testing.T) {
	content := &fakeContent{similar: []domain.ScoredProduct{{ProductID: "p2", Score: 0.6}}}
	combiner := NewCombiner(&fakeCollaborative{}, content, &fakeSentiment{}, defaultWeights())

	recs, err := combiner.RecommendSimilarProducts(context.Background(), "p1", 5, false)
	if err != nil {
		t.Fatalf("RecommendSimilarProducts: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(recs))
	}
	if recs[0].WeightedScore != 0.6 || recs[0].FinalScore != 0.6 {
		t.Fatalf("similar path must use content similarity directly: %+v", recs[0])
	}
	if content.lastLimit != 10 {
		t.Fatalf("expected over-fetch of limit*2, got %d", content.lastLimit)
	}
}

func TestRankingTieBreakAndTruncation(t *testing.T) {
	collaborative := &fakeCollaborative{recs: []domain.ScoredProduct{
		{ProductID: "zz", Score: 0.5},
		{ProductID: "aa", Score: 0.5},
		{ProductID: "mm", Score: 0.4},
	}}
	combiner := NewCombiner(collaborative, &fakeContent{}, &fakeSentiment{}, defaultWeights())

	recs, err := combiner.RecommendForUser(context.Background(), "alice", 2, false)
	if err != nil {
		t.Fatalf("RecommendForUser: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(recs))
	}
	if recs[0].ProductID != "aa" || recs[1].ProductID != "zz" {
		t.Fatalf("expected tie broken by product ID, got %v", recs)
	}
}

func TestTopSentiment(t *testing.T) {
	sentiment := &fakeSentiment{top: []domain.SentimentProduct{
		{ProductID: "p1", SentimentScore: 0.95},
		{ProductID: "p2", SentimentScore: 0.9},
	}}
	combiner := NewCombiner(&fakeCollaborative{}, &fakeContent{}, sentiment, defaultWeights())

	top, err := combiner.TopSentiment(context.Background(), "book", 1)
	if err != nil {
		t.Fatalf("TopSentiment: %v", err)
	}
	if len(top) != 1 || top[0].ProductID != "p1" {
		t.Fatalf("unexpected top sentiment list: %v", top)
	}
}
