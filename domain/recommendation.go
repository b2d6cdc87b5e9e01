package domain

// ScoredProduct is the bare (product, score) pair produced by a single
// filter before fusion. Scores are always in [0, 1].
type ScoredProduct struct {
	ProductID string  `json:"product_id"`
	Score     float64 `json:"score"`
}

// RecommendationCandidate carries the per-model scores of one product through
// hybrid fusion. A model that produced no signal leaves its score at 0;
// SentimentScore defaults to neutral (0.5) until the sentiment service
// reports otherwise.
type RecommendationCandidate struct {
	ProductID             string         `json:"product_id"`
	CollaborativeScore    float64        `json:"collaborative_score"`
	ContentScore          float64        `json:"content_score"`
	SentimentScore        float64        `json:"sentiment_score"`
	WeightedScore         float64        `json:"weighted_score"`
	FinalScore            float64        `json:"final_score"`
	SentimentDistribution map[string]int `json:"sentiment_distribution,omitempty"`
}

// RecommendedProduct is a fused candidate enriched with catalog detail, the
// shape returned to API callers. Sentiment fields are only set when the
// request asked for sentiment adjustment.
type RecommendedProduct struct {
	Product
	RecommendationScore   float64        `json:"recommendation_score"`
	RecommendationType    string         `json:"recommendation_type"`
	SentimentScore        *float64       `json:"sentiment_score,omitempty"`
	SentimentDistribution map[string]int `json:"sentiment_distribution,omitempty"`
}

const (
	RecommendationTypeHybrid     = "hybrid"
	RecommendationTypeContent    = "content-based"
	RecommendationTypePopularity = "popularity"
	RecommendationTypeSentiment  = "sentiment"
)

// UserPreferences summarizes what a user's rating history says about them.
type UserPreferences struct {
	UserID             string   `json:"user_id"`
	RatedProducts      int      `json:"rated_products"`
	AverageRating      float64  `json:"average_rating"`
	FavoriteCategories []string `json:"favorite_categories"`
	FavoriteBrands     []string `json:"favorite_brands,omitempty"`
	FavoriteAuthors    []string `json:"favorite_authors,omitempty"`
}

type RecommendationReasons struct {
	ProductID string   `json:"product_id"`
	Reasons   []string `json:"recommendation_reasons"`
}
