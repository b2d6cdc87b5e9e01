package domain

// NeutralSentiment is the default score used whenever the sentiment service
// has no data for a product.
const NeutralSentiment = 0.5

type Sentiment struct {
	ProductID             string         `json:"product_id"`
	SentimentScore        float64        `json:"sentiment_score"`
	SentimentDistribution map[string]int `json:"sentiment_distribution,omitempty"`
}

// SentimentProduct is one entry of the sentiment service's top-products list.
// Name/Category may be empty when the upstream returns bare scores; the
// orchestration layer enriches such entries with catalog detail.
type SentimentProduct struct {
	ProductID             string         `json:"product_id"`
	Name                  string         `json:"name,omitempty"`
	Category              string         `json:"category,omitempty"`
	SentimentScore        float64        `json:"sentiment_score"`
	SentimentDistribution map[string]int `json:"sentiment_distribution,omitempty"`
}
