package domain

type Review struct {
	ProductID string  `json:"product_id"`
	UserID    string  `json:"user_id"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment,omitempty"`
	Verified  bool    `json:"verified"`
}

// ProductReviews is the review-service payload for one product. A failed
// upstream call yields the zero value (no reviews, zero stats).
type ProductReviews struct {
	ProductID       string   `json:"product_id"`
	TotalReviews    int      `json:"total_reviews"`
	AverageRating   float64  `json:"average_rating"`
	VerifiedReviews []Review `json:"verified_reviews"`
	GeneralReviews  []Review `json:"general_reviews"`
}

type UserReviews struct {
	UserID          string   `json:"user_id"`
	TotalReviews    int      `json:"total_reviews"`
	VerifiedReviews []Review `json:"verified_reviews"`
	GeneralReviews  []Review `json:"general_reviews"`
}
