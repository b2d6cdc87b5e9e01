package domain

// Product is the normalized shape shared by the generic product catalog and
// the category-specialized book/shoe catalogs. Attributes carries the
// category-specific fields (publisher, language, color, material, ...).
type Product struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Price        float64           `json:"price"`
	Category     string            `json:"category"`
	ImageURL     string            `json:"image_url"`
	Brand        string            `json:"brand,omitempty"`
	Authors      []string          `json:"authors,omitempty"`
	Rating       float64           `json:"rating"`
	ReviewsCount int               `json:"reviews_count"`
	Attributes   map[string]string `json:"attributes,omitempty"`
}

const (
	CategoryBook = "book"
	CategoryShoe = "shoe"
)
