package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"ecomRecommender/domain"
	"ecomRecommender/pkg/cache"
	"ecomRecommender/pkg/logger"
	"ecomRecommender/pkg/metrics"
)

type Config struct {
	ProductServiceURL string
	BookServiceURL    string
	ShoeServiceURL    string
	Timeout           time.Duration
}

// CatalogRepository aggregates the generic product catalog with the
// category-specialized book and shoe catalogs into one normalized view.
// Upstream failures are logged and reported as "no data", never as errors.
type CatalogRepository struct {
	cfg    Config
	client *http.Client

	getProduct  *cache.CachedFn[string, *domain.Product]
	getProducts *cache.CachedFn[listArgs, []domain.Product]
}

type listArgs struct {
	Category string
	Limit    int
}

func NewCatalogRepository(cfg Config, store *cache.Store) *CatalogRepository {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	r := &CatalogRepository{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}

	r.getProduct = cache.NewCachedFn(store, "catalog.get_product", time.Hour,
		func(id string) string { return id },
		r.fetchProduct,
	)
	r.getProducts = cache.NewCachedFn(store, "catalog.get_products", 30*time.Minute,
		func(a listArgs) string { return fmt.Sprintf("%s|%d", a.Category, a.Limit) },
		r.fetchProducts,
	)

	return r
}

// GetProduct returns product detail by ID, or nil when no catalog knows the
// product. The result is memoized.
func (r *CatalogRepository) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	return r.getProduct.Call(ctx, productID)
}

// GetProducts lists products, optionally filtered by category, sorted by
// rating descending. The result is memoized.
func (r *CatalogRepository) GetProducts(ctx context.Context, category string, limit int) ([]domain.Product, error) {
	if limit <= 0 {
		limit = 50
	}

	return r.getProducts.Call(ctx, listArgs{Category: category, Limit: limit})
}

func (r *CatalogRepository) fetchProduct(ctx context.Context, productID string) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	if p := r.fetchGenericProduct(ctx, productID); p != nil {
		return p, nil
	}
	if p := r.fetchBook(ctx, productID); p != nil {
		return p, nil
	}
	if p := r.fetchShoe(ctx, productID); p != nil {
		return p, nil
	}

	logger.Warn("product not found in any catalog", "product_id", productID)
	return nil, nil
}

func (r *CatalogRepository) fetchProducts(ctx context.Context, args listArgs) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	products := r.fetchGenericProducts(ctx, args.Category, args.Limit)

	// Top up from the specialized catalogs when the generic one falls short.
	if len(products) < args.Limit {
		if args.Category == "" || strings.EqualFold(args.Category, domain.CategoryBook) {
			products = append(products, r.fetchBooks(ctx, args.Limit-len(products))...)
		}
	}
	if len(products) < args.Limit {
		if args.Category == "" || strings.EqualFold(args.Category, domain.CategoryShoe) {
			products = append(products, r.fetchShoes(ctx, args.Limit-len(products))...)
		}
	}

	sort.SliceStable(products, func(i, j int) bool {
		if products[i].Rating == products[j].Rating {
			return products[i].ID < products[j].ID
		}
		return products[i].Rating > products[j].Rating
	})

	if len(products) > args.Limit {
		products = products[:args.Limit]
	}

	return products, nil
}

// ---- generic product service ----

type productPayload struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	Type         string  `json:"type"`
	ImageURL     string  `json:"image_url"`
	AvgRating    float64 `json:"avg_rating"`
	ReviewsCount int     `json:"reviews_count"`
}

type productListPayload struct {
	Results []productPayload `json:"results"`
}

func (p productPayload) toDomain() domain.Product {
	category := strings.ToLower(p.Type)
	if category == "" {
		category = "general"
	}

	return domain.Product{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Category:     category,
		ImageURL:     p.ImageURL,
		Rating:       p.AvgRating,
		ReviewsCount: p.ReviewsCount,
	}
}

func (r *CatalogRepository) fetchGenericProduct(ctx context.Context, productID string) *domain.Product {
	var payload productPayload
	endpoint := fmt.Sprintf("%s/products/%s/", r.cfg.ProductServiceURL, url.PathEscape(productID))
	if !r.getJSON(ctx, "product-service", endpoint, &payload) {
		return nil
	}

	if payload.ID == "" {
		payload.ID = productID
	}
	product := payload.toDomain()
	return &product
}

func (r *CatalogRepository) fetchGenericProducts(ctx context.Context, category string, limit int) []domain.Product {
	endpoint := fmt.Sprintf("%s/products/", r.cfg.ProductServiceURL)
	query := url.Values{}
	if category != "" {
		query.Set("type", strings.ToUpper(category))
	}
	query.Set("limit", strconv.Itoa(limit))
	endpoint += "?" + query.Encode()

	var payload productListPayload
	if !r.getJSON(ctx, "product-service", endpoint, &payload) {
		return nil
	}

	products := make([]domain.Product, 0, len(payload.Results))
	for _, p := range payload.Results {
		if len(products) >= limit {
			break
		}
		products = append(products, p.toDomain())
	}

	return products
}

// ---- book service ----

type bookPayload struct {
	ProductID       string   `json:"product_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Price           float64  `json:"price"`
	CoverImage      string   `json:"cover_image"`
	Authors         []string `json:"authors"`
	AvgRating       float64  `json:"avg_rating"`
	ReviewsCount    int      `json:"reviews_count"`
	ISBN            string   `json:"isbn"`
	Publisher       string   `json:"publisher"`
	PublicationDate string   `json:"publication_date"`
	Language        string   `json:"language"`
	Edition         string   `json:"edition"`
	Series          string   `json:"series"`
}

type bookListPayload struct {
	Results []bookPayload `json:"results"`
}

func (b bookPayload) toDomain() domain.Product {
	return domain.Product{
		ID:           b.ProductID,
		Name:         b.Title,
		Description:  b.Description,
		Price:        b.Price,
		Category:     domain.CategoryBook,
		ImageURL:     b.CoverImage,
		Authors:      b.Authors,
		Rating:       b.AvgRating,
		ReviewsCount: b.ReviewsCount,
		Attributes: map[string]string{
			"isbn":             b.ISBN,
			"publisher":        b.Publisher,
			"publication_date": b.PublicationDate,
			"language":         b.Language,
			"edition":          b.Edition,
			"series":           b.Series,
		},
	}
}

func (r *CatalogRepository) fetchBook(ctx context.Context, bookID string) *domain.Product {
	var payload bookPayload
	endpoint := fmt.Sprintf("%s/books/detail/%s/", r.cfg.BookServiceURL, url.PathEscape(bookID))
	if !r.getJSON(ctx, "book-service", endpoint, &payload) {
		return nil
	}

	if payload.ProductID == "" {
		payload.ProductID = bookID
	}
	product := payload.toDomain()
	return &product
}

func (r *CatalogRepository) fetchBooks(ctx context.Context, limit int) []domain.Product {
	if limit <= 0 {
		return nil
	}

	var payload bookListPayload
	endpoint := fmt.Sprintf("%s/books/", r.cfg.BookServiceURL)
	if !r.getJSON(ctx, "book-service", endpoint, &payload) {
		return nil
	}

	products := make([]domain.Product, 0, len(payload.Results))
	for _, b := range payload.Results {
		if len(products) >= limit {
			break
		}
		products = append(products, b.toDomain())
	}

	return products
}

// ---- shoe service ----

type shoePayload struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	ImageURL     string  `json:"image_url"`
	Brand        string  `json:"brand"`
	AvgRating    float64 `json:"avg_rating"`
	ReviewsCount int     `json:"reviews_count"`
	Color        string  `json:"color"`
	Size         string  `json:"size"`
	Gender       string  `json:"gender"`
	Material     string  `json:"material"`
	Style        string  `json:"style"`
	SportType    string  `json:"sport_type"`
	ClosureType  string  `json:"closure_type"`
	SoleMaterial string  `json:"sole_material"`
}

type shoeListPayload struct {
	Results []shoePayload `json:"results"`
}

func (s shoePayload) toDomain() domain.Product {
	return domain.Product{
		ID:           s.ProductID,
		Name:         s.Name,
		Description:  s.Description,
		Price:        s.Price,
		Category:     domain.CategoryShoe,
		ImageURL:     s.ImageURL,
		Brand:        s.Brand,
		Rating:       s.AvgRating,
		ReviewsCount: s.ReviewsCount,
		Attributes: map[string]string{
			"color":         s.Color,
			"size":          s.Size,
			"gender":        s.Gender,
			"material":      s.Material,
			"style":         s.Style,
			"sport_type":    s.SportType,
			"closure_type":  s.ClosureType,
			"sole_material": s.SoleMaterial,
		},
	}
}

func (r *CatalogRepository) fetchShoe(ctx context.Context, shoeID string) *domain.Product {
	var payload shoePayload
	endpoint := fmt.Sprintf("%s/shoes/detail/%s/", r.cfg.ShoeServiceURL, url.PathEscape(shoeID))
	if !r.getJSON(ctx, "shoe-service", endpoint, &payload) {
		return nil
	}

	if payload.ProductID == "" {
		payload.ProductID = shoeID
	}
	product := payload.toDomain()
	return &product
}

func (r *CatalogRepository) fetchShoes(ctx context.Context, limit int) []domain.Product {
	if limit <= 0 {
		return nil
	}

	var payload shoeListPayload
	endpoint := fmt.Sprintf("%s/shoes/", r.cfg.ShoeServiceURL)
	if !r.getJSON(ctx, "shoe-service", endpoint, &payload) {
		return nil
	}

	products := make([]domain.Product, 0, len(payload.Results))
	for _, s := range payload.Results {
		if len(products) >= limit {
			break
		}
		products = append(products, s.toDomain())
	}

	return products
}

// getJSON performs one GET with the shared timeout and decodes the body into
// out. Any failure (network, non-200, bad JSON) is logged, counted, and
// reported as false.
func (r *CatalogRepository) getJSON(ctx context.Context, service, endpoint string, out any) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logger.Error("failed to build catalog request", "service", service, "url", endpoint, err)
		return false
	}

	res, err := r.client.Do(req)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues(service).Inc()
		logger.Error("catalog request failed", "service", service, "url", endpoint, err)
		return false
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		if res.StatusCode != http.StatusNotFound {
			metrics.UpstreamErrors.WithLabelValues(service).Inc()
			logger.Warn("catalog request returned non-200", "service", service, "status", res.StatusCode)
		}
		return false
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		metrics.UpstreamErrors.WithLabelValues(service).Inc()
		logger.Error("failed to decode catalog response", "service", service, err)
		return false
	}

	return true
}
