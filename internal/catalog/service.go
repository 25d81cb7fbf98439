package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/diewo77/autoparts/internal/apperr"
	"github.com/diewo77/autoparts/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service loads catalog data from the database.
type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{DB: db} }

// Items loads every product with its brand and category names.
func (s *Service) Items(ctx context.Context) ([]Item, error) {
	var products []models.Product
	if err := s.DB.WithContext(ctx).Preload("Brand").Preload("Category").Order("id").Find(&products).Error; err != nil {
		return nil, apperr.Remote("list catalog", err)
	}
	items := make([]Item, 0, len(products))
	for i := range products {
		items = append(items, ItemFromProduct(&products[i]))
	}
	return items, nil
}

func ItemFromProduct(p *models.Product) Item {
	return Item{
		ID:       p.ID,
		Name:     p.Name,
		Brand:    p.BrandName(),
		Category: p.CategoryName(),
		Price:    p.Price,
		ImageURL: p.ImageURL,
		InStock:  p.InStock,
		SKU:      p.SKU,
	}
}

// Search loads the catalog and applies f.
func (s *Service) Search(ctx context.Context, f Filter) ([]Item, error) {
	items, err := s.Items(ctx)
	if err != nil {
		return nil, err
	}
	return f.Apply(items), nil
}

// Facets lists the filter options, each starting with AllOption.
type Facets struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
}

// Facets loads category and brand names concurrently.
func (s *Service) Facets(ctx context.Context) (Facets, error) {
	var (
		wg                    sync.WaitGroup
		categories, brands    []string
		categoryErr, brandErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		categoryErr = s.DB.WithContext(ctx).Model(&models.Category{}).Order("name").Pluck("name", &categories).Error
	}()
	go func() {
		defer wg.Done()
		brandErr = s.DB.WithContext(ctx).Model(&models.Brand{}).Order("name").Pluck("name", &brands).Error
	}()
	wg.Wait()
	if categoryErr != nil {
		return Facets{}, apperr.Remote("list categories", categoryErr)
	}
	if brandErr != nil {
		return Facets{}, apperr.Remote("list brands", brandErr)
	}
	return Facets{
		Categories: append([]string{AllOption}, categories...),
		Brands:     append([]string{AllOption}, brands...),
	}, nil
}

// Arrival is a new-arrival entry joined with its product.
type Arrival struct {
	ID                 uint                `json:"id"`
	Product            Item                `json:"product"`
	OriginalPrice      decimal.NullDecimal `json:"original_price"`
	SalePrice          decimal.NullDecimal `json:"sale_price"`
	DiscountPercentage int                 `json:"discount_percentage"`
	IsFeatured         bool                `json:"is_featured"`
	IsBestSeller       bool                `json:"is_best_seller"`
	Rating             float64             `json:"rating"`
	ArrivalDate        time.Time           `json:"arrival_date"`
}

// NewArrivals returns arrivals newest first, optionally only featured ones.
func (s *Service) NewArrivals(ctx context.Context, featuredOnly bool) ([]Arrival, error) {
	q := s.DB.WithContext(ctx).
		Preload("Product").Preload("Product.Brand").Preload("Product.Category").
		Joins("JOIN products ON products.id = new_arrivals.product_id AND products.deleted_at IS NULL").
		Order("new_arrivals.arrival_date DESC, new_arrivals.id DESC")
	if featuredOnly {
		q = q.Where("new_arrivals.is_featured = ?", true)
	}
	var rows []models.NewArrival
	if err := q.Find(&rows).Error; err != nil {
		return nil, apperr.Remote("list new arrivals", err)
	}
	out := make([]Arrival, 0, len(rows))
	for i := range rows {
		n := &rows[i]
		out = append(out, Arrival{
			ID:                 n.ID,
			Product:            ItemFromProduct(&n.Product),
			OriginalPrice:      n.OriginalPrice,
			SalePrice:          n.SalePrice,
			DiscountPercentage: n.DiscountPercentage,
			IsFeatured:         n.IsFeatured,
			IsBestSeller:       n.IsBestSeller,
			Rating:             n.Rating,
			ArrivalDate:        n.ArrivalDate,
		})
	}
	return out, nil
}
