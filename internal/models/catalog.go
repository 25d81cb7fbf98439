package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Brand is a vehicle/manufacturer lookup used to filter the catalog.
type Brand struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// Category groups products (filters, brakes, lighting...).
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
}

// Product is a sellable part.
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	ImageURL      string          `gorm:"size:500" json:"image_url,omitempty"`
	InStock       bool            `gorm:"not null;default:true" json:"in_stock"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	SKU           string          `gorm:"uniqueIndex;size:64;not null" json:"sku"`
	BrandID       *uint           `gorm:"index" json:"brand_id,omitempty"`
	Brand         *Brand          `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	CategoryID    *uint           `gorm:"index" json:"category_id,omitempty"`
	Category      *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BrandName returns the brand name or "" when unset or not preloaded.
func (p *Product) BrandName() string {
	if p.Brand == nil {
		return ""
	}
	return p.Brand.Name
}

// CategoryName returns the category name or "" when unset or not preloaded.
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// NewArrival promotes a product on the "new arrivals" shelf.
type NewArrival struct {
	ID                 uint                `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	ProductID          uint                `gorm:"index;not null" json:"product_id"`
	Product            Product             `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product"`
	OriginalPrice      decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"original_price"`
	SalePrice          decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"sale_price"`
	DiscountPercentage int                 `gorm:"not null;default:0" json:"discount_percentage"`
	IsFeatured         bool                `gorm:"not null;default:false" json:"is_featured"`
	IsBestSeller       bool                `gorm:"not null;default:false" json:"is_best_seller"`
	Rating             float64             `gorm:"not null;default:0" json:"rating"`
	ArrivalDate        time.Time           `gorm:"index;not null" json:"arrival_date"`
}

// ComputeDiscount derives the discount percentage from the two prices,
// rounded to the nearest integer. It returns false when either price is
// missing or the original price is not positive.
func (n *NewArrival) ComputeDiscount() (int, bool) {
	if !n.OriginalPrice.Valid || !n.SalePrice.Valid || !n.OriginalPrice.Decimal.IsPositive() {
		return 0, false
	}
	orig := n.OriginalPrice.Decimal
	pct := orig.Sub(n.SalePrice.Decimal).Div(orig).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart()), true
}
