package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuotationStatus is the review state of a quotation.
type QuotationStatus string

const (
	QuotationPending   QuotationStatus = "pending"
	QuotationApproved  QuotationStatus = "approved"
	QuotationRejected  QuotationStatus = "rejected"
	QuotationConverted QuotationStatus = "converted"
)

var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationPending:  {QuotationApproved, QuotationRejected},
	QuotationApproved: {QuotationConverted},
}

// Valid reports whether s is a known status.
func (s QuotationStatus) Valid() bool {
	switch s {
	case QuotationPending, QuotationApproved, QuotationRejected, QuotationConverted:
		return true
	}
	return false
}

// Next lists the statuses reachable from s in one step.
func (s QuotationStatus) Next() []QuotationStatus {
	return append([]QuotationStatus(nil), quotationTransitions[s]...)
}

// Terminal is true for known statuses with no way out.
func (s QuotationStatus) Terminal() bool {
	return s.Valid() && len(quotationTransitions[s]) == 0
}

// CanTransitionTo reports whether s -> to is an allowed move.
func (s QuotationStatus) CanTransitionTo(to QuotationStatus) bool {
	for _, n := range quotationTransitions[s] {
		if n == to {
			return true
		}
	}
	return false
}

// Quotation is a customer's quote request built from a cart snapshot.
// Implements the Ownable interface for ownership-based authorization.
type Quotation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Number string `gorm:"size:32;uniqueIndex;not null" json:"number"`

	// Customer snapshot
	CustomerName    string `gorm:"size:255;not null" json:"customer_name"`
	CustomerEmail   string `gorm:"size:255;not null;index" json:"customer_email"`
	CustomerPhone   string `gorm:"size:50;not null" json:"customer_phone"`
	CustomerCompany string `gorm:"size:255" json:"customer_company,omitempty"`

	// UserID is set when the request came from a signed-in user.
	UserID *uint `gorm:"index" json:"user_id,omitempty"`

	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,4);not null" json:"tax_rate"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_amount"`
	FinalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"final_amount"`

	Status     QuotationStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Notes      string          `gorm:"type:text" json:"notes,omitempty"`
	ValidUntil time.Time       `json:"valid_until"`

	Items []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// GetUserID implements the Ownable interface for authorization.
// Anonymous quotations return 0 and are owned by nobody.
func (q *Quotation) GetUserID() uint {
	if q.UserID == nil {
		return 0
	}
	return *q.UserID
}

// IsPending returns true while the quotation awaits review.
func (q *Quotation) IsPending() bool {
	return q.Status == QuotationPending
}

// QuotationItem is an immutable snapshot of one cart line.
type QuotationItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	QuotationID uint            `gorm:"index;not null" json:"quotation_id"`
	ProductID   string          `gorm:"size:64;not null" json:"product_id"`
	ProductName string          `gorm:"size:255;not null" json:"product_name"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`
}

// LineTotal returns quantity × unit price.
func (i *QuotationItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
