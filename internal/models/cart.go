package models

import "time"

// CartRecord stores one visitor's cart lines as JSON, keyed by the cart cookie.
type CartRecord struct {
	Key       string    `gorm:"column:cart_key;primaryKey;size:36"`
	Items     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"index"`
}

func (CartRecord) TableName() string { return "carts" }
