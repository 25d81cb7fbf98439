package models

import "time"

// Enquiry is a parts enquiry with a requested delivery slot.
type Enquiry struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Email          string    `gorm:"size:255;not null" json:"email"`
	Phone          string    `gorm:"size:50;not null" json:"phone"`
	CarModel       string    `gorm:"size:100;not null" json:"car_model"`
	ProductType    string    `gorm:"size:100;not null" json:"product_type"`
	Description    string    `gorm:"type:text" json:"description,omitempty"`
	DeliveryDate   time.Time `gorm:"index;not null" json:"delivery_date"`
	DeliveryWindow string    `gorm:"size:20;not null" json:"delivery_window"`
}

// EnquiryDay counts the enquiries booked for one delivery date. Bookings
// increment it with a conditional update so the row lock orders them.
type EnquiryDay struct {
	DeliveryDate time.Time `gorm:"primaryKey"`
	Booked       int       `gorm:"not null;default:0"`
}
