// Package models holds the gorm models of the storefront.
package models

// All lists every model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{}, &UserRole{},
		&Brand{}, &Category{}, &Product{}, &NewArrival{},
		&Quotation{}, &QuotationItem{},
		&Enquiry{}, &EnquiryDay{}, &CartRecord{},
	}
}
