package quotation

import (
	"strings"

	"github.com/diewo77/autoparts/validation"
)

const (
	minNameLength  = 2
	minPhoneLength = 10
)

// CustomerDetails is the contact block of a quotation request.
type CustomerDetails struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Company string `json:"company"`
	Notes   string `json:"notes"`
}

// Validate reports one violation per failing field; company and notes are optional.
func (d CustomerDetails) Validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", d.Name, v)
	validation.MinLength("name", d.Name, minNameLength, v)
	validation.Required("email", d.Email, v)
	validation.Email("email", d.Email, v)
	validation.Required("phone", d.Phone, v)
	validation.MinLength("phone", d.Phone, minPhoneLength, v)
	return v
}

// Normalize trims every field.
func (d CustomerDetails) Normalize() CustomerDetails {
	return CustomerDetails{
		Name:    strings.TrimSpace(d.Name),
		Email:   strings.TrimSpace(d.Email),
		Phone:   strings.TrimSpace(d.Phone),
		Company: strings.TrimSpace(d.Company),
		Notes:   strings.TrimSpace(d.Notes),
	}
}
