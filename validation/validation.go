// Package validation collects per-field violations for request input.
// Parsers never fall back to a zero value: a field that cannot be parsed
// is recorded as a violation and the zero value is only a placeholder.
package validation

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Violation codes returned to clients.
const (
	CodeRequired      = "required"
	CodeTooShort      = "too_short"
	CodeInvalidEmail  = "invalid_email"
	CodeInvalidNumber = "invalid_number"
	CodeInvalidBool   = "invalid_bool"
	CodeInvalidDate   = "invalid_date"
	CodeNegative      = "must_not_be_negative"
	CodePositive      = "must_be_positive"
	CodeOutOfRange    = "out_of_range"
	CodeNotAllowed    = "not_allowed"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
// The first problem found for a field is the one reported.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

func (v Violations) Has(field string) bool {
	_, ok := v[field]
	return ok
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, CodeRequired)
	}
}

// MinLength checks the trimmed rune length of a non-empty value.
func MinLength(field, value string, n int, v Violations) {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		v.Add(field, CodeTooShort)
	}
}

// Email only checks for an "@"; it is a typo guard, not address validation.
func Email(field, value string, v Violations) {
	if !strings.Contains(value, "@") {
		v.Add(field, CodeInvalidEmail)
	}
}

func OneOf(field, value string, allowed []string, v Violations) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	v.Add(field, CodeNotAllowed)
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, CodeNegative)
	}
}

// Cents rejects amounts with more than two decimal places.
func Cents(field string, val decimal.Decimal, v Violations) {
	if !val.Equal(val.Round(2)) {
		v.Add(field, CodeInvalidNumber)
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v.Add(field, CodePositive)
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v.Add(field, CodeOutOfRange)
	}
}

// Decimal parses raw as a decimal amount. An empty value is reported as
// required; anything unparsable as invalid_number.
func Decimal(field, raw string, v Violations) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		v.Add(field, CodeRequired)
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		v.Add(field, CodeInvalidNumber)
		return decimal.Zero
	}
	return d
}

// OptionalDecimal returns nil for an empty value.
func OptionalDecimal(field, raw string, v Violations) *decimal.Decimal {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	d := Decimal(field, raw, v)
	if v.Has(field) {
		return nil
	}
	return &d
}

func Int(field, raw string, v Violations) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		v.Add(field, CodeRequired)
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		v.Add(field, CodeInvalidNumber)
		return 0
	}
	return n
}

// OptionalInt returns def for an empty value.
func OptionalInt(field, raw string, def int, v Violations) int {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	return Int(field, raw, v)
}

func OptionalFloat(field, raw string, def float64, v Violations) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		v.Add(field, CodeInvalidNumber)
		return def
	}
	return f
}

// Uint parses a positive identifier such as a foreign key.
func Uint(field, raw string, v Violations) uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		v.Add(field, CodeRequired)
		return 0
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		v.Add(field, CodeInvalidNumber)
		return 0
	}
	return uint(n)
}

// OptionalUint returns nil for an empty value.
func OptionalUint(field, raw string, v Violations) *uint {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	n := Uint(field, raw, v)
	if v.Has(field) {
		return nil
	}
	return &n
}

// Bool accepts the usual spellings plus "on" from HTML checkboxes.
// An empty value is false.
func Bool(field, raw string, v Violations) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "no", "off":
		return false
	case "1", "true", "yes", "on":
		return true
	}
	v.Add(field, CodeInvalidBool)
	return false
}

// Date accepts YYYY-MM-DD or RFC3339 and returns the value in UTC.
func Date(field, raw string, v Violations) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		v.Add(field, CodeRequired)
		return time.Time{}
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	v.Add(field, CodeInvalidDate)
	return time.Time{}
}
