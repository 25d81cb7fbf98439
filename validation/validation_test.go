package validation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRequiredAndMinLength(t *testing.T) {
	v := make(Violations)
	Required("name", "   ", v)
	MinLength("name", "A", 2, v)
	if v["name"] != CodeRequired {
		t.Fatalf("first violation should win, got %q", v["name"])
	}

	v = make(Violations)
	MinLength("name", " A ", 2, v)
	if v["name"] != CodeTooShort {
		t.Fatalf("expected too_short, got %q", v["name"])
	}
}

func TestEmail(t *testing.T) {
	v := make(Violations)
	Email("email", "not-an-email", v)
	if v["email"] != CodeInvalidEmail {
		t.Fatalf("expected invalid_email, got %v", v)
	}
	v = make(Violations)
	Email("email", "a@b", v)
	if !v.Empty() {
		t.Fatalf("unexpected violations %v", v)
	}
}

func TestDecimalDoesNotCoerce(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		code string
		want string
	}{
		{"valid", "12.50", "", "12.5"},
		{"empty", "", CodeRequired, "0"},
		{"garbage", "12,5abc", CodeInvalidNumber, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := make(Violations)
			got := Decimal("price", tt.raw, v)
			if v["price"] != tt.code {
				t.Fatalf("code = %q, want %q", v["price"], tt.code)
			}
			if got.String() != tt.want {
				t.Fatalf("value = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCents(t *testing.T) {
	tests := []struct {
		raw  string
		code string
	}{
		{"12", ""},
		{"12.5", ""},
		{"12.50", ""},
		{"12.500", ""},
		{"0.333", CodeInvalidNumber},
		{"1.005", CodeInvalidNumber},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			v := make(Violations)
			Cents("price", decimal.RequireFromString(tt.raw), v)
			if v["price"] != tt.code {
				t.Fatalf("code = %q, want %q", v["price"], tt.code)
			}
		})
	}
}

func TestIntParsers(t *testing.T) {
	v := make(Violations)
	if n := OptionalInt("stock_quantity", "", 7, v); n != 7 || !v.Empty() {
		t.Fatalf("empty optional should yield default, got %d %v", n, v)
	}
	if n := OptionalInt("stock_quantity", "ten", 0, v); n != 0 || v["stock_quantity"] != CodeInvalidNumber {
		t.Fatalf("expected invalid_number, got %d %v", n, v)
	}
	v = make(Violations)
	if id := Uint("brand_id", "0", v); id != 0 || v["brand_id"] != CodeInvalidNumber {
		t.Fatalf("zero id must be rejected, got %v", v)
	}
	if p := OptionalUint("category_id", "", v); p != nil {
		t.Fatalf("expected nil for empty optional id")
	}
}

func TestBool(t *testing.T) {
	v := make(Violations)
	if !Bool("in_stock", "on", v) || !Bool("in_stock", "TRUE", v) || Bool("in_stock", "", v) {
		t.Fatal("unexpected bool parse")
	}
	Bool("is_featured", "maybe", v)
	if v["is_featured"] != CodeInvalidBool {
		t.Fatalf("expected invalid_bool, got %v", v)
	}
}

func TestDate(t *testing.T) {
	v := make(Violations)
	d := Date("arrival_date", "2025-03-04", v)
	if !v.Empty() || !d.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v %v", d, v)
	}
	Date("arrival_date", "04/03/2025", v)
	if v["arrival_date"] != CodeInvalidDate {
		t.Fatalf("expected invalid_date, got %v", v)
	}
}
