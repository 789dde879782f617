package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidators(t *testing.T) {
	v := make(Violations)
	Required("customer", "  ", v)
	Required("salesPerson", "Jane", v)
	PositiveInt("quantity", 0, v)
	NonNegativeInt("stock", -1, v)
	PositiveDecimal("price", decimal.RequireFromString("12.50"), v)
	PositiveDecimal("discount", decimal.Zero, v)
	MaxLen("notes", "abc", 2, v)

	want := Violations{
		"customer":    "required",
		"quantity":    "must_be_positive",
		"stock":       "must_not_be_negative",
		"discount":    "must_be_positive",
		"notes":       "too_long",
	}
	if len(v) != len(want) {
		t.Fatalf("got %v, want %v", v, want)
	}
	for k, code := range want {
		if v[k] != code {
			t.Errorf("%s: got %q want %q", k, v[k], code)
		}
	}
	if v.Empty() {
		t.Fatalf("expected violations")
	}
	if !make(Violations).Empty() {
		t.Fatalf("fresh map should be empty")
	}
}
