package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Violations maps a field name to a violation code such as "required".
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// PositiveDecimal records "must_be_positive" for amounts at or below zero.
func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v[field] = "must_be_positive"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeInt(field string, val int, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

// MaxLen records "too_long" when value exceeds n runes.
func MaxLen(field, value string, n int, v Violations) {
	if len([]rune(value)) > n {
		v[field] = "too_long"
	}
}
