package service

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"retailbilling-backend/internal/domain"
)

// Column limits from the schema. Values past them fail in Postgres, so they are
// rejected here as validation errors instead.
const (
	maxPhoneLen    = 20
	maxLogoPathLen = 500
)

var (
	maxPrice      = decimal.RequireFromString("99999999.99")   // NUMERIC(10,2)
	maxBillAmount = decimal.RequireFromString("9999999999.99") // NUMERIC(12,2)
	maxTaxRate    = decimal.RequireFromString("999.99")        // NUMERIC(5,2)
)

// checkAmount rejects negative amounts, amounts finer than a cent and amounts above max.
func checkAmount(field string, d, max decimal.Decimal) error {
	if d.IsNegative() {
		return domain.Invalidf("%s must not be negative", field)
	}
	if !d.Equal(d.Round(2)) {
		return domain.Invalidf("%s must not have more than 2 decimal places", field)
	}
	if d.GreaterThan(max) {
		return domain.Invalidf("%s must not exceed %s", field, max.StringFixed(2))
	}
	return nil
}

func checkLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return domain.Invalidf("%s must be at most %d characters", field, max)
	}
	return nil
}
