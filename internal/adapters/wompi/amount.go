package wompi

import (
	"math"

	pkgerrors "github.com/kevin07696/wompi-go/pkg/errors"
	"github.com/shopspring/decimal"
)

var maxCents = decimal.NewFromInt(math.MaxInt64)

// AmountToCents converts a major-unit amount (e.g. 95000.50 COP) to the
// integer cents Wompi expects. Negative amounts and sub-cent precision are rejected.
func AmountToCents(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, pkgerrors.NewValidationError("amount", "must not be negative")
	}

	cents := amount.Shift(2)
	if !cents.IsInteger() {
		return 0, pkgerrors.NewValidationError("amount", "must have at most two decimal places")
	}
	if cents.GreaterThan(maxCents) {
		return 0, pkgerrors.NewValidationError("amount", "is too large")
	}

	return cents.IntPart(), nil
}

// CentsToAmount is the inverse of AmountToCents
func CentsToAmount(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
