// Package core defines the installment ledger's domain types.
//
// This file contains the monetary helpers: parsing user-entered amounts and
// splitting a total into equal installments. All amounts are decimals with a
// two-place scale; the per-installment amount is the rounded quotient of the
// total over the count, which keeps the outstanding-liability invariant exact
// in decimal arithmetic.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// amountScale is the number of decimal places every derived amount carries.
const amountScale = 2

// ParseAmount converts a user-entered amount string into a positive decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// empty strings and non-positive values are rejected.
//
// Examples:
//
//	ParseAmount("60000")   -> 60000, nil
//	ParseAmount("12,34")   -> 12.34, nil
//	ParseAmount("-5")      -> error
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only unsigned positive values allowed
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SplitInstallments returns the per-installment charge for a purchase split
// into count equal parts, rounded half-up at the second decimal place. A
// non-positive count is treated as a single installment.
func SplitInstallments(total decimal.Decimal, count int) decimal.Decimal {
	if count < 1 {
		count = 1
	}
	return total.DivRound(decimal.NewFromInt(int64(count)), amountScale)
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
