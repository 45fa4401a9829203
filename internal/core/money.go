// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing signed monetary amounts from
// user input and negating them for expenses.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to an exact signed amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Exponents, grouping separators and anything that is
// not a plain decimal number are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,34")  -> 12.34, nil
//	ParseAmount("-120")   -> -120, nil
//	ParseAmount("1e3")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	// At most one leading sign
	digits := s
	if digits[0] == '+' || digits[0] == '-' {
		digits = digits[1:]
	}
	if digits == "" || strings.Count(digits, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	seenDigit := false
	for _, r := range digits {
		if r == '.' {
			continue
		}
		if !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
		seenDigit = true
	}
	if !seenDigit {
		return decimal.Zero, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// SignedAmount returns amount as an expense (negative) or income (positive),
// whatever sign it was entered with.
func SignedAmount(amount decimal.Decimal, expense bool) decimal.Decimal {
	if expense {
		return amount.Abs().Neg()
	}
	return amount.Abs()
}
