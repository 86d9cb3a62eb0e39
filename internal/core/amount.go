// Package core holds the domain model: activities, accounts, amount
// parsing and description validation.
//
// This file parses monetary amounts written in the Colombian peso
// convention, where dots separate thousands and a comma separates
// decimals (1.000.000 or 1.000,50).
package core

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount bounds in pesos. Entries below the minimum or above the
// maximum are rejected with ErrAmountOutOfRange.
var (
	MinAmount = decimal.NewFromInt(1_000)
	MaxAmount = decimal.NewFromInt(40_000_000)
)

// currencyToken matches currency-code tokens stripped before parsing.
var currencyToken = regexp.MustCompile(`(?i)cop`)

// ParseAmount converts a Colombian-formatted monetary string into an
// exact decimal value.
//
// Whitespace and currency markers ($, €, COP in any case) are stripped
// first. When the cleaned string contains a comma, everything before it
// is the integer part with thousands-separator dots removed and
// everything after it is the fraction ("00" when empty); otherwise the
// whole string is an integer amount and all dots are dropped. Fractions
// longer than two digits round half-up to cents.
//
// Examples:
//
//	ParseAmount("1.000")       -> 1000
//	ParseAmount("1.000,50")    -> 1000.50
//	ParseAmount("$ 2.500.000") -> 2500000
//
// Returns ErrMalformedAmount when the string is not a valid positive
// decimal and ErrAmountOutOfRange outside [MinAmount, MaxAmount].
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, ErrMalformedAmount
	}

	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "")
	s = currencyToken.ReplaceAllString(s, "")

	if before, after, found := strings.Cut(s, ","); found {
		intPart := strings.ReplaceAll(before, ".", "")
		fracPart := after
		if fracPart == "" {
			fracPart = "00"
		}
		s = intPart + "." + fracPart
	} else {
		s = strings.ReplaceAll(s, ".", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrMalformedAmount
	}
	if d.Sign() <= 0 {
		return decimal.Zero, ErrMalformedAmount
	}
	// Two decimal places are enough for pesos; half-up on the rest.
	if d.Exponent() < -2 {
		d = d.Round(2)
	}
	if d.LessThan(MinAmount) || d.GreaterThan(MaxAmount) {
		return decimal.Zero, ErrAmountOutOfRange
	}
	return d, nil
}
