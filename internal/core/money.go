// Package core provides the debt domain model, money handling and the
// debt-summary aggregate.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between paise and rupee representations.
package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToPaise converts a decimal string to paise with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive paise.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//   ParseDecimalToPaise("12.34") -> 1234, nil
//   ParseDecimalToPaise("12,34") -> 1234, nil
//   ParseDecimalToPaise("12.345") -> 1234, nil (rounds down)
//   ParseDecimalToPaise("12.346") -> 1235, nil (rounds up)
func ParseDecimalToPaise(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	// Split into integer and fractional part
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	// Convert integer part - check for overflow
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracPaise int64 = 0
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracPaise = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracPaise += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracPaise++
				}
			}
		}
	}
	paise := iv*100 + fracPaise
	if paise <= 0 {
		return 0, ErrInvalidAmount
	}
	return paise, nil
}

// Rupees returns the rupee value as a float64 for display purposes.
// Note: Use paise for calculations to avoid floating-point precision issues.
func (m Money) Rupees() float64 {
	return float64(m.Paise) / 100.0
}

// FormatINR formats paise as a rupee currency string with Indian digit
// grouping (last three digits, then groups of two) and exactly two decimals.
// The output is deterministic for a given amount.
//
// Examples:
//   FormatINR(123450)   -> "₹1,234.50"
//   FormatINR(15000000) -> "₹1,50,000.00"
func FormatINR(paise int64) string {
	neg := paise < 0
	if neg {
		paise = -paise
	}
	rupees := paise / 100
	rem := paise % 100
	s := "₹" + groupIndian(strconv.FormatInt(rupees, 10)) + "." + fmt.Sprintf("%02d", rem)
	if neg {
		return "-" + s
	}
	return s
}

// groupIndian inserts commas per the Indian numbering system: the last three
// digits form one group, every group before it has two digits.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]
	var b strings.Builder
	// Leading group may have a single digit.
	for len(head) > 2 {
		cut := len(head) % 2
		if cut == 0 {
			cut = 2
		}
		b.WriteString(head[:cut])
		b.WriteByte(',')
		head = head[cut:]
	}
	b.WriteString(head)
	b.WriteByte(',')
	b.WriteString(tail)
	return b.String()
}

// FormatRate formats an annual interest rate with exactly one decimal digit
// followed by a percent sign, rounding half up: 12.345 -> "12.3%",
// 14.25 -> "14.3%", 5 -> "5.0%".
//
// NaN and infinities are not rounded and pass through to strconv's
// representation ("NaN%", "+Inf%"). Validated summaries never carry them;
// the case exists only for unvalidated callers.
func FormatRate(rate float64) string {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return strconv.FormatFloat(rate, 'f', 1, 64) + "%"
	}
	rounded := math.Floor(rate*10+0.5) / 10
	return strconv.FormatFloat(rounded, 'f', 1, 64) + "%"
}
