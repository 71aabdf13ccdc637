// Package parse extracts loan parameters from free-form chat text.
package parse

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// First run of digits, optionally grouped with thousands separators and
	// preceded by a currency marker, e.g. "₹1,50,000" or "150000".
	amountPattern = regexp.MustCompile(`(?:₹\s*)?(\d{1,3}(?:,\d{3})+|\d+)`)

	// One-or-two-digit number followed by a month/year unit token,
	// e.g. "24 months", "2 yrs".
	tenurePattern = regexp.MustCompile(`(?i)(\d{1,2})\s*(months?|yrs?|years?)`)
)

// AmountAndTenure scans text for a loan amount and a tenure in months. Both
// searches are independent and best-effort: the first match of each wins and
// a missing field is returned as nil. Year-form tenures are converted to
// months.
func AmountAndTenure(text string) (amount *int64, tenureMonths *int) {
	if m := amountPattern.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			amount = &v
		}
	}

	if m := tenurePattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			if strings.Contains(strings.ToLower(m[2]), "y") {
				v *= 12
			}
			tenureMonths = &v
		}
	}

	return amount, tenureMonths
}
