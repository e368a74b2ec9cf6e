package scraper

import (
	"regexp"
	"strings"

	"coingecko-exporter/internal/types"
)

var (
	holdingsPattern = regexp.MustCompile(`([-\d,.$]+)\s+([-\d,.$]+)\s+(\w+)`)
	pnlValuePattern = regexp.MustCompile(`-?[\d,.$]+`)
	pnlPctPattern   = regexp.MustCompile(`-?[\d,.]+%`)
	whitespaceRun   = regexp.MustCompile(`[\s\x{00A0}]+`)
)

// ParseHoldings splits a holdings cell such as "$1,234.56 2.5 BTC" into the
// holdings value ("$1,234.56") and the total holdings ("2.5 BTC").
// Input that does not match yields N/A for both.
func ParseHoldings(raw string) (value, total string) {
	m := holdingsPattern.FindStringSubmatch(raw)
	if m == nil {
		return types.NA, types.NA
	}
	return m[1], m[2] + " " + m[3]
}

// ParsePNL extracts the profit/loss amount and percentage from a PNL cell
// such as "-$12.34 -5.67%".
//
// When the raw text contains a minus sign anywhere, both parts are forced
// negative. Known issue: mixed-sign pairs come out wrong ("-$12.34 5.67%"
// gives "-5.67%"), and a missing part becomes "-N/A".
func ParsePNL(raw string) (value, pct string) {
	value, pct = types.NA, types.NA
	if m := pnlValuePattern.FindString(raw); m != "" {
		value = m
	}
	if m := pnlPctPattern.FindString(raw); m != "" {
		pct = m
	}

	if strings.Contains(raw, "-") {
		if !strings.HasPrefix(value, "-") {
			value = "-" + value
		}
		if !strings.HasPrefix(pct, "-") {
			pct = "-" + pct
		}
	}
	return value, pct
}

// NormalizePrice drops thousands separators: "1,234.5" becomes "1234.5".
func NormalizePrice(raw string) string {
	return strings.ReplaceAll(raw, ",", "")
}

// NormalizeDateTime collapses whitespace runs to single spaces, but only
// for 12-hour timestamps carrying an AM/PM marker.
func NormalizeDateTime(raw string) string {
	if strings.Contains(raw, "AM") || strings.Contains(raw, "PM") {
		return whitespaceRun.ReplaceAllString(raw, " ")
	}
	return raw
}

// orNA substitutes the sentinel for empty text.
func orNA(s string) string {
	if s == "" {
		return types.NA
	}
	return s
}
