// Package money parses locale-varying price strings found on order pages.
//
// European pages write "1.234,56 €", US pages "$1,234.56"; both must clean to
// the same magnitude. Currency is detected separately from the amount because
// the symbol often sits outside the matched numeric substring.
package money

import (
	"regexp"
	"strconv"
	"strings"
)

// Price is a parsed amount with its detected currency code.
type Price struct {
	Amount   float64
	Currency string
}

// pricePatterns are tried in order; the first pattern whose captured amount
// cleans to a value greater than zero wins.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Summe|Gesamtsumme|Gesamt|Total)[:\s]*(?:EUR|€)?\s*([0-9.,]+)\s*(?:EUR|€)?`),
	regexp.MustCompile(`(?i)(?:EUR|€)\s*([0-9.,]+)`),
	regexp.MustCompile(`([0-9]+[.,][0-9]{2})\s*(?:EUR|€)`),
	regexp.MustCompile(`\$\s*([0-9.,]+)`),
	regexp.MustCompile(`£\s*([0-9.,]+)`),
}

// ParseAmount converts a numeric substring to a float64, disambiguating
// European ("1.234,56") and US ("1,234.56") separator conventions. When both
// separators appear, the later one is the decimal point. A lone comma is a
// decimal separator only when exactly two digits follow it. Returns 0 when
// the input does not clean to a number.
func ParseAmount(s string) float64 {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return 0
	}

	hasComma := strings.Contains(cleaned, ",")
	hasPeriod := strings.Contains(cleaned, ".")

	switch {
	case hasComma && hasPeriod:
		if strings.LastIndex(cleaned, ",") > strings.LastIndex(cleaned, ".") {
			// European: periods are thousands separators, comma is decimal.
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// US: commas are thousands separators.
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case hasComma:
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) == 2 {
			cleaned = parts[0] + "." + parts[1]
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return amount
}

// DetectCurrency scans text for currency markers in fixed priority order
// (EUR, then GBP, then USD) and defaults to EUR when none is present.
func DetectCurrency(text string) string {
	switch {
	case strings.Contains(text, "€") || strings.Contains(text, "EUR"):
		return "EUR"
	case strings.Contains(text, "£") || strings.Contains(text, "GBP"):
		return "GBP"
	case strings.Contains(text, "$") || strings.Contains(text, "USD"):
		return "USD"
	}
	return "EUR"
}

// Extract finds the first positive price in free text. The currency is
// detected from the whole input, not just the matched substring. The second
// return value is false when no pattern yields a positive amount.
func Extract(text string) (Price, bool) {
	for _, pattern := range pricePatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		amount := ParseAmount(m[1])
		if amount > 0 {
			return Price{Amount: amount, Currency: DetectCurrency(text)}, true
		}
	}
	return Price{}, false
}
