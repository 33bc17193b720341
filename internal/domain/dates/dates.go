// Package dates parses German, English, and French order date phrases into
// ISO YYYY-MM-DD strings and filters order-history years by a date range.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/orderexport/amazon-order-exporter/internal/domain/textseg"
)

// monthNumbers maps lowercase month names of all supported locales to their
// number. French months with diacritics keep an ASCII spelling alongside the
// accented one because both appear in the wild.
var monthNumbers = map[string]int{
	// German
	"januar": 1, "februar": 2, "märz": 3, "april": 4, "mai": 5, "juni": 6,
	"juli": 7, "august": 8, "september": 9, "oktober": 10, "november": 11, "dezember": 12,
	// English
	"january": 1, "february": 2, "march": 3, "may": 5, "june": 6,
	"july": 7, "october": 10, "december": 12,
	// French
	"janvier": 1, "février": 2, "fevrier": 2, "mars": 3, "avril": 4, "juin": 6,
	"juillet": 7, "août": 8, "aout": 8, "septembre": 9, "octobre": 10,
	"novembre": 11, "décembre": 12, "decembre": 12,
}

const (
	germanMonthNames  = `Januar|Februar|März|April|Mai|Juni|Juli|August|September|Oktober|November|Dezember`
	frenchMonthNames  = `janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre`
	englishMonthNames = `January|February|March|April|May|June|July|August|September|October|November|December`
)

// orderDatePatterns are tried in priority order per candidate segment:
// label-anchored before bare, German before French before English.
var orderDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Bestellt am|Bestellung aufgegeben am)\s+(\d{1,2}\.?\s*(?:` + germanMonthNames + `)\s+\d{4})\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2}\.?\s*(?:` + germanMonthNames + `)\s+\d{4})\b`),
	regexp.MustCompile(`(?i)(?:Commandé le|Commande passée le)\s+(\d{1,2}(?:er)?\s*(?:` + frenchMonthNames + `)\s+\d{4})\b`),
	regexp.MustCompile(`(?i)\b(\d{1,2}(?:er)?\s*(?:` + frenchMonthNames + `)\s+\d{4})\b`),
	regexp.MustCompile(`(?i)(?:Order placed|Ordered on)\s+((?:` + englishMonthNames + `)\s+\d{1,2},?\s+\d{4})\b`),
	regexp.MustCompile(`(?i)\b((?:` + englishMonthNames + `)\s+\d{1,2},?\s+\d{4})\b`),
}

var (
	dayMonthYear = regexp.MustCompile(`(?i)(\d{1,2})(?:er)?\.?\s*(\p{L}+)\s*(\d{4})`)
	monthDayYear = regexp.MustCompile(`(?i)([a-z]+)\s+(\d{1,2}),?\s*(\d{4})`)

	yearFilterValue = regexp.MustCompile(`(?i)year-?(20\d{2})`)
	bareYear        = regexp.MustCompile(`\b(20\d{2})\b`)
)

// ParseDate parses a single date phrase ("15. Januar 2024", "January 15,
// 2024", "1er février 2024") into zero-padded YYYY-MM-DD. Returns "" when the
// phrase does not parse or the year falls outside [2000, 2100].
func ParseDate(text string) string {
	if text == "" {
		return ""
	}
	clean := strings.ToLower(strings.TrimSpace(text))

	if m := dayMonthYear.FindStringSubmatch(clean); m != nil {
		if iso := toISO(m[3], m[2], m[1]); iso != "" {
			return iso
		}
	}
	if m := monthDayYear.FindStringSubmatch(clean); m != nil {
		if iso := toISO(m[3], m[1], m[2]); iso != "" {
			return iso
		}
	}
	return ""
}

func toISO(yearStr, monthName, dayStr string) string {
	year, _ := strconv.Atoi(yearStr)
	day, _ := strconv.Atoi(dayStr)
	month, ok := monthNumbers[strings.ToLower(monthName)]
	if !ok || year < 2000 || year > 2100 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// ParseOrderDate extracts the order date from raw order card text. Candidates
// are tried in page order, patterns in priority order; the first valid parse
// wins. Returns "" when no candidate parses.
func ParseOrderDate(text string) string {
	if text == "" {
		return ""
	}
	for _, candidate := range textseg.Segments(text) {
		for _, pattern := range orderDatePatterns {
			m := pattern.FindStringSubmatch(candidate)
			if m == nil {
				continue
			}
			if iso := ParseDate(m[1]); iso != "" && strings.HasPrefix(iso, "20") {
				return iso
			}
		}
	}
	return ""
}

// ExtractYear pulls a four-digit order-history year out of filter values like
// "year-2024" or "Bestellungen 2024". Returns "" when none is found.
func ExtractYear(value string) string {
	if value == "" {
		return ""
	}
	if m := yearFilterValue.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	if m := bareYear.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return ""
}

// FilterYearsByRange keeps the years overlapping [startDate, endDate],
// preserving input order. An empty bound disables filtering.
func FilterYearsByRange(years []string, startDate, endDate string) []string {
	if startDate == "" || endDate == "" {
		return years
	}
	startYear, err := yearOf(startDate)
	if err != nil {
		return years
	}
	endYear, err := yearOf(endDate)
	if err != nil {
		return years
	}

	out := make([]string, 0, len(years))
	for _, year := range years {
		n, err := strconv.Atoi(year)
		if err != nil {
			continue
		}
		if n >= startYear && n <= endYear {
			out = append(out, year)
		}
	}
	return out
}

func yearOf(isoDate string) (int, error) {
	t, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return 0, err
	}
	return t.Year(), nil
}
