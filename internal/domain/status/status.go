// Package status extracts short delivery/cancellation status phrases from
// order card text using per-locale keyword anchors.
package status

import (
	"regexp"
	"strings"

	"github.com/orderexport/amazon-order-exporter/internal/domain/textseg"
)

// statusToken is the character class a status phrase may continue with after
// its keyword anchor: letters, digits, and common date punctuation.
const statusToken = `[\p{L}\d.,'’:/()\-]`

const maxStatusLen = 50

type localeKeywords struct {
	locale   string
	keywords []string
}

// Keyword anchors per locale. French keeps ASCII spellings alongside the
// accented ones because both appear in rendered pages.
var localeConfigs = []localeKeywords{
	{
		locale:   "de",
		keywords: []string{"Zugestellt", "Geliefert", "Storniert"},
	},
	{
		locale:   "en",
		keywords: []string{"Delivered", "Arriving", "Shipped", "Cancelled", "Returned", "Refunded"},
	},
	{
		locale: "fr",
		keywords: []string{
			"Livré", "Livre", "Remis", "Arrive", "Arrivé", "Expédié", "Expedie",
			"En cours", "Annulé", "Annule", "Retourné", "Retourne", "Remboursé", "Rembourse",
		},
	},
}

// blockedCandidates are known false positives: lines that start with a status
// keyword but are not a status.
var blockedCandidates = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^Shipped\s+and\s+sold\b`),
}

var statusPatterns = buildPatterns()

func buildPatterns() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(localeConfigs))
	for _, cfg := range localeConfigs {
		quoted := make([]string, len(cfg.keywords))
		for i, keyword := range cfg.keywords {
			quoted[i] = regexp.QuoteMeta(keyword)
		}
		// Anchored at the start of the candidate, followed by at most five
		// additional whitespace-separated tokens.
		patterns = append(patterns, regexp.MustCompile(
			`(?i)^((?:`+strings.Join(quoted, "|")+`)(?:\s+`+statusToken+`+){0,5})`))
	}
	return patterns
}

// Parse extracts the order status from raw order card text. Returns "" when
// no candidate segment starts with a supported status keyword. The result is
// trimmed and truncated to 50 characters.
func Parse(text string) string {
	if text == "" {
		return ""
	}
	for _, candidate := range textseg.Segments(text) {
		if isBlocked(candidate) {
			continue
		}
		for _, pattern := range statusPatterns {
			if m := pattern.FindStringSubmatch(candidate); m != nil {
				return truncate(strings.TrimSpace(m[1]), maxStatusLen)
			}
		}
	}
	return ""
}

func isBlocked(candidate string) bool {
	for _, pattern := range blockedCandidates {
		if pattern.MatchString(candidate) {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
