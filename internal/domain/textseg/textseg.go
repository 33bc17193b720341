// Package textseg splits the raw text of an order card into candidate
// segments for the date and status parsers. The interesting phrase usually
// sits alone on its own line or chunk; matching per segment avoids false
// positives that span unrelated text.
package textseg

import (
	"regexp"
	"strings"
)

var (
	lineSplit  = regexp.MustCompile(`\r?\n+`)
	chunkSplit = regexp.MustCompile(`\s{2,}|\s\|\s|\s[-–—]\s`)
	innerSpace = regexp.MustCompile(`\s+`)
)

// Segments splits text into line-based candidates, falling back to
// punctuation/whitespace-delimited chunks when everything is on one line.
// Each candidate is trimmed with inner whitespace collapsed.
func Segments(text string) []string {
	normalized := strings.TrimSpace(strings.ReplaceAll(text, "\u00a0", " "))
	if normalized == "" {
		return nil
	}

	byLine := splitClean(lineSplit, normalized)
	if len(byLine) > 1 {
		return byLine
	}

	byChunk := splitClean(chunkSplit, normalized)
	if len(byChunk) > 0 {
		return byChunk
	}

	return []string{innerSpace.ReplaceAllString(normalized, " ")}
}

func splitClean(re *regexp.Regexp, s string) []string {
	var out []string
	for _, part := range re.Split(s, -1) {
		part = strings.TrimSpace(innerSpace.ReplaceAllString(part, " "))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
