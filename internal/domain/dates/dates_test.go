package dates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "german with period", input: "15. Januar 2024", expected: "2024-01-15"},
		{name: "german maerz", input: "3. März 2023", expected: "2023-03-03"},
		{name: "english month first", input: "January 15, 2024", expected: "2024-01-15"},
		{name: "english no comma", input: "July 4 2022", expected: "2022-07-04"},
		{name: "french premier", input: "1er février 2024", expected: "2024-02-01"},
		{name: "french plain day", input: "15 janvier 2024", expected: "2024-01-15"},
		{name: "french ascii spelling", input: "12 aout 2023", expected: "2023-08-12"},
		{name: "french accented", input: "25 décembre 2021", expected: "2021-12-25"},
		{name: "year too old", input: "15. Januar 1999", expected: ""},
		{name: "year too far out", input: "15. Januar 2101", expected: ""},
		{name: "unknown month", input: "15. Brumaire 2024", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseDate(tt.input))
		})
	}
}

func TestParseOrderDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "german label",
			input:    "Bestellung aufgegeben am 15. Januar 2024\nSumme: 12,99 €",
			expected: "2024-01-15",
		},
		{
			name:     "english label",
			input:    "Order placed January 15, 2024\nTotal $12.99",
			expected: "2024-01-15",
		},
		{
			name:     "french label",
			input:    "Commandé le 1er février 2024\nTotal 12,99 €",
			expected: "2024-02-01",
		},
		{
			name:     "bare date on its own line",
			input:    "Zugestellt\n3. Mai 2023\nBestellnr. 123-4567890-1234567",
			expected: "2023-05-03",
		},
		{
			name:     "single line chunked by wide spacing",
			input:    "Bestellt am 7. Juni 2024    Summe 23,99 €",
			expected: "2024-06-07",
		},
		{
			name:     "nbsp between tokens",
			input:    "Order placed\u00a0March\u00a05,\u00a02024",
			expected: "2024-03-05",
		},
		{name: "no date", input: "Zugestellt gestern", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseOrderDate(tt.input))
		})
	}
}

func TestExtractYear(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "filter value", input: "year-2024", expected: "2024"},
		{name: "filter value no dash", input: "year2023", expected: "2023"},
		{name: "label text", input: "Bestellungen 2022", expected: "2022"},
		{name: "no year", input: "last 30 days", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractYear(tt.input))
		})
	}
}

func TestFilterYearsByRange(t *testing.T) {
	years := []string{"2025", "2024", "2023", "2022", "2021", "2020"}

	tests := []struct {
		name     string
		start    string
		end      string
		expected []string
	}{
		{name: "inner range", start: "2023-01-01", end: "2024-12-31", expected: []string{"2024", "2023"}},
		{name: "three year window", start: "2022-01-01", end: "2024-12-31", expected: []string{"2024", "2023", "2022"}},
		{name: "single year", start: "2024-06-01", end: "2024-06-30", expected: []string{"2024"}},
		{name: "open range keeps all", start: "", end: "", expected: years},
		{name: "missing end keeps all", start: "2023-01-01", end: "", expected: years},
		{name: "bad date keeps all", start: "not-a-date", end: "2024-12-31", expected: years},
		{name: "no overlap", start: "2010-01-01", end: "2011-12-31", expected: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FilterYearsByRange(years, tt.start, tt.end))
		})
	}
}
