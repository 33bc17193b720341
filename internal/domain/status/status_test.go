package status

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "german delivered with date",
			input:    "Zugestellt 15. Januar\nBestellnr. 123-4567890-1234567",
			expected: "Zugestellt 15. Januar",
		},
		{
			name:     "german delivered with weekday",
			input:    "Zugestellt am Dienstag, 12. März 2024",
			expected: "Zugestellt am Dienstag, 12. März 2024",
		},
		{
			name:     "german cancelled",
			input:    "Storniert\nSumme 12,99 €",
			expected: "Storniert",
		},
		{
			name:     "english arriving",
			input:    "Arriving tomorrow by 8pm\nTrack package",
			expected: "Arriving tomorrow by 8pm",
		},
		{
			name:     "french delivered accented",
			input:    "Livré le 3 mai\nVoir la commande",
			expected: "Livré le 3 mai",
		},
		{
			name:     "french refund ascii",
			input:    "Rembourse le 12/04\nDetails",
			expected: "Rembourse le 12/04",
		},
		{
			name:     "shipped and sold is not a status",
			input:    "Shipped and sold by Amazon EU S.a.r.L.\nOrder total $9.99",
			expected: "",
		},
		{
			name:     "keyword mid sentence ignored",
			input:    "Your package was Delivered already",
			expected: "",
		},
		{
			name:     "token cap at five extra tokens",
			input:    "Delivered one two three four five six seven",
			expected: "Delivered one two three four five",
		},
		{name: "no status", input: "Bestellt am 3. Mai 2024", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.input))
		})
	}
}

func TestParseTruncates(t *testing.T) {
	long := "Delivered " + strings.Repeat("a", 20) + " " + strings.Repeat("b", 40)
	result := Parse(long)
	assert.Len(t, []rune(result), 50)
	assert.True(t, strings.HasPrefix(result, "Delivered "))
}
