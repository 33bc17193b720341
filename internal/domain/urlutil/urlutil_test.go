package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsOrderHistoryPage(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{name: "de order history", url: "https://www.amazon.de/gp/css/order-history", expected: true},
		{name: "com your orders", url: "https://www.amazon.com/your-orders/orders?timeFilter=year-2024", expected: true},
		{name: "alias without suffix", url: "https://www.amazon.de/your-orders", expected: true},
		{name: "legacy account path", url: "https://www.amazon.co.uk/gp/your-account/order-history?ref=nav", expected: true},
		{name: "locale prefix", url: "https://www.amazon.de/-/en/gp/css/order-history", expected: true},
		{name: "locale prefix on com", url: "https://www.amazon.com/-/de/gp/css/order-history", expected: true},
		{name: "bare host no www", url: "https://amazon.fr/your-orders/orders", expected: true},
		{name: "path boundary enforced", url: "https://www.amazon.de/your-orderstuff", expected: false},
		{name: "product page", url: "https://www.amazon.de/dp/B08N5WRWNW", expected: false},
		{name: "wrong host", url: "https://example.com/your-orders/orders", expected: false},
		{name: "lookalike host", url: "https://notamazon.de/your-orders", expected: false},
		{name: "garbage", url: "://broken", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsOrderHistoryPage(tt.url))
		})
	}
}

func TestOrderHistoryBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{
			name:     "strips query",
			url:      "https://www.amazon.de/gp/css/order-history?timeFilter=year-2024&startIndex=10",
			expected: "https://www.amazon.de/gp/css/order-history",
		},
		{
			name:     "alias canonicalized",
			url:      "https://www.amazon.de/your-orders?ref=nav",
			expected: "https://www.amazon.de/your-orders/orders",
		},
		{
			name:     "locale prefix kept",
			url:      "https://www.amazon.de/-/en/your-orders/orders",
			expected: "https://www.amazon.de/-/en/your-orders/orders",
		},
		{name: "not order history", url: "https://www.amazon.de/dp/B08N5WRWNW", wantErr: true},
		{name: "wrong host", url: "https://example.com/your-orders", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, err := OrderHistoryBaseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, base)
		})
	}
}

func TestBuildOrderPageURL(t *testing.T) {
	tests := []struct {
		name       string
		base       string
		year       string
		startIndex int
		expected   string
	}{
		{
			name:     "first page omits start index",
			base:     "https://www.amazon.de/your-orders/orders",
			year:     "2024",
			expected: "https://www.amazon.de/your-orders/orders?timeFilter=year-2024",
		},
		{
			name:       "later page sets start index",
			base:       "https://www.amazon.de/your-orders/orders",
			year:       "2024",
			startIndex: 10,
			expected:   "https://www.amazon.de/your-orders/orders?startIndex=10&timeFilter=year-2024",
		},
		{
			name:     "existing params preserved",
			base:     "https://www.amazon.de/your-orders/orders?ref=nav&startIndex=30",
			year:     "2023",
			expected: "https://www.amazon.de/your-orders/orders?ref=nav&timeFilter=year-2023",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			built, err := BuildOrderPageURL(tt.base, tt.year, tt.startIndex)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, built)
		})
	}
}

func TestExtractOrderID(t *testing.T) {
	assert.Equal(t, "123-4567890-1234567", ExtractOrderID("Bestellnr. 123-4567890-1234567 vom 3. Mai"))
	assert.Equal(t, "", ExtractOrderID("Bestellnr. 123-456-789"))
	assert.Equal(t, "", ExtractOrderID(""))
}

func TestExtractOrderIDFromURL(t *testing.T) {
	assert.Equal(t, "123-4567890-1234567",
		ExtractOrderIDFromURL("https://www.amazon.de/gp/css/order-details?orderID=123-4567890-1234567"))
	assert.Equal(t, "123-4567890-1234567",
		ExtractOrderIDFromURL("/your-orders/order-details?orderId=123-4567890-1234567&ref=x"))
	assert.Equal(t, "", ExtractOrderIDFromURL("https://www.amazon.de/gp/css/order-details"))
}

func TestExtractASIN(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{name: "dp link", url: "https://www.amazon.de/dp/B08N5WRWNW", expected: "B08N5WRWNW"},
		{name: "dp with suffix path", url: "/Some-Product/dp/B08N5WRWNW/ref=sr_1_1", expected: "B08N5WRWNW"},
		{name: "gp product", url: "/gp/product/b08n5wrwnw?th=1", expected: "B08N5WRWNW"},
		{name: "too long id", url: "/dp/B08N5WRWNW1", expected: ""},
		{name: "too short id", url: "/dp/B012", expected: ""},
		{name: "no asin", url: "/your-orders/orders", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractASIN(tt.url))
		})
	}
}
