package amazon

import (
	"regexp"

	"github.com/PuerkitoBio/goquery"

	"github.com/orderexport/amazon-order-exporter/internal/domain/money"
	"github.com/orderexport/amazon-order-exporter/internal/domain/urlutil"
)

// detailPricePatterns are tighter than the order-total patterns: details
// pages list one price per item row, usually with the symbol adjacent.
var detailPricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:EUR|€)\s*([0-9.,]+)`),
	regexp.MustCompile(`([0-9]+[.,][0-9]{2})\s*(?:EUR|€)`),
}

// ItemPrices maps ASINs to per-item prices found on an order details page.
// Rows without a product link or without a positive price are skipped.
func (e *Extractor) ItemPrices(doc *goquery.Document) map[string]float64 {
	prices := make(map[string]float64)

	doc.Find(`.a-row, [class*="item"], [class*="product"]`).Each(func(_ int, row *goquery.Selection) {
		link := row.Find(itemLinkSelector).First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		asin := urlutil.ExtractASIN(href)
		if asin == "" {
			return
		}
		if _, done := prices[asin]; done {
			return
		}

		text := row.Text()
		for _, pattern := range detailPricePatterns {
			m := pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if amount := money.ParseAmount(m[1]); amount > 0 {
				prices[asin] = amount
				break
			}
		}
	})

	return prices
}
