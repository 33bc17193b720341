// Package adfilter removes promotional cards that render inside the order
// list but are not real orders, like credit card and financing offers.
package adfilter

import (
	"regexp"

	"github.com/orderexport/amazon-order-exporter/internal/domain/model"
)

// adTitlePatterns match item titles of known promotional inserts.
var adTitlePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)amazon\s*visa`),
	regexp.MustCompile(`(?i)barclays\s*finanzierung`),
	regexp.MustCompile(`(?i)amazon\s*business.*card`),
	regexp.MustCompile(`(?i)kreditkarte`),
	regexp.MustCompile(`(?i)finanzierung`),
	regexp.MustCompile(`(?i)prime.*card`),
	regexp.MustCompile(`(?i)amazon.*amex`),
}

// IsAdvertisement reports whether an extracted order is a promotional insert
// rather than a purchase. Anything with an order date is always real.
func IsAdvertisement(order model.Order) bool {
	if order.OrderDate != "" {
		return false
	}

	for _, item := range order.Items {
		for _, pattern := range adTitlePatterns {
			if pattern.MatchString(item.Title) {
				return true
			}
		}
	}

	// Undated cards stuffed with many zero-priced items and no status or
	// details link are offer carousels, not orders.
	if order.OrderStatus == "" && order.DetailsURL == "" && len(order.Items) > 5 {
		allZero := true
		for _, item := range order.Items {
			if item.Price != 0 {
				allZero = false
				break
			}
		}
		if allZero {
			return true
		}
	}

	return false
}

// Filter returns orders with promotional inserts removed. Input order is
// preserved and the input slice is not modified.
func Filter(orders []model.Order) []model.Order {
	out := make([]model.Order, 0, len(orders))
	for _, order := range orders {
		if !IsAdvertisement(order) {
			out = append(out, order)
		}
	}
	return out
}
