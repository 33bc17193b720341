package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orderexport/amazon-order-exporter/internal/domain/model"
)

// csvHeaders is the fixed column layout. One row per item; order-level
// columns repeat on every row except savings and promotions, which only
// appear on an order's first row so totals are not double counted.
var csvHeaders = []string{
	"Order ID",
	"Order Date",
	"Total Amount",
	"Currency",
	"Total Savings",
	"Status",
	"Item Title",
	"Item ASIN",
	"Item Quantity",
	"Item Price",
	"Item Discount",
	"Promotions",
	"Item URL",
	"Details URL",
}

// ToCSV renders orders as CSV with one row per item. Orders without items
// still produce a single row with empty item columns.
func ToCSV(orders []model.Order) string {
	var b strings.Builder
	b.WriteString(strings.Join(csvHeaders, ","))
	b.WriteString("\n")

	for _, order := range orders {
		promotions := FormatPromotions(order.Promotions)
		items := order.Items
		if len(items) == 0 {
			items = []model.OrderItem{{}}
		}
		for i, item := range items {
			savings := ""
			promos := ""
			if i == 0 {
				if order.TotalSavings != 0 {
					savings = formatAmount(order.TotalSavings)
				}
				promos = promotions
			}

			quantity := ""
			if item.Quantity != 0 {
				quantity = strconv.Itoa(item.Quantity)
			}
			price := ""
			if item.Price != 0 {
				price = formatAmount(item.Price)
			}
			discount := ""
			if item.Discount != 0 {
				discount = formatAmount(item.Discount)
			}

			row := []string{
				escapeCSV(order.OrderID),
				escapeCSV(order.OrderDate),
				formatAmount(order.TotalAmount),
				escapeCSV(order.Currency),
				savings,
				escapeCSV(order.OrderStatus),
				escapeCSV(item.Title),
				escapeCSV(item.ASIN),
				quantity,
				price,
				discount,
				escapeCSV(promos),
				escapeCSV(item.ItemURL),
				escapeCSV(order.DetailsURL),
			}
			b.WriteString(strings.Join(row, ","))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// FormatPromotions joins promotions as "description: €amount" pairs
// separated by "; ".
func FormatPromotions(promotions []model.Promotion) string {
	if len(promotions) == 0 {
		return ""
	}
	parts := make([]string, len(promotions))
	for i, promo := range promotions {
		parts[i] = fmt.Sprintf("%s: €%s", promo.Description, formatAmount(promo.Amount))
	}
	return strings.Join(parts, "; ")
}

// formatAmount renders a float without trailing zeros, matching how the
// amounts were parsed.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// escapeCSV quotes a field when it contains a comma, quote, or newline,
// doubling embedded quotes.
func escapeCSV(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
