// Package amazon extracts orders from rendered order-history and
// order-details pages. Amazon's markup varies by marketplace and rollout
// cohort, so selectors are ordered lists of known variants with fuzzy
// fallbacks behind them.
package amazon

import (
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/orderexport/amazon-order-exporter/internal/domain/dates"
	"github.com/orderexport/amazon-order-exporter/internal/domain/model"
	"github.com/orderexport/amazon-order-exporter/internal/domain/money"
	"github.com/orderexport/amazon-order-exporter/internal/domain/status"
	"github.com/orderexport/amazon-order-exporter/internal/domain/urlutil"
)

// orderCardSelectors locate one order card each, across known layout
// generations. First selector with any matches wins.
var orderCardSelectors = []string{
	".order-card",
	".js-order-card",
	".order",
	"[class*='order-card']",
	".a-box-group.order",
	".your-order-card",
	"[data-order-id]",
	".order-info",
}

var detailsLinkSelector = `a[href*="order-details"], a[href*="orderID="], a[href*="orderId="]`

var itemLinkSelector = `a[href*="/dp/"], a[href*="/gp/product/"]`

var titleSelector = `.a-text-bold, [class*="product-title"], [class*="item-title"]`

var quantityPattern = regexp.MustCompile(`(?i)(?:Qty|Quantity|Menge|Anzahl)[:\s]*(\d+)`)

const (
	containerWalkDepth = 10
	titleWalkDepth     = 5
	quantityWalkDepth  = 8
)

// Extractor turns order-history documents into orders.
type Extractor struct {
	baseURL *url.URL
	logger  *slog.Logger
}

// NewExtractor builds an extractor. baseURL anchors relative links found in
// the page, e.g. order-details hrefs.
func NewExtractor(baseURL string, logger *slog.Logger) (*Extractor, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Extractor{baseURL: u, logger: logger}, nil
}

// ExtractOrders returns every order found in an order-history document.
// Cards without a recognizable order number are skipped.
func (e *Extractor) ExtractOrders(doc *goquery.Document) []model.Order {
	containers := e.findOrderContainers(doc)

	orders := make([]model.Order, 0, len(containers))
	for _, container := range containers {
		order, ok := e.parseOrderContainer(container)
		if !ok {
			continue
		}
		orders = append(orders, order)
	}

	e.logger.Debug("extracted orders from page", "containers", len(containers), "orders", len(orders))
	return orders
}

// findOrderContainers locates order cards, trying known selectors first and
// falling back to walking up from order-number text nodes on unknown
// layouts.
func (e *Extractor) findOrderContainers(doc *goquery.Document) []*goquery.Selection {
	for _, selector := range orderCardSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		containers := make([]*goquery.Selection, 0, sel.Length())
		sel.Each(func(_ int, s *goquery.Selection) {
			containers = append(containers, s)
		})
		return containers
	}
	return e.findContainersByOrderID(doc)
}

// findContainersByOrderID walks up from elements whose own text contains an
// order number until it reaches something that looks like a card container.
func (e *Extractor) findContainersByOrderID(doc *goquery.Document) []*goquery.Selection {
	var containers []*goquery.Selection
	seen := make(map[*html.Node]struct{})

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		if urlutil.ExtractOrderID(ownText(s)) == "" {
			return
		}
		container := ascendToContainer(s)
		if container == nil {
			return
		}
		node := container.Get(0)
		if _, dup := seen[node]; dup {
			return
		}
		seen[node] = struct{}{}
		containers = append(containers, container)
	})
	return containers
}

// ascendToContainer climbs ancestors looking for a box-like wrapper. A div
// with several children is accepted as a fuzzy match.
func ascendToContainer(s *goquery.Selection) *goquery.Selection {
	current := s
	for depth := 0; depth < containerWalkDepth; depth++ {
		parent := current.Parent()
		if parent.Length() == 0 {
			return nil
		}
		if parent.HasClass("a-box") || parent.HasClass("a-box-group") {
			return parent
		}
		if goquery.NodeName(parent) == "div" && parent.Children().Length() > 3 {
			return parent
		}
		current = parent
	}
	return nil
}

// ownText returns the text of a selection's direct text-node children,
// excluding descendants.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	for _, node := range s.Nodes {
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.TextNode {
				b.WriteString(child.Data)
			}
		}
	}
	return b.String()
}

func (e *Extractor) parseOrderContainer(container *goquery.Selection) (model.Order, bool) {
	text := container.Text()

	orderID := urlutil.ExtractOrderID(text)
	if orderID == "" {
		// Some layouts only carry the order number inside link hrefs.
		container.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			orderID = urlutil.ExtractOrderIDFromURL(href)
			return orderID == ""
		})
	}
	if orderID == "" {
		return model.Order{}, false
	}

	order := model.Order{
		OrderID:    orderID,
		OrderDate:  dates.ParseOrderDate(text),
		Currency:   "EUR",
		Promotions: []model.Promotion{},
		Items:      []model.OrderItem{},
	}

	if price, ok := money.Extract(text); ok {
		order.TotalAmount = price.Amount
		order.Currency = price.Currency
	}
	order.OrderStatus = status.Parse(text)
	order.DetailsURL = e.findDetailsURL(container)
	order.Items = e.parseItems(container)

	return order, true
}

func (e *Extractor) findDetailsURL(container *goquery.Selection) string {
	link := container.Find(detailsLinkSelector).First()
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return ""
	}
	return e.resolveURL(href)
}

func (e *Extractor) resolveURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return e.baseURL.ResolveReference(u).String()
}

// parseItems extracts line items from product links inside an order card.
// Multiple links to the same product (image plus title) collapse into one
// item, first occurrence wins. An item only needs a parseable ASIN; one
// whose title cannot be resolved is kept with an empty title.
func (e *Extractor) parseItems(container *goquery.Selection) []model.OrderItem {
	items := []model.OrderItem{}
	seen := make(map[string]struct{})

	container.Find(itemLinkSelector).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		asin := urlutil.ExtractASIN(href)
		if asin == "" {
			return
		}
		if _, dup := seen[asin]; dup {
			return
		}
		seen[asin] = struct{}{}

		items = append(items, model.OrderItem{
			Title:    resolveTitle(link),
			ASIN:     asin,
			Quantity: resolveQuantity(link),
			ItemURL:  "https://www.amazon.de/dp/" + asin,
		})
	})
	return items
}

// resolveTitle finds the product title for an item link. The link's own text
// is preferred; image links fall back to a nearby title element, then to
// title attributes, then to the image alt text.
func resolveTitle(link *goquery.Selection) string {
	if text := cleanTitle(link.Text()); len(text) >= 5 {
		return text
	}

	current := link
	for depth := 0; depth < titleWalkDepth; depth++ {
		parent := current.Parent()
		if parent.Length() == 0 {
			break
		}
		if found := cleanTitle(parent.Find(titleSelector).First().Text()); len(found) >= 5 {
			return found
		}
		current = parent
	}

	if title, ok := link.Attr("title"); ok && len(cleanTitle(title)) >= 5 {
		return cleanTitle(title)
	}
	if label, ok := link.Attr("aria-label"); ok && len(cleanTitle(label)) >= 5 {
		return cleanTitle(label)
	}
	if alt, ok := link.Find("img").First().Attr("alt"); ok && len(cleanTitle(alt)) >= 5 {
		return cleanTitle(alt)
	}
	return ""
}

var innerSpace = regexp.MustCompile(`\s+`)

func cleanTitle(s string) string {
	return strings.TrimSpace(innerSpace.ReplaceAllString(s, " "))
}

// resolveQuantity looks for a quantity label near the item link. Defaults to
// 1 when none is found.
func resolveQuantity(link *goquery.Selection) int {
	current := link
	for depth := 0; depth < quantityWalkDepth; depth++ {
		parent := current.Parent()
		if parent.Length() == 0 {
			break
		}
		if m := quantityPattern.FindStringSubmatch(parent.Text()); m != nil {
			if qty, err := strconv.Atoi(m[1]); err == nil && qty > 0 {
				return qty
			}
		}
		current = parent
	}
	return 1
}
