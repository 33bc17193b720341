// Package model holds the data types shared by the extraction, collection,
// and serialization layers.
package model

// Promotion is one promotional discount line attached to an order.
type Promotion struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// OrderItem is one line item within an order.
type OrderItem struct {
	Title    string  `json:"title"`
	ASIN     string  `json:"asin"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Discount float64 `json:"discount"`
	ItemURL  string  `json:"itemUrl"`
}

// Order is one purchase transaction scraped from an order history page.
type Order struct {
	OrderID      string      `json:"orderId"`
	OrderDate    string      `json:"orderDate"` // ISO YYYY-MM-DD, empty when unparseable
	TotalAmount  float64     `json:"totalAmount"`
	Currency     string      `json:"currency"`
	OrderStatus  string      `json:"orderStatus"`
	DetailsURL   string      `json:"detailsUrl"`
	Promotions   []Promotion `json:"promotions"`
	TotalSavings float64     `json:"totalSavings"`
	Items        []OrderItem `json:"items"`
}

// ExportOptions are the user-chosen parameters of a collection run.
type ExportOptions struct {
	Format    string `json:"format"` // "json" or "csv"
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	ExportAll bool   `json:"exportAll"`
}

// ExportState is the resumable state of one in-progress collection run. It is
// serialized to the state store before every navigation so that a run survives
// the loss of the in-memory execution context.
type ExportState struct {
	RunID             string   `json:"runId"`
	InProgress        bool     `json:"inProgress"`
	Format            string   `json:"format"`
	StartDate         string   `json:"startDate"`
	EndDate           string   `json:"endDate"`
	ExportAll         bool     `json:"exportAll"`
	YearsToProcess    []string `json:"yearsToProcess"`
	CurrentYearIndex  int      `json:"currentYearIndex"`
	CurrentStartIndex int      `json:"currentStartIndex"`
	CollectedOrders   []Order  `json:"collectedOrders"`
	SeenOrderIDs      []string `json:"seenOrderIds"`
	BaseURL           string   `json:"baseUrl"`
}

// CurrentYear returns the year the cursor points at, or false when every year
// has been processed.
func (s *ExportState) CurrentYear() (string, bool) {
	if s.CurrentYearIndex < 0 || s.CurrentYearIndex >= len(s.YearsToProcess) {
		return "", false
	}
	return s.YearsToProcess[s.CurrentYearIndex], true
}

// SeenSet returns the collected order ids as a set for dedup lookups.
func (s *ExportState) SeenSet() map[string]struct{} {
	seen := make(map[string]struct{}, len(s.SeenOrderIDs))
	for _, id := range s.SeenOrderIDs {
		seen[id] = struct{}{}
	}
	return seen
}

// AddOrder appends an order and records its id. It refuses duplicates so that
// SeenOrderIDs stays exactly the set of ids in CollectedOrders.
func (s *ExportState) AddOrder(order Order) bool {
	for _, id := range s.SeenOrderIDs {
		if id == order.OrderID {
			return false
		}
	}
	s.CollectedOrders = append(s.CollectedOrders, order)
	s.SeenOrderIDs = append(s.SeenOrderIDs, order.OrderID)
	return true
}
