// Package export serializes collected orders into downloadable CSV or JSON
// files.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/orderexport/amazon-order-exporter/internal/domain/model"
)

// File is a rendered export ready to hand to a sink: content plus the name
// and MIME type a download should carry.
type File struct {
	Content  string `json:"content"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
}

// ToJSON renders orders as indented JSON.
func ToJSON(orders []model.Order) (string, error) {
	data, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling orders: %w", err)
	}
	return string(data), nil
}

// BuildFile renders orders in the requested format ("csv" or "json") and
// names the file amazon-orders-<date>.<ext> using the given timestamp.
func BuildFile(orders []model.Order, format string, now time.Time) (File, error) {
	stamp := now.Format("2006-01-02")
	switch format {
	case "json":
		content, err := ToJSON(orders)
		if err != nil {
			return File{}, err
		}
		return File{
			Content:  content,
			FileName: fmt.Sprintf("amazon-orders-%s.json", stamp),
			MimeType: "application/json",
		}, nil
	case "csv":
		return File{
			Content:  ToCSV(orders),
			FileName: fmt.Sprintf("amazon-orders-%s.csv", stamp),
			MimeType: "text/csv",
		}, nil
	default:
		return File{}, fmt.Errorf("unsupported export format: %q", format)
	}
}
