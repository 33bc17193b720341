package amazon

import (
	"sort"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/orderexport/amazon-order-exporter/internal/domain/dates"
)

// yearDropdownSelectors locate the time-filter control that lists the years
// with orders.
var yearDropdownSelectors = []string{
	"select[name='timeFilter'] option",
	"select[name='orderFilter'] option",
	"#time-filter option",
	"#orderFilter option",
	"[name='timeFilter'] option",
	"form[action*='order-history'] select option",
	"form[action*='your-orders'] select option",
	".time-filter-dropdown option",
	"[data-testid='time-filter'] option",
}

// nextPageSelectors locate the enabled next-page control of the pagination
// bar.
var nextPageSelectors = []string{
	"ul.a-pagination li.a-last:not(.a-disabled) a",
	".a-pagination .a-last:not(.a-disabled) a",
	"a[aria-label*='Nächste']",
	"a[aria-label*='Next page']",
	"a[href*='startIndex']:contains('Weiter')",
	"a[href*='startIndex']:contains('Next')",
	"a[href*='startIndex']:contains('Suivant')",
}

// AvailableYears lists the order-history years present in the page's time
// filter, newest first. When no dropdown is found it assumes the last ten
// years so collection can still proceed.
func (e *Extractor) AvailableYears(doc *goquery.Document, now time.Time) []string {
	found := make(map[string]struct{})

	for _, selector := range yearDropdownSelectors {
		doc.Find(selector).Each(func(_ int, opt *goquery.Selection) {
			value, _ := opt.Attr("value")
			year := dates.ExtractYear(value)
			if year == "" {
				year = dates.ExtractYear(opt.Text())
			}
			if year != "" {
				found[year] = struct{}{}
			}
		})
		if len(found) > 0 {
			break
		}
	}

	// Some layouts render the filter as links or a scripted listbox.
	if len(found) == 0 {
		doc.Find("a[href*='timeFilter=year'], [data-value*='year'], .a-popover-inner li").Each(func(_ int, s *goquery.Selection) {
			href, _ := s.Attr("href")
			if year := dates.ExtractYear(href); year != "" {
				found[year] = struct{}{}
				return
			}
			value, _ := s.Attr("data-value")
			if year := dates.ExtractYear(value); year != "" {
				found[year] = struct{}{}
				return
			}
			if year := dates.ExtractYear(s.Text()); year != "" {
				found[year] = struct{}{}
			}
		})
	}

	if len(found) == 0 {
		e.logger.Warn("no year filter found on page, assuming last ten years")
		for y := now.Year(); y > now.Year()-10; y-- {
			found[strconv.Itoa(y)] = struct{}{}
		}
	}

	years := make([]string, 0, len(found))
	for year := range found {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(years)))
	return years
}

// HasNextPage reports whether the document has an enabled next-page control.
func (e *Extractor) HasNextPage(doc *goquery.Document) bool {
	for _, selector := range nextPageSelectors {
		if doc.Find(selector).Length() > 0 {
			return true
		}
	}
	return false
}
