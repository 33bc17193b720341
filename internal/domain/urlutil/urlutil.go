// Package urlutil recognizes Amazon order-history URLs across marketplaces
// and builds paginated year-filter URLs, plus small ID extractors for order
// numbers and ASINs.
package urlutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// AmazonDomains are the marketplace hosts the exporter recognizes. A host
// matches when it equals a domain or is a subdomain of one.
var AmazonDomains = []string{
	"amazon.de",
	"amazon.com",
	"amazon.co.uk",
	"amazon.fr",
	"amazon.it",
	"amazon.es",
	"amazon.nl",
	"amazon.com.be",
	"amazon.se",
	"amazon.pl",
	"amazon.com.tr",
	"amazon.ca",
}

// orderHistoryPaths are checked longest-first so /your-orders/orders wins
// over /your-orders.
var orderHistoryPaths = []string{
	"/gp/your-account/order-history",
	"/gp/css/order-history",
	"/your-orders/orders",
	"/your-orders",
}

// pathAliases maps recognized prefixes to the canonical path used when
// building pagination URLs.
var pathAliases = map[string]string{
	"/your-orders": "/your-orders/orders",
}

// Some marketplaces inject a locale segment like /-/en before the real path.
var localePrefix = regexp.MustCompile(`^/-/[a-z]{2}(?:/|$)`)

var (
	orderIDPattern      = regexp.MustCompile(`\d{3}-\d{7}-\d{7}`)
	orderIDParamPattern = regexp.MustCompile(`(?i)orderid=(\d{3}-\d{7}-\d{7})`)
	asinPattern         = regexp.MustCompile(`(?i)/(?:dp|gp/product)/([A-Z0-9]{10})(?:[/?#]|$)`)
)

func isAmazonHost(host string) bool {
	host = strings.ToLower(host)
	for _, domain := range AmazonDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// stripLocalePrefix removes a leading /-/xx locale segment, keeping the rest
// of the path rooted at "/".
func stripLocalePrefix(path string) string {
	loc := localePrefix.FindString(path)
	if loc == "" {
		return path
	}
	rest := path[len(loc):]
	return "/" + rest
}

// matchOrderPath returns the matched order-history prefix, requiring a path
// boundary so /your-orderstuff does not match /your-orders.
func matchOrderPath(path string) (string, bool) {
	for _, prefix := range orderHistoryPaths {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := path[len(prefix):]
		if rest == "" || strings.HasPrefix(rest, "/") {
			return prefix, true
		}
	}
	return "", false
}

// IsOrderHistoryPage reports whether rawURL points at an Amazon order-history
// page on any recognized marketplace.
func IsOrderHistoryPage(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if !isAmazonHost(u.Hostname()) {
		return false
	}
	_, ok := matchOrderPath(stripLocalePrefix(u.Path))
	return ok
}

// OrderHistoryBaseURL canonicalizes an order-history page URL down to
// scheme, host, optional locale prefix, and the canonical order-history
// path, dropping query and fragment. Returns an error when rawURL is not an
// order-history page.
func OrderHistoryBaseURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}
	if !isAmazonHost(u.Hostname()) {
		return "", fmt.Errorf("not an amazon host: %s", u.Hostname())
	}

	loc := localePrefix.FindString(u.Path)
	path := u.Path
	if loc != "" {
		path = "/" + u.Path[len(loc):]
	}
	prefix, ok := matchOrderPath(path)
	if !ok {
		return "", fmt.Errorf("not an order history path: %s", u.Path)
	}
	if canonical, aliased := pathAliases[prefix]; aliased {
		prefix = canonical
	}
	return u.Scheme + "://" + u.Host + strings.TrimSuffix(loc, "/") + prefix, nil
}

// BuildOrderPageURL sets the year filter and pagination offset on a base
// order-history URL, preserving any other query parameters already present.
// A startIndex of zero removes the parameter so the first page round-trips
// to the base URL.
func BuildOrderPageURL(baseURL, year string, startIndex int) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base url: %w", err)
	}

	q := u.Query()
	q.Set("timeFilter", "year-"+year)
	if startIndex > 0 {
		q.Set("startIndex", strconv.Itoa(startIndex))
	} else {
		q.Del("startIndex")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExtractOrderID finds the first Amazon order number (3-7-7 digit groups) in
// text. Returns "" when none is present.
func ExtractOrderID(text string) string {
	return orderIDPattern.FindString(text)
}

// ExtractOrderIDFromURL pulls the order number out of an orderID query
// parameter, e.g. in order-details links. Returns "" when none is present.
func ExtractOrderIDFromURL(rawURL string) string {
	m := orderIDParamPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// ExtractASIN pulls the ten-character product ID out of a /dp/ or
// /gp/product/ link, normalized to uppercase. The ID must end at a path
// boundary. Returns "" when none is present.
func ExtractASIN(rawURL string) string {
	m := asinPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}
