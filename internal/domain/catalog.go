package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CatalogItem is a lightweight list-page entry
type CatalogItem struct {
	Name string `json:"name"`
	URL  string `json:"url"` // Reference URL, trailing segment is the numeric id
}

var trailingIDRegex = regexp.MustCompile(`/(\d+)/?$`)

// ID extracts the numeric identifier from the item's reference URL
func (i CatalogItem) ID() (int, error) {
	return IDFromURL(i.URL)
}

// IDFromURL extracts the numeric id from URLs like: https://pokeapi.co/api/v2/pokemon/25/
func IDFromURL(url string) (int, error) {
	matches := trailingIDRegex.FindStringSubmatch(strings.TrimSpace(url))
	if len(matches) < 2 {
		return 0, fmt.Errorf("could not extract id from URL: %s", url)
	}

	id, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid id in URL %s: %w", url, err)
	}
	if id < 1 {
		return 0, fmt.Errorf("id must be positive in URL: %s", url)
	}

	return id, nil
}

// CatalogPage is one page of catalog items as returned by the list endpoint
type CatalogPage struct {
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Count  int           `json:"count"` // Total count reported by the API, informational only
	Items  []CatalogItem `json:"items"`
}
