package service

import (
	"strings"

	"pokedex/catalog/internal/domain"
	"pokedex/catalog/internal/state"
)

// NormalizeQuery trims and lower-cases a search query
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// FilterItems returns the items whose name contains query, case-insensitively.
// An empty query matches everything. The result is never nil.
func FilterItems(items []domain.CatalogItem, query string) []domain.CatalogItem {
	needle := NormalizeQuery(query)
	out := make([]domain.CatalogItem, 0, len(items))

	for _, item := range items {
		if needle == "" || strings.Contains(strings.ToLower(item.Name), needle) {
			out = append(out, item)
		}
	}

	return out
}

// DisplayList decides what the grid shows for the current query: the whole
// page when there is no query, the selected record when the remote lookup
// hit, and the locally filtered page when it missed.
func (s *Service) DisplayList(st state.State, query string) []domain.CatalogItem {
	if NormalizeQuery(query) == "" {
		return FilterItems(st.Items, "")
	}

	if selected, ok := st.Selected.Get(); ok {
		return []domain.CatalogItem{selected.CatalogItem(s.api.BaseURL, s.api.ListPath)}
	}

	return FilterItems(st.Items, query)
}
