// Package state holds the application state container: a pure reducer over
// typed events and a Store that serializes transitions and notifies subscribers.
package state

import (
	"pokedex/catalog/internal/domain"
)

// State is the full application state snapshot
type State struct {
	Items       []domain.CatalogItem                 `json:"items"`
	Selected    domain.Optional[domain.DetailRecord] `json:"selected"`
	Loading     bool                                 `json:"loading"`
	LastError   string                               `json:"last_error,omitempty"` // Empty means no error
	CurrentPage int                                  `json:"current_page"`
	TotalPages  int                                  `json:"total_pages"`
	Offset      int                                  `json:"offset"` // Offset of the loaded list page
	SearchQuery string                               `json:"search_query,omitempty"`

	// Number of async operations dispatched but not yet settled
	inflight int
}

// Initial returns the state a session starts with
func Initial() State {
	return State{
		Items:       []domain.CatalogItem{},
		Selected:    domain.None[domain.DetailRecord](),
		CurrentPage: 1,
		TotalPages:  1,
	}
}

// Inflight reports how many async operations are outstanding
func (s State) Inflight() int {
	return s.inflight
}

// HasError reports whether the last operation failed
func (s State) HasError() bool {
	return s.LastError != ""
}

// Clone returns a copy that shares no slices with s, including the selected record's
func (s State) Clone() State {
	items := make([]domain.CatalogItem, len(s.Items))
	copy(items, s.Items)
	s.Items = items

	if selected, ok := s.Selected.Get(); ok {
		s.Selected = domain.Some(selected.Clone())
	}
	return s
}

// TotalPagesFor computes ceil(knownTotal / pageSize), never below 1
func TotalPagesFor(knownTotal, pageSize int) int {
	if pageSize < 1 || knownTotal < 1 {
		return 1
	}
	return (knownTotal + pageSize - 1) / pageSize
}

// ClampPage clamps n into [1, totalPages]
func ClampPage(n, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if n < 1 {
		return 1
	}
	if n > totalPages {
		return totalPages
	}
	return n
}
