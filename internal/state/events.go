package state

import (
	"encoding/json"

	"pokedex/catalog/internal/domain"
)

// Event is anything the reducer can apply
type Event interface {
	EventType() string
}

// MarshalEvent provides a common JSON encoding for events
func MarshalEvent(event Event) ([]byte, error) {
	return json.Marshal(event)
}

type ListRequested struct {
	RequestID uint64 `json:"request_id"`
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
}

func (ListRequested) EventType() string { return "ListRequested" }

type ListFulfilled struct {
	RequestID  uint64               `json:"request_id"`
	Page       int                  `json:"page"`
	PageSize   int                  `json:"page_size"`
	KnownTotal int                  `json:"known_total"` // Estimated catalog size used for total pages
	Items      []domain.CatalogItem `json:"items"`
}

func (ListFulfilled) EventType() string { return "ListFulfilled" }

type ListRejected struct {
	RequestID uint64 `json:"request_id"`
	Error     string `json:"error"`
}

func (ListRejected) EventType() string { return "ListRejected" }

// MoreRequested starts an append to the loaded list
type MoreRequested struct {
	RequestID uint64 `json:"request_id"`
	Offset    int    `json:"offset"`
	PageSize  int    `json:"page_size"`
}

func (MoreRequested) EventType() string { return "MoreRequested" }

type MoreFulfilled struct {
	RequestID uint64               `json:"request_id"`
	Items     []domain.CatalogItem `json:"items"`
}

func (MoreFulfilled) EventType() string { return "MoreFulfilled" }

type MoreRejected struct {
	RequestID uint64 `json:"request_id"`
	Error     string `json:"error"`
}

func (MoreRejected) EventType() string { return "MoreRejected" }

type DetailRequested struct {
	RequestID uint64 `json:"request_id"`
	ID        int    `json:"id"`
}

func (DetailRequested) EventType() string { return "DetailRequested" }

type DetailFulfilled struct {
	RequestID uint64              `json:"request_id"`
	Record    domain.DetailRecord `json:"record"`
}

func (DetailFulfilled) EventType() string { return "DetailFulfilled" }

type DetailRejected struct {
	RequestID uint64 `json:"request_id"`
	Error     string `json:"error"`
}

func (DetailRejected) EventType() string { return "DetailRejected" }

type SearchRequested struct {
	RequestID uint64 `json:"request_id"`
	Query     string `json:"query"` // Normalized, lower case
}

func (SearchRequested) EventType() string { return "SearchRequested" }

type SearchFulfilled struct {
	RequestID uint64              `json:"request_id"`
	Record    domain.DetailRecord `json:"record"`
}

func (SearchFulfilled) EventType() string { return "SearchFulfilled" }

// SearchRejected is the normal "not found" outcome of a search
type SearchRejected struct {
	RequestID uint64 `json:"request_id"`
	Error     string `json:"error"`
}

func (SearchRejected) EventType() string { return "SearchRejected" }

type PageSet struct {
	Page int `json:"page"`
}

func (PageSet) EventType() string { return "PageSet" }

type NextPage struct{}

func (NextPage) EventType() string { return "NextPage" }

type PreviousPage struct{}

func (PreviousPage) EventType() string { return "PreviousPage" }

type SelectionCleared struct{}

func (SelectionCleared) EventType() string { return "SelectionCleared" }

type ErrorCleared struct{}

func (ErrorCleared) EventType() string { return "ErrorCleared" }

type ListReset struct{}

func (ListReset) EventType() string { return "ListReset" }

type SearchQuerySet struct {
	Query string `json:"query"`
}

func (SearchQuerySet) EventType() string { return "SearchQuerySet" }
