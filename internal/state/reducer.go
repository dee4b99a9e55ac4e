package state

import (
	"pokedex/catalog/internal/domain"

	log "github.com/sirupsen/logrus"
)

// Reduce applies one event and returns the next state. It never mutates the
// slices of its input. Unknown events leave the state unchanged.
func Reduce(s State, event Event) State {
	next := s.Clone()

	switch e := event.(type) {
	case ListRequested, MoreRequested, DetailRequested:
		next.begin()

	case SearchRequested:
		next.begin()
		next.SearchQuery = e.Query

	case ListFulfilled:
		next.settle()
		next.Items = copyItems(e.Items)
		next.TotalPages = TotalPagesFor(e.KnownTotal, e.PageSize)
		next.CurrentPage = ClampPage(e.Page, next.TotalPages)
		next.Offset = (next.CurrentPage - 1) * max(e.PageSize, 0)

	case ListRejected:
		next.settle()
		next.LastError = e.Error

	case MoreFulfilled:
		next.settle()
		next.Items = append(next.Items, e.Items...)

	case MoreRejected:
		next.settle()
		next.LastError = e.Error

	case DetailFulfilled:
		next.settle()
		next.Selected = domain.Some(e.Record)

	case DetailRejected:
		next.settle()
		next.LastError = e.Error

	case SearchFulfilled:
		next.settle()
		next.Selected = domain.Some(e.Record)

	case SearchRejected:
		next.settle()
		next.Selected = domain.None[domain.DetailRecord]()
		next.LastError = e.Error

	case PageSet:
		if e.Page < 1 || e.Page > next.TotalPages {
			log.Debugf("Ignoring page %d outside [1, %d]", e.Page, next.TotalPages)
			break
		}
		next.CurrentPage = e.Page

	case NextPage:
		if next.CurrentPage < next.TotalPages {
			next.CurrentPage++
		}

	case PreviousPage:
		if next.CurrentPage > 1 {
			next.CurrentPage--
		}

	case SelectionCleared:
		next.Selected = domain.None[domain.DetailRecord]()
		next.LastError = ""

	case ErrorCleared:
		next.LastError = ""

	case ListReset:
		next.Items = []domain.CatalogItem{}
		next.CurrentPage = 1
		next.Offset = 0

	case SearchQuerySet:
		next.SearchQuery = e.Query

	default:
		log.Warnf("Unknown event type %T, state unchanged", event)
	}

	return next
}

func (s *State) begin() {
	s.inflight++
	s.Loading = true
	s.LastError = ""
}

func (s *State) settle() {
	if s.inflight > 0 {
		s.inflight--
	}
	s.Loading = s.inflight > 0
}

func copyItems(items []domain.CatalogItem) []domain.CatalogItem {
	out := make([]domain.CatalogItem, len(items))
	copy(out, items)
	return out
}
