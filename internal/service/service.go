package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"pokedex/catalog/internal/client"
	"pokedex/catalog/internal/config"
	"pokedex/catalog/internal/domain"
	"pokedex/catalog/internal/state"

	"github.com/sourcegraph/conc"
	log "github.com/sirupsen/logrus"
)

// EnrichmentFailure is a failed species lookup. It is logged and never
// surfaced as an operation failure.
type EnrichmentFailure struct {
	ID  int
	Err error
}

func (e *EnrichmentFailure) Error() string {
	return fmt.Sprintf("species enrichment for %d failed: %v", e.ID, e.Err)
}

func (e *EnrichmentFailure) Unwrap() error {
	return e.Err
}

// Pending is the handle of one dispatched async operation
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func settled(err error) *Pending {
	p := newPending()
	p.err = err
	close(p.done)
	return p
}

// Wait blocks until the operation settles and returns its rejection, if any
func (p *Pending) Wait() error {
	<-p.done
	return p.err
}

func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Service exposes the view-facing dispatch functions over the store
type Service struct {
	client     client.CatalogClient
	store      state.Store
	catalog    config.CatalogConfig
	api        config.APIConfig
	wg         conc.WaitGroup
	requestSeq atomic.Uint64
}

func NewService(
	client client.CatalogClient,
	store state.Store,
	catalog config.CatalogConfig,
	api config.APIConfig,
) *Service {
	return &Service{
		client:  client,
		store:   store,
		catalog: catalog,
		api:     api,
	}
}

func (s *Service) Store() state.Store {
	return s.store
}

func (s *Service) Snapshot() state.State {
	return s.store.Snapshot()
}

func (s *Service) Subscribe(fn state.Subscriber) func() {
	return s.store.Subscribe(fn)
}

// Wait blocks until every dispatched operation has settled
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) run(op func() error) *Pending {
	p := newPending()
	s.wg.Go(func() {
		defer close(p.done)
		p.err = op()
	})
	return p
}

// FetchList loads one page of catalog items, replacing the current list
func (s *Service) FetchList(ctx context.Context, page, pageSize int) *Pending {
	requestID := s.requestSeq.Add(1)
	s.store.Dispatch(state.ListRequested{RequestID: requestID, Page: page, PageSize: pageSize})

	return s.run(func() error {
		if err := s.validatePage(page, pageSize); err != nil {
			s.store.Dispatch(state.ListRejected{RequestID: requestID, Error: err.Error()})
			return err
		}

		offset := (page - 1) * pageSize
		log.Debugf("🔄 [%d] Fetching page %d (limit=%d offset=%d)", requestID, page, pageSize, offset)

		result, err := s.client.ListItems(ctx, pageSize, offset)
		if err != nil {
			log.Errorf("❌ [%d] Failed to fetch page %d: %v", requestID, page, err)
			s.store.Dispatch(state.ListRejected{RequestID: requestID, Error: err.Error()})
			return err
		}

		s.store.Dispatch(state.ListFulfilled{
			RequestID:  requestID,
			Page:       page,
			PageSize:   pageSize,
			KnownTotal: s.catalog.KnownTotal,
			Items:      result.Items,
		})
		log.Debugf("✅ [%d] Page %d loaded with %d items", requestID, page, len(result.Items))
		return nil
	})
}

// LoadMore appends the next pageSize items after the loaded list
func (s *Service) LoadMore(ctx context.Context, pageSize int) *Pending {
	snapshot := s.store.Snapshot()
	offset := snapshot.Offset + len(snapshot.Items)

	requestID := s.requestSeq.Add(1)
	s.store.Dispatch(state.MoreRequested{RequestID: requestID, Offset: offset, PageSize: pageSize})

	return s.run(func() error {
		if pageSize < 1 {
			err := fmt.Errorf("page size must be at least 1, got %d", pageSize)
			s.store.Dispatch(state.MoreRejected{RequestID: requestID, Error: err.Error()})
			return err
		}

		result, err := s.client.ListItems(ctx, pageSize, offset)
		if err != nil {
			log.Errorf("❌ [%d] Failed to load more at offset %d: %v", requestID, offset, err)
			s.store.Dispatch(state.MoreRejected{RequestID: requestID, Error: err.Error()})
			return err
		}

		s.store.Dispatch(state.MoreFulfilled{RequestID: requestID, Items: result.Items})
		return nil
	})
}

// FetchByID loads the full detail of one item, best-effort enriched with species data
func (s *Service) FetchByID(ctx context.Context, id int) *Pending {
	requestID := s.requestSeq.Add(1)
	s.store.Dispatch(state.DetailRequested{RequestID: requestID, ID: id})

	return s.run(func() error {
		if id < 1 {
			err := fmt.Errorf("id must be at least 1, got %d", id)
			s.store.Dispatch(state.DetailRejected{RequestID: requestID, Error: err.Error()})
			return err
		}

		log.Debugf("🔄 [%d] Fetching detail %d", requestID, id)

		record, err := s.client.GetDetail(ctx, strconv.Itoa(id))
		if err != nil {
			log.Errorf("❌ [%d] Failed to fetch detail %d: %v", requestID, id, err)
			s.store.Dispatch(state.DetailRejected{RequestID: requestID, Error: err.Error()})
			return err
		}

		merged := s.enrich(ctx, *record)
		s.store.Dispatch(state.DetailFulfilled{RequestID: requestID, Record: merged})
		return nil
	})
}

// SearchByName looks an item up by exact name. A miss clears the selection so
// the view can fall back to filtering the loaded page.
func (s *Service) SearchByName(ctx context.Context, query string) *Pending {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		s.store.Dispatch(state.SearchQuerySet{Query: ""})
		s.store.Dispatch(state.SelectionCleared{})
		return settled(nil)
	}

	requestID := s.requestSeq.Add(1)
	s.store.Dispatch(state.SearchRequested{RequestID: requestID, Query: normalized})

	return s.run(func() error {
		log.Debugf("🔎 [%d] Searching for %q", requestID, normalized)

		record, err := s.client.GetDetail(ctx, normalized)
		if err != nil {
			if errors.Is(err, client.ErrNotFound) {
				log.Infof("🔎 [%d] No item named %q, falling back to local filter", requestID, normalized)
			} else {
				log.Errorf("❌ [%d] Search for %q failed: %v", requestID, normalized, err)
			}
			s.store.Dispatch(state.SearchRejected{RequestID: requestID, Error: err.Error()})
			return err
		}

		merged := s.enrich(ctx, *record)
		s.store.Dispatch(state.SearchFulfilled{RequestID: requestID, Record: merged})
		return nil
	})
}

func (s *Service) enrich(ctx context.Context, record domain.DetailRecord) domain.DetailRecord {
	species, err := s.client.GetSpecies(ctx, record.ID)
	if err != nil {
		failure := &EnrichmentFailure{ID: record.ID, Err: err}
		log.Warnf("⚠️ %v, continuing without flavor text", failure)
		return record
	}
	return record.MergeSpecies(species)
}

func (s *Service) validatePage(page, pageSize int) error {
	if pageSize < 1 {
		return fmt.Errorf("page size must be at least 1, got %d", pageSize)
	}
	totalPages := state.TotalPagesFor(s.catalog.KnownTotal, pageSize)
	if page < 1 || page > totalPages {
		return fmt.Errorf("page %d out of range [1, %d]", page, totalPages)
	}
	return nil
}

// SetPage clamps n to the known page range and applies it
func (s *Service) SetPage(n int) int {
	page := state.ClampPage(n, s.store.Snapshot().TotalPages)
	return s.store.Dispatch(state.PageSet{Page: page}).CurrentPage
}

// GoToPage clamps n, applies it and fetches that page with the configured page size
func (s *Service) GoToPage(ctx context.Context, n int) *Pending {
	pageSize := s.catalog.PageSize
	page := state.ClampPage(n, state.TotalPagesFor(s.catalog.KnownTotal, pageSize))
	if page != n {
		log.Debugf("Clamped page %d to %d", n, page)
	}

	s.store.Dispatch(state.PageSet{Page: page})
	return s.FetchList(ctx, page, pageSize)
}

func (s *Service) NextPage() int {
	return s.store.Dispatch(state.NextPage{}).CurrentPage
}

func (s *Service) PreviousPage() int {
	return s.store.Dispatch(state.PreviousPage{}).CurrentPage
}

func (s *Service) ClearSelected() {
	s.store.Dispatch(state.SelectionCleared{})
}

func (s *Service) ClearError() {
	s.store.Dispatch(state.ErrorCleared{})
}

func (s *Service) ResetList() {
	s.store.Dispatch(state.ListReset{})
}

func (s *Service) SetSearchQuery(query string) {
	s.store.Dispatch(state.SearchQuerySet{Query: strings.TrimSpace(query)})
}
