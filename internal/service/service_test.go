package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"pokedex/catalog/internal/client"
	"pokedex/catalog/internal/config"
	"pokedex/catalog/internal/domain"
	"pokedex/catalog/internal/state"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// mockCatalogClient is a mock implementation of client.CatalogClient for testing
type mockCatalogClient struct {
	mock.Mock
}

func (m *mockCatalogClient) Get(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	args := m.Called(ctx, path, query)
	body, _ := args.Get(0).([]byte)
	return body, args.Error(1)
}

func (m *mockCatalogClient) ListItems(ctx context.Context, limit, offset int) (*domain.CatalogPage, error) {
	args := m.Called(ctx, limit, offset)
	page, _ := args.Get(0).(*domain.CatalogPage)
	return page, args.Error(1)
}

func (m *mockCatalogClient) GetDetail(ctx context.Context, idOrName string) (*domain.DetailRecord, error) {
	args := m.Called(ctx, idOrName)
	record, _ := args.Get(0).(*domain.DetailRecord)
	return record, args.Error(1)
}

func (m *mockCatalogClient) GetSpecies(ctx context.Context, id int) (*domain.Species, error) {
	args := m.Called(ctx, id)
	species, _ := args.Get(0).(*domain.Species)
	return species, args.Error(1)
}

func (m *mockCatalogClient) Close() error {
	return m.Called().Error(0)
}

func notFound(path string) error {
	return fmt.Errorf("failed to fetch detail: %w", &client.ResponseError{
		URL:        "https://pokeapi.co/api/v2/" + path,
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
	})
}

func catalogPage(offset int, names ...string) *domain.CatalogPage {
	items := make([]domain.CatalogItem, 0, len(names))
	for i, name := range names {
		items = append(items, domain.CatalogItem{
			Name: name,
			URL:  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", offset+i+1),
		})
	}
	return &domain.CatalogPage{Limit: len(names), Offset: offset, Items: items}
}

func detail(id int, name string) *domain.DetailRecord {
	return &domain.DetailRecord{
		ID:        id,
		Name:      name,
		Sprites:   domain.Sprites{Front: fmt.Sprintf("https://img/%d.png", id)},
		Types:     []string{"grass", "poison"},
		Stats:     []domain.Stat{{Name: "hp", BaseValue: 45}},
		Abilities: []domain.Ability{{Name: "overgrow"}, {Name: "chlorophyll", IsHidden: true}},
	}
}

func species(id int) *domain.Species {
	return &domain.Species{
		ID: id,
		FlavorTextEntries: domain.Some([]domain.FlavorTextEntry{
			{Text: "A strange seed", Language: "en", Version: "red"},
		}),
	}
}

type ServiceTestSuite struct {
	suite.Suite
	client  *mockCatalogClient
	store   state.Store
	service *Service
	ctx     context.Context
	mu      sync.Mutex
	changes []state.Change
}

func (s *ServiceTestSuite) SetupTest() {
	s.client = new(mockCatalogClient)
	s.store = state.NewStore(state.Initial())
	s.service = NewService(s.client, s.store,
		config.CatalogConfig{PageSize: 20, KnownTotal: 1300, FlavorLanguage: "en"},
		config.APIConfig{BaseURL: "https://pokeapi.co/api/v2", ListPath: "pokemon"},
	)
	s.ctx = context.Background()
	s.changes = nil
	s.store.Subscribe(func(c state.Change) {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.changes = append(s.changes, c)
	})
}

func (s *ServiceTestSuite) TearDownTest() {
	s.service.Wait()
	s.client.AssertExpectations(s.T())
}

func (s *ServiceTestSuite) recorded() []state.Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]state.Change(nil), s.changes...)
}

func (s *ServiceTestSuite) eventTypes() []string {
	changes := s.recorded()
	types := make([]string, 0, len(changes))
	for _, c := range changes {
		types = append(types, c.Event.EventType())
	}
	return types
}

func (s *ServiceTestSuite) TestFetchList() {
	s.client.On("ListItems", s.ctx, 20, 0).Return(catalogPage(0, "bulbasaur", "ivysaur"), nil)

	s.Require().NoError(s.service.FetchList(s.ctx, 1, 20).Wait())

	snapshot := s.service.Snapshot()
	s.Len(snapshot.Items, 2)
	s.Equal(1, snapshot.CurrentPage)
	s.Equal(65, snapshot.TotalPages)
	s.False(snapshot.Loading)
	s.False(snapshot.HasError())
	s.Equal([]string{"ListRequested", "ListFulfilled"}, s.eventTypes())
	s.True(s.recorded()[0].State.Loading, "loading while pending")
}

func (s *ServiceTestSuite) TestFetchListComputesOffset() {
	s.client.On("ListItems", s.ctx, 10, 40).Return(catalogPage(40, "a", "b", "c"), nil)

	s.Require().NoError(s.service.FetchList(s.ctx, 5, 10).Wait())

	snapshot := s.service.Snapshot()
	s.Equal(5, snapshot.CurrentPage)
	s.Equal(130, snapshot.TotalPages)
	s.Equal(40, snapshot.Offset)
}

func (s *ServiceTestSuite) TestFetchListFailureKeepsSelection() {
	s.client.On("GetDetail", s.ctx, "1").Return(detail(1, "bulbasaur"), nil)
	s.client.On("GetSpecies", s.ctx, 1).Return(species(1), nil)
	s.Require().NoError(s.service.FetchByID(s.ctx, 1).Wait())

	transportErr := &client.TransportError{URL: "https://pokeapi.co/api/v2/pokemon", Err: errors.New("connection refused")}
	s.client.On("ListItems", s.ctx, 20, 0).Return(nil, fmt.Errorf("failed to fetch catalog page: %w", transportErr))

	err := s.service.FetchList(s.ctx, 1, 20).Wait()
	s.Require().Error(err)

	snapshot := s.service.Snapshot()
	s.False(snapshot.Loading)
	s.Contains(snapshot.LastError, "connection refused")
	s.True(snapshot.Selected.IsPresent())
}

func (s *ServiceTestSuite) TestFetchListRejectsInvalidInput() {
	testCases := []struct {
		name     string
		page     int
		pageSize int
	}{
		{name: "zero page", page: 0, pageSize: 20},
		{name: "page beyond total", page: 66, pageSize: 20},
		{name: "zero page size", page: 1, pageSize: 0},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := s.service.FetchList(s.ctx, tc.page, tc.pageSize).Wait()
			s.Error(err)

			snapshot := s.service.Snapshot()
			s.False(snapshot.Loading)
			s.NotEmpty(snapshot.LastError)
			s.Equal(1, snapshot.CurrentPage)
		})
	}
	s.client.AssertNotCalled(s.T(), "ListItems", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestFetchByID() {
	s.client.On("GetDetail", s.ctx, "1").Return(detail(1, "bulbasaur"), nil)
	s.client.On("GetSpecies", s.ctx, 1).Return(species(1), nil)

	s.Require().NoError(s.service.FetchByID(s.ctx, 1).Wait())

	snapshot := s.service.Snapshot()
	selected, ok := snapshot.Selected.Get()
	s.Require().True(ok)
	s.Equal(1, selected.ID)
	s.True(selected.FlavorTextEntries.IsPresent())
	text, ok := selected.FlavorText("en")
	s.True(ok)
	s.Equal("A strange seed", text)
	s.False(snapshot.Loading)
	s.Equal([]string{"DetailRequested", "DetailFulfilled"}, s.eventTypes())
}

func (s *ServiceTestSuite) TestFetchByIDWithoutSpecies() {
	s.client.On("GetDetail", s.ctx, "1").Return(detail(1, "bulbasaur"), nil)
	s.client.On("GetSpecies", s.ctx, 1).Return(nil, notFound("pokemon-species/1"))

	s.Require().NoError(s.service.FetchByID(s.ctx, 1).Wait())

	snapshot := s.service.Snapshot()
	selected, ok := snapshot.Selected.Get()
	s.Require().True(ok)
	s.Equal(1, selected.ID)
	s.Equal("bulbasaur", selected.Name)
	s.Equal([]string{"grass", "poison"}, selected.Types)
	s.Len(selected.Stats, 1)
	s.Len(selected.Abilities, 2)
	s.False(selected.FlavorTextEntries.IsPresent())
	s.False(snapshot.HasError())
}

func (s *ServiceTestSuite) TestFetchByIDFailureKeepsSelection() {
	s.client.On("GetDetail", s.ctx, "4").Return(detail(4, "charmander"), nil)
	s.client.On("GetSpecies", s.ctx, 4).Return(species(4), nil)
	s.Require().NoError(s.service.FetchByID(s.ctx, 4).Wait())

	s.client.On("GetDetail", s.ctx, "9999").Return(nil, notFound("pokemon/9999"))
	s.Require().Error(s.service.FetchByID(s.ctx, 9999).Wait())

	snapshot := s.service.Snapshot()
	selected, ok := snapshot.Selected.Get()
	s.Require().True(ok)
	s.Equal(4, selected.ID)
	s.Contains(snapshot.LastError, "404")
}

func (s *ServiceTestSuite) TestFetchByIDRejectsInvalidID() {
	s.Error(s.service.FetchByID(s.ctx, 0).Wait())
	s.NotEmpty(s.service.Snapshot().LastError)
	s.client.AssertNotCalled(s.T(), "GetDetail", mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestSearchByName() {
	s.client.On("GetDetail", s.ctx, "pikachu").Return(detail(25, "pikachu"), nil)
	s.client.On("GetSpecies", s.ctx, 25).Return(species(25), nil)

	s.Require().NoError(s.service.SearchByName(s.ctx, "  PikaChu ").Wait())

	snapshot := s.service.Snapshot()
	selected, ok := snapshot.Selected.Get()
	s.Require().True(ok)
	s.Equal(strings.ToLower("PikaChu"), strings.ToLower(selected.Name))
	s.Equal("pikachu", snapshot.SearchQuery)
	s.False(snapshot.HasError())
}

func (s *ServiceTestSuite) TestSearchByNameEnrichmentIsBestEffort() {
	s.client.On("GetDetail", s.ctx, "pikachu").Return(detail(25, "pikachu"), nil)
	s.client.On("GetSpecies", s.ctx, 25).Return(nil, &client.TransportError{URL: "x", Err: context.DeadlineExceeded})

	s.Require().NoError(s.service.SearchByName(s.ctx, "pikachu").Wait())

	selected, ok := s.service.Snapshot().Selected.Get()
	s.Require().True(ok)
	s.False(selected.FlavorTextEntries.IsPresent())
}

func (s *ServiceTestSuite) TestSearchByNameMissFallsBackToFilter() {
	s.client.On("ListItems", s.ctx, 20, 0).Return(catalogPage(0, "bulbasaur", "ivysaur", "venusaur", "charmander"), nil)
	s.Require().NoError(s.service.FetchList(s.ctx, 1, 20).Wait())

	s.client.On("GetDetail", s.ctx, "bulbasaur").Return(detail(1, "bulbasaur"), nil)
	s.client.On("GetSpecies", s.ctx, 1).Return(species(1), nil)
	s.Require().NoError(s.service.SearchByName(s.ctx, "Bulbasaur").Wait())
	s.Require().True(s.service.Snapshot().Selected.IsPresent())

	s.client.On("GetDetail", s.ctx, "saur").Return(nil, notFound("pokemon/saur"))
	err := s.service.SearchByName(s.ctx, "SAUR").Wait()
	s.Require().Error(err)
	s.True(errors.Is(err, client.ErrNotFound))

	snapshot := s.service.Snapshot()
	s.False(snapshot.Selected.IsPresent(), "failed search must not show stale detail")
	s.NotEmpty(snapshot.LastError)
	s.False(snapshot.Loading)

	display := s.service.DisplayList(snapshot, "SAUR")
	s.Require().Len(display, 3)
	s.Equal("bulbasaur", display[0].Name)
	s.Equal("venusaur", display[2].Name)

	s.Empty(s.service.DisplayList(snapshot, "pikachu"))
}

func (s *ServiceTestSuite) TestSearchByNameEmptyQueryClearsSelection() {
	s.client.On("GetDetail", s.ctx, "1").Return(detail(1, "bulbasaur"), nil)
	s.client.On("GetSpecies", s.ctx, 1).Return(species(1), nil)
	s.Require().NoError(s.service.FetchByID(s.ctx, 1).Wait())

	s.NoError(s.service.SearchByName(s.ctx, "   ").Wait())

	snapshot := s.service.Snapshot()
	s.False(snapshot.Selected.IsPresent())
	s.Empty(snapshot.SearchQuery)
	s.False(snapshot.Loading)
}

func (s *ServiceTestSuite) TestLoadMoreAppends() {
	s.client.On("ListItems", s.ctx, 2, 0).Return(catalogPage(0, "bulbasaur", "ivysaur"), nil)
	s.Require().NoError(s.service.FetchList(s.ctx, 1, 2).Wait())

	s.client.On("ListItems", s.ctx, 2, 2).Return(catalogPage(2, "venusaur", "charmander"), nil)
	s.Require().NoError(s.service.LoadMore(s.ctx, 2).Wait())

	snapshot := s.service.Snapshot()
	s.Len(snapshot.Items, 4)
	s.Equal("charmander", snapshot.Items[3].Name)
	s.Equal(1, snapshot.CurrentPage)
}

func (s *ServiceTestSuite) TestGoToPageClampsAndFetches() {
	s.client.On("ListItems", s.ctx, 20, 1280).Return(catalogPage(1280, "last"), nil)

	s.Require().NoError(s.service.GoToPage(s.ctx, 500).Wait())

	snapshot := s.service.Snapshot()
	s.Equal(65, snapshot.CurrentPage)
	s.Equal(65, snapshot.TotalPages)
	s.Len(snapshot.Items, 1)
}

func (s *ServiceTestSuite) TestSetPageClamps() {
	s.client.On("ListItems", s.ctx, 20, 0).Return(catalogPage(0, "bulbasaur"), nil)
	s.Require().NoError(s.service.FetchList(s.ctx, 1, 20).Wait())

	s.Equal(65, s.service.SetPage(100))
	s.Equal(1, s.service.SetPage(-2))
	s.Equal(10, s.service.SetPage(10))
	s.Equal(11, s.service.NextPage())
	s.Equal(10, s.service.PreviousPage())
}

func (s *ServiceTestSuite) TestSynchronousActions() {
	s.client.On("ListItems", s.ctx, 20, 0).Return(catalogPage(0, "bulbasaur"), nil)
	s.Require().NoError(s.service.FetchList(s.ctx, 1, 20).Wait())
	s.client.On("GetDetail", s.ctx, "nope").Return(nil, notFound("pokemon/nope"))
	s.Require().Error(s.service.SearchByName(s.ctx, "nope").Wait())

	s.service.ClearError()
	s.False(s.service.Snapshot().HasError())

	s.service.ClearSelected()
	first := s.service.Snapshot()
	s.service.ClearSelected()
	s.Equal(first, s.service.Snapshot())

	s.service.SetSearchQuery("  bulba ")
	s.Equal("bulba", s.service.Snapshot().SearchQuery)

	s.service.ResetList()
	snapshot := s.service.Snapshot()
	s.Empty(snapshot.Items)
	s.Equal(1, snapshot.CurrentPage)
}

func (s *ServiceTestSuite) TestOverlappingSearchesLastSettlementWins() {
	release := make(chan time.Time)

	s.client.On("GetDetail", s.ctx, "bulbasaur").
		WaitUntil(release).
		Return(detail(1, "bulbasaur"), nil)
	s.client.On("GetDetail", s.ctx, "pikachu").Return(detail(25, "pikachu"), nil)
	s.client.On("GetSpecies", s.ctx, mock.Anything).Return(nil, notFound("pokemon-species"))

	slow := s.service.SearchByName(s.ctx, "bulbasaur")
	s.Require().NoError(s.service.SearchByName(s.ctx, "pikachu").Wait())
	s.True(s.service.Snapshot().Loading, "first search still outstanding")

	close(release)
	s.Require().NoError(slow.Wait())

	snapshot := s.service.Snapshot()
	selected, ok := snapshot.Selected.Get()
	s.Require().True(ok)
	s.Equal("bulbasaur", selected.Name)
	s.False(snapshot.Loading)
}

func (s *ServiceTestSuite) TestLoadingNeverObservedWithoutOutstandingOperation() {
	s.client.On("ListItems", s.ctx, 20, 0).Return(catalogPage(0, "bulbasaur"), nil)
	s.client.On("GetDetail", s.ctx, "1").Return(detail(1, "bulbasaur"), nil)
	s.client.On("GetSpecies", s.ctx, 1).Return(species(1), nil)

	list := s.service.FetchList(s.ctx, 1, 20)
	byID := s.service.FetchByID(s.ctx, 1)
	s.Require().NoError(list.Wait())
	s.Require().NoError(byID.Wait())

	for _, c := range s.recorded() {
		s.Equal(c.State.Inflight() > 0, c.State.Loading, c.Event.EventType())
	}
	s.False(s.service.Snapshot().Loading)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
