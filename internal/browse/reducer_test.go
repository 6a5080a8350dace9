package browse

import (
	"errors"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/google/uuid"
)

func items(colors ...string) []catalog.ProductVariant {
	out := make([]catalog.ProductVariant, 0, len(colors))
	for _, color := range colors {
		out = append(out, catalog.ProductVariant{
			ProductID:         uuid.New(),
			VariantID:         uuid.New(),
			Type:              "t-shirt",
			Color:             color,
			ActualPriceCents:  2000,
			CurrentPriceCents: 2000,
		})
	}
	return out
}

func onlyFetch(t *testing.T, cmds []Command) FetchCommand {
	t.Helper()
	if len(cmds) != 1 {
		t.Fatalf("expected one command, got %d", len(cmds))
	}
	fetch, ok := cmds[0].(FetchCommand)
	if !ok {
		t.Fatalf("expected FetchCommand, got %T", cmds[0])
	}
	return fetch
}

func loaded(t *testing.T, page Page) State {
	t.Helper()
	s, cmds := Reduce(State{Phase: PhaseIdle, PageSize: 12}, Mounted{Slug: "t-shirts"})
	fetch := onlyFetch(t, cmds)
	s, _ = Reduce(s, FetchSucceeded{Generation: fetch.Generation, Page: page})
	return s
}

func TestReduceMountFetchesFirstPage(t *testing.T) {
	s, cmds := Reduce(State{Phase: PhaseIdle, PageSize: 12}, Mounted{Slug: "t-shirts"})
	fetch := onlyFetch(t, cmds)
	if fetch.Append || fetch.Query.Slug != catalog.SlugTShirts || fetch.Query.Sort != catalog.DefaultSort {
		t.Fatalf("unexpected fetch %+v", fetch)
	}
	if fetch.Query.Limit != 12 || fetch.Query.Cursor != "" {
		t.Fatalf("unexpected query %+v", fetch.Query)
	}
	if !s.Loading() || !s.FirstLoad || len(s.Visible) != 0 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestReduceInvalidSlugRedirectsWithoutFetch(t *testing.T) {
	s, cmds := Reduce(State{Phase: PhaseIdle}, Mounted{Slug: "socks"})
	if len(cmds) != 1 {
		t.Fatalf("expected one command, got %d", len(cmds))
	}
	redirect, ok := cmds[0].(RedirectCommand)
	if !ok || redirect.To != catalog.DefaultRoute {
		t.Fatalf("expected redirect to default route, got %+v", cmds[0])
	}
	if catalog.KindOf(s.Err) != catalog.FailureInvalidSlug || s.Loading() {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestReduceBlackScenario(t *testing.T) {
	page := items("black", "white", "black", "red", "black")
	s := loaded(t, Page{Items: page, HasMore: true, NextCursor: "c1"})

	s, cmds := Reduce(s, FilterChanged{Conditions: catalog.FilterConditions{catalog.FacetColor: {"black"}}})
	if len(cmds) != 0 {
		t.Fatal("expected filter change not to fetch")
	}
	if len(s.Visible) != 3 {
		t.Fatalf("expected 3 visible items, got %d", len(s.Visible))
	}
	for i, idx := range []int{0, 2, 4} {
		if s.Visible[i].VariantID != page[idx].VariantID {
			t.Fatalf("unexpected order at %d", i)
		}
	}
	if len(s.Items) != 5 {
		t.Fatal("expected accumulated items to stay unfiltered")
	}
}

func TestReduceSentinelAppendsAndRefilters(t *testing.T) {
	s := loaded(t, Page{Items: items("black", "white"), HasMore: true, NextCursor: "c1"})
	s, _ = Reduce(s, FilterChanged{Conditions: catalog.FilterConditions{catalog.FacetColor: {"black"}}})

	s, cmds := Reduce(s, SentinelVisible{})
	fetch := onlyFetch(t, cmds)
	if !fetch.Append || fetch.Query.Cursor != "c1" || s.Phase != PhaseAppending {
		t.Fatalf("unexpected append fetch %+v phase=%s", fetch, s.Phase)
	}

	// a second trigger while appending is ignored
	if _, cmds := Reduce(s, SentinelVisible{}); len(cmds) != 0 {
		t.Fatal("expected no fetch while one is in flight")
	}

	s, _ = Reduce(s, FetchSucceeded{Generation: fetch.Generation, Append: true, Page: Page{Items: items("black", "red"), HasMore: false}})
	if len(s.Items) != 4 || len(s.Visible) != 2 || s.HasMore {
		t.Fatalf("unexpected state after append: items=%d visible=%d hasMore=%v", len(s.Items), len(s.Visible), s.HasMore)
	}
	if _, cmds := Reduce(s, SentinelVisible{}); len(cmds) != 0 {
		t.Fatal("expected no fetch once hasMore is false")
	}
}

func TestReduceSortChangeResets(t *testing.T) {
	s := loaded(t, Page{Items: items("black", "white"), HasMore: true, NextCursor: "c1"})
	s, _ = Reduce(s, FilterChanged{Conditions: catalog.FilterConditions{catalog.FacetColor: {"black"}}})
	gen := s.Generation

	s, cmds := Reduce(s, SortChanged{Sort: catalog.SortPriceAsc})
	fetch := onlyFetch(t, cmds)
	if fetch.Append || fetch.Query.Sort != catalog.SortPriceAsc || fetch.Query.Cursor != "" {
		t.Fatalf("unexpected fetch %+v", fetch)
	}
	if len(s.Items) != 0 || len(s.Visible) != 0 || !s.Conditions.IsEmpty() {
		t.Fatal("expected items and conditions to reset")
	}
	if s.Generation != gen+1 {
		t.Fatalf("expected generation %d, got %d", gen+1, s.Generation)
	}
}

func TestReduceReselectingActiveSortIsNoop(t *testing.T) {
	s := loaded(t, Page{Items: items("black", "white"), HasMore: true, NextCursor: "c1"})
	s, _ = Reduce(s, SortChanged{Sort: catalog.SortPriceAsc})
	s, _ = Reduce(s, FetchSucceeded{Generation: s.Generation, Page: Page{Items: items("black"), HasMore: true, NextCursor: "c2"}})
	gen := s.Generation

	next, cmds := Reduce(s, SortChanged{Sort: catalog.SortPriceAsc})
	if len(cmds) != 0 {
		t.Fatalf("expected no fetch when re-selecting the active sort, got %d commands", len(cmds))
	}
	if next.Generation != gen || len(next.Items) != 1 || next.Cursor != "c2" || next.Phase != PhaseLoaded {
		t.Fatalf("expected page untouched, got gen=%d items=%d cursor=%q phase=%v", next.Generation, len(next.Items), next.Cursor, next.Phase)
	}
}

func TestReduceFirstLoadGuard(t *testing.T) {
	s, _ := Reduce(State{Phase: PhaseIdle}, Mounted{Slug: "products"})
	s, cmds := Reduce(s, SortChanged{Sort: catalog.DefaultSort})
	if len(cmds) != 0 {
		t.Fatal("expected initial sort event to be suppressed")
	}
	if s.FirstLoad {
		t.Fatal("expected guard to clear")
	}
	if _, cmds := Reduce(s, SortChanged{Sort: catalog.SortPriceDesc}); len(cmds) != 1 {
		t.Fatal("expected later sort change to fetch")
	}
}

func TestReduceDiscardsStaleGeneration(t *testing.T) {
	s, cmds := Reduce(State{Phase: PhaseIdle}, Mounted{Slug: "t-shirts"})
	stale := onlyFetch(t, cmds)

	s, cmds = Reduce(s, SlugChanged{Slug: "accessories"})
	current := onlyFetch(t, cmds)
	if current.Generation == stale.Generation {
		t.Fatal("expected new generation on slug change")
	}

	s, _ = Reduce(s, FetchSucceeded{Generation: stale.Generation, Page: Page{Items: items("black")}})
	if len(s.Items) != 0 || !s.Loading() {
		t.Fatal("expected stale page to be discarded")
	}
	s, _ = Reduce(s, FetchFailed{Generation: stale.Generation, Err: errors.New("late")})
	if s.Err != nil {
		t.Fatal("expected stale failure to be discarded")
	}

	s, _ = Reduce(s, FetchSucceeded{Generation: current.Generation, Page: Page{Items: items("white", "red")}})
	if s.Slug != catalog.SlugAccessories || len(s.Items) != 2 {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestReduceSameSlugNavigationIsNoop(t *testing.T) {
	s := loaded(t, Page{Items: items("black")})
	next, cmds := Reduce(s, SlugChanged{Slug: "t-shirts"})
	if len(cmds) != 0 || next.Generation != s.Generation {
		t.Fatal("expected navigation to the current slug to be ignored")
	}
}

func TestReduceFailureStopsAppends(t *testing.T) {
	s := loaded(t, Page{Items: items("black"), HasMore: true, NextCursor: "c1"})
	s, cmds := Reduce(s, SentinelVisible{})
	fetch := onlyFetch(t, cmds)

	s, _ = Reduce(s, FetchFailed{Generation: fetch.Generation, Err: errors.New("boom")})
	if catalog.KindOf(s.Err) != catalog.FailureNetwork || s.Loading() {
		t.Fatalf("unexpected state %+v", s)
	}
	if len(s.Visible) != 1 {
		t.Fatal("expected loaded items to stay visible")
	}
	if _, cmds := Reduce(s, SentinelVisible{}); len(cmds) != 0 {
		t.Fatal("expected no retry after failure")
	}
}

func TestViewEmptyFlag(t *testing.T) {
	s := loaded(t, Page{Items: items("white")})
	s, _ = Reduce(s, FilterChanged{Conditions: catalog.FilterConditions{catalog.FacetColor: {"black"}}})
	view := s.View()
	if !view.Empty || view.Err != nil || view.IsLoading {
		t.Fatalf("unexpected view %+v", view)
	}
}
