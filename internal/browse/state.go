package browse

import (
	"errors"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
)

type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseLoading   Phase = "loading"
	PhaseLoaded    Phase = "loaded"
	PhaseAppending Phase = "appending"
	PhaseFailed    Phase = "failed"
	PhaseRedirect  Phase = "redirect"
)

// State is the whole view state of a collection page.
type State struct {
	Phase      Phase
	Slug       catalog.Slug
	Sort       catalog.SortSpec
	Conditions catalog.FilterConditions

	// Items is every item fetched for Slug and Sort, unfiltered.
	Items   []catalog.ProductVariant
	Visible []catalog.ProductVariant
	HasMore bool
	Cursor  string
	Err     error

	// Generation increases on every reset; results of older fetches are dropped.
	Generation uint64
	// FirstLoad is set by a fresh load and cleared by the first sort event.
	FirstLoad bool
	PageSize  int
}

// Loading reports whether a fetch is in flight.
func (s State) Loading() bool {
	return s.Phase == PhaseLoading || s.Phase == PhaseAppending
}

// View is what the presentation layer renders after each transition.
type View struct {
	Slug      catalog.Slug
	Sort      catalog.SortSpec
	Items     []catalog.ProductVariant
	IsLoading bool
	HasMore   bool
	Err       error
	// Empty marks a loaded page with no matching items, which renders the
	// clear-filters affordance.
	Empty bool
}

func (s State) View() View {
	return View{
		Slug:      s.Slug,
		Sort:      s.Sort,
		Items:     s.Visible,
		IsLoading: s.Loading(),
		HasMore:   s.HasMore,
		Err:       s.Err,
		Empty:     s.Phase == PhaseLoaded && len(s.Visible) == 0,
	}
}

func (s State) lastVisibleID() string {
	if len(s.Visible) == 0 {
		return ""
	}
	return s.Visible[len(s.Visible)-1].VariantID.String()
}

func (s State) query() Query {
	return Query{Slug: s.Slug, Sort: s.Sort, Cursor: s.Cursor, Limit: s.PageSize}
}

func asFailure(slug catalog.Slug, err error) error {
	var f *catalog.Failure
	if errors.As(err, &f) {
		return err
	}
	return catalog.NetworkFailure(slug, err)
}
