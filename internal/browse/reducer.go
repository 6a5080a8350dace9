package browse

import (
	"github.com/angelmondragon/storefront-backend/internal/catalog"
)

// Action is an input to Reduce.
type Action interface{ isAction() }

type (
	Mounted         struct{ Slug string }
	SlugChanged     struct{ Slug string }
	SortChanged     struct{ Sort catalog.SortSpec }
	FilterChanged   struct{ Conditions catalog.FilterConditions }
	SentinelVisible struct{}
	FetchSucceeded  struct {
		Generation uint64
		Append     bool
		Page       Page
	}
	FetchFailed struct {
		Generation uint64
		Err        error
	}
)

func (Mounted) isAction()         {}
func (SlugChanged) isAction()     {}
func (SortChanged) isAction()     {}
func (FilterChanged) isAction()   {}
func (SentinelVisible) isAction() {}
func (FetchSucceeded) isAction()  {}
func (FetchFailed) isAction()     {}

// Command is a side effect requested by Reduce.
type Command interface{ isCommand() }

// FetchCommand asks for a page. Append is false for page one of a
// generation, which also cancels every fetch of older generations.
type FetchCommand struct {
	Generation uint64
	Query      Query
	Append     bool
}

// RedirectCommand asks the presentation layer to navigate away.
type RedirectCommand struct{ To string }

func (FetchCommand) isCommand()    {}
func (RedirectCommand) isCommand() {}

// Reduce is the pure transition function of the collection page. A sort
// change resets the page and refetches from the first page. Re-selecting
// the active sort, including the initial sort event after mount, is a no-op.
func Reduce(s State, a Action) (State, []Command) {
	switch a := a.(type) {
	case Mounted:
		return load(s, a.Slug)
	case SlugChanged:
		if s.Phase != PhaseIdle && catalog.Slug(a.Slug) == s.Slug {
			return s, nil
		}
		return load(s, a.Slug)
	case SortChanged:
		return changeSort(s, a.Sort)
	case FilterChanged:
		s.Conditions = a.Conditions.Clone()
		s.Visible = catalog.Apply(s.Items, s.Conditions)
		return s, nil
	case SentinelVisible:
		if s.Loading() || !s.HasMore || s.Err != nil || s.Phase != PhaseLoaded {
			return s, nil
		}
		s.Phase = PhaseAppending
		return s, []Command{FetchCommand{Generation: s.Generation, Query: s.query(), Append: true}}
	case FetchSucceeded:
		if a.Generation != s.Generation || !s.Loading() {
			return s, nil
		}
		if a.Append {
			merged := make([]catalog.ProductVariant, 0, len(s.Items)+len(a.Page.Items))
			merged = append(merged, s.Items...)
			s.Items = append(merged, a.Page.Items...)
		} else {
			s.Items = a.Page.Items
		}
		s.HasMore = a.Page.HasMore
		s.Cursor = a.Page.NextCursor
		s.Err = nil
		s.Phase = PhaseLoaded
		s.Visible = catalog.Apply(s.Items, s.Conditions)
		return s, nil
	case FetchFailed:
		if a.Generation != s.Generation || !s.Loading() {
			return s, nil
		}
		s.Err = asFailure(s.Slug, a.Err)
		s.Phase = PhaseFailed
		return s, nil
	}
	return s, nil
}

func load(s State, rawSlug string) (State, []Command) {
	next := State{
		Generation: s.Generation + 1,
		PageSize:   s.PageSize,
		Sort:       catalog.DefaultSort,
	}
	slug, err := catalog.ParseSlug(rawSlug)
	if err != nil {
		next.Phase = PhaseRedirect
		next.Err = err
		return next, []Command{RedirectCommand{To: catalog.DefaultRoute}}
	}
	next.Slug = slug
	next.Phase = PhaseLoading
	next.FirstLoad = true
	return next, []Command{FetchCommand{Generation: next.Generation, Query: next.query()}}
}

func changeSort(s State, spec catalog.SortSpec) (State, []Command) {
	if spec.IsZero() || s.Slug == "" {
		return s, nil
	}
	s.FirstLoad = false
	if spec == s.Sort {
		return s, nil
	}
	s.Generation++
	s.Sort = spec
	s.Items = nil
	s.Visible = nil
	s.Conditions = nil
	s.HasMore = false
	s.Cursor = ""
	s.Err = nil
	s.Phase = PhaseLoading
	return s, []Command{FetchCommand{Generation: s.Generation, Query: s.query()}}
}
