package browse

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
)

// Query is one page request against a collection.
type Query struct {
	Slug   catalog.Slug
	Sort   catalog.SortSpec
	Cursor string
	Limit  int
}

// Page is the remote response. NextCursor is opaque to the caller.
type Page struct {
	Items      []catalog.ProductVariant
	HasMore    bool
	NextCursor string
}

// RemoteCollection serves collection pages in the order given by Query.Sort.
type RemoteCollection interface {
	Fetch(ctx context.Context, q Query) (Page, error)
}
