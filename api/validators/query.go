package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

const (
	maxCursorLen = 512
	maxSortLen   = 32
)

// PageQuery is the keyset paging input shared by list endpoints.
type PageQuery struct {
	Limit  int
	Cursor string
	Sort   string
}

// ParsePageQuery reads limit, cursor and sort. A missing limit yields
// defaultLimit; zero lets the service pick its own page size.
func ParsePageQuery(r *http.Request, defaultLimit int) (PageQuery, error) {
	q := r.URL.Query()
	out := PageQuery{
		Limit:  defaultLimit,
		Cursor: SanitizeString(q.Get("cursor"), maxCursorLen),
		Sort:   strings.ToLower(SanitizeString(q.Get("sort"), maxSortLen)),
	}

	raw := strings.TrimSpace(q.Get("limit"))
	if raw == "" {
		return out, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return PageQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "limit must be numeric").
			WithDetails(map[string]any{"field": "limit"})
	}
	if limit < 1 || limit > pagination.MaxLimit {
		return PageQuery{}, pkgerrors.New(pkgerrors.CodeValidation, "limit out of range").
			WithDetails(map[string]any{"field": "limit", "min": 1, "max": pagination.MaxLimit})
	}
	out.Limit = limit
	return out, nil
}
