package collections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/google/uuid"
)

// Service serves collection pages to the storefront.
type Service interface {
	FetchPage(ctx context.Context, input FetchInput) (*types.CursorPage[catalog.ProductVariant], error)
}

// FetchInput is the raw request of a collection page.
type FetchInput struct {
	Slug   string
	Sort   string
	Cursor string
	Limit  int
}

type pageReader interface {
	ListVariants(ctx context.Context, q PageQuery) ([]models.ProductVariant, error)
	CountVariants(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type service struct {
	repo     pageReader
	metrics  *metrics.CatalogMetrics
	logg     *logger.Logger
	pageSize int
}

// NewService builds the collection service. pageSize is used when a request
// does not carry a limit.
func NewService(repo pageReader, m *metrics.CatalogMetrics, logg *logger.Logger, pageSize int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("collections repository required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, metrics: m, logg: logg, pageSize: pageSize}, nil
}

func (s *service) FetchPage(ctx context.Context, input FetchInput) (*types.CursorPage[catalog.ProductVariant], error) {
	slug, err := catalog.ParseSlug(input.Slug)
	if err != nil {
		redirect := catalog.DefaultRoute
		var failure *catalog.Failure
		if errors.As(err, &failure) && failure.Redirect != "" {
			redirect = failure.Redirect
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "collection not found").
			WithDetails(map[string]any{"slug": input.Slug, "redirect": redirect})
	}
	sortSpec, err := catalog.ParseSort(input.Sort)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sort").
			WithDetails(map[string]any{"sort": input.Sort})
	}
	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	limit = pagination.NormalizeLimit(limit)
	collection, _ := slug.Collection()

	started := time.Now()
	rows, err := s.repo.ListVariants(ctx, PageQuery{
		Collection: collection,
		Sort:       sortSpec,
		Cursor:     cursor,
		Limit:      pagination.LimitWithBuffer(limit),
	})
	if err != nil {
		s.metrics.IncFailure(slug.String())
		ctx = s.logg.WithFields(ctx, map[string]any{"slug": slug.String(), "sort": sortSpec.Key})
		s.logg.Error(ctx, "collections.fetch_failed", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list collection variants")
	}
	rows, hasMore := pagination.Trim(rows, limit)

	productIDs := make([]uuid.UUID, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ProductID]; ok {
			continue
		}
		seen[row.ProductID] = struct{}{}
		productIDs = append(productIDs, row.ProductID)
	}
	counts, err := s.repo.CountVariants(ctx, productIDs)
	if err != nil {
		s.metrics.IncFailure(slug.String())
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count product variants")
	}

	items := make([]catalog.ProductVariant, 0, len(rows))
	for _, row := range rows {
		items = append(items, catalog.FromModel(row, counts[row.ProductID]))
	}

	page := &types.CursorPage[catalog.ProductVariant]{Items: items, HasMore: hasMore}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt:  last.CreatedAt,
			PriceCents: last.CurrentPriceCents,
			ID:         last.ID,
		})
	}
	s.metrics.ObserveFetch(slug.String(), sortSpec.Key, time.Since(started), len(items))
	return page, nil
}
