package collections

import (
	"context"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PageQuery selects one keyset page of variants. An empty Collection means
// every product.
type PageQuery struct {
	Collection string
	Sort       catalog.SortSpec
	Cursor     *pagination.Cursor
	Limit      int
}

// Repository reads collection pages.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListVariants returns up to q.Limit variants in sort order, starting after
// q.Cursor. Callers pass a buffered limit to detect the next page.
func (r *Repository) ListVariants(ctx context.Context, q PageQuery) ([]models.ProductVariant, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Select("product_variants.*").
		Joins("JOIN products p ON p.id = product_variants.product_id").
		Preload("Product").
		Preload("Inventory").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})

	if q.Collection != "" {
		qb = qb.Where("p.collection = ?", q.Collection)
	}

	switch q.Sort.Field {
	case catalog.SortFieldPrice:
		if q.Sort.Direction == catalog.SortAsc {
			if q.Cursor != nil {
				qb = qb.Where("(product_variants.current_price_cents > ?) OR (product_variants.current_price_cents = ? AND product_variants.id > ?)",
					q.Cursor.PriceCents, q.Cursor.PriceCents, q.Cursor.ID)
			}
			qb = qb.Order("product_variants.current_price_cents ASC").Order("product_variants.id ASC")
		} else {
			if q.Cursor != nil {
				qb = qb.Where("(product_variants.current_price_cents < ?) OR (product_variants.current_price_cents = ? AND product_variants.id < ?)",
					q.Cursor.PriceCents, q.Cursor.PriceCents, q.Cursor.ID)
			}
			qb = qb.Order("product_variants.current_price_cents DESC").Order("product_variants.id DESC")
		}
	default:
		if q.Cursor != nil {
			createdAt := q.Cursor.CreatedAt.UTC()
			qb = qb.Where("(product_variants.created_at < ?) OR (product_variants.created_at = ? AND product_variants.id < ?)",
				createdAt, createdAt, q.Cursor.ID)
		}
		qb = qb.Order("product_variants.created_at DESC").Order("product_variants.id DESC")
	}

	var rows []models.ProductVariant
	if err := qb.Limit(q.Limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CountVariants returns the number of variants per product.
func (r *Repository) CountVariants(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(productIDs))
	if len(productIDs) == 0 {
		return counts, nil
	}
	type countRow struct {
		ProductID uuid.UUID
		Total     int
	}
	var rows []countRow
	err := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Select("product_id, COUNT(*) AS total").
		Where("product_id IN ?", productIDs).
		Group("product_id").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ProductID] = row.Total
	}
	return counts, nil
}
