package product

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists products, their variants, media rows and inventory.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product with variants ordered by position, each with
// its inventory and ordered media.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("created_at ASC")
		}).
		Preload("Variants.Inventory").
		Preload("Variants.Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	for i := range product.Variants {
		product.Variants[i].Product = &product
	}
	return &product, nil
}

// CreateProduct inserts the product row only.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

// UpdateProduct saves the product row only.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}

func (r *Repository) CreateVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(variant).Error
}

func (r *Repository) UpdateVariant(ctx context.Context, variant *models.ProductVariant) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(variant).Error
}

// DeleteVariants removes the variants and their media rows.
func (r *Repository) DeleteVariants(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	tx := r.db.WithContext(ctx)
	if err := tx.Where("variant_id IN ?", ids).Delete(&models.VariantMedia{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.ProductVariant{}).Error
}

// ReplaceVariantMedia replaces every media row of the variant.
func (r *Repository) ReplaceVariantMedia(ctx context.Context, variantID uuid.UUID, rows []models.VariantMedia) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("variant_id = ?", variantID).Delete(&models.VariantMedia{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// UpsertInventory writes inventory rows keyed by SKU.
func (r *Repository) UpsertInventory(ctx context.Context, items []models.InventoryItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range items {
		items[i].UpdatedAt = now
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku"}},
			DoUpdates: clause.AssignmentColumns([]string{"product_id", "variant_id", "size", "stock", "updated_at"}),
		}).
		Create(&items).Error
}

// ListInventorySKUs returns every SKU stored for the product.
func (r *Repository) ListInventorySKUs(ctx context.Context, productID uuid.UUID) ([]string, error) {
	var skus []string
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("product_id = ?", productID).
		Order("sku ASC").
		Pluck("sku", &skus).Error; err != nil {
		return nil, err
	}
	return skus, nil
}

// DeleteInventory removes the given SKUs of the product.
func (r *Repository) DeleteInventory(ctx context.Context, productID uuid.UUID, skus []string) error {
	if len(skus) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("product_id = ? AND sku IN ?", productID, skus).
		Delete(&models.InventoryItem{}).Error
}

func (r *Repository) DeleteInventoryByProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.InventoryItem{}).Error
}

// FindSKU loads an inventory row with its variant, the variant's product
// and first image.
func (r *Repository) FindSKU(ctx context.Context, sku string) (*models.InventoryItem, *models.ProductVariant, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "sku = ?", sku).Error; err != nil {
		return nil, nil, err
	}
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Product").
		Preload("Media", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&variant, "id = ?", item.VariantID).Error
	if err != nil {
		return nil, nil, err
	}
	return &item, &variant, nil
}

// SKUOwners maps each stored SKU among skus to its product.
func (r *Repository) SKUOwners(ctx context.Context, skus []string) (map[string]uuid.UUID, error) {
	owners := make(map[string]uuid.UUID, len(skus))
	if len(skus) == 0 {
		return owners, nil
	}
	var rows []models.InventoryItem
	if err := r.db.WithContext(ctx).
		Select("sku", "product_id").
		Where("sku IN ?", skus).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		owners[row.SKU] = row.ProductID
	}
	return owners, nil
}
