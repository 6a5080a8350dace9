package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem is the stock level of one SKU. The SKU is the primary key so
// rewrites of a product upsert in place.
type InventoryItem struct {
	SKU       string    `gorm:"column:sku;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	VariantID uuid.UUID `gorm:"column:variant_id;type:uuid;not null;index"`
	Size      string    `gorm:"column:size;not null"`
	Stock     int       `gorm:"column:stock;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (InventoryItem) TableName() string { return "inventory_items" }
