package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is the catalog entry shared by all of its color variants.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Model       string           `gorm:"column:model;not null"`
	Type        string           `gorm:"column:type;not null"`
	Description string           `gorm:"column:description;not null;default:''"`
	Collection  string           `gorm:"column:collection;not null"`
	BaseSKU     string           `gorm:"column:base_sku;not null"`
	Sizes       pq.StringArray   `gorm:"column:sizes;type:text[]"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }

// ProductVariant is one color of a product. It is the unit listed on
// collection pages.
type ProductVariant struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	ProductID         uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Product           *Product        `gorm:"foreignKey:ProductID"`
	Slug              string          `gorm:"column:slug;not null"`
	Color             string          `gorm:"column:color;not null"`
	ColorDisplay      *string         `gorm:"column:color_display"`
	PriceCents        int64           `gorm:"column:price_cents;not null"`
	DiscountPercent   int             `gorm:"column:discount_percent;not null;default:0"`
	CurrentPriceCents int64           `gorm:"column:current_price_cents;not null"`
	Position          int             `gorm:"column:position;not null;default:0"`
	Inventory         []InventoryItem `gorm:"foreignKey:VariantID"`
	Media             []VariantMedia  `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (ProductVariant) TableName() string { return "product_variants" }
