package product

import (
	"sort"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/media"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// ProductInput holds the product-level fields shared by create and update.
type ProductInput struct {
	Model       string       `json:"model" validate:"required"`
	Type        string       `json:"type" validate:"required"`
	Description string       `json:"description"`
	Collection  string       `json:"collection" validate:"required,collection"`
	BaseSKU     string       `json:"base_sku" validate:"required,alphanum"`
	Sizes       []enums.Size `json:"sizes" validate:"required,min=1,dive,oneof=s m l xl xxl"`
}

// VariantInput describes one color of the product. ID is set when editing
// an existing variant.
type VariantInput struct {
	ID              *uuid.UUID         `json:"id,omitempty"`
	Color           string             `json:"color" validate:"required"`
	ColorDisplay    *string            `json:"color_display,omitempty"`
	PriceCents      int64              `json:"price_cents" validate:"gte=0"`
	DiscountPercent int                `json:"discount_percent" validate:"gte=0,lte=100"`
	Inventory       map[enums.Size]int `json:"inventory"`
	Images          []media.File       `json:"images"`
}

// UpdateInput replaces a product's fields and variants.
type UpdateInput struct {
	Product       ProductInput
	Variants      []VariantInput
	RemovedSKUs   []string
	RemovedImages []media.File
}

// InventoryLevel is the stock of one SKU as shown in the editor.
type InventoryLevel struct {
	SKU       string     `json:"sku"`
	VariantID uuid.UUID  `json:"variant_id"`
	Size      enums.Size `json:"size"`
	Stock     int        `json:"stock"`
}

// EditorVariant is a variant as the admin editor loads it.
type EditorVariant struct {
	ID                uuid.UUID          `json:"id"`
	Slug              string             `json:"slug"`
	Color             string             `json:"color"`
	ColorDisplay      *string            `json:"color_display,omitempty"`
	PriceCents        int64              `json:"price_cents"`
	DiscountPercent   int                `json:"discount_percent"`
	CurrentPriceCents int64              `json:"current_price_cents"`
	Inventory         map[enums.Size]int `json:"inventory"`
	Images            []media.File       `json:"images"`
}

// EditorProduct is the admin view of a product.
type EditorProduct struct {
	ID                     uuid.UUID           `json:"id"`
	Model                  string              `json:"model"`
	Type                   string              `json:"type"`
	Description            string              `json:"description"`
	Collection             string              `json:"collection"`
	BaseSKU                string              `json:"base_sku"`
	Sizes                  []enums.Size        `json:"sizes"`
	SizesInput             map[enums.Size]bool `json:"sizes_input"`
	Variants               []EditorVariant     `json:"variants"`
	Images                 []media.File        `json:"images"`
	CurrentInventoryLevels []InventoryLevel    `json:"current_inventory_levels"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
}

// PublicProduct is the shopper product page: the selected variant card, the
// description and every sibling color.
type PublicProduct struct {
	catalog.ProductVariant
	Description string                   `json:"description"`
	Variants    []catalog.ProductVariant `json:"variants"`
}

// SKUDetails joins an inventory row with the variant it belongs to.
type SKUDetails struct {
	SKU        string     `json:"sku"`
	ProductID  uuid.UUID  `json:"product_id"`
	VariantID  uuid.UUID  `json:"variant_id"`
	Size       enums.Size `json:"size"`
	Stock      int        `json:"stock"`
	Model      string     `json:"model"`
	Type       string     `json:"type"`
	Color      string     `json:"color"`
	Slug       string     `json:"slug"`
	PriceCents int64      `json:"price_cents"`
	Image      string     `json:"image,omitempty"`
}

// NewEditorProduct builds the editor view from a product loaded with its
// variants, their inventory and media.
func NewEditorProduct(p *models.Product) *EditorProduct {
	out := &EditorProduct{
		ID:                     p.ID,
		Model:                  p.Model,
		Type:                   p.Type,
		Description:            p.Description,
		Collection:             p.Collection,
		BaseSKU:                p.BaseSKU,
		Sizes:                  make([]enums.Size, 0, len(p.Sizes)),
		SizesInput:             make(map[enums.Size]bool, len(enums.Sizes())),
		Variants:               make([]EditorVariant, 0, len(p.Variants)),
		Images:                 []media.File{},
		CurrentInventoryLevels: []InventoryLevel{},
		CreatedAt:              p.CreatedAt,
		UpdatedAt:              p.UpdatedAt,
	}
	for _, size := range enums.Sizes() {
		out.SizesInput[size] = false
	}
	for _, raw := range p.Sizes {
		size := enums.Size(raw)
		out.Sizes = append(out.Sizes, size)
		out.SizesInput[size] = true
	}

	for _, v := range p.Variants {
		ev := EditorVariant{
			ID:                v.ID,
			Slug:              v.Slug,
			Color:             v.Color,
			ColorDisplay:      v.ColorDisplay,
			PriceCents:        v.PriceCents,
			DiscountPercent:   v.DiscountPercent,
			CurrentPriceCents: v.CurrentPriceCents,
			Inventory:         make(map[enums.Size]int, len(v.Inventory)),
			Images:            filesFromMedia(v.Media),
		}
		inventory := append([]models.InventoryItem(nil), v.Inventory...)
		sort.SliceStable(inventory, func(i, j int) bool {
			return enums.Size(inventory[i].Size).Rank() < enums.Size(inventory[j].Size).Rank()
		})
		for _, item := range inventory {
			ev.Inventory[enums.Size(item.Size)] = item.Stock
			out.CurrentInventoryLevels = append(out.CurrentInventoryLevels, InventoryLevel{
				SKU:       item.SKU,
				VariantID: v.ID,
				Size:      enums.Size(item.Size),
				Stock:     item.Stock,
			})
		}
		out.Images = append(out.Images, ev.Images...)
		out.Variants = append(out.Variants, ev)
	}
	return out
}

func filesFromMedia(rows []models.VariantMedia) []media.File {
	out := make([]media.File, 0, len(rows))
	for _, row := range rows {
		out = append(out, media.File{ID: row.ObjectID, Name: row.Name, Src: row.Src, Alt: row.Alt})
	}
	return out
}
