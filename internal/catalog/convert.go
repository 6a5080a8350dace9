package catalog

import (
	"sort"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// FromModel builds the listing view of a stored variant. The variant must
// carry its Product, Inventory and Media associations.
func FromModel(v models.ProductVariant, numberOfVariants int) ProductVariant {
	out := ProductVariant{
		ProductID:         v.ProductID,
		VariantID:         v.ID,
		Slug:              v.Slug,
		Color:             v.Color,
		ActualPriceCents:  v.PriceCents,
		CurrentPriceCents: v.CurrentPriceCents,
		DiscountPercent:   v.DiscountPercent,
		NumberOfVariants:  numberOfVariants,
		CreatedAt:         v.CreatedAt,
		SKUs:              make([]SKU, 0, len(v.Inventory)),
		Media:             make([]MediaItem, 0, len(v.Media)),
	}
	if v.Product != nil {
		out.Model = v.Product.Model
		out.Type = v.Product.Type
	}
	if v.ColorDisplay != nil {
		out.ColorDisplay = *v.ColorDisplay
	}
	for _, item := range v.Inventory {
		out.SKUs = append(out.SKUs, SKU{ID: item.SKU, Size: enums.Size(item.Size), Stock: item.Stock})
	}
	SortSKUs(out.SKUs)
	out.SoldOut = IsSoldOut(out.SKUs)

	media := append([]models.VariantMedia(nil), v.Media...)
	sort.SliceStable(media, func(i, j int) bool { return media[i].Position < media[j].Position })
	for _, m := range media {
		out.Media = append(out.Media, MediaItem{ObjectID: m.ObjectID, Name: m.Name, Src: m.Src, Alt: m.Alt})
	}
	return out
}
