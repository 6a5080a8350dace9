package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// SwapVariant returns card with the color, pricing, media, SKUs and
// sold-out flag of the sibling identified by variantID. Product-level
// fields are kept.
func SwapVariant(card ProductVariant, siblings []ProductVariant, variantID uuid.UUID) (ProductVariant, error) {
	if card.VariantID == variantID {
		return card, nil
	}
	for _, sibling := range siblings {
		if sibling.VariantID != variantID {
			continue
		}
		if sibling.ProductID != card.ProductID {
			return card, fmt.Errorf("variant %s belongs to another product", variantID)
		}
		out := card
		out.VariantID = sibling.VariantID
		out.Slug = sibling.Slug
		out.Color = sibling.Color
		out.ColorDisplay = sibling.ColorDisplay
		out.ActualPriceCents = sibling.ActualPriceCents
		out.CurrentPriceCents = sibling.CurrentPriceCents
		out.DiscountPercent = sibling.DiscountPercent
		out.Media = append([]MediaItem(nil), sibling.Media...)
		out.SKUs = append([]SKU(nil), sibling.SKUs...)
		out.SoldOut = sibling.SoldOut
		return out, nil
	}
	return card, fmt.Errorf("variant %s not found", variantID)
}
