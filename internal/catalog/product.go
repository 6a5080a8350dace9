package catalog

import (
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SKU is one size of a variant with its stock count.
type SKU struct {
	ID    string     `json:"sku"`
	Size  enums.Size `json:"size"`
	Stock int        `json:"stock"`
}

// MediaItem is an image of a variant. ObjectID and Name locate the blob.
type MediaItem struct {
	ObjectID uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Src      string    `json:"src"`
	Alt      string    `json:"alt"`
}

// ProductVariant is the sellable unit listed on collection pages.
type ProductVariant struct {
	ProductID         uuid.UUID   `json:"product_id"`
	VariantID         uuid.UUID   `json:"variant_id"`
	Slug              string      `json:"slug"`
	Model             string      `json:"model"`
	Type              string      `json:"type"`
	Color             string      `json:"color"`
	ColorDisplay      string      `json:"color_display,omitempty"`
	ActualPriceCents  int64       `json:"actual_price_cents"`
	CurrentPriceCents int64       `json:"current_price_cents"`
	DiscountPercent   int         `json:"discount_percent"`
	SKUs              []SKU       `json:"skus"`
	SoldOut           bool        `json:"sold_out"`
	Media             []MediaItem `json:"media"`
	NumberOfVariants  int         `json:"number_of_variants"`
	CreatedAt         time.Time   `json:"created_at"`
}

// Discounted reports whether the discount tag should be shown.
func (v ProductVariant) Discounted() bool {
	return v.CurrentPriceCents < v.ActualPriceCents
}

// Sizes returns the sizes this variant is offered in.
func (v ProductVariant) Sizes() []enums.Size {
	out := make([]enums.Size, 0, len(v.SKUs))
	for _, sku := range v.SKUs {
		out = append(out, sku.Size)
	}
	return out
}

// Validate checks the price invariant.
func (v ProductVariant) Validate() error {
	if v.ActualPriceCents < 0 {
		return fmt.Errorf("variant %s: negative price", v.VariantID)
	}
	if v.CurrentPriceCents > v.ActualPriceCents {
		return fmt.Errorf("variant %s: current price %d exceeds actual price %d", v.VariantID, v.CurrentPriceCents, v.ActualPriceCents)
	}
	return nil
}

// CurrentPrice applies a whole-percent discount to a price in cents,
// rounding half away from zero to the cent.
func CurrentPrice(actualCents int64, discountPercent int) (int64, error) {
	if actualCents < 0 {
		return 0, fmt.Errorf("price must not be negative")
	}
	if discountPercent < 0 || discountPercent > 100 {
		return 0, fmt.Errorf("discount must be between 0 and 100")
	}
	factor := decimal.NewFromInt(int64(100 - discountPercent)).Shift(-2)
	return decimal.NewFromInt(actualCents).Mul(factor).Round(0).IntPart(), nil
}

// FormatPrice renders cents as a dollar amount, e.g. "24.99".
func FormatPrice(cents int64) string {
	return decimal.NewFromInt(cents).Shift(-2).StringFixed(2)
}

// IsSoldOut reports whether no SKU has stock left.
func IsSoldOut(skus []SKU) bool {
	for _, sku := range skus {
		if sku.Stock > 0 {
			return false
		}
	}
	return true
}

// SortSKUs orders SKUs by size rank.
func SortSKUs(skus []SKU) {
	sort.SliceStable(skus, func(i, j int) bool {
		return skus[i].Size.Rank() < skus[j].Size.Rank()
	})
}
