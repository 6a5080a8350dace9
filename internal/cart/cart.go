package cart

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// Item is one SKU in a shopper's cart. Product fields are refreshed from the
// catalog whenever the item is added again.
type Item struct {
	SKU        string     `json:"sku"`
	ProductID  uuid.UUID  `json:"product_id"`
	VariantID  uuid.UUID  `json:"variant_id"`
	Size       enums.Size `json:"size"`
	Model      string     `json:"model"`
	Type       string     `json:"type"`
	Color      string     `json:"color"`
	Slug       string     `json:"slug"`
	Image      string     `json:"image,omitempty"`
	PriceCents int64      `json:"price_cents"`
	Quantity   int        `json:"quantity"`
}

// Cart is the stored cart of one user.
type Cart struct {
	UserID        uuid.UUID `json:"user_id"`
	Items         []Item    `json:"items"`
	Quantity      int       `json:"quantity"`
	SubtotalCents int64     `json:"subtotal_cents"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AddItemInput is the payload of an add-to-cart request.
type AddItemInput struct {
	SKU      string `json:"sku" validate:"required,sku"`
	Quantity int    `json:"quantity" validate:"gte=1"`
}

// IsEmpty reports whether the cart has no items.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) find(sku string) int {
	for i, item := range c.Items {
		if item.SKU == sku {
			return i
		}
	}
	return -1
}

func (c *Cart) recalculate() {
	c.Quantity = 0
	c.SubtotalCents = 0
	for _, item := range c.Items {
		c.Quantity += item.Quantity
		c.SubtotalCents += item.PriceCents * int64(item.Quantity)
	}
}
