package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a cart line frozen at checkout.
type OrderItem struct {
	SKU        string    `json:"sku"`
	ProductID  uuid.UUID `json:"product_id"`
	VariantID  uuid.UUID `json:"variant_id"`
	Size       string    `json:"size"`
	Model      string    `json:"model"`
	Type       string    `json:"type"`
	Color      string    `json:"color"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int       `json:"quantity"`
	Slug       string    `json:"slug"`
	Image      string    `json:"image"`
}

type ShippingAddress struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
	Phone      string  `json:"phone,omitempty"`
}

// Order is an immutable record of a completed checkout.
type Order struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CreatedBy       uuid.UUID       `gorm:"column:created_by;type:uuid;not null;index"`
	Email           string          `gorm:"column:email;not null"`
	Items           []OrderItem     `gorm:"column:items;type:jsonb;serializer:json;not null"`
	ShippingAddress ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json;not null"`
	ShippingOption  string          `gorm:"column:shipping_option;not null"`
	PaymentInfo     map[string]any  `gorm:"column:payment_info;type:jsonb;serializer:json"`
	SubtotalCents   int64           `gorm:"column:subtotal_cents;not null"`
	ShippingCents   int64           `gorm:"column:shipping_cents;not null"`
	TotalCents      int64           `gorm:"column:total_cents;not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (Order) TableName() string { return "orders" }
