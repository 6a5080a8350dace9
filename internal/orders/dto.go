package orders

import (
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

// CheckoutInput is everything collected across the checkout steps.
type CheckoutInput struct {
	Email           string                 `json:"email" validate:"required,email"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	ShippingOption  enums.ShippingOption   `json:"shipping_option" validate:"required,oneof=standard express"`
	PaymentInfo     map[string]any         `json:"payment_info" validate:"required"`
}

// OrderDTO is an order as shown on the account orders page.
type OrderDTO struct {
	ID              uuid.UUID              `json:"id"`
	CreatedBy       uuid.UUID              `json:"created_by"`
	Email           string                 `json:"email"`
	Items           []models.OrderItem     `json:"items"`
	ItemCount       int                    `json:"item_count"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	ShippingOption  enums.ShippingOption   `json:"shipping_option"`
	PaymentInfo     map[string]any         `json:"payment_info,omitempty"`
	SubtotalCents   int64                  `json:"subtotal_cents"`
	ShippingCents   int64                  `json:"shipping_cents"`
	TotalCents      int64                  `json:"total_cents"`
	CreatedAt       time.Time              `json:"created_at"`
}

// StepDTO names one checkout step.
type StepDTO struct {
	Step  enums.CheckoutStep `json:"step"`
	Label string             `json:"label"`
}

// ShippingOptionDTO is a selectable delivery option and its fee.
type ShippingOptionDTO struct {
	Option     enums.ShippingOption `json:"option"`
	Label      string               `json:"label"`
	PriceCents int64                `json:"price_cents"`
}

// CheckoutOptions drives the checkout progression UI.
type CheckoutOptions struct {
	Steps           []StepDTO           `json:"steps"`
	ShippingOptions []ShippingOptionDTO `json:"shipping_options"`
}

var stepLabels = map[enums.CheckoutStep]string{
	enums.CheckoutStepInformation: "Information",
	enums.CheckoutStepShipping:    "Shipping",
	enums.CheckoutStepPayment:     "Payment",
}

var shippingLabels = map[enums.ShippingOption]string{
	enums.ShippingOptionStandard: "Standard",
	enums.ShippingOptionExpress:  "Express",
}

// Options lists the checkout steps in order and the shipping options.
func Options() CheckoutOptions {
	out := CheckoutOptions{}
	for _, step := range enums.CheckoutSteps() {
		out.Steps = append(out.Steps, StepDTO{Step: step, Label: stepLabels[step]})
	}
	for _, option := range []enums.ShippingOption{enums.ShippingOptionStandard, enums.ShippingOptionExpress} {
		out.ShippingOptions = append(out.ShippingOptions, ShippingOptionDTO{
			Option:     option,
			Label:      shippingLabels[option],
			PriceCents: option.PriceCents(),
		})
	}
	return out
}

// NewOrderDTO maps a stored order.
func NewOrderDTO(order *models.Order) OrderDTO {
	dto := OrderDTO{
		ID:              order.ID,
		CreatedBy:       order.CreatedBy,
		Email:           order.Email,
		Items:           append([]models.OrderItem{}, order.Items...),
		ShippingAddress: order.ShippingAddress,
		ShippingOption:  enums.ShippingOption(order.ShippingOption),
		PaymentInfo:     order.PaymentInfo,
		SubtotalCents:   order.SubtotalCents,
		ShippingCents:   order.ShippingCents,
		TotalCents:      order.TotalCents,
		CreatedAt:       order.CreatedAt,
	}
	for _, item := range order.Items {
		dto.ItemCount += item.Quantity
	}
	return dto
}
