package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/angelmondragon/storefront-backend/pkg/types"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type cartStore interface {
	Get(ctx context.Context, userID uuid.UUID) (*cart.Cart, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

// Service places and reads shopper orders.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*OrderDTO, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*types.CursorPage[OrderDTO], error)
	Get(ctx context.Context, userID, id uuid.UUID) (*OrderDTO, error)
}

type service struct {
	repo     Repository
	carts    cartStore
	validate *validator.Validate
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, carts cartStore, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, carts: carts, validate: validator.New(), logg: logg, now: time.Now}, nil
}

// Create turns the user's cart into an order and clears the cart.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*OrderDTO, error) {
	for _, step := range enums.CheckoutSteps() {
		if err := s.validateStep(step, input); err != nil {
			return nil, err
		}
	}

	current, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
	}

	order := &models.Order{
		ID:              uuid.New(),
		CreatedBy:       userID,
		Email:           strings.ToLower(strings.TrimSpace(input.Email)),
		Items:           make([]models.OrderItem, 0, len(current.Items)),
		ShippingAddress: input.ShippingAddress,
		ShippingOption:  input.ShippingOption.String(),
		PaymentInfo:     input.PaymentInfo,
		ShippingCents:   input.ShippingOption.PriceCents(),
		CreatedAt:       s.now().UTC(),
	}
	for _, item := range current.Items {
		order.Items = append(order.Items, models.OrderItem{
			SKU:        item.SKU,
			ProductID:  item.ProductID,
			VariantID:  item.VariantID,
			Size:       item.Size.String(),
			Model:      item.Model,
			Type:       item.Type,
			Color:      item.Color,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
			Slug:       item.Slug,
			Image:      item.Image,
		})
		order.SubtotalCents += item.PriceCents * int64(item.Quantity)
	}
	order.TotalCents = order.SubtotalCents + order.ShippingCents

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{"order_id": order.ID.String(), "user_id": userID.String()})
	if err := s.carts.Delete(ctx, userID); err != nil {
		s.logg.Error(logCtx, "failed to clear cart after order", err)
	}
	s.logg.Info(logCtx, "order created")

	dto := NewOrderDTO(order)
	return &dto, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*types.CursorPage[OrderDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.ListByUser(ctx, userID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}
	rows, hasMore := pagination.Trim(rows, params.Limit)

	page := &types.CursorPage[OrderDTO]{Items: make([]OrderDTO, 0, len(rows)), HasMore: hasMore}
	for i := range rows {
		page.Items = append(page.Items, NewOrderDTO(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}
	dto := NewOrderDTO(order)
	return &dto, nil
}

// ValidateStep checks the fields a checkout step collects.
func ValidateStep(step enums.CheckoutStep, input CheckoutInput) error {
	return (&service{validate: validator.New()}).validateStep(step, input)
}

func (s *service) validateStep(step enums.CheckoutStep, input CheckoutInput) error {
	switch step {
	case enums.CheckoutStepInformation:
		if err := s.validate.Var(strings.TrimSpace(input.Email), "required,email"); err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required").
				WithDetails(map[string]any{"step": step, "field": "email"})
		}
		if field := missingAddressField(input.ShippingAddress); field != "" {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "shipping address %s is required", field).
				WithDetails(map[string]any{"step": step, "field": "shipping_address." + field})
		}
	case enums.CheckoutStepShipping:
		if !input.ShippingOption.IsValid() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid shipping option %q", input.ShippingOption).
				WithDetails(map[string]any{"step": step, "field": "shipping_option"})
		}
	case enums.CheckoutStepPayment:
		if len(input.PaymentInfo) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "payment info is required").
				WithDetails(map[string]any{"step": step, "field": "payment_info"})
		}
	default:
		return pkgerrors.Newf(pkgerrors.CodeValidation, "unknown checkout step %q", step)
	}
	return nil
}

func missingAddressField(addr models.ShippingAddress) string {
	required := []struct {
		name  string
		value string
	}{
		{"first_name", addr.FirstName},
		{"last_name", addr.LastName},
		{"line1", addr.Line1},
		{"city", addr.City},
		{"state", addr.State},
		{"postal_code", addr.PostalCode},
		{"country", addr.Country},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return field.name
		}
	}
	return ""
}
