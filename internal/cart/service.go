package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

type store interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(userID string) string
}

type skuLookup interface {
	LookupSKU(ctx context.Context, sku string) (*product.SKUDetails, error)
}

// Service exposes the shopper cart.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, sku string) (*Cart, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type Config struct {
	TTL         time.Duration
	MaxQuantity int
}

type service struct {
	store    store
	products skuLookup
	cfg      Config
	now      func() time.Time
}

// NewService builds a cart service backed by redis.
func NewService(store store, products skuLookup, cfg Config) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("sku lookup required")
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &service{store: store, products: products, cfg: cfg, now: time.Now}, nil
}

// Get returns the user's cart; a missing cart is empty.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	raw, ok, err := s.store.Lookup(ctx, s.store.CartKey(userID.String()))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if !ok {
		return &Cart{UserID: userID, Items: []Item{}}, nil
	}
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode cart")
	}
	if cart.Items == nil {
		cart.Items = []Item{}
	}
	cart.UserID = userID
	return &cart, nil
}

// AddItem adds quantity units of a SKU. Adding a SKU already in the cart
// increments its quantity; the total is bounded by stock.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*Cart, error) {
	sku := strings.ToUpper(strings.TrimSpace(input.SKU))
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	details, err := s.products.LookupSKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx := cart.find(details.SKU)
	quantity := input.Quantity
	if idx >= 0 {
		quantity += cart.Items[idx].Quantity
	}
	if s.cfg.MaxQuantity > 0 && quantity > s.cfg.MaxQuantity {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "at most %d units of a sku per cart", s.cfg.MaxQuantity).
			WithDetails(map[string]any{"sku": details.SKU, "max_quantity": s.cfg.MaxQuantity})
	}
	if quantity > details.Stock {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock").
			WithDetails(map[string]any{"sku": details.SKU, "available": details.Stock, "requested": quantity})
	}

	item := Item{
		SKU:        details.SKU,
		ProductID:  details.ProductID,
		VariantID:  details.VariantID,
		Size:       details.Size,
		Model:      details.Model,
		Type:       details.Type,
		Color:      details.Color,
		Slug:       details.Slug,
		Image:      details.Image,
		PriceCents: details.PriceCents,
		Quantity:   quantity,
	}
	if idx >= 0 {
		cart.Items[idx] = item
	} else {
		cart.Items = append(cart.Items, item)
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, sku string) (*Cart, error) {
	cart, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := cart.find(strings.ToUpper(strings.TrimSpace(sku)))
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sku not in cart")
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	if len(cart.Items) == 0 {
		if err := s.Delete(ctx, userID); err != nil {
			return nil, err
		}
		cart.recalculate()
		return cart, nil
	}
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.Del(ctx, s.store.CartKey(userID.String())); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart")
	}
	return nil
}

func (s *service) save(ctx context.Context, cart *Cart) error {
	cart.recalculate()
	cart.UpdatedAt = s.now().UTC()
	payload, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.store.Set(ctx, s.store.CartKey(cart.UserID.String()), string(payload), s.cfg.TTL); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}
