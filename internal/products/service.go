package product

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/media"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Service exposes admin product management and the shopper product page.
type Service interface {
	Create(ctx context.Context, input ProductInput, variants []VariantInput) (*EditorProduct, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*EditorProduct, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*EditorProduct, error)
	GetPublic(ctx context.Context, id, variantID uuid.UUID) (*PublicProduct, error)
	LookupSKU(ctx context.Context, sku string) (*SKUDetails, error)
	Stock(ctx context.Context, sku string) (int, error)
}

type mediaDeleter interface {
	Delete(ctx context.Context, files []media.File) error
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	media    mediaDeleter
	logg     *logger.Logger
}

// NewService constructs a product service instance. Without a media deleter
// removed images are left in storage.
func NewService(repo *Repository, dbClient *db.Client, mediaDeleter mediaDeleter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, dbClient: dbClient, media: mediaDeleter, logg: logg}, nil
}

type normalizedProduct struct {
	model       string
	productType string
	description string
	collection  string
	baseSKU     string
	sizes       []enums.Size
}

type plannedVariant struct {
	variant   models.ProductVariant
	media     []models.VariantMedia
	inventory []models.InventoryItem
}

// Create writes the product, its variants, media rows and inventory in one
// transaction.
func (s *service) Create(ctx context.Context, input ProductInput, variants []VariantInput) (*EditorProduct, error) {
	normalized, err := normalizeProduct(input)
	if err != nil {
		return nil, err
	}
	productID := uuid.New()
	planned, err := planVariants(normalized, productID, variants, nil)
	if err != nil {
		return nil, err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product := &models.Product{ID: productID}
		normalized.applyTo(product)
		if err := txRepo.CreateProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
		}
		return writeVariants(ctx, txRepo, productID, planned, nil)
	}); err != nil {
		return nil, asServiceError(err, "create product")
	}

	return s.Get(ctx, productID)
}

// Update rewrites the product and its variants. SKUs no longer generated and
// SKUs listed in RemovedSKUs are deleted; removed images are deleted from
// storage once the transaction commits.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*EditorProduct, error) {
	normalized, err := normalizeProduct(input.Product)
	if err != nil {
		return nil, err
	}

	var orphaned []media.File
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "product not found", "load product")
		}

		existing := make(map[uuid.UUID]models.ProductVariant, len(current.Variants))
		for _, v := range current.Variants {
			existing[v.ID] = v
		}
		planned, err := planVariants(normalized, id, input.Variants, existing)
		if err != nil {
			return err
		}

		kept := make(map[uuid.UUID]struct{}, len(planned))
		referenced := make(map[uuid.UUID]struct{})
		for _, pv := range planned {
			kept[pv.variant.ID] = struct{}{}
			for _, m := range pv.media {
				referenced[m.ObjectID] = struct{}{}
			}
		}
		var dropped []uuid.UUID
		for _, v := range current.Variants {
			if _, ok := kept[v.ID]; ok {
				continue
			}
			dropped = append(dropped, v.ID)
			for _, m := range v.Media {
				if _, ok := referenced[m.ObjectID]; !ok {
					orphaned = append(orphaned, media.File{ID: m.ObjectID, Name: m.Name, Src: m.Src, Alt: m.Alt})
				}
			}
		}
		if err := txRepo.DeleteVariants(ctx, dropped); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete variants")
		}

		currentSKUs, err := txRepo.ListInventorySKUs(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventory")
		}

		current.Variants = nil
		normalized.applyTo(current)
		if err := txRepo.UpdateProduct(ctx, current); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
		}
		if err := writeVariants(ctx, txRepo, id, planned, existing); err != nil {
			return err
		}

		stale := staleSKUs(planned, currentSKUs, input.RemovedSKUs)
		if err := txRepo.DeleteInventory(ctx, id, stale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete inventory")
		}
		return nil
	}); err != nil {
		return nil, asServiceError(err, "update product")
	}

	s.deleteMedia(ctx, append(append([]media.File(nil), input.RemovedImages...), orphaned...))
	return s.Get(ctx, id)
}

// Delete removes the product with its variants and inventory, then deletes
// every image from storage.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	var files []media.File
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		current, err := txRepo.FindByID(ctx, id)
		if err != nil {
			return notFoundOr(err, "product not found", "load product")
		}
		variantIDs := make([]uuid.UUID, 0, len(current.Variants))
		for _, v := range current.Variants {
			variantIDs = append(variantIDs, v.ID)
			files = append(files, filesFromMedia(v.Media)...)
		}
		if err := txRepo.DeleteInventoryByProduct(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete inventory")
		}
		if err := txRepo.DeleteVariants(ctx, variantIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete variants")
		}
		if err := txRepo.DeleteProduct(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete product")
		}
		return nil
	}); err != nil {
		return asServiceError(err, "delete product")
	}

	s.deleteMedia(ctx, files)
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*EditorProduct, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product not found", "load product")
	}
	return NewEditorProduct(product), nil
}

// GetPublic returns the shopper product page. A zero variantID selects the
// first variant.
func (s *service) GetPublic(ctx context.Context, id, variantID uuid.UUID) (*PublicProduct, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "product not found", "load product")
	}
	if len(product.Variants) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product has no variants")
	}

	cards := make([]catalog.ProductVariant, 0, len(product.Variants))
	for _, v := range product.Variants {
		cards = append(cards, catalog.FromModel(v, len(product.Variants)))
	}
	card := cards[0]
	if variantID != uuid.Nil {
		card, err = catalog.SwapVariant(card, cards, variantID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "variant not found")
		}
	}
	return &PublicProduct{ProductVariant: card, Description: product.Description, Variants: cards}, nil
}

func (s *service) LookupSKU(ctx context.Context, sku string) (*SKUDetails, error) {
	sku = strings.ToUpper(strings.TrimSpace(sku))
	if sku == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sku is required")
	}
	item, variant, err := s.repo.FindSKU(ctx, sku)
	if err != nil {
		return nil, notFoundOr(err, "sku not found", "load sku")
	}
	out := &SKUDetails{
		SKU:        item.SKU,
		ProductID:  item.ProductID,
		VariantID:  item.VariantID,
		Size:       enums.Size(item.Size),
		Stock:      item.Stock,
		Color:      variant.Color,
		Slug:       variant.Slug,
		PriceCents: variant.CurrentPriceCents,
	}
	if variant.ColorDisplay != nil {
		out.Color = *variant.ColorDisplay
	}
	if variant.Product != nil {
		out.Model = variant.Product.Model
		out.Type = variant.Product.Type
	}
	if len(variant.Media) > 0 {
		out.Image = variant.Media[0].Src
	}
	return out, nil
}

// Stock returns the units left for a SKU.
func (s *service) Stock(ctx context.Context, sku string) (int, error) {
	details, err := s.LookupSKU(ctx, sku)
	if err != nil {
		return 0, err
	}
	return details.Stock, nil
}

func (s *service) deleteMedia(ctx context.Context, files []media.File) {
	if len(files) == 0 {
		return
	}
	logCtx := s.logg.WithField(ctx, "files", len(files))
	if s.media == nil {
		s.logg.Warn(logCtx, "media deleter not configured; images left in storage")
		return
	}
	if err := s.media.Delete(ctx, files); err != nil {
		s.logg.Error(logCtx, "failed to delete product images", err)
	}
}

func normalizeProduct(input ProductInput) (normalizedProduct, error) {
	out := normalizedProduct{
		model:       NormalizeText(input.Model),
		productType: NormalizeText(input.Type),
		description: NormalizeText(input.Description),
		collection:  strings.ToLower(strings.TrimSpace(input.Collection)),
		baseSKU:     strings.ToUpper(strings.TrimSpace(input.BaseSKU)),
	}
	if out.model == "" {
		return out, pkgerrors.New(pkgerrors.CodeValidation, "model is required")
	}
	if out.productType == "" {
		return out, pkgerrors.New(pkgerrors.CodeValidation, "type is required")
	}
	if !catalog.IsProductCollection(out.collection) {
		return out, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown collection %q", input.Collection)
	}
	if out.baseSKU == "" || strings.ContainsAny(out.baseSKU, "- \t") {
		return out, pkgerrors.New(pkgerrors.CodeValidation, "base_sku must be a single token without dashes")
	}
	if len(input.Sizes) == 0 {
		return out, pkgerrors.New(pkgerrors.CodeValidation, "at least one size is required")
	}
	seen := make(map[enums.Size]struct{}, len(input.Sizes))
	for _, raw := range input.Sizes {
		size, err := enums.ParseSize(string(raw))
		if err != nil {
			return out, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size")
		}
		if _, dup := seen[size]; dup {
			continue
		}
		seen[size] = struct{}{}
		out.sizes = append(out.sizes, size)
	}
	sort.SliceStable(out.sizes, func(i, j int) bool { return out.sizes[i].Rank() < out.sizes[j].Rank() })
	return out, nil
}

func (n normalizedProduct) applyTo(product *models.Product) {
	product.Model = n.model
	product.Type = n.productType
	product.Description = n.description
	product.Collection = n.collection
	product.BaseSKU = n.baseSKU
	sizes := make(pq.StringArray, 0, len(n.sizes))
	for _, size := range n.sizes {
		sizes = append(sizes, size.String())
	}
	product.Sizes = sizes
}

// planVariants validates the variant inputs and builds the rows to write.
// Inputs carrying an ID must name a variant in existing.
func planVariants(p normalizedProduct, productID uuid.UUID, inputs []VariantInput, existing map[uuid.UUID]models.ProductVariant) ([]plannedVariant, error) {
	if len(inputs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one variant is required")
	}

	slugs := make(map[string]struct{}, len(inputs))
	skuOwners := make(map[string]string)
	ids := make(map[uuid.UUID]struct{}, len(inputs))
	out := make([]plannedVariant, 0, len(inputs))
	for i, in := range inputs {
		color := strings.Join(strings.Fields(in.Color), " ")
		if color == "" {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "variant %d: color is required", i)
		}
		var display *string
		if in.ColorDisplay != nil {
			if trimmed := strings.Join(strings.Fields(*in.ColorDisplay), " "); trimmed != "" {
				display = &trimmed
			}
		}
		current, err := catalog.CurrentPrice(in.PriceCents, in.DiscountPercent)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("variant %s", color))
		}

		id := uuid.New()
		if in.ID != nil && *in.ID != uuid.Nil {
			if _, ok := existing[*in.ID]; !ok {
				return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "variant %s does not belong to this product", *in.ID)
			}
			id = *in.ID
		}
		if _, dup := ids[id]; dup {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "variant %s listed twice", id)
		}
		ids[id] = struct{}{}

		displayColor := ""
		if display != nil {
			displayColor = *display
		}
		slug := VariantSlug(p.productType, p.model, color, displayColor)
		if _, dup := slugs[slug]; dup {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "duplicate variant slug %q", slug).
				WithDetails(map[string]any{"slug": slug})
		}
		slugs[slug] = struct{}{}

		pv := plannedVariant{
			variant: models.ProductVariant{
				ID:                id,
				ProductID:         productID,
				Slug:              slug,
				Color:             color,
				ColorDisplay:      display,
				PriceCents:        in.PriceCents,
				DiscountPercent:   in.DiscountPercent,
				CurrentPriceCents: current,
				Position:          i,
			},
		}
		if prev, ok := existing[id]; ok {
			pv.variant.CreatedAt = prev.CreatedAt
		}

		for _, size := range p.sizes {
			stock := in.Inventory[size]
			if stock < 0 {
				return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "variant %s: stock for size %s must not be negative", color, size)
			}
			sku := BuildSKU(p.baseSKU, color, size)
			if other, dup := skuOwners[sku]; dup {
				return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "colors %q and %q produce the same sku %s", other, color, sku).
					WithDetails(map[string]any{"sku": sku})
			}
			skuOwners[sku] = color
			pv.inventory = append(pv.inventory, models.InventoryItem{
				SKU:       sku,
				ProductID: productID,
				VariantID: id,
				Size:      size.String(),
				Stock:     stock,
			})
		}

		for pos, file := range in.Images {
			if file.ID == uuid.Nil || strings.TrimSpace(file.Name) == "" {
				return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "variant %s: image %d needs an id and name", color, pos)
			}
			pv.media = append(pv.media, models.VariantMedia{
				ID:        uuid.New(),
				VariantID: id,
				ObjectID:  file.ID,
				Name:      file.Name,
				Src:       file.Src,
				Alt:       file.Alt,
				Position:  pos,
			})
		}
		out = append(out, pv)
	}
	return out, nil
}

func writeVariants(ctx context.Context, repo *Repository, productID uuid.UUID, planned []plannedVariant, existing map[uuid.UUID]models.ProductVariant) error {
	var inventory []models.InventoryItem
	for _, pv := range planned {
		inventory = append(inventory, pv.inventory...)
	}
	skus := make([]string, 0, len(inventory))
	for _, item := range inventory {
		skus = append(skus, item.SKU)
	}
	owners, err := repo.SKUOwners(ctx, skus)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load sku owners")
	}
	for sku, owner := range owners {
		if owner != productID {
			return pkgerrors.Newf(pkgerrors.CodeConflict, "sku %s belongs to another product", sku).
				WithDetails(map[string]any{"sku": sku})
		}
	}

	for i := range planned {
		variant := &planned[i].variant
		write := repo.CreateVariant
		if _, ok := existing[variant.ID]; ok {
			write = repo.UpdateVariant
		}
		if err := write(ctx, variant); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Newf(pkgerrors.CodeConflict, "variant slug %q already exists", variant.Slug).
					WithDetails(map[string]any{"slug": variant.Slug})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: write variant")
		}
		if err := repo.ReplaceVariantMedia(ctx, variant.ID, planned[i].media); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace variant media")
		}
	}

	if err := repo.UpsertInventory(ctx, inventory); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert inventory")
	}
	return nil
}

// staleSKUs returns the SKUs to delete: stored ones no longer generated plus
// explicitly removed ones, never a SKU that is still generated.
func staleSKUs(planned []plannedVariant, current, removed []string) []string {
	generated := make(map[string]struct{})
	for _, pv := range planned {
		for _, item := range pv.inventory {
			generated[item.SKU] = struct{}{}
		}
	}
	seen := make(map[string]struct{})
	var out []string
	for _, list := range [][]string{current, removed} {
		for _, sku := range list {
			sku = strings.ToUpper(strings.TrimSpace(sku))
			if sku == "" {
				continue
			}
			if _, ok := generated[sku]; ok {
				continue
			}
			if _, ok := seen[sku]; ok {
				continue
			}
			seen[sku] = struct{}{}
			out = append(out, sku)
		}
	}
	return out
}

func notFoundOr(err error, notFoundMsg, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMsg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

func asServiceError(err error, op string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
