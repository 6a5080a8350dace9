package catalog

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/google/uuid"
)

func variant(color string, priceCents int64, sizes ...enums.Size) ProductVariant {
	skus := make([]SKU, 0, len(sizes))
	for _, size := range sizes {
		skus = append(skus, SKU{ID: "SKU-" + string(size), Size: size, Stock: 1})
	}
	return ProductVariant{
		ProductID:         uuid.New(),
		VariantID:         uuid.New(),
		Model:             "classic",
		Type:              "t-shirt",
		Color:             color,
		ActualPriceCents:  priceCents,
		CurrentPriceCents: priceCents,
		SKUs:              skus,
	}
}

func ids(items []ProductVariant) []uuid.UUID {
	out := make([]uuid.UUID, len(items))
	for i, item := range items {
		out[i] = item.VariantID
	}
	return out
}

func TestApplyBlackScenarioKeepsOrder(t *testing.T) {
	page := []ProductVariant{
		variant("black", 2000, enums.SizeSmall),
		variant("white", 2000, enums.SizeSmall),
		variant("Black", 3000, enums.SizeLarge),
		variant("red", 2000, enums.SizeSmall),
		variant("black", 4000, enums.SizeXL),
	}

	got := Apply(page, FilterConditions{FacetColor: {"black"}})

	want := []uuid.UUID{page[0].VariantID, page[2].VariantID, page[4].VariantID}
	if !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("expected black items in order, got %v", ids(got))
	}
}

func TestApplyEmptyConditionsIsIdentity(t *testing.T) {
	page := []ProductVariant{variant("black", 1000), variant("white", 9000)}
	for _, conds := range []FilterConditions{nil, {}, {FacetColor: nil, FacetSize: {}}} {
		got := Apply(page, conds)
		if !reflect.DeepEqual(got, page) {
			t.Fatalf("expected identity for %v", conds)
		}
	}
}

func TestApplyAndAcrossFacetsOrWithin(t *testing.T) {
	page := []ProductVariant{
		variant("black", 2000, enums.SizeSmall, enums.SizeMedium),
		variant("white", 2000, enums.SizeLarge),
		variant("white", 6000, enums.SizeMedium),
		variant("red", 2400, enums.SizeMedium),
	}
	conds := FilterConditions{
		FacetColor: {"black", "white"},
		FacetSize:  {"m"},
	}

	got := Apply(page, conds)

	want := []uuid.UUID{page[0].VariantID, page[2].VariantID}
	if !reflect.DeepEqual(ids(got), want) {
		t.Fatalf("unexpected result %v", ids(got))
	}

	conds[FacetPrice] = []string{"under-25"}
	got = Apply(page, conds)
	if len(got) != 1 || got[0].VariantID != page[0].VariantID {
		t.Fatalf("expected only the black item under 25, got %v", ids(got))
	}
}

func TestApplyPriceUsesCurrentPrice(t *testing.T) {
	item := variant("black", 3000)
	item.DiscountPercent = 20
	item.CurrentPriceCents = 2400

	if got := Apply([]ProductVariant{item}, FilterConditions{FacetPrice: {"under-25"}}); len(got) != 1 {
		t.Fatal("expected discounted price to fall in under-25")
	}
	if got := Apply([]ProductVariant{item}, FilterConditions{FacetPrice: {"25-50"}}); len(got) != 0 {
		t.Fatal("expected actual price to be ignored")
	}
}

func TestApplyColorMatchesDisplayName(t *testing.T) {
	item := variant("blk", 1000)
	item.ColorDisplay = "Charcoal Black"
	got := Apply([]ProductVariant{item}, FilterConditions{FacetColor: {"charcoal black"}})
	if len(got) != 1 {
		t.Fatal("expected display color to match")
	}
}

func TestApplyNoMatchesReturnsEmpty(t *testing.T) {
	got := Apply([]ProductVariant{variant("black", 1000)}, FilterConditions{FacetType: {"hoodie"}})
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}
}

func TestApplyUnknownFacetExcludesEverything(t *testing.T) {
	got := Apply([]ProductVariant{variant("black", 1000)}, FilterConditions{"material": {"cotton"}})
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %d", len(got))
	}
}

func TestApplyProperties(t *testing.T) {
	colors := []string{"black", "white", "red"}
	sizes := enums.Sizes()
	prices := []int64{999, 2500, 4999, 5000, 12000}
	var page []ProductVariant
	for i := 0; i < 30; i++ {
		page = append(page, variant(colors[i%len(colors)], prices[i%len(prices)], sizes[i%len(sizes)]))
	}
	condSets := []FilterConditions{
		{FacetColor: {"black"}},
		{FacetSize: {"s", "xxl"}, FacetPrice: {"25-50", "100-plus"}},
		{FacetType: {"t-shirt"}, FacetColor: {"red", "white"}},
		{FacetPrice: {"50-100"}, FacetColor: {"black"}, FacetSize: {"l"}},
	}

	for i, conds := range condSets {
		t.Run(fmt.Sprintf("conditions_%d", i), func(t *testing.T) {
			once := Apply(page, conds)
			twice := Apply(once, conds)
			if !reflect.DeepEqual(ids(once), ids(twice)) {
				t.Fatal("expected apply to be idempotent")
			}

			// subset in relative order
			pos := 0
			for _, got := range once {
				for pos < len(page) && page[pos].VariantID != got.VariantID {
					pos++
				}
				if pos == len(page) {
					t.Fatalf("item %s not found in input order", got.VariantID)
				}
				pos++
				for facet, accepted := range conds {
					set := map[string]struct{}{}
					for _, v := range accepted {
						set[v] = struct{}{}
					}
					if !matches(got, facet, set) {
						t.Fatalf("item %s violates facet %s", got.VariantID, facet)
					}
				}
			}
		})
	}
}

func TestFilterConditionsEncodeIsStable(t *testing.T) {
	a := FilterConditions{FacetColor: {"White", "black"}, FacetSize: {"m"}, FacetType: {}}
	b := FilterConditions{FacetSize: {"m"}, FacetColor: {"black", "white"}}
	if a.Encode() != b.Encode() {
		t.Fatalf("expected equal encodings, got %q and %q", a.Encode(), b.Encode())
	}
	clone := a.Clone()
	clone[FacetColor][0] = "red"
	if a[FacetColor][0] != "White" {
		t.Fatal("expected clone not to share backing arrays")
	}
}

func TestBucketFor(t *testing.T) {
	cases := map[int64]string{
		0:     "under-25",
		2499:  "under-25",
		2500:  "25-50",
		4999:  "25-50",
		5000:  "50-100",
		9999:  "50-100",
		10000: "100-plus",
		99999: "100-plus",
		-1:    "",
	}
	for cents, want := range cases {
		if got := BucketFor(cents); got != want {
			t.Fatalf("BucketFor(%d): expected %q got %q", cents, want, got)
		}
	}
	if _, err := ParsePriceBucket("cheap"); err == nil {
		t.Fatal("expected error for unknown bucket")
	}
}

func TestCurrentPrice(t *testing.T) {
	cases := []struct {
		actual   int64
		discount int
		want     int64
	}{
		{2999, 0, 2999},
		{2999, 15, 2549},
		{1999, 50, 1000},
		{4500, 100, 0},
	}
	for _, tc := range cases {
		got, err := CurrentPrice(tc.actual, tc.discount)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Fatalf("CurrentPrice(%d, %d): expected %d got %d", tc.actual, tc.discount, tc.want, got)
		}
	}
	if _, err := CurrentPrice(1000, 101); err == nil {
		t.Fatal("expected discount bound error")
	}
	if FormatPrice(2549) != "25.49" {
		t.Fatalf("unexpected format %s", FormatPrice(2549))
	}
}

func TestValidateRejectsCurrentAboveActual(t *testing.T) {
	item := variant("black", 1000)
	item.CurrentPriceCents = 1200
	if err := item.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
	item.CurrentPriceCents = 800
	if err := item.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !item.Discounted() {
		t.Fatal("expected discounted flag")
	}
}

func TestSoldOutAndSortSKUs(t *testing.T) {
	skus := []SKU{{Size: enums.SizeXL}, {Size: enums.SizeSmall, Stock: 0}, {Size: enums.SizeMedium}}
	if !IsSoldOut(skus) {
		t.Fatal("expected sold out")
	}
	skus[0].Stock = 2
	if IsSoldOut(skus) {
		t.Fatal("expected stock available")
	}
	SortSKUs(skus)
	if skus[0].Size != enums.SizeSmall || skus[2].Size != enums.SizeXL {
		t.Fatalf("unexpected order %v", skus)
	}
}

func TestSwapVariant(t *testing.T) {
	card := variant("black", 2000, enums.SizeSmall)
	card.NumberOfVariants = 2
	sibling := variant("white", 2500, enums.SizeLarge)
	sibling.ProductID = card.ProductID
	sibling.SoldOut = true
	sibling.Media = []MediaItem{{Name: "front.jpg", Src: "https://cdn/front.jpg", Alt: "front"}}

	got, err := SwapVariant(card, []ProductVariant{card, sibling}, sibling.VariantID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Color != "white" || got.CurrentPriceCents != 2500 || !got.SoldOut || len(got.Media) != 1 {
		t.Fatalf("unexpected swapped card %+v", got)
	}
	if got.Model != card.Model || got.NumberOfVariants != 2 {
		t.Fatal("expected product fields to be kept")
	}

	if _, err := SwapVariant(card, nil, uuid.New()); err == nil {
		t.Fatal("expected error for unknown variant")
	}
	other := variant("red", 100)
	if _, err := SwapVariant(card, []ProductVariant{other}, other.VariantID); err == nil {
		t.Fatal("expected error for variant of another product")
	}
}

func TestParseSlug(t *testing.T) {
	got, err := ParseSlug(" T-Shirts ")
	if err != nil || got != SlugTShirts {
		t.Fatalf("expected t-shirts, got %q err=%v", got, err)
	}
	if _, ok := SlugAll.Collection(); ok {
		t.Fatal("expected catch-all slug to have no collection")
	}

	_, err = ParseSlug("socks")
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected Failure, got %T", err)
	}
	if failure.Kind != FailureInvalidSlug || failure.Redirect != DefaultRoute {
		t.Fatalf("unexpected failure %+v", failure)
	}
	if KindOf(err) != FailureInvalidSlug {
		t.Fatal("expected KindOf to report invalid slug")
	}
}

func TestNetworkFailureUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("page 2: %w", NetworkFailure(SlugTShirts, cause))
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if KindOf(err) != FailureNetwork {
		t.Fatal("expected network failure kind")
	}
	if KindOf(cause) != "" {
		t.Fatal("expected empty kind for plain errors")
	}
}

func TestParseSort(t *testing.T) {
	got, err := ParseSort("")
	if err != nil || got != DefaultSort {
		t.Fatalf("expected default sort, got %v err=%v", got, err)
	}
	got, err = ParseSort("PRICE-ASC")
	if err != nil || got != SortPriceAsc {
		t.Fatalf("expected price-asc, got %v err=%v", got, err)
	}
	if _, err := ParseSort("oldest"); err == nil {
		t.Fatal("expected error for unknown sort")
	}
}

func TestOptionsListsControls(t *testing.T) {
	opts := Options()
	if len(opts.Collections) != 4 || opts.Collections[0] != SlugAll {
		t.Fatalf("unexpected collections %v", opts.Collections)
	}
	if !reflect.DeepEqual(opts.Facets, []Facet{FacetSize, FacetColor, FacetPrice, FacetType}) {
		t.Fatalf("unexpected facets %v", opts.Facets)
	}
	if len(opts.PriceBuckets) != 4 || opts.PriceBuckets[3].MaxCents != 0 {
		t.Fatalf("unexpected price buckets %+v", opts.PriceBuckets)
	}
	if len(opts.Sorts) != 3 || opts.DefaultSort != SortNewest.Key {
		t.Fatalf("unexpected sorts %+v default=%s", opts.Sorts, opts.DefaultSort)
	}

	opts.Sorts[0] = SortPriceDesc
	opts.Collections[0] = "socks"
	if Options().Sorts[0] != SortNewest || Options().Collections[0] != SlugAll {
		t.Fatal("expected Options to hand out copies")
	}
}
