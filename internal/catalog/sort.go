package catalog

import (
	"fmt"
	"strings"
)

type SortField string

const (
	SortFieldCreatedAt SortField = "created_at"
	SortFieldPrice     SortField = "price"
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SortSpec is the remote ordering of a collection. It is never applied
// client-side: changing it means fetching again.
type SortSpec struct {
	Key        string        `json:"key"`
	Field      SortField     `json:"field"`
	Direction  SortDirection `json:"direction"`
	HumanLabel string        `json:"label"`
}

var (
	SortNewest    = SortSpec{Key: "newest", Field: SortFieldCreatedAt, Direction: SortDesc, HumanLabel: "Newest"}
	SortPriceAsc  = SortSpec{Key: "price-asc", Field: SortFieldPrice, Direction: SortAsc, HumanLabel: "Price: Low-High"}
	SortPriceDesc = SortSpec{Key: "price-desc", Field: SortFieldPrice, Direction: SortDesc, HumanLabel: "Price: High-Low"}
)

// DefaultSort is used on first load of a collection.
var DefaultSort = SortNewest

var sortSpecs = []SortSpec{SortNewest, SortPriceAsc, SortPriceDesc}

// SortSpecs lists the selectable orderings.
func SortSpecs() []SortSpec {
	out := make([]SortSpec, len(sortSpecs))
	copy(out, sortSpecs)
	return out
}

func (s SortSpec) String() string {
	return s.Key
}

func (s SortSpec) IsZero() bool {
	return s.Key == ""
}

// ParseSort resolves a sort key; empty input yields DefaultSort.
func ParseSort(value string) (SortSpec, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	if key == "" {
		return DefaultSort, nil
	}
	for _, spec := range sortSpecs {
		if spec.Key == key {
			return spec, nil
		}
	}
	return SortSpec{}, fmt.Errorf("invalid sort %q", value)
}
