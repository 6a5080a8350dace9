package catalog

import (
	"sort"
	"strings"
)

// Facet is a filterable attribute of a variant.
type Facet string

const (
	FacetSize  Facet = "size"
	FacetColor Facet = "color"
	FacetPrice Facet = "price"
	FacetType  Facet = "type"
)

// Facets returns the supported facets in display order.
func Facets() []Facet {
	return []Facet{FacetSize, FacetColor, FacetPrice, FacetType}
}

// FilterConditions maps a facet to its accepted values. A missing or empty
// facet imposes no constraint.
type FilterConditions map[Facet][]string

// IsEmpty reports whether no facet constrains the result.
func (c FilterConditions) IsEmpty() bool {
	for _, values := range c {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy with normalized values.
func (c FilterConditions) Clone() FilterConditions {
	if c == nil {
		return nil
	}
	out := make(FilterConditions, len(c))
	for facet, values := range c {
		cp := make([]string, len(values))
		copy(cp, values)
		out[facet] = cp
	}
	return out
}

// Encode renders the conditions as a stable string, used to compare states.
func (c FilterConditions) Encode() string {
	facets := make([]string, 0, len(c))
	for facet, values := range c {
		if len(values) == 0 {
			continue
		}
		sorted := make([]string, len(values))
		for i, v := range values {
			sorted[i] = normalizeValue(v)
		}
		sort.Strings(sorted)
		facets = append(facets, string(facet)+"="+strings.Join(sorted, ","))
	}
	sort.Strings(facets)
	return strings.Join(facets, ";")
}

// Apply keeps the items that satisfy every non-empty facet in conds. Within
// a facet any accepted value matches. Input order is preserved and items are
// never re-sorted.
func Apply(items []ProductVariant, conds FilterConditions) []ProductVariant {
	if conds.IsEmpty() {
		return items
	}
	sets := make(map[Facet]map[string]struct{}, len(conds))
	for facet, values := range conds {
		if len(values) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[normalizeValue(v)] = struct{}{}
		}
		sets[facet] = set
	}

	out := make([]ProductVariant, 0, len(items))
	for _, item := range items {
		if matchesAll(item, sets) {
			out = append(out, item)
		}
	}
	return out
}

func matchesAll(item ProductVariant, sets map[Facet]map[string]struct{}) bool {
	for facet, accepted := range sets {
		if !matches(item, facet, accepted) {
			return false
		}
	}
	return true
}

func matches(item ProductVariant, facet Facet, accepted map[string]struct{}) bool {
	switch facet {
	case FacetSize:
		for _, size := range item.Sizes() {
			if _, ok := accepted[string(size)]; ok {
				return true
			}
		}
		return false
	case FacetColor:
		if _, ok := accepted[normalizeValue(item.Color)]; ok {
			return true
		}
		if item.ColorDisplay == "" {
			return false
		}
		_, ok := accepted[normalizeValue(item.ColorDisplay)]
		return ok
	case FacetPrice:
		_, ok := accepted[BucketFor(item.CurrentPriceCents)]
		return ok
	case FacetType:
		_, ok := accepted[normalizeValue(item.Type)]
		return ok
	}
	// unknown facets never match so that a typo cannot silently widen results
	return false
}

func normalizeValue(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
