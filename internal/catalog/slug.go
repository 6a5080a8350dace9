package catalog

import "strings"

// Slug identifies a collection page.
type Slug string

const (
	SlugAll                Slug = "products"
	SlugTShirts            Slug = "t-shirts"
	SlugHoodiesSweatshirts Slug = "hoodies-sweatshirts"
	SlugAccessories        Slug = "accessories"
)

// DefaultRoute is where navigation lands after an unknown slug.
const DefaultRoute = "/"

var validSlugs = []Slug{SlugAll, SlugTShirts, SlugHoodiesSweatshirts, SlugAccessories}

// ValidSlugs returns every browsable collection.
func ValidSlugs() []Slug {
	out := make([]Slug, len(validSlugs))
	copy(out, validSlugs)
	return out
}

func (s Slug) String() string {
	return string(s)
}

func (s Slug) IsValid() bool {
	for _, candidate := range validSlugs {
		if candidate == s {
			return true
		}
	}
	return false
}

// Collection is the value stored on products for this slug. The catch-all
// slug has none and matches every product.
func (s Slug) Collection() (string, bool) {
	if s == SlugAll || !s.IsValid() {
		return "", false
	}
	return string(s), true
}

// IsProductCollection reports whether value may be stored as a product's
// collection.
func IsProductCollection(value string) bool {
	s := Slug(value)
	return s != SlugAll && s.IsValid()
}

// ParseSlug resolves a navigation path segment. Unknown values fail with
// FailureInvalidSlug before any fetch happens.
func ParseSlug(value string) (Slug, error) {
	candidate := Slug(strings.ToLower(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", &Failure{Kind: FailureInvalidSlug, Slug: value, Redirect: DefaultRoute}
}
