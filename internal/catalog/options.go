package catalog

// FilterOptions is everything a collection page needs to render its filter
// and sort controls.
type FilterOptions struct {
	Collections  []Slug        `json:"collections"`
	Facets       []Facet       `json:"facets"`
	PriceBuckets []PriceBucket `json:"price_buckets"`
	Sorts        []SortSpec    `json:"sorts"`
	DefaultSort  string        `json:"default_sort"`
}

func Options() FilterOptions {
	return FilterOptions{
		Collections:  ValidSlugs(),
		Facets:       Facets(),
		PriceBuckets: PriceBuckets(),
		Sorts:        SortSpecs(),
		DefaultSort:  DefaultSort.Key,
	}
}
