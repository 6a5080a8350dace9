package catalog

import "fmt"

// PriceBucket is a closed-open price interval in cents. MaxCents of zero
// means unbounded.
type PriceBucket struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	MinCents int64  `json:"min_cents"`
	MaxCents int64  `json:"max_cents,omitempty"`
}

var priceBuckets = []PriceBucket{
	{Key: "under-25", Label: "Under $25", MinCents: 0, MaxCents: 2500},
	{Key: "25-50", Label: "$25 - $50", MinCents: 2500, MaxCents: 5000},
	{Key: "50-100", Label: "$50 - $100", MinCents: 5000, MaxCents: 10000},
	{Key: "100-plus", Label: "$100 & up", MinCents: 10000},
}

// PriceBuckets returns the fixed buckets in ascending order.
func PriceBuckets() []PriceBucket {
	out := make([]PriceBucket, len(priceBuckets))
	copy(out, priceBuckets)
	return out
}

// Contains reports whether cents falls in [MinCents, MaxCents).
func (b PriceBucket) Contains(cents int64) bool {
	if cents < b.MinCents {
		return false
	}
	return b.MaxCents == 0 || cents < b.MaxCents
}

// BucketFor returns the bucket key for a price.
func BucketFor(cents int64) string {
	for _, b := range priceBuckets {
		if b.Contains(cents) {
			return b.Key
		}
	}
	return ""
}

// ParsePriceBucket validates a bucket key.
func ParsePriceBucket(key string) (PriceBucket, error) {
	for _, b := range priceBuckets {
		if b.Key == key {
			return b, nil
		}
	}
	return PriceBucket{}, fmt.Errorf("invalid price bucket %q", key)
}
