package enums

import (
	"fmt"
	"strings"
)

// Size is an apparel size offered by a product.
type Size string

const (
	SizeSmall  Size = "s"
	SizeMedium Size = "m"
	SizeLarge  Size = "l"
	SizeXL     Size = "xl"
	SizeXXL    Size = "xxl"
)

// validSizes is ordered smallest first; editors and SKU lists follow it.
var validSizes = []Size{SizeSmall, SizeMedium, SizeLarge, SizeXL, SizeXXL}

// skuCodes are the two-letter size segments of a SKU.
var skuCodes = map[Size]string{
	SizeSmall:  "sm",
	SizeMedium: "md",
	SizeLarge:  "lg",
	SizeXL:     "xl",
	SizeXXL:    "xx",
}

// Sizes returns every size in display order.
func Sizes() []Size {
	out := make([]Size, len(validSizes))
	copy(out, validSizes)
	return out
}

func (s Size) String() string {
	return string(s)
}

func (s Size) IsValid() bool {
	_, ok := skuCodes[s]
	return ok
}

// SKUCode returns the size segment used when building SKUs.
func (s Size) SKUCode() string {
	return skuCodes[s]
}

// Rank orders sizes for display; unknown sizes sort last.
func (s Size) Rank() int {
	for i, candidate := range validSizes {
		if candidate == s {
			return i
		}
	}
	return len(validSizes)
}

// ParseSize converts raw input into a Size.
func ParseSize(value string) (Size, error) {
	candidate := Size(strings.ToLower(strings.TrimSpace(value)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid size %q", value)
}
