package product

import (
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// NormalizeText collapses runs of whitespace, trims and lower-cases.
func NormalizeText(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}

// VariantSlug builds the URL slug of a variant from the normalized product
// type and model plus the display color, falling back to the color.
func VariantSlug(productType, model, color, colorDisplay string) string {
	label := strings.TrimSpace(colorDisplay)
	if label == "" {
		label = strings.TrimSpace(color)
	}
	parts := strings.Fields(strings.Join([]string{productType, model, label}, " "))
	return strings.ToLower(strings.Join(parts, "-"))
}

// ColorCode is the color segment of a SKU: the first letter of the first
// word plus the first two letters of the second word for multi-word colors,
// otherwise the first three letters.
func ColorCode(color string) string {
	words := strings.Fields(color)
	switch len(words) {
	case 0:
		return ""
	case 1:
		return prefix(words[0], 3)
	default:
		return prefix(words[0], 1) + prefix(words[1], 2)
	}
}

// BuildSKU returns BASE-COLOR-SIZE upper-cased.
func BuildSKU(baseSKU, color string, size enums.Size) string {
	return strings.ToUpper(strings.TrimSpace(baseSKU) + "-" + ColorCode(color) + "-" + size.SKUCode())
}

func prefix(value string, n int) string {
	runes := []rune(value)
	if len(runes) < n {
		return value
	}
	return string(runes[:n])
}
