package enums

import "fmt"

// ShippingOption is the delivery speed chosen at checkout.
type ShippingOption string

const (
	ShippingOptionStandard ShippingOption = "standard"
	ShippingOptionExpress  ShippingOption = "express"
)

var shippingPriceCents = map[ShippingOption]int64{
	ShippingOptionStandard: 0,
	ShippingOptionExpress:  1500,
}

func (s ShippingOption) String() string {
	return string(s)
}

func (s ShippingOption) IsValid() bool {
	_, ok := shippingPriceCents[s]
	return ok
}

// PriceCents is the flat fee charged for the option.
func (s ShippingOption) PriceCents() int64 {
	return shippingPriceCents[s]
}

// ParseShippingOption converts raw input into a ShippingOption.
func ParseShippingOption(value string) (ShippingOption, error) {
	candidate := ShippingOption(value)
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", fmt.Errorf("invalid shipping option %q", value)
}
