package enums

import "testing"

func TestParseSize(t *testing.T) {
	got, err := ParseSize(" XL ")
	if err != nil || got != SizeXL {
		t.Fatalf("expected xl, got %q err=%v", got, err)
	}
	if _, err := ParseSize("xs"); err == nil {
		t.Fatal("expected error for unknown size")
	}
}

func TestSizeSKUCodes(t *testing.T) {
	want := map[Size]string{SizeSmall: "sm", SizeMedium: "md", SizeLarge: "lg", SizeXL: "xl", SizeXXL: "xx"}
	for size, code := range want {
		if size.SKUCode() != code {
			t.Fatalf("size %s: expected %s got %s", size, code, size.SKUCode())
		}
	}
	if SizeXXL.Rank() <= SizeSmall.Rank() || Size("xs").Rank() != len(Sizes()) {
		t.Fatal("unexpected rank ordering")
	}
}

func TestShippingOptionPrices(t *testing.T) {
	if ShippingOptionStandard.PriceCents() != 0 || ShippingOptionExpress.PriceCents() != 1500 {
		t.Fatal("unexpected shipping prices")
	}
	if _, err := ParseShippingOption("overnight"); err == nil {
		t.Fatal("expected error for unknown option")
	}
}

func TestCheckoutStepProgression(t *testing.T) {
	step := CheckoutStepInformation
	var visited []CheckoutStep
	for {
		visited = append(visited, step)
		next, ok := step.Next()
		if !ok {
			break
		}
		step = next
	}
	if len(visited) != 3 || visited[2] != CheckoutStepPayment {
		t.Fatalf("unexpected progression %v", visited)
	}
	if CheckoutStep("review").IsValid() {
		t.Fatal("unknown step should be invalid")
	}
}
