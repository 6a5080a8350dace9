package enums

// CheckoutStep is one stage of the checkout progression.
type CheckoutStep string

const (
	CheckoutStepInformation CheckoutStep = "information"
	CheckoutStepShipping    CheckoutStep = "shipping"
	CheckoutStepPayment     CheckoutStep = "payment"
)

var checkoutSteps = []CheckoutStep{CheckoutStepInformation, CheckoutStepShipping, CheckoutStepPayment}

// CheckoutSteps returns the steps in the order a shopper completes them.
func CheckoutSteps() []CheckoutStep {
	out := make([]CheckoutStep, len(checkoutSteps))
	copy(out, checkoutSteps)
	return out
}

func (c CheckoutStep) String() string {
	return string(c)
}

func (c CheckoutStep) IsValid() bool {
	return c.index() >= 0
}

// Next returns the following step, or false on the last one.
func (c CheckoutStep) Next() (CheckoutStep, bool) {
	i := c.index()
	if i < 0 || i == len(checkoutSteps)-1 {
		return "", false
	}
	return checkoutSteps[i+1], true
}

func (c CheckoutStep) index() int {
	for i, candidate := range checkoutSteps {
		if candidate == c {
			return i
		}
	}
	return -1
}
