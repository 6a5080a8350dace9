package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// checkoutStepRequest carries whatever the shopper has filled in so far;
// only the fields of the step being checked are required.
type checkoutStepRequest struct {
	Email           string                 `json:"email"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	ShippingOption  enums.ShippingOption   `json:"shipping_option"`
	PaymentInfo     map[string]any         `json:"payment_info"`
}

type checkoutStepResponse struct {
	Step     enums.CheckoutStep `json:"step"`
	Next     enums.CheckoutStep `json:"next,omitempty"`
	Complete bool               `json:"complete"`
}

func CheckoutOptions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, orders.Options())
	}
}

// ValidateCheckoutStep checks one step and reports the step to show next.
func ValidateCheckoutStep(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		step := enums.CheckoutStep(strings.ToLower(strings.TrimSpace(chi.URLParam(r, "step"))))
		if !step.IsValid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeNotFound, "unknown checkout step %q", step))
			return
		}

		var payload checkoutStepRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		input := orders.CheckoutInput{
			Email:           payload.Email,
			ShippingAddress: payload.ShippingAddress,
			ShippingOption:  payload.ShippingOption,
			PaymentInfo:     payload.PaymentInfo,
		}
		if err := orders.ValidateStep(step, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, ok := step.Next()
		responses.WriteSuccess(w, checkoutStepResponse{Step: step, Next: next, Complete: !ok})
	}
}
