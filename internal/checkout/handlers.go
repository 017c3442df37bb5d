package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"

	"github.com/damilsoft/payment-service/internal/common"
)

// Handler exposes the SaaS checkout endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	Logger   zerolog.Logger
}

type sessionResp struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateSession handles POST /api/v1/payments/checkout.
func (h Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "CHECKOUT_NOT_CONFIGURED", "checkout handler unavailable", nil)
		return
	}
	var req SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_FAILED", err.Error(), nil)
			return
		}
	}
	sess, err := h.Svc.CreateSession(r.Context(), req)
	if err != nil {
		h.Logger.Error().Err(err).Str("tenant_id", req.TenantID).Msg("saas checkout failed")
		appErr := mapStripeError(err)
		common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	common.JSON(w, http.StatusCreated, sessionResp{SessionID: sess.ID, URL: sess.URL})
}

// mapStripeError distinguishes caller-fixable Stripe rejections from
// provider-side failures.
func mapStripeError(err error) *common.AppError {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
			return common.NewAppError("STRIPE_REJECTED", "stripe rejected the checkout request", http.StatusBadRequest, err)
		default:
			return common.NewAppError("STRIPE_UNAVAILABLE", "stripe could not process the request", http.StatusBadGateway, err)
		}
	}
	return common.NewAppError("CHECKOUT_FAILED", "checkout session could not be created", http.StatusInternalServerError, err)
}
