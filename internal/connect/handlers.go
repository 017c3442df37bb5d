package connect

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"

	"github.com/damilsoft/payment-service/internal/common"
)

// Handler exposes the Connect onboarding and member checkout endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
	Logger   zerolog.Logger
}

type accountResp struct {
	StripeAccountID string `json:"stripeAccountId"`
	Email           string `json:"email,omitempty"`
	ChargesEnabled  bool   `json:"chargesEnabled"`
	DetailsComplete bool   `json:"detailsSubmitted"`
}

type memberSessionResp struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// CreateAccount handles POST /api/v1/connect/accounts.
func (h Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req OnboardingRequest
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
	acct, err := h.Svc.CreateAccount(r.Context(), req)
	if err != nil {
		h.Logger.Error().Err(err).Str("tenant_id", req.TenantID).Msg("connected account creation failed")
		renderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, accountResp{
		StripeAccountID: acct.ID,
		Email:           acct.Email,
		ChargesEnabled:  acct.ChargesEnabled,
		DetailsComplete: acct.DetailsSubmitted,
	})
}

// CreateAccountLink handles POST /api/v1/connect/accounts/{accountID}/link.
func (h Handler) CreateAccountLink(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(chi.URLParam(r, "accountID"))
	if accountID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "account id is required", nil)
		return
	}
	var req AccountLinkRequest
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
	link, err := h.Svc.CreateAccountLink(r.Context(), accountID, req)
	if err != nil {
		h.Logger.Error().Err(err).Str("stripe_account_id", accountID).Msg("account link creation failed")
		renderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, link)
}

// CreateMemberSession handles POST /api/v1/connect/accounts/{accountID}/checkout.
func (h Handler) CreateMemberSession(w http.ResponseWriter, r *http.Request) {
	accountID := strings.TrimSpace(chi.URLParam(r, "accountID"))
	if accountID == "" {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "account id is required", nil)
		return
	}
	var req MemberCheckoutRequest
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
	sess, err := h.Svc.CreateMemberSession(r.Context(), accountID, req)
	if err != nil {
		h.Logger.Error().Err(err).
			Str("stripe_account_id", accountID).
			Str("user_id", req.UserID).
			Msg("member checkout failed")
		renderError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, memberSessionResp{SessionID: sess.ID, URL: sess.URL})
}

func renderError(w http.ResponseWriter, err error) {
	appErr := mapStripeError(err)
	common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
}

// mapStripeError surfaces incomplete-account rejections as caller errors. An
// Express account that has not finished onboarding cannot take payments yet.
func mapStripeError(err error) *common.AppError {
	if errors.Is(err, ErrAccountNotOnboarded) {
		return common.NewAppError("ACCOUNT_NOT_ONBOARDED", "tenant not connected to stripe", http.StatusNotFound, err)
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		if stripeErr.Code == stripe.ErrorCodeAccountInvalid || strings.Contains(stripeErr.Msg, "capabilities") {
			return common.NewAppError("STRIPE_ACCOUNT_INCOMPLETE", "connected account has not completed onboarding", http.StatusBadRequest, err)
		}
		switch stripeErr.Type {
		case stripe.ErrorTypeCard, stripe.ErrorTypeInvalidRequest:
			return common.NewAppError("STRIPE_REJECTED", "stripe rejected the request", http.StatusBadRequest, err)
		default:
			return common.NewAppError("STRIPE_UNAVAILABLE", "stripe could not process the request", http.StatusBadGateway, err)
		}
	}
	return common.NewAppError("CONNECT_FAILED", "connect operation failed", http.StatusInternalServerError, err)
}
