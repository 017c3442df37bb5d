// Package checkout creates Stripe checkout sessions for tenants paying their
// platform subscription. The session metadata written here is what the
// webhook pipeline later classifies on.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	dbgen "github.com/damilsoft/payment-service/internal/db/gen"
	"github.com/damilsoft/payment-service/internal/events"
	"github.com/damilsoft/payment-service/internal/obs"
)

// Querier is the slice of generated queries the checkout flow needs.
// Satisfied by *dbgen.Queries.
type Querier interface {
	GetPaymentTenantByTenantID(ctx context.Context, tenantID string) (dbgen.PaymentTenant, error)
	CreatePaymentTenant(ctx context.Context, arg dbgen.CreatePaymentTenantParams) (dbgen.PaymentTenant, error)
	SetPaymentTenantBilling(ctx context.Context, arg dbgen.SetPaymentTenantBillingParams) (dbgen.PaymentTenant, error)
}

// SessionRequest describes a tenant's subscription purchase.
type SessionRequest struct {
	TenantID           string `json:"tenantId" validate:"required"`
	TenantName         string `json:"tenantName" validate:"required"`
	BusinessEmail      string `json:"businessEmail" validate:"required,email"`
	Plan               string `json:"plan" validate:"required"`
	AbonnementDuration string `json:"abonnementDuration" validate:"required"`
	Currency           string `json:"currency" validate:"required,len=3"`
	Amount             int64  `json:"amount" validate:"required,gt=0"`
}

// Service coordinates tenant mirror rows, Stripe customers and checkout
// sessions for the SaaS flow.
type Service struct {
	Q          Querier
	Gateway    StripeGateway
	SuccessURL string
	CancelURL  string
	Bus        *events.Bus
	Logger     zerolog.Logger
}

// CreateSession gets or creates the tenant's mirror row and Stripe customer,
// then opens a hosted checkout session stamped with the SaaS metadata.
func (s *Service) CreateSession(ctx context.Context, req SessionRequest) (*stripe.CheckoutSession, error) {
	if s == nil || s.Q == nil || s.Gateway == nil {
		return nil, errors.New("checkout service not configured")
	}
	ctx, span := otel.Tracer("checkout.Service").Start(ctx, "CheckoutService.CreateSession")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", req.TenantID))

	result := "error"
	defer func() {
		if obs.CheckoutSessionTotal != nil {
			obs.CheckoutSessionTotal.WithLabelValues("saas", result).Inc()
		}
	}()

	tenant, err := s.Q.GetPaymentTenantByTenantID(ctx, req.TenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		tenant, err = s.Q.CreatePaymentTenant(ctx, dbgen.CreatePaymentTenantParams{
			TenantID:      req.TenantID,
			Name:          pgtype.Text{String: req.TenantName, Valid: true},
			BusinessEmail: pgtype.Text{String: req.BusinessEmail, Valid: true},
			Status:        dbgen.SubscriptionStatusINACTIVE,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("checkout: load tenant %s: %w", req.TenantID, err)
	}

	customerID := tenant.StripeCustomerID.String
	if !tenant.StripeCustomerID.Valid || customerID == "" {
		cust, err := s.Gateway.CreateCustomer(&stripe.CustomerParams{
			Email: stripe.String(req.BusinessEmail),
			Name:  stripe.String(req.TenantName),
			Metadata: map[string]string{
				"tenantId": req.TenantID,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("checkout: create stripe customer: %w", err)
		}
		customerID = cust.ID
	}

	// Keep the mirror's billing identity current on every checkout attempt.
	if _, err := s.Q.SetPaymentTenantBilling(ctx, dbgen.SetPaymentTenantBillingParams{
		TenantID:         req.TenantID,
		Name:             pgtype.Text{String: req.TenantName, Valid: true},
		BusinessEmail:    pgtype.Text{String: req.BusinessEmail, Valid: true},
		StripeCustomerID: pgtype.Text{String: customerID, Valid: true},
	}); err != nil {
		return nil, fmt.Errorf("checkout: update tenant billing: %w", err)
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		UIMode:     stripe.String(string(stripe.CheckoutSessionUIModeHosted)),
		SuccessURL: stripe.String(s.SuccessURL),
		CancelURL:  stripe.String(s.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Plan + " - " + req.AbonnementDuration),
					},
				},
			},
		},
	}
	params.AddMetadata("type", "SAAS_SUBSCRIPTION")
	params.AddMetadata("tenantId", req.TenantID)
	params.AddMetadata("planName", req.Plan)
	params.AddMetadata("abonnementDuration", req.AbonnementDuration)

	sess, err := s.Gateway.CreateSession(params)
	if err != nil {
		return nil, fmt.Errorf("checkout: create session: %w", err)
	}

	result = "ok"
	s.Logger.Info().
		Str("tenant_id", req.TenantID).
		Str("session_id", sess.ID).
		Str("plan", req.Plan).
		Msg("saas checkout session created")
	if s.Bus != nil {
		if _, err := s.Bus.Emit(ctx, events.TopicCheckoutSessionCreated, req.TenantID, map[string]string{
			"flow":      "saas",
			"sessionId": sess.ID,
			"plan":      req.Plan,
			"duration":  req.AbonnementDuration,
		}); err != nil {
			s.Logger.Warn().Err(err).Msg("checkout event emit failed")
		}
	}
	return sess, nil
}
