// Package connect manages Stripe Connect onboarding for tenants and checkout
// sessions for their gym members. Member payments run on the tenant's
// connected account, so customer records are scoped to that account.
package connect

import (
	"context"
	"errors"
	"fmt"
	"strconv"
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

// ErrAccountNotOnboarded is returned when the referenced Stripe account has
// no local onboarding record.
var ErrAccountNotOnboarded = errors.New("connect: tenant not connected to stripe")

// Querier is the slice of generated queries the Connect flow needs.
// Satisfied by *dbgen.Queries.
type Querier interface {
	GetConnectAccountByTenantID(ctx context.Context, tenantID string) (dbgen.StripeConnectAccount, error)
	GetConnectAccountByStripeAccountID(ctx context.Context, stripeAccountID string) (dbgen.StripeConnectAccount, error)
	CreateConnectAccount(ctx context.Context, arg dbgen.CreateConnectAccountParams) (dbgen.StripeConnectAccount, error)
	GetPaymentCustomer(ctx context.Context, arg dbgen.GetPaymentCustomerParams) (dbgen.PaymentCustomer, error)
	CreatePaymentCustomer(ctx context.Context, arg dbgen.CreatePaymentCustomerParams) (dbgen.PaymentCustomer, error)
}

// OnboardingRequest identifies the tenant to open a connected account for.
type OnboardingRequest struct {
	TenantID      string `json:"tenantId" validate:"required"`
	Name          string `json:"name" validate:"required"`
	BusinessEmail string `json:"businessEmail" validate:"required,email"`
}

// AccountLinkRequest carries the redirect URLs for hosted onboarding.
type AccountLinkRequest struct {
	ReturnURL  string `json:"returnUrl" validate:"required,url"`
	RefreshURL string `json:"refreshUrl" validate:"required,url"`
}

// AccountLink is the hosted onboarding link handed back to the caller.
type AccountLink struct {
	URL       string `json:"url"`
	Created   int64  `json:"created"`
	ExpiresAt int64  `json:"expiresAt"`
}

// MemberCheckoutRequest describes a gym member's membership purchase.
type MemberCheckoutRequest struct {
	UserID           string `json:"userId" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Name             string `json:"name" validate:"required"`
	SubscriptionPlan string `json:"subscriptionPlan" validate:"required"`
	Employment       string `json:"employment" validate:"required"`
	AllowedVisits    int64  `json:"allowedVisits" validate:"gte=0"`
	Currency         string `json:"currency" validate:"required,len=3"`
	Amount           int64  `json:"amount" validate:"required,gt=0"`
}

// Service coordinates connected accounts, member customers and member
// checkout sessions.
type Service struct {
	Q          Querier
	Gateway    StripeGateway
	Country    string
	SuccessURL string
	CancelURL  string
	Bus        *events.Bus
	Logger     zerolog.Logger
}

// CreateAccount gets or creates the tenant's Stripe Express account.
// Repeating the call for an onboarded tenant returns the existing account.
func (s *Service) CreateAccount(ctx context.Context, req OnboardingRequest) (*stripe.Account, error) {
	if s == nil || s.Q == nil || s.Gateway == nil {
		return nil, errors.New("connect service not configured")
	}
	ctx, span := otel.Tracer("connect.Service").Start(ctx, "ConnectService.CreateAccount")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", req.TenantID))

	existing, err := s.Q.GetConnectAccountByTenantID(ctx, req.TenantID)
	if err == nil {
		s.Logger.Info().
			Str("tenant_id", req.TenantID).
			Str("stripe_account_id", existing.StripeAccountID).
			Msg("tenant already onboarded, returning existing account")
		return s.Gateway.RetrieveAccount(existing.StripeAccountID)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("connect: load account for tenant %s: %w", req.TenantID, err)
	}

	acct, err := s.Gateway.CreateAccount(&stripe.AccountParams{
		Type:    stripe.String(string(stripe.AccountTypeExpress)),
		Country: stripe.String(s.Country),
		Email:   stripe.String(req.BusinessEmail),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
		BusinessType: stripe.String("company"),
		BusinessProfile: &stripe.AccountBusinessProfileParams{
			Name:               stripe.String(req.Name),
			ProductDescription: stripe.String("Subscription"),
			MCC:                stripe.String("7941"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("connect: create stripe account: %w", err)
	}

	if _, err := s.Q.CreateConnectAccount(ctx, dbgen.CreateConnectAccountParams{
		TenantID:        req.TenantID,
		StripeAccountID: acct.ID,
	}); err != nil {
		return nil, fmt.Errorf("connect: persist account %s: %w", acct.ID, err)
	}

	s.Logger.Info().
		Str("tenant_id", req.TenantID).
		Str("stripe_account_id", acct.ID).
		Msg("connected account created")
	if s.Bus != nil {
		if _, err := s.Bus.Emit(ctx, events.TopicConnectAccountCreated, req.TenantID, map[string]string{
			"stripeAccountId": acct.ID,
		}); err != nil {
			s.Logger.Warn().Err(err).Msg("connect event emit failed")
		}
	}
	return acct, nil
}

// CreateAccountLink opens a hosted onboarding link for an already created
// connected account.
func (s *Service) CreateAccountLink(ctx context.Context, stripeAccountID string, req AccountLinkRequest) (AccountLink, error) {
	if s == nil || s.Q == nil || s.Gateway == nil {
		return AccountLink{}, errors.New("connect service not configured")
	}
	record, err := s.Q.GetConnectAccountByStripeAccountID(ctx, stripeAccountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return AccountLink{}, ErrAccountNotOnboarded
	}
	if err != nil {
		return AccountLink{}, fmt.Errorf("connect: load account %s: %w", stripeAccountID, err)
	}

	link, err := s.Gateway.CreateAccountLink(&stripe.AccountLinkParams{
		Account:    stripe.String(record.StripeAccountID),
		ReturnURL:  stripe.String(req.ReturnURL),
		RefreshURL: stripe.String(req.RefreshURL),
		Type:       stripe.String("account_onboarding"),
		Collect:    stripe.String("eventually_due"),
	})
	if err != nil {
		return AccountLink{}, fmt.Errorf("connect: create account link: %w", err)
	}
	return AccountLink{URL: link.URL, Created: link.Created, ExpiresAt: link.ExpiresAt}, nil
}

// CreateMemberSession opens a checkout session on the tenant's connected
// account, reusing the member's scoped Stripe customer when one exists.
func (s *Service) CreateMemberSession(ctx context.Context, stripeAccountID string, req MemberCheckoutRequest) (*stripe.CheckoutSession, error) {
	if s == nil || s.Q == nil || s.Gateway == nil {
		return nil, errors.New("connect service not configured")
	}
	ctx, span := otel.Tracer("connect.Service").Start(ctx, "ConnectService.CreateMemberSession")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", req.UserID),
		attribute.String("stripe.account_id", stripeAccountID),
	)

	result := "error"
	defer func() {
		if obs.CheckoutSessionTotal != nil {
			obs.CheckoutSessionTotal.WithLabelValues("membership", result).Inc()
		}
	}()

	record, err := s.Q.GetConnectAccountByStripeAccountID(ctx, stripeAccountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotOnboarded
	}
	if err != nil {
		return nil, fmt.Errorf("connect: load account %s: %w", stripeAccountID, err)
	}

	customerID, err := s.getOrCreateCustomer(ctx, record.StripeAccountID, req)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Customer:   stripe.String(customerID),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.SuccessURL),
		CancelURL:  stripe.String(s.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Quantity: stripe.Int64(1),
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(strings.ToLower(req.Currency)),
					UnitAmount: stripe.Int64(req.Amount),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.SubscriptionPlan + " - " + req.Employment),
					},
				},
			},
		},
		CustomerUpdate: &stripe.CheckoutSessionCustomerUpdateParams{
			Address: stripe.String("auto"),
		},
	}
	params.SetStripeAccount(record.StripeAccountID)
	params.AddMetadata("type", "GYM_MEMBERSHIP")
	params.AddMetadata("userId", req.UserID)
	params.AddMetadata("subscriptionPlan", req.SubscriptionPlan)
	params.AddMetadata("allowedVisits", strconv.FormatInt(req.AllowedVisits, 10))
	params.AddMetadata("employment", req.Employment)

	sess, err := s.Gateway.CreateSession(params)
	if err != nil {
		return nil, fmt.Errorf("connect: create member session: %w", err)
	}

	result = "ok"
	s.Logger.Info().
		Str("user_id", req.UserID).
		Str("stripe_account_id", record.StripeAccountID).
		Str("session_id", sess.ID).
		Str("plan", req.SubscriptionPlan).
		Msg("member checkout session created")
	if s.Bus != nil {
		if _, err := s.Bus.Emit(ctx, events.TopicCheckoutSessionCreated, req.UserID, map[string]string{
			"flow":            "membership",
			"sessionId":       sess.ID,
			"plan":            req.SubscriptionPlan,
			"stripeAccountId": record.StripeAccountID,
		}); err != nil {
			s.Logger.Warn().Err(err).Msg("connect checkout event emit failed")
		}
	}
	return sess, nil
}

func (s *Service) getOrCreateCustomer(ctx context.Context, stripeAccountID string, req MemberCheckoutRequest) (string, error) {
	scope := pgtype.Text{String: stripeAccountID, Valid: true}
	existing, err := s.Q.GetPaymentCustomer(ctx, dbgen.GetPaymentCustomerParams{
		UserID:                   req.UserID,
		StripeConnectedAccountID: scope,
	})
	if err == nil && existing.StripeCustomerID.Valid {
		return existing.StripeCustomerID.String, nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("connect: load customer %s: %w", req.UserID, err)
	}

	custParams := &stripe.CustomerParams{
		Email: stripe.String(req.Email),
		Name:  stripe.String(req.Name),
		Metadata: map[string]string{
			"localUserId": req.UserID,
		},
	}
	custParams.SetStripeAccount(stripeAccountID)
	cust, err := s.Gateway.CreateCustomer(custParams)
	if err != nil {
		return "", fmt.Errorf("connect: create stripe customer: %w", err)
	}

	if _, err := s.Q.CreatePaymentCustomer(ctx, dbgen.CreatePaymentCustomerParams{
		UserID:                   req.UserID,
		StripeCustomerID:         pgtype.Text{String: cust.ID, Valid: true},
		StripeConnectedAccountID: scope,
	}); err != nil {
		return "", fmt.Errorf("connect: persist customer %s: %w", req.UserID, err)
	}
	return cust.ID, nil
}
