package connect_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/damilsoft/payment-service/internal/connect"
	dbgen "github.com/damilsoft/payment-service/internal/db/gen"
)

type stubQuerier struct {
	accounts  map[string]dbgen.StripeConnectAccount // keyed by tenant id
	customers map[string]dbgen.PaymentCustomer      // keyed by user id + account scope

	createdAccounts  []dbgen.CreateConnectAccountParams
	createdCustomers []dbgen.CreatePaymentCustomerParams
}

func newStubQuerier() *stubQuerier {
	return &stubQuerier{
		accounts:  map[string]dbgen.StripeConnectAccount{},
		customers: map[string]dbgen.PaymentCustomer{},
	}
}

func customerKey(userID string, scope pgtype.Text) string {
	if !scope.Valid {
		return userID + "|platform"
	}
	return userID + "|" + scope.String
}

func (s *stubQuerier) GetConnectAccountByTenantID(_ context.Context, tenantID string) (dbgen.StripeConnectAccount, error) {
	acct, ok := s.accounts[tenantID]
	if !ok {
		return dbgen.StripeConnectAccount{}, pgx.ErrNoRows
	}
	return acct, nil
}

func (s *stubQuerier) GetConnectAccountByStripeAccountID(_ context.Context, stripeAccountID string) (dbgen.StripeConnectAccount, error) {
	for _, acct := range s.accounts {
		if acct.StripeAccountID == stripeAccountID {
			return acct, nil
		}
	}
	return dbgen.StripeConnectAccount{}, pgx.ErrNoRows
}

func (s *stubQuerier) CreateConnectAccount(_ context.Context, arg dbgen.CreateConnectAccountParams) (dbgen.StripeConnectAccount, error) {
	s.createdAccounts = append(s.createdAccounts, arg)
	acct := dbgen.StripeConnectAccount{TenantID: arg.TenantID, StripeAccountID: arg.StripeAccountID}
	s.accounts[arg.TenantID] = acct
	return acct, nil
}

func (s *stubQuerier) GetPaymentCustomer(_ context.Context, arg dbgen.GetPaymentCustomerParams) (dbgen.PaymentCustomer, error) {
	cust, ok := s.customers[customerKey(arg.UserID, arg.StripeConnectedAccountID)]
	if !ok {
		return dbgen.PaymentCustomer{}, pgx.ErrNoRows
	}
	return cust, nil
}

func (s *stubQuerier) CreatePaymentCustomer(_ context.Context, arg dbgen.CreatePaymentCustomerParams) (dbgen.PaymentCustomer, error) {
	s.createdCustomers = append(s.createdCustomers, arg)
	cust := dbgen.PaymentCustomer{
		UserID:                   arg.UserID,
		StripeCustomerID:         arg.StripeCustomerID,
		StripeConnectedAccountID: arg.StripeConnectedAccountID,
	}
	s.customers[customerKey(arg.UserID, arg.StripeConnectedAccountID)] = cust
	return cust, nil
}

type stubGateway struct {
	accountParams  []*stripe.AccountParams
	linkParams     []*stripe.AccountLinkParams
	customerParams []*stripe.CustomerParams
	sessionParams  []*stripe.CheckoutSessionParams

	retrieved  []string
	accountErr error
}

func (g *stubGateway) CreateAccount(params *stripe.AccountParams) (*stripe.Account, error) {
	if g.accountErr != nil {
		return nil, g.accountErr
	}
	g.accountParams = append(g.accountParams, params)
	return &stripe.Account{ID: "acct_new", Email: *params.Email}, nil
}

func (g *stubGateway) RetrieveAccount(id string) (*stripe.Account, error) {
	g.retrieved = append(g.retrieved, id)
	return &stripe.Account{ID: id, ChargesEnabled: true, DetailsSubmitted: true}, nil
}

func (g *stubGateway) CreateAccountLink(params *stripe.AccountLinkParams) (*stripe.AccountLink, error) {
	g.linkParams = append(g.linkParams, params)
	return &stripe.AccountLink{URL: "https://connect.stripe.com/setup/s/abc", Created: 100, ExpiresAt: 400}, nil
}

func (g *stubGateway) CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	g.customerParams = append(g.customerParams, params)
	return &stripe.Customer{ID: "cus_member_1"}, nil
}

func (g *stubGateway) CreateSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	g.sessionParams = append(g.sessionParams, params)
	return &stripe.CheckoutSession{ID: "cs_member_1", URL: "https://checkout.stripe.com/c/cs_member_1"}, nil
}

func newService(q *stubQuerier, g *stubGateway) *connect.Service {
	return &connect.Service{
		Q:          q,
		Gateway:    g,
		Country:    "BG",
		SuccessURL: "https://damilsoft.com/success",
		CancelURL:  "https://damilsoft.com/cancel",
		Logger:     zerolog.Nop(),
	}
}

func memberRequest() connect.MemberCheckoutRequest {
	return connect.MemberCheckoutRequest{
		UserID:           "user-1",
		Email:            "member@example.com",
		Name:             "Ivan Petrov",
		SubscriptionPlan: "VISIT_PASS",
		Employment:       "STUDENT",
		AllowedVisits:    12,
		Currency:         "BGN",
		Amount:           4500,
	}
}

func TestCreateAccountNewTenant(t *testing.T) {
	q := newStubQuerier()
	g := &stubGateway{}
	svc := newService(q, g)

	acct, err := svc.CreateAccount(context.Background(), connect.OnboardingRequest{
		TenantID:      "tenant-1",
		Name:          "Iron Temple",
		BusinessEmail: "owner@irontemple.bg",
	})
	require.NoError(t, err)
	require.Equal(t, "acct_new", acct.ID)

	require.Len(t, g.accountParams, 1)
	params := g.accountParams[0]
	require.Equal(t, string(stripe.AccountTypeExpress), *params.Type)
	require.Equal(t, "BG", *params.Country)
	require.Equal(t, "company", *params.BusinessType)
	require.Equal(t, "7941", *params.BusinessProfile.MCC)
	require.True(t, *params.Capabilities.CardPayments.Requested)
	require.True(t, *params.Capabilities.Transfers.Requested)

	require.Len(t, q.createdAccounts, 1)
	require.Equal(t, "tenant-1", q.createdAccounts[0].TenantID)
	require.Equal(t, "acct_new", q.createdAccounts[0].StripeAccountID)
}

func TestCreateAccountExistingTenant(t *testing.T) {
	q := newStubQuerier()
	q.accounts["tenant-1"] = dbgen.StripeConnectAccount{TenantID: "tenant-1", StripeAccountID: "acct_existing"}
	g := &stubGateway{}
	svc := newService(q, g)

	acct, err := svc.CreateAccount(context.Background(), connect.OnboardingRequest{
		TenantID:      "tenant-1",
		Name:          "Iron Temple",
		BusinessEmail: "owner@irontemple.bg",
	})
	require.NoError(t, err)
	require.Equal(t, "acct_existing", acct.ID)
	require.Empty(t, g.accountParams)
	require.Empty(t, q.createdAccounts)
	require.Equal(t, []string{"acct_existing"}, g.retrieved)
}

func TestCreateAccountLink(t *testing.T) {
	q := newStubQuerier()
	q.accounts["tenant-1"] = dbgen.StripeConnectAccount{TenantID: "tenant-1", StripeAccountID: "acct_1"}
	g := &stubGateway{}
	svc := newService(q, g)

	link, err := svc.CreateAccountLink(context.Background(), "acct_1", connect.AccountLinkRequest{
		ReturnURL:  "https://damilsoft.com/return",
		RefreshURL: "https://damilsoft.com/refresh",
	})
	require.NoError(t, err)
	require.Equal(t, "https://connect.stripe.com/setup/s/abc", link.URL)

	require.Len(t, g.linkParams, 1)
	require.Equal(t, "account_onboarding", *g.linkParams[0].Type)
	require.Equal(t, "eventually_due", *g.linkParams[0].Collect)
}

func TestCreateAccountLinkUnknownAccount(t *testing.T) {
	svc := newService(newStubQuerier(), &stubGateway{})

	_, err := svc.CreateAccountLink(context.Background(), "acct_missing", connect.AccountLinkRequest{
		ReturnURL:  "https://damilsoft.com/return",
		RefreshURL: "https://damilsoft.com/refresh",
	})
	require.ErrorIs(t, err, connect.ErrAccountNotOnboarded)
}

func TestCreateMemberSessionNewCustomer(t *testing.T) {
	q := newStubQuerier()
	q.accounts["tenant-1"] = dbgen.StripeConnectAccount{TenantID: "tenant-1", StripeAccountID: "acct_1"}
	g := &stubGateway{}
	svc := newService(q, g)

	sess, err := svc.CreateMemberSession(context.Background(), "acct_1", memberRequest())
	require.NoError(t, err)
	require.Equal(t, "cs_member_1", sess.ID)

	require.Len(t, g.customerParams, 1)
	require.Equal(t, "user-1", g.customerParams[0].Metadata["localUserId"])

	require.Len(t, q.createdCustomers, 1)
	require.Equal(t, "acct_1", q.createdCustomers[0].StripeConnectedAccountID.String)

	require.Len(t, g.sessionParams, 1)
	params := g.sessionParams[0]
	require.Equal(t, "GYM_MEMBERSHIP", params.Metadata["type"])
	require.Equal(t, "user-1", params.Metadata["userId"])
	require.Equal(t, "VISIT_PASS", params.Metadata["subscriptionPlan"])
	require.Equal(t, "12", params.Metadata["allowedVisits"])
	require.Equal(t, "STUDENT", params.Metadata["employment"])
	require.Equal(t, "auto", *params.CustomerUpdate.Address)
}

func TestCreateMemberSessionReusesScopedCustomer(t *testing.T) {
	q := newStubQuerier()
	q.accounts["tenant-1"] = dbgen.StripeConnectAccount{TenantID: "tenant-1", StripeAccountID: "acct_1"}
	scope := pgtype.Text{String: "acct_1", Valid: true}
	q.customers[customerKey("user-1", scope)] = dbgen.PaymentCustomer{
		UserID:                   "user-1",
		StripeCustomerID:         pgtype.Text{String: "cus_scoped", Valid: true},
		StripeConnectedAccountID: scope,
	}
	g := &stubGateway{}
	svc := newService(q, g)

	_, err := svc.CreateMemberSession(context.Background(), "acct_1", memberRequest())
	require.NoError(t, err)

	require.Empty(t, g.customerParams)
	require.Empty(t, q.createdCustomers)
	require.Equal(t, "cus_scoped", *g.sessionParams[0].Customer)
}

func TestCreateMemberSessionUnknownAccount(t *testing.T) {
	svc := newService(newStubQuerier(), &stubGateway{})

	_, err := svc.CreateMemberSession(context.Background(), "acct_missing", memberRequest())
	require.ErrorIs(t, err, connect.ErrAccountNotOnboarded)
}
