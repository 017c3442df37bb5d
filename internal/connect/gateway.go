package connect

import (
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
)

// StripeGateway abstracts the Stripe API calls the Connect flow performs.
type StripeGateway interface {
	CreateAccount(params *stripe.AccountParams) (*stripe.Account, error)
	RetrieveAccount(id string) (*stripe.Account, error)
	CreateAccountLink(params *stripe.AccountLinkParams) (*stripe.AccountLink, error)
	CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error)
	CreateSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// LiveGateway calls Stripe through the package-level clients.
type LiveGateway struct{}

func (LiveGateway) CreateAccount(params *stripe.AccountParams) (*stripe.Account, error) {
	return account.New(params)
}

func (LiveGateway) RetrieveAccount(id string) (*stripe.Account, error) {
	return account.GetByID(id, nil)
}

func (LiveGateway) CreateAccountLink(params *stripe.AccountLinkParams) (*stripe.AccountLink, error) {
	return accountlink.New(params)
}

func (LiveGateway) CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return customer.New(params)
}

func (LiveGateway) CreateSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}
