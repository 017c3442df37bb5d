package checkout

import (
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
)

// StripeGateway abstracts the Stripe API calls the checkout flow performs.
type StripeGateway interface {
	CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error)
	CreateSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// LiveGateway calls Stripe through the package-level clients. The API key is
// installed once at startup via stripe.Key.
type LiveGateway struct{}

func (LiveGateway) CreateCustomer(params *stripe.CustomerParams) (*stripe.Customer, error) {
	return customer.New(params)
}

func (LiveGateway) CreateSession(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return session.New(params)
}
