package activation

import (
	"encoding/json"
	"fmt"
)

// Payload kinds carried by dispatch tasks.
const (
	KindSaaS       = "saas"
	KindMembership = "membership"
)

// Payload is an activation extracted from a verified checkout event. It holds
// everything needed to update the local mirror and call the monolith, so a
// queued dispatch never has to re-read the Stripe event.
type Payload interface {
	Kind() string
	AggregateID() string
}

// SaaSActivation activates a tenant's platform subscription.
type SaaSActivation struct {
	TenantID             string `json:"tenantId"`
	PlanName             string `json:"planName"`
	Duration             string `json:"duration"`
	SessionID            string `json:"sessionId"`
	StripeCustomerID     string `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string `json:"stripeSubscriptionId,omitempty"`
}

func (SaaSActivation) Kind() string { return KindSaaS }

func (p SaaSActivation) AggregateID() string { return p.TenantID }

// MembershipActivation activates a gym membership for a member who paid
// through a tenant's connected account.
type MembershipActivation struct {
	UserID             string `json:"userId"`
	SubscriptionPlan   string `json:"subscriptionPlan"`
	Employment         string `json:"employment"`
	AllowedVisits      int64  `json:"allowedVisits"`
	SessionID          string `json:"sessionId"`
	StripeCustomerID   string `json:"stripeCustomerId,omitempty"`
	ConnectedAccountID string `json:"connectedAccountId,omitempty"`
}

func (MembershipActivation) Kind() string { return KindMembership }

func (p MembershipActivation) AggregateID() string { return p.UserID }

type envelope struct {
	Kind       string          `json:"kind"`
	Saas       json.RawMessage `json:"saas,omitempty"`
	Membership json.RawMessage `json:"membership,omitempty"`
}

// EncodePayload serializes a payload together with its kind discriminator.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("activation: nil payload")
	}
	inner, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("activation: encode payload: %w", err)
	}
	env := envelope{Kind: p.Kind()}
	switch p.Kind() {
	case KindSaaS:
		env.Saas = inner
	case KindMembership:
		env.Membership = inner
	default:
		return nil, fmt.Errorf("activation: unknown payload kind %q", p.Kind())
	}
	return json.Marshal(env)
}

// DecodePayload deserializes a payload produced by EncodePayload.
func DecodePayload(data []byte) (Payload, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("activation: decode payload: %w", err)
	}
	switch env.Kind {
	case KindSaaS:
		var p SaaSActivation
		if err := json.Unmarshal(env.Saas, &p); err != nil {
			return nil, fmt.Errorf("activation: decode saas payload: %w", err)
		}
		return p, nil
	case KindMembership:
		var p MembershipActivation
		if err := json.Unmarshal(env.Membership, &p); err != nil {
			return nil, fmt.Errorf("activation: decode membership payload: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("activation: unknown payload kind %q", env.Kind)
	}
}
