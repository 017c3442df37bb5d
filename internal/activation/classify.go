package activation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v82"
)

// Checkout metadata discriminators stamped onto sessions at creation time.
const (
	checkoutTypeSaaS       = "SAAS_SUBSCRIPTION"
	checkoutTypeMembership = "GYM_MEMBERSHIP"

	// PlanVisitPass is the only membership plan that carries a visit quota.
	PlanVisitPass = "VISIT_PASS"
)

// Classify extracts an activation payload from a verified Stripe event.
// Events of other types, and checkout sessions without a recognized type
// discriminator, yield (nil, nil) and are acknowledged without action.
func Classify(event *stripe.Event) (Payload, error) {
	if event == nil || event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return nil, nil
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: event %s has no data object", ErrDeserialization, event.ID)
	}
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("%w: event %s: %v", ErrDeserialization, event.ID, err)
	}

	switch session.Metadata["type"] {
	case checkoutTypeSaaS:
		return classifySaaS(event, &session)
	case checkoutTypeMembership:
		return classifyMembership(event, &session)
	default:
		return nil, nil
	}
}

func classifySaaS(event *stripe.Event, session *stripe.CheckoutSession) (Payload, error) {
	tenantID := strings.TrimSpace(session.Metadata["tenantId"])
	planName := strings.TrimSpace(session.Metadata["planName"])
	duration := strings.TrimSpace(session.Metadata["abonnementDuration"])
	if tenantID == "" || planName == "" || duration == "" {
		return nil, fmt.Errorf("%w: event %s: saas checkout missing tenantId, planName or abonnementDuration", ErrMalformedEvent, event.ID)
	}
	p := SaaSActivation{
		TenantID:  tenantID,
		PlanName:  planName,
		Duration:  duration,
		SessionID: session.ID,
	}
	if session.Customer != nil {
		p.StripeCustomerID = session.Customer.ID
	}
	if session.Subscription != nil {
		p.StripeSubscriptionID = session.Subscription.ID
	}
	return p, nil
}

func classifyMembership(event *stripe.Event, session *stripe.CheckoutSession) (Payload, error) {
	userID := strings.TrimSpace(session.Metadata["userId"])
	plan := strings.TrimSpace(session.Metadata["subscriptionPlan"])
	if userID == "" || plan == "" {
		return nil, fmt.Errorf("%w: event %s: membership checkout missing userId or subscriptionPlan", ErrMalformedEvent, event.ID)
	}
	// Only visit passes carry a quota; time-based plans dispatch with zero.
	var visits int64
	if plan == PlanVisitPass {
		parsed, err := strconv.ParseInt(strings.TrimSpace(session.Metadata["allowedVisits"]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: event %s: visit pass has invalid allowedVisits %q", ErrMalformedEvent, event.ID, session.Metadata["allowedVisits"])
		}
		visits = parsed
	}
	p := MembershipActivation{
		UserID:             userID,
		SubscriptionPlan:   plan,
		Employment:         strings.TrimSpace(session.Metadata["employment"]),
		AllowedVisits:      visits,
		SessionID:          session.ID,
		ConnectedAccountID: event.Account,
	}
	if session.Customer != nil {
		p.StripeCustomerID = session.Customer.ID
	}
	return p, nil
}
