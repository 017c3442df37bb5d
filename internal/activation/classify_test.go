package activation_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/damilsoft/payment-service/internal/activation"
)

func checkoutEvent(t *testing.T, metadata map[string]string) *stripe.Event {
	t.Helper()
	session := map[string]any{
		"id":           "cs_test_123",
		"metadata":     metadata,
		"customer":     map[string]any{"id": "cus_123"},
		"subscription": map[string]any{"id": "sub_123"},
	}
	raw, err := json.Marshal(session)
	require.NoError(t, err)
	return &stripe.Event{
		ID:   "evt_1",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestClassifySaaS(t *testing.T) {
	event := checkoutEvent(t, map[string]string{
		"type":               "SAAS_SUBSCRIPTION",
		"tenantId":           "tenant-1",
		"planName":           "PRO",
		"abonnementDuration": "YEARLY",
	})

	payload, err := activation.Classify(event)
	require.NoError(t, err)

	saas, ok := payload.(activation.SaaSActivation)
	require.True(t, ok)
	require.Equal(t, "tenant-1", saas.TenantID)
	require.Equal(t, "PRO", saas.PlanName)
	require.Equal(t, "YEARLY", saas.Duration)
	require.Equal(t, "cs_test_123", saas.SessionID)
	require.Equal(t, "cus_123", saas.StripeCustomerID)
	require.Equal(t, "sub_123", saas.StripeSubscriptionID)
	require.Equal(t, activation.KindSaaS, saas.Kind())
	require.Equal(t, "tenant-1", saas.AggregateID())
}

func TestClassifyMembershipVisitPass(t *testing.T) {
	event := checkoutEvent(t, map[string]string{
		"type":             "GYM_MEMBERSHIP",
		"userId":           "user-1",
		"subscriptionPlan": "VISIT_PASS",
		"allowedVisits":    "12",
		"employment":       "STUDENT",
	})
	event.Account = "acct_42"

	payload, err := activation.Classify(event)
	require.NoError(t, err)

	member, ok := payload.(activation.MembershipActivation)
	require.True(t, ok)
	require.Equal(t, "user-1", member.UserID)
	require.Equal(t, "VISIT_PASS", member.SubscriptionPlan)
	require.Equal(t, int64(12), member.AllowedVisits)
	require.Equal(t, "STUDENT", member.Employment)
	require.Equal(t, "acct_42", member.ConnectedAccountID)
	require.Equal(t, activation.KindMembership, member.Kind())
}

func TestClassifyMembershipTimePlanIgnoresVisits(t *testing.T) {
	event := checkoutEvent(t, map[string]string{
		"type":             "GYM_MEMBERSHIP",
		"userId":           "user-1",
		"subscriptionPlan": "MONTHLY",
		"allowedVisits":    "not-a-number",
	})

	payload, err := activation.Classify(event)
	require.NoError(t, err)

	member, ok := payload.(activation.MembershipActivation)
	require.True(t, ok)
	require.Zero(t, member.AllowedVisits)
}

func TestClassifyVisitPassInvalidVisits(t *testing.T) {
	event := checkoutEvent(t, map[string]string{
		"type":             "GYM_MEMBERSHIP",
		"userId":           "user-1",
		"subscriptionPlan": "VISIT_PASS",
		"allowedVisits":    "twelve",
	})

	_, err := activation.Classify(event)
	require.ErrorIs(t, err, activation.ErrMalformedEvent)
}

func TestClassifySaaSMissingMetadata(t *testing.T) {
	event := checkoutEvent(t, map[string]string{
		"type":     "SAAS_SUBSCRIPTION",
		"tenantId": "tenant-1",
	})

	_, err := activation.Classify(event)
	require.ErrorIs(t, err, activation.ErrMalformedEvent)
}

func TestClassifyMembershipMissingUser(t *testing.T) {
	event := checkoutEvent(t, map[string]string{
		"type":             "GYM_MEMBERSHIP",
		"subscriptionPlan": "MONTHLY",
	})

	_, err := activation.Classify(event)
	require.ErrorIs(t, err, activation.ErrMalformedEvent)
}

func TestClassifyOtherEventTypesUnhandled(t *testing.T) {
	event := &stripe.Event{
		ID:   "evt_2",
		Type: "charge.updated",
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}

	payload, err := activation.Classify(event)
	require.NoError(t, err)
	require.Nil(t, payload)
}

func TestClassifyUnknownCheckoutTypeUnhandled(t *testing.T) {
	event := checkoutEvent(t, map[string]string{"type": "SOMETHING_ELSE"})

	payload, err := activation.Classify(event)
	require.NoError(t, err)
	require.Nil(t, payload)
}

func TestClassifyUndecodableData(t *testing.T) {
	event := &stripe.Event{
		ID:   "evt_3",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: []byte(`{not json`)},
	}

	_, err := activation.Classify(event)
	require.ErrorIs(t, err, activation.ErrDeserialization)
}

func TestPayloadRoundTrip(t *testing.T) {
	original := activation.MembershipActivation{
		UserID:             "user-9",
		SubscriptionPlan:   "VISIT_PASS",
		AllowedVisits:      8,
		SessionID:          "cs_9",
		ConnectedAccountID: "acct_9",
	}

	encoded, err := activation.EncodePayload(original)
	require.NoError(t, err)

	decoded, err := activation.DecodePayload(encoded)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestDecodePayloadUnknownKind(t *testing.T) {
	_, err := activation.DecodePayload([]byte(`{"kind":"mystery"}`))
	require.Error(t, err)
}
