package activation_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/damilsoft/payment-service/internal/activation"
)

const testWebhookSecret = "whsec_test_secret"

type captureReconciler struct {
	payloads []activation.Payload
	err      error
}

func (c *captureReconciler) Reconcile(_ context.Context, p activation.Payload) error {
	if c.err != nil {
		return c.err
	}
	c.payloads = append(c.payloads, p)
	return nil
}

type captureDispatcher struct {
	payloads []activation.Payload
	err      error
}

func (c *captureDispatcher) Dispatch(_ context.Context, p activation.Payload) error {
	if c.err != nil {
		return c.err
	}
	c.payloads = append(c.payloads, p)
	return nil
}

func signBody(secret string, body []byte) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, body)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func saasEventBody(t *testing.T, eventID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":          eventID,
		"api_version": stripe.APIVersion,
		"type":        "checkout.session.completed",
		"data": map[string]any{
			"object": map[string]any{
				"id": "cs_test_1",
				"metadata": map[string]string{
					"type":               "SAAS_SUBSCRIPTION",
					"tenantId":           "tenant-1",
					"planName":           "PRO",
					"abonnementDuration": "YEARLY",
				},
			},
		},
	})
	require.NoError(t, err)
	return body
}

func newWebhookHandler(t *testing.T, reconciler *captureReconciler, dispatcher *captureDispatcher) activation.WebhookHandler {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return activation.WebhookHandler{
		Secret:     testWebhookSecret,
		Replay:     activation.ReplayGuard{R: client, TTL: time.Hour},
		Reconciler: reconciler,
		Dispatcher: dispatcher,
		Logger:     zerolog.Nop(),
	}
}

func postWebhook(handler activation.WebhookHandler, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stripe/webhook", bytes.NewReader(body))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	handler.HandleWebhook(rec, req)
	return rec
}

func decodeStatus(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp["status"]
}

func TestWebhookMissingSignatureRejected(t *testing.T) {
	reconciler := &captureReconciler{}
	dispatcher := &captureDispatcher{}
	handler := newWebhookHandler(t, reconciler, dispatcher)

	rec := postWebhook(handler, saasEventBody(t, "evt_1"), "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, reconciler.payloads)
}

func TestWebhookInvalidSignatureRejected(t *testing.T) {
	reconciler := &captureReconciler{}
	dispatcher := &captureDispatcher{}
	handler := newWebhookHandler(t, reconciler, dispatcher)

	body := saasEventBody(t, "evt_1")
	rec := postWebhook(handler, body, signBody("whsec_wrong_secret", body))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Empty(t, reconciler.payloads)
	require.Empty(t, dispatcher.payloads)
}

func TestWebhookSaaSProcessed(t *testing.T) {
	reconciler := &captureReconciler{}
	dispatcher := &captureDispatcher{}
	handler := newWebhookHandler(t, reconciler, dispatcher)

	body := saasEventBody(t, "evt_1")
	rec := postWebhook(handler, body, signBody(testWebhookSecret, body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "received", decodeStatus(t, rec))
	require.Len(t, reconciler.payloads, 1)
	require.Len(t, dispatcher.payloads, 1)

	saas, ok := reconciler.payloads[0].(activation.SaaSActivation)
	require.True(t, ok)
	require.Equal(t, "tenant-1", saas.TenantID)
}

func TestWebhookDuplicateAcknowledged(t *testing.T) {
	reconciler := &captureReconciler{}
	dispatcher := &captureDispatcher{}
	handler := newWebhookHandler(t, reconciler, dispatcher)

	body := saasEventBody(t, "evt_1")
	first := postWebhook(handler, body, signBody(testWebhookSecret, body))
	second := postWebhook(handler, body, signBody(testWebhookSecret, body))

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, "duplicate", decodeStatus(t, second))
	require.Len(t, reconciler.payloads, 1)
	require.Len(t, dispatcher.payloads, 1)
}

func TestWebhookUnhandledEventAcknowledged(t *testing.T) {
	reconciler := &captureReconciler{}
	dispatcher := &captureDispatcher{}
	handler := newWebhookHandler(t, reconciler, dispatcher)

	body, err := json.Marshal(map[string]any{
		"id":          "evt_9",
		"api_version": stripe.APIVersion,
		"type":        "invoice.paid",
		"data":        map[string]any{"object": map[string]any{"id": "in_1"}},
	})
	require.NoError(t, err)

	rec := postWebhook(handler, body, signBody(testWebhookSecret, body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "received", decodeStatus(t, rec))
	require.Empty(t, reconciler.payloads)
	require.Empty(t, dispatcher.payloads)
}

func TestWebhookMalformedMetadataAcknowledged(t *testing.T) {
	reconciler := &captureReconciler{}
	dispatcher := &captureDispatcher{}
	handler := newWebhookHandler(t, reconciler, dispatcher)

	body, err := json.Marshal(map[string]any{
		"id":          "evt_10",
		"api_version": stripe.APIVersion,
		"type":        "checkout.session.completed",
		"data": map[string]any{
			"object": map[string]any{
				"id":       "cs_test_2",
				"metadata": map[string]string{"type": "SAAS_SUBSCRIPTION"},
			},
		},
	})
	require.NoError(t, err)

	rec := postWebhook(handler, body, signBody(testWebhookSecret, body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "received", decodeStatus(t, rec))
	require.Empty(t, reconciler.payloads)
}

func TestWebhookReconcileFailureReportsError(t *testing.T) {
	reconciler := &captureReconciler{err: activation.ErrPersistence}
	dispatcher := &captureDispatcher{}
	handler := newWebhookHandler(t, reconciler, dispatcher)

	body := saasEventBody(t, "evt_11")
	rec := postWebhook(handler, body, signBody(testWebhookSecret, body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "error", decodeStatus(t, rec))
	require.Empty(t, dispatcher.payloads)
}

func TestWebhookDispatchFailureReportsError(t *testing.T) {
	reconciler := &captureReconciler{}
	dispatcher := &captureDispatcher{err: activation.ErrDownstream}
	handler := newWebhookHandler(t, reconciler, dispatcher)

	body := saasEventBody(t, "evt_12")
	rec := postWebhook(handler, body, signBody(testWebhookSecret, body))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "error", decodeStatus(t, rec))
	require.Len(t, reconciler.payloads, 1)
}
