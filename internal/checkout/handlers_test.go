package checkout_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/damilsoft/payment-service/internal/checkout"
)

func postCheckout(t *testing.T, h checkout.Handler, req checkout.SessionRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	h.CreateSession(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payments/checkout", bytes.NewReader(body)))
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestCreateSessionHandlerSuccess(t *testing.T) {
	h := checkout.Handler{Svc: newService(newStubQuerier(), &stubGateway{}), Logger: zerolog.Nop()}

	rec := postCheckout(t, h, sessionRequest())

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		SessionID string `json:"sessionId"`
		URL       string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "cs_test_1", resp.SessionID)
	require.NotEmpty(t, resp.URL)
}

func TestCreateSessionHandlerStripeRejection(t *testing.T) {
	g := &stubGateway{sessionErr: &stripe.Error{Type: stripe.ErrorTypeInvalidRequest}}
	h := checkout.Handler{Svc: newService(newStubQuerier(), g), Logger: zerolog.Nop()}

	rec := postCheckout(t, h, sessionRequest())

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "STRIPE_REJECTED", errorCode(t, rec))
}

func TestCreateSessionHandlerStripeOutage(t *testing.T) {
	g := &stubGateway{sessionErr: &stripe.Error{Type: stripe.ErrorTypeAPI}}
	h := checkout.Handler{Svc: newService(newStubQuerier(), g), Logger: zerolog.Nop()}

	rec := postCheckout(t, h, sessionRequest())

	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "STRIPE_UNAVAILABLE", errorCode(t, rec))
}

func TestCreateSessionHandlerUnknownFailure(t *testing.T) {
	g := &stubGateway{sessionErr: errors.New("network down")}
	h := checkout.Handler{Svc: newService(newStubQuerier(), g), Logger: zerolog.Nop()}

	rec := postCheckout(t, h, sessionRequest())

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "CHECKOUT_FAILED", errorCode(t, rec))
}
