package activation

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/damilsoft/payment-service/internal/common"
	"github.com/damilsoft/payment-service/internal/events"
	"github.com/damilsoft/payment-service/internal/obs"
)

const maxWebhookBody = 1 << 20 // Stripe caps event payloads well below 1 MiB

// ReplayGuard remembers event ids it has already admitted so redelivered
// events are acknowledged without reprocessing.
type ReplayGuard struct {
	R   *redis.Client
	TTL time.Duration
}

// FirstDelivery returns true when eventID has not been seen within the TTL.
func (g ReplayGuard) FirstDelivery(ctx context.Context, eventID string) (bool, error) {
	if g.R == nil {
		return true, nil
	}
	ttl := g.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return g.R.SetNX(ctx, "stripe:event:"+eventID, 1, ttl).Result()
}

// Reconciling applies a payload to the local mirror.
type Reconciling interface {
	Reconcile(ctx context.Context, p Payload) error
}

// WebhookHandler verifies, classifies and processes Stripe webhook deliveries.
type WebhookHandler struct {
	Secret     string
	Replay     ReplayGuard
	Reconciler Reconciling
	Dispatcher Dispatcher
	Bus        *events.Bus
	Logger     zerolog.Logger
}

// HandleWebhook is the POST handler for the Stripe webhook endpoint.
//
// Signature failures are rejected with 400 so Stripe retries them. Everything
// past signature verification is acknowledged with 200: a processing failure
// is recorded and retried from the local mirror, because letting Stripe
// redeliver a payload we already admitted only duplicates work.
func (h WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BODY_UNREADABLE", "request body could not be read", nil)
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if signature == "" || h.Secret == "" {
		h.countEvent("unknown", "rejected")
		common.JSONError(w, http.StatusBadRequest, "SIGNATURE_MISSING", "stripe signature header or endpoint secret missing", nil)
		return
	}

	event, err := webhook.ConstructEvent(body, signature, h.Secret)
	if err != nil {
		h.countEvent("unknown", "rejected")
		h.Logger.Warn().Err(err).Msg("webhook signature verification failed")
		common.JSONError(w, http.StatusBadRequest, "INVALID_SIGNATURE", "webhook signature verification failed", nil)
		return
	}

	ctx := r.Context()
	logger := h.Logger.With().Str("event_id", event.ID).Str("event_type", string(event.Type)).Logger()

	first, err := h.Replay.FirstDelivery(ctx, event.ID)
	if err != nil {
		// Fail open: a Redis outage must not stall deliveries, reconciliation
		// is idempotent anyway.
		logger.Warn().Err(err).Msg("replay guard unavailable, processing event without dedup")
	} else if !first {
		h.countEvent(string(event.Type), "duplicate")
		logger.Info().Msg("duplicate delivery acknowledged")
		common.JSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
		return
	}

	payload, err := Classify(&event)
	if err != nil {
		h.countEvent(string(event.Type), "malformed")
		logger.Warn().Err(err).Msg("event could not be classified")
		common.JSON(w, http.StatusOK, map[string]string{"status": "received"})
		return
	}
	if payload == nil {
		h.countEvent(string(event.Type), "unhandled")
		logger.Info().Msg("unhandled event acknowledged")
		common.JSON(w, http.StatusOK, map[string]string{"status": "received"})
		return
	}

	if err := h.process(ctx, payload, logger); err != nil {
		h.countEvent(string(event.Type), "error")
		common.JSON(w, http.StatusOK, map[string]string{"status": "error"})
		return
	}

	h.countEvent(string(event.Type), "ok")
	common.JSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func (h WebhookHandler) process(ctx context.Context, payload Payload, logger zerolog.Logger) error {
	if err := h.Reconciler.Reconcile(ctx, payload); err != nil {
		logger.Error().Err(err).Str("kind", payload.Kind()).Msg("mirror reconciliation failed")
		return err
	}
	if err := h.Dispatcher.Dispatch(ctx, payload); err != nil {
		logger.Error().Err(err).Str("kind", payload.Kind()).Msg("activation dispatch failed")
		h.emit(ctx, events.TopicActivationFailed, payload, logger)
		return err
	}
	topic := events.TopicSubscriptionActivated
	if payload.Kind() == KindMembership {
		topic = events.TopicMembershipActivated
	}
	h.emit(ctx, topic, payload, logger)
	return nil
}

func (h WebhookHandler) emit(ctx context.Context, topic string, payload Payload, logger zerolog.Logger) {
	if h.Bus == nil {
		return
	}
	if _, err := h.Bus.Emit(ctx, topic, payload.AggregateID(), payload); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn().Err(err).Str("topic", topic).Msg("domain event emit failed")
	}
}

func (h WebhookHandler) countEvent(eventType, result string) {
	if obs.WebhookEventsTotal == nil {
		return
	}
	obs.WebhookEventsTotal.WithLabelValues(eventType, result).Inc()
}
