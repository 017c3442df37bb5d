package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/damilsoft/payment-service/internal/activation"
	"github.com/damilsoft/payment-service/internal/lock"
	"github.com/damilsoft/payment-service/internal/obs"
)

// DispatchHandler processes queued activation deliveries. A per-aggregate
// lock keeps a retried task from racing a newer delivery for the same tenant
// or member.
type DispatchHandler struct {
	Dispatcher activation.Dispatcher
	Locker     lock.Locker
	LockTTL    time.Duration
	Logger     zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h DispatchHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	payload, err := activation.DecodePayload(t.Payload())
	if err != nil {
		// A payload we cannot decode will never succeed; park it in the
		// archive instead of burning retries.
		h.Logger.Error().Err(err).Msg("activation task payload undecodable")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	retryCount, _ := asynq.GetRetryCount(ctx)
	lockKey := "dispatch:" + payload.Kind() + ":" + payload.AggregateID()
	err = h.Locker.WithLock(ctx, lockKey, h.LockTTL, func(ctx context.Context) error {
		return h.Dispatcher.Dispatch(ctx, payload)
	})
	if retryCount > 0 && obs.DispatchRetryTotal != nil {
		if err != nil {
			obs.DispatchRetryTotal.WithLabelValues("error").Inc()
		} else {
			obs.DispatchRetryTotal.WithLabelValues("ok").Inc()
		}
	}
	if err != nil {
		h.Logger.Warn().Err(err).
			Str("kind", payload.Kind()).
			Str("aggregate_id", payload.AggregateID()).
			Int("retry", retryCount).
			Msg("queued activation dispatch failed")
		return err
	}
	return nil
}

// NewMux registers all task handlers on an asynq mux.
func NewMux(h DispatchHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeActivationDispatch, h)
	return mux
}
