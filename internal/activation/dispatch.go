package activation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/damilsoft/payment-service/internal/events"
	"github.com/damilsoft/payment-service/internal/monolith"
	"github.com/damilsoft/payment-service/internal/obs"
)

// Dispatcher forwards an activation toward the monolith. The webhook handler
// uses a queue-backed implementation; the worker uses MonolithDispatcher to
// make the actual call.
type Dispatcher interface {
	Dispatch(ctx context.Context, p Payload) error
}

// MonolithDispatcher delivers activations synchronously over HTTP.
type MonolithDispatcher struct {
	Client monolith.Client
	Bus    *events.Bus
	Logger zerolog.Logger
}

// Dispatch implements Dispatcher.
func (d MonolithDispatcher) Dispatch(ctx context.Context, p Payload) error {
	var err error
	switch v := p.(type) {
	case SaaSActivation:
		err = d.Client.ActivateTenant(ctx, v.TenantID, v.PlanName, v.Duration)
	case MembershipActivation:
		err = d.Client.ActivateMembership(ctx, v.UserID, monolith.MembershipActivation{
			SubscriptionPlan: v.SubscriptionPlan,
			Employment:       v.Employment,
			AllowedVisits:    v.AllowedVisits,
		})
	default:
		return fmt.Errorf("activation: unknown payload kind %q", p.Kind())
	}
	if err != nil {
		if obs.ActivationDispatchTotal != nil {
			obs.ActivationDispatchTotal.WithLabelValues(p.Kind(), "error").Inc()
		}
		d.Logger.Error().Err(err).
			Str("kind", p.Kind()).
			Str("aggregate_id", p.AggregateID()).
			Msg("activation dispatch failed")
		return fmt.Errorf("%w: %v", ErrDownstream, err)
	}
	if obs.ActivationDispatchTotal != nil {
		obs.ActivationDispatchTotal.WithLabelValues(p.Kind(), "ok").Inc()
	}
	if d.Bus != nil {
		if _, err := d.Bus.Emit(ctx, events.TopicActivationDispatched, p.AggregateID(), p); err != nil {
			d.Logger.Warn().Err(err).Str("kind", p.Kind()).Msg("dispatch event emit failed")
		}
	}
	d.Logger.Info().
		Str("kind", p.Kind()).
		Str("aggregate_id", p.AggregateID()).
		Msg("activation dispatched to monolith")
	return nil
}
