// Package tasks queues activation dispatches so webhook acknowledgement never
// waits on the monolith. The queue gives failed deliveries retry with backoff
// beyond the lifetime of the originating webhook request.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/damilsoft/payment-service/internal/activation"
)

// TypeActivationDispatch identifies queued activation deliveries.
const TypeActivationDispatch = "activation:dispatch"

// NewDispatchTask wraps an activation payload in an asynq task.
func NewDispatchTask(p activation.Payload) (*asynq.Task, error) {
	data, err := activation.EncodePayload(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeActivationDispatch, data), nil
}

// Enqueuer implements activation.Dispatcher by queueing the delivery for the
// worker. The task id is derived from the checkout session so a payload that
// slips past the replay guard is still enqueued at most once.
type Enqueuer struct {
	Client     *asynq.Client
	Queue      string
	MaxRetries int
	Retention  time.Duration
	Logger     zerolog.Logger
}

// Dispatch implements activation.Dispatcher.
func (e Enqueuer) Dispatch(ctx context.Context, p activation.Payload) error {
	if e.Client == nil {
		return errors.New("tasks: asynq client not configured")
	}
	task, err := NewDispatchTask(p)
	if err != nil {
		return err
	}
	opts := []asynq.Option{}
	if e.Queue != "" {
		opts = append(opts, asynq.Queue(e.Queue))
	}
	if e.MaxRetries > 0 {
		opts = append(opts, asynq.MaxRetry(e.MaxRetries))
	}
	if e.Retention > 0 {
		opts = append(opts, asynq.Retention(e.Retention))
	}
	if id := taskID(p); id != "" {
		opts = append(opts, asynq.TaskID(id))
	}
	info, err := e.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			e.Logger.Info().
				Str("kind", p.Kind()).
				Str("aggregate_id", p.AggregateID()).
				Msg("activation dispatch already queued")
			return nil
		}
		return fmt.Errorf("tasks: enqueue activation dispatch: %w", err)
	}
	e.Logger.Info().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("kind", p.Kind()).
		Str("aggregate_id", p.AggregateID()).
		Msg("activation dispatch queued")
	return nil
}

func taskID(p activation.Payload) string {
	switch v := p.(type) {
	case activation.SaaSActivation:
		if v.SessionID != "" {
			return TypeActivationDispatch + ":" + v.SessionID
		}
	case activation.MembershipActivation:
		if v.SessionID != "" {
			return TypeActivationDispatch + ":" + v.SessionID
		}
	}
	return ""
}
