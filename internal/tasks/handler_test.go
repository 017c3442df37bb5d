package tasks_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/damilsoft/payment-service/internal/activation"
	"github.com/damilsoft/payment-service/internal/lock"
	"github.com/damilsoft/payment-service/internal/tasks"
)

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

func newHandler(t *testing.T, dispatcher *captureDispatcher) tasks.DispatchHandler {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return tasks.DispatchHandler{
		Dispatcher: dispatcher,
		Locker:     lock.Locker{R: client, RetryBackoff: time.Millisecond},
		LockTTL:    time.Second,
		Logger:     zerolog.Nop(),
	}
}

func saasTask(t *testing.T) *asynq.Task {
	t.Helper()
	task, err := tasks.NewDispatchTask(activation.SaaSActivation{
		TenantID:  "tenant-1",
		PlanName:  "PRO",
		Duration:  "YEARLY",
		SessionID: "cs_test_1",
	})
	require.NoError(t, err)
	return task
}

func TestProcessTaskDispatches(t *testing.T) {
	dispatcher := &captureDispatcher{}
	handler := newHandler(t, dispatcher)

	err := handler.ProcessTask(context.Background(), saasTask(t))
	require.NoError(t, err)
	require.Len(t, dispatcher.payloads, 1)

	saas, ok := dispatcher.payloads[0].(activation.SaaSActivation)
	require.True(t, ok)
	require.Equal(t, "tenant-1", saas.TenantID)
}

func TestProcessTaskDispatcherFailurePropagates(t *testing.T) {
	dispatcher := &captureDispatcher{err: activation.ErrDownstream}
	handler := newHandler(t, dispatcher)

	err := handler.ProcessTask(context.Background(), saasTask(t))
	require.ErrorIs(t, err, activation.ErrDownstream)
}

func TestProcessTaskUndecodablePayloadSkipsRetry(t *testing.T) {
	dispatcher := &captureDispatcher{}
	handler := newHandler(t, dispatcher)

	task := asynq.NewTask(tasks.TypeActivationDispatch, []byte("{not json"))
	err := handler.ProcessTask(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
	require.Empty(t, dispatcher.payloads)
}

func TestNewDispatchTaskRoundTrip(t *testing.T) {
	original := activation.MembershipActivation{
		UserID:             "user-1",
		SubscriptionPlan:   "VISIT_PASS",
		Employment:         "STUDENT",
		AllowedVisits:      12,
		SessionID:          "cs_member_1",
		ConnectedAccountID: "acct_1",
	}
	task, err := tasks.NewDispatchTask(original)
	require.NoError(t, err)
	require.Equal(t, tasks.TypeActivationDispatch, task.Type())

	decoded, err := activation.DecodePayload(task.Payload())
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}
