// redispatch re-queues an activation for a tenant or member from the local
// mirror. Use it when the monolith missed an activation (outage longer than
// the retry budget) and the payment is already reconciled locally.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/damilsoft/payment-service/internal/activation"
	"github.com/damilsoft/payment-service/internal/config"
	dbgen "github.com/damilsoft/payment-service/internal/db/gen"
	"github.com/damilsoft/payment-service/internal/tasks"
)

func main() {
	var (
		tenantID   = flag.String("tenant", "", "tenant id to re-dispatch a subscription activation for")
		userID     = flag.String("user", "", "user id to re-dispatch a membership activation for")
		accountID  = flag.String("account", "", "connected account id the membership was paid through")
		plan       = flag.String("plan", "", "membership plan (required with -user)")
		employment = flag.String("employment", "", "membership employment tier")
		visits     = flag.Int64("visits", 0, "allowed visits for VISIT_PASS plans")
		dryRun     = flag.Bool("dry-run", false, "print the payload without enqueueing")
	)
	flag.Parse()

	if (*tenantID == "") == (*userID == "") {
		log.Fatal("exactly one of -tenant or -user is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload, err := buildPayload(ctx, cfg, *tenantID, *userID, *accountID, *plan, *employment, *visits)
	if err != nil {
		log.Fatalf("build payload: %v", err)
	}

	if *dryRun {
		encoded, err := activation.EncodePayload(payload)
		if err != nil {
			log.Fatalf("encode payload: %v", err)
		}
		log.Printf("would enqueue: %s", encoded)
		return
	}

	redisConnOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		log.Fatalf("parse redis uri: %v", err)
	}
	client := asynq.NewClient(redisConnOpt)
	defer func() { _ = client.Close() }()

	task, err := tasks.NewDispatchTask(payload)
	if err != nil {
		log.Fatalf("build task: %v", err)
	}
	info, err := client.EnqueueContext(ctx, task,
		asynq.Queue(cfg.DispatchQueue),
		asynq.MaxRetry(cfg.DispatchMaxRetries),
	)
	if err != nil {
		log.Fatalf("enqueue: %v", err)
	}
	log.Printf("enqueued task %s on queue %s", info.ID, info.Queue)
}

func buildPayload(ctx context.Context, cfg *config.Config, tenantID, userID, accountID, plan, employment string, visits int64) (activation.Payload, error) {
	if userID != "" {
		if strings.TrimSpace(plan) == "" {
			log.Fatal("-plan is required with -user; the mirror does not record membership plans")
		}
		return activation.MembershipActivation{
			UserID:             userID,
			SubscriptionPlan:   plan,
			Employment:         employment,
			AllowedVisits:      visits,
			ConnectedAccountID: accountID,
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	tenant, err := dbgen.New(pool).GetPaymentTenantByTenantID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.CurrentPlanName.Valid || !tenant.BillingPeriod.Valid {
		log.Fatalf("tenant %s has no reconciled plan to re-dispatch", tenantID)
	}
	return activation.SaaSActivation{
		TenantID:             tenant.TenantID,
		PlanName:             tenant.CurrentPlanName.String,
		Duration:             tenant.BillingPeriod.String,
		StripeCustomerID:     tenant.StripeCustomerID.String,
		StripeSubscriptionID: tenant.StripeSubscriptionID.String,
	}, nil
}
