package activation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	dbgen "github.com/damilsoft/payment-service/internal/db/gen"
)

// Store is the slice of generated queries the reconciler needs. Satisfied by
// *dbgen.Queries.
type Store interface {
	GetPaymentTenantByTenantIDForUpdate(ctx context.Context, tenantID string) (dbgen.PaymentTenant, error)
	CreatePaymentTenant(ctx context.Context, arg dbgen.CreatePaymentTenantParams) (dbgen.PaymentTenant, error)
	ActivatePaymentTenant(ctx context.Context, arg dbgen.ActivatePaymentTenantParams) (dbgen.PaymentTenant, error)
	GetPaymentCustomerForUpdate(ctx context.Context, arg dbgen.GetPaymentCustomerForUpdateParams) (dbgen.PaymentCustomer, error)
	CreatePaymentCustomer(ctx context.Context, arg dbgen.CreatePaymentCustomerParams) (dbgen.PaymentCustomer, error)
}

// TxRunner executes a function against a Store inside a transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(Store) error) error
}

// PgxTxRunner runs reconciliations in a pgx transaction so the SELECT FOR
// UPDATE row lock serializes concurrent deliveries for the same aggregate.
type PgxTxRunner struct {
	Pool *pgxpool.Pool
	Q    *dbgen.Queries
}

// RunInTx implements TxRunner.
func (r PgxTxRunner) RunInTx(ctx context.Context, fn func(Store) error) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if err := fn(r.Q.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Reconciler applies verified activations to the local payment mirror.
// Reconciliation is idempotent: replaying the same payload converges on the
// same row state.
type Reconciler struct {
	Tx     TxRunner
	Logger zerolog.Logger
}

// Reconcile updates the mirror for the given payload.
func (rc Reconciler) Reconcile(ctx context.Context, p Payload) error {
	switch v := p.(type) {
	case SaaSActivation:
		return rc.reconcileTenant(ctx, v)
	case MembershipActivation:
		return rc.reconcileMember(ctx, v)
	default:
		return fmt.Errorf("activation: unknown payload kind %q", p.Kind())
	}
}

// reconcileTenant marks the tenant's subscription ACTIVE. A tenant unseen by
// the checkout flow (e.g. the mirror was rebuilt) is created on the fly
// instead of failing the delivery.
func (rc Reconciler) reconcileTenant(ctx context.Context, p SaaSActivation) error {
	err := rc.Tx.RunInTx(ctx, func(s Store) error {
		_, err := s.GetPaymentTenantByTenantIDForUpdate(ctx, p.TenantID)
		if errors.Is(err, pgx.ErrNoRows) {
			_, err = s.CreatePaymentTenant(ctx, dbgen.CreatePaymentTenantParams{
				TenantID:         p.TenantID,
				StripeCustomerID: textOrNull(p.StripeCustomerID),
				Status:           dbgen.SubscriptionStatusINACTIVE,
			})
			if err != nil {
				return fmt.Errorf("create tenant %s: %w", p.TenantID, err)
			}
			rc.Logger.Info().Str("tenant_id", p.TenantID).Msg("tenant mirror row created during reconciliation")
		} else if err != nil {
			return fmt.Errorf("lock tenant %s: %w", p.TenantID, err)
		}
		_, err = s.ActivatePaymentTenant(ctx, dbgen.ActivatePaymentTenantParams{
			TenantID:             p.TenantID,
			CurrentPlanName:      textOrNull(p.PlanName),
			BillingPeriod:        textOrNull(p.Duration),
			StripeSubscriptionID: textOrNull(p.StripeSubscriptionID),
		})
		if err != nil {
			return fmt.Errorf("activate tenant %s: %w", p.TenantID, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	rc.Logger.Info().
		Str("tenant_id", p.TenantID).
		Str("plan", p.PlanName).
		Str("duration", p.Duration).
		Msg("tenant subscription activated in mirror")
	return nil
}

// reconcileMember records the member's Stripe customer, scoped to the
// connected account the payment went through. Platform-level customers keep a
// NULL account scope.
func (rc Reconciler) reconcileMember(ctx context.Context, p MembershipActivation) error {
	accountScope := textOrNull(p.ConnectedAccountID)
	err := rc.Tx.RunInTx(ctx, func(s Store) error {
		_, err := s.GetPaymentCustomerForUpdate(ctx, dbgen.GetPaymentCustomerForUpdateParams{
			UserID:                   p.UserID,
			StripeConnectedAccountID: accountScope,
		})
		if err == nil {
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("lock customer %s: %w", p.UserID, err)
		}
		_, err = s.CreatePaymentCustomer(ctx, dbgen.CreatePaymentCustomerParams{
			UserID:                   p.UserID,
			StripeCustomerID:         textOrNull(p.StripeCustomerID),
			StripeConnectedAccountID: accountScope,
		})
		if err != nil {
			return fmt.Errorf("create customer %s: %w", p.UserID, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	rc.Logger.Info().
		Str("user_id", p.UserID).
		Str("plan", p.SubscriptionPlan).
		Str("connected_account", p.ConnectedAccountID).
		Msg("member customer reconciled in mirror")
	return nil
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
