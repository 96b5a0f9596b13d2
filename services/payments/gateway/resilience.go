package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/givehub/payments/internal/pkg/circuitbreaker"
	"github.com/givehub/payments/internal/pkg/models"
	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/internal/pkg/retry"
	"github.com/givehub/payments/services/payments"
)

// ResilientGateway wraps a PaymentGateway with a circuit breaker and a
// retry policy. The two compose independently: the breaker short-circuits
// before the retry loop begins, and retries run only while the breaker
// admits calls. Breaker state is shared across every transaction routed to
// the same adapter; attempt counts travel with each call's result or error
// so concurrent transactions do not interfere.
type ResilientGateway struct {
	inner   payments.PaymentGateway
	breaker *circuitbreaker.CircuitBreaker
	retrier *retry.Retrier
}

// NewResilientGateway wraps an adapter, taking its breaker from the shared
// per-adapter manager.
func NewResilientGateway(inner payments.PaymentGateway, manager *circuitbreaker.Manager, breakerCfg circuitbreaker.Config, retrier *retry.Retrier) *ResilientGateway {
	breaker := manager.GetOrCreate(inner.ID(), breakerCfg)
	return &ResilientGateway{
		inner:   inner,
		breaker: breaker,
		retrier: retrier,
	}
}

// ID returns the wrapped adapter's identifier
func (r *ResilientGateway) ID() string {
	return r.inner.ID()
}

// WebhookSecret returns the wrapped adapter's webhook secret
func (r *ResilientGateway) WebhookSecret() string {
	return r.inner.WebhookSecret()
}

// MapNativeStatus delegates to the wrapped adapter's status table
func (r *ResilientGateway) MapNativeStatus(native string) models.PaymentStatus {
	return r.inner.MapNativeStatus(native)
}

// execute runs fn under the breaker; when retryable is true the retry loop
// runs inside the breaker-admitted call window. Returns the number of
// adapter invocations consumed.
func (r *ResilientGateway) execute(ctx context.Context, retryable bool, fn func(context.Context) error) (int, error) {
	attempts := 0

	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		if !retryable {
			attempts = 1
			return fn(ctx)
		}
		var innerErr error
		attempts, innerErr = r.retrier.Execute(ctx, fn)
		return innerErr
	})

	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return attempts, payerrors.CircuitOpen(r.inner.ID())
	}
	if err != nil {
		return attempts, payerrors.WithAttempts(err, attempts)
	}
	return attempts, nil
}

// Create opens a transaction. The orchestrator always derives an
// idempotency key from the transaction id, making create safe to retry.
func (r *ResilientGateway) Create(ctx context.Context, req *models.PaymentRequest) (*models.TransactionHandle, error) {
	var handle *models.TransactionHandle
	_, err := r.execute(ctx, true, func(ctx context.Context) error {
		var innerErr error
		handle, innerErr = r.inner.Create(ctx, req)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	return handle, nil
}

// Charge is retried only when a client-supplied idempotency key makes the
// call safe to apply at most once at the processor.
func (r *ResilientGateway) Charge(ctx context.Context, handle *models.TransactionHandle, method *models.MethodDetails, sec *models.SecurityContext, idempotencyKey string) (*models.PaymentResult, error) {
	var result *models.PaymentResult
	attempts, err := r.execute(ctx, idempotencyKey != "", func(ctx context.Context) error {
		var innerErr error
		result, innerErr = r.inner.Charge(ctx, handle, method, sec, idempotencyKey)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	result.Attempts = attempts
	return result, nil
}

// Refund is never retried automatically: a refund is mutating and carries
// no idempotency guarantee from either processor.
func (r *ResilientGateway) Refund(ctx context.Context, handle *models.TransactionHandle, amount decimal.Decimal, reason *models.RefundReason) (*models.PaymentResult, error) {
	var result *models.PaymentResult
	attempts, err := r.execute(ctx, false, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = r.inner.Refund(ctx, handle, amount, reason)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	result.Attempts = attempts
	return result, nil
}

// Status is a naturally idempotent read and always retryable.
func (r *ResilientGateway) Status(ctx context.Context, handle *models.TransactionHandle) (*models.PaymentResult, error) {
	var result *models.PaymentResult
	attempts, err := r.execute(ctx, true, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = r.inner.Status(ctx, handle)
		return innerErr
	})
	if err != nil {
		return nil, err
	}
	result.Attempts = attempts
	return result, nil
}
