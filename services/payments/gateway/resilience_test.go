package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givehub/payments/internal/pkg/circuitbreaker"
	"github.com/givehub/payments/internal/pkg/models"
	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/internal/pkg/retry"
	"github.com/givehub/payments/services/payments/mocks"
)

func newResilient(t *testing.T, inner *mocks.MockPaymentGateway) *ResilientGateway {
	t.Helper()
	l := testLogger(t)

	breakerCfg := circuitbreaker.Config{
		FailureThreshold: 3,
		Cooldown:         time.Minute,
		IsFailure:        payerrors.IsRetryable,
	}
	retrier := retry.New(retry.Config{
		MaxAttempts:   3,
		BaseDelay:     time.Millisecond,
		Multiplier:    2.0,
		RetryableFunc: payerrors.IsRetryable,
	}, l)

	return NewResilientGateway(inner, circuitbreaker.NewManager(l), breakerCfg, retrier)
}

func TestResilientGateway_ChargeRetriesTransientFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := stubGateway(ctrl, OmniPayID)
	handle := &models.TransactionHandle{GatewayID: OmniPayID, ExternalID: "op_1"}

	gomock.InOrder(
		inner.EXPECT().Charge(gomock.Any(), handle, gomock.Any(), gomock.Any(), "tx-1").
			Return(nil, payerrors.Unavailable("charge", nil)),
		inner.EXPECT().Charge(gomock.Any(), handle, gomock.Any(), gomock.Any(), "tx-1").
			Return(nil, payerrors.Unavailable("charge", nil)),
		inner.EXPECT().Charge(gomock.Any(), handle, gomock.Any(), gomock.Any(), "tx-1").
			Return(&models.PaymentResult{Status: models.StatusCompleted}, nil),
	)

	g := newResilient(t, inner)
	result, err := g.Charge(context.Background(), handle, &models.MethodDetails{}, passedSecurity(), "tx-1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Equal(t, 3, result.Attempts)
}

func TestResilientGateway_ChargeWithoutIdempotencyKeyNeverRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := stubGateway(ctrl, OmniPayID)
	handle := &models.TransactionHandle{GatewayID: OmniPayID, ExternalID: "op_1"}

	inner.EXPECT().Charge(gomock.Any(), handle, gomock.Any(), gomock.Any(), "").
		Return(nil, payerrors.Unavailable("charge", nil)).
		Times(1)

	g := newResilient(t, inner)
	_, err := g.Charge(context.Background(), handle, &models.MethodDetails{}, passedSecurity(), "")

	assert.Error(t, err)
	assert.Equal(t, 1, payerrors.AttemptsOf(err))
}

func TestResilientGateway_BusinessDeclineNotRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := stubGateway(ctrl, OmniPayID)
	handle := &models.TransactionHandle{GatewayID: OmniPayID, ExternalID: "op_1"}

	inner.EXPECT().Charge(gomock.Any(), handle, gomock.Any(), gomock.Any(), "tx-1").
		Return(nil, payerrors.Rejected("insufficient funds")).
		Times(1)

	g := newResilient(t, inner)
	_, err := g.Charge(context.Background(), handle, &models.MethodDetails{}, passedSecurity(), "tx-1")

	assert.Equal(t, payerrors.KindProcessorRejected, payerrors.KindOf(err))
	assert.Equal(t, 1, payerrors.AttemptsOf(err))
}

func TestResilientGateway_BreakerOpensAndShortCircuits(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := stubGateway(ctrl, OmniPayID)
	handle := &models.TransactionHandle{GatewayID: OmniPayID, ExternalID: "op_1"}

	// One charge without an idempotency key is one adapter invocation; three
	// such failures trip the breaker.
	inner.EXPECT().Charge(gomock.Any(), handle, gomock.Any(), gomock.Any(), "").
		Return(nil, payerrors.Unavailable("charge", nil)).
		Times(3)

	g := newResilient(t, inner)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := g.Charge(ctx, handle, &models.MethodDetails{}, passedSecurity(), "")
		require.Error(t, err)
	}

	// Breaker is open: the adapter is never invoked again
	_, err := g.Charge(ctx, handle, &models.MethodDetails{}, passedSecurity(), "")
	assert.Equal(t, payerrors.KindCircuitOpen, payerrors.KindOf(err))
}

func TestResilientGateway_BreakerIgnoresDeclines(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := stubGateway(ctrl, OmniPayID)
	handle := &models.TransactionHandle{GatewayID: OmniPayID, ExternalID: "op_1"}

	inner.EXPECT().Charge(gomock.Any(), handle, gomock.Any(), gomock.Any(), "").
		Return(nil, payerrors.Rejected("declined")).
		Times(5)

	g := newResilient(t, inner)
	for i := 0; i < 5; i++ {
		_, err := g.Charge(context.Background(), handle, &models.MethodDetails{}, passedSecurity(), "")
		assert.Equal(t, payerrors.KindProcessorRejected, payerrors.KindOf(err))
	}
}

func TestResilientGateway_RefundNeverRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := stubGateway(ctrl, ShekelID)
	handle := &models.TransactionHandle{GatewayID: ShekelID, ExternalID: "il_1"}
	reason := &models.RefundReason{Code: models.RefundReasonDonorRequest, AuthorizedBy: "ops"}

	inner.EXPECT().Refund(gomock.Any(), handle, gomock.Any(), reason).
		Return(nil, payerrors.Timeout("refund", nil)).
		Times(1)

	g := newResilient(t, inner)
	_, err := g.Refund(context.Background(), handle, decimal.RequireFromString("10"), reason)

	assert.Equal(t, payerrors.KindProcessorTimeout, payerrors.KindOf(err))
}

func TestResilientGateway_StatusRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := stubGateway(ctrl, OmniPayID)
	handle := &models.TransactionHandle{GatewayID: OmniPayID, ExternalID: "op_1"}

	gomock.InOrder(
		inner.EXPECT().Status(gomock.Any(), handle).Return(nil, payerrors.Timeout("status", nil)),
		inner.EXPECT().Status(gomock.Any(), handle).
			Return(&models.PaymentResult{Status: models.StatusProcessing}, nil),
	)

	g := newResilient(t, inner)
	result, err := g.Status(context.Background(), handle)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
}
