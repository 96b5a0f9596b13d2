package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givehub/payments/internal/pkg/models"
	"github.com/givehub/payments/internal/pkg/payerrors"
)

const testWebhookSecret = "whsec_test_secret"

func newWebhookFixture(t *testing.T, ctrl *gomock.Controller) (*WebhookUC, *ucFixture) {
	t.Helper()
	f := newFixture(t, ctrl)
	uc := NewWebhookUC(f.uc, f.uc.registry, f.uc.logger)
	return uc, f
}

func signPayload(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookBody(eventID, externalID, status string) []byte {
	return []byte(fmt.Sprintf(
		`{"event_id":%q,"transaction_id":%q,"status":%q,"occurred_at":"2026-08-30T10:00:00Z"}`,
		eventID, externalID, status))
}

func completedWebhookEvent() *models.WebhookEvent {
	return &models.WebhookEvent{
		ProcessorID:  testGatewayID,
		EventID:      "evt-1",
		ExternalID:   "op_55",
		NativeStatus: "succeeded",
		OccurredAt:   time.Now().UTC(),
		RawPayload:   webhookBody("evt-1", "op_55", "succeeded"),
	}
}

func TestWebhookUC_VerifyWebhook(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, f := newWebhookFixture(t, ctrl)
	f.gw.EXPECT().WebhookSecret().Return(testWebhookSecret).AnyTimes()

	t.Run("valid signature accepted", func(t *testing.T) {
		payload := webhookBody("evt-1", "op_55", "succeeded")

		event, err := uc.VerifyWebhook(payload, signPayload(payload), testGatewayID)
		require.NoError(t, err)
		assert.Equal(t, "evt-1", event.EventID)
		assert.Equal(t, "op_55", event.ExternalID)
		assert.Equal(t, "succeeded", event.NativeStatus)
		assert.Equal(t, payload, event.RawPayload)
	})

	t.Run("tampered payload rejected", func(t *testing.T) {
		payload := webhookBody("evt-1", "op_55", "succeeded")
		signature := signPayload(payload)
		tampered := webhookBody("evt-1", "op_55", "failed")

		event, err := uc.VerifyWebhook(tampered, signature, testGatewayID)
		assert.Nil(t, event)
		assert.Equal(t, payerrors.KindSignatureInvalid, payerrors.KindOf(err))
	})

	t.Run("unknown processor rejected", func(t *testing.T) {
		payload := webhookBody("evt-1", "op_55", "succeeded")

		_, err := uc.VerifyWebhook(payload, signPayload(payload), "no-such-processor")
		assert.Equal(t, payerrors.KindSignatureInvalid, payerrors.KindOf(err))
	})

	t.Run("malformed payload rejected even with valid signature", func(t *testing.T) {
		payload := []byte(`{"event_id":`)

		_, err := uc.VerifyWebhook(payload, signPayload(payload), testGatewayID)
		assert.Equal(t, payerrors.KindSignatureInvalid, payerrors.KindOf(err))
	})

	t.Run("incomplete payload rejected", func(t *testing.T) {
		payload := []byte(`{"event_id":"evt-1"}`)

		_, err := uc.VerifyWebhook(payload, signPayload(payload), testGatewayID)
		assert.Equal(t, payerrors.KindSignatureInvalid, payerrors.KindOf(err))
	})
}

func TestWebhookUC_VerifyWebhook_MissingSecret(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, f := newWebhookFixture(t, ctrl)
	f.gw.EXPECT().WebhookSecret().Return("")

	payload := webhookBody("evt-1", "op_55", "succeeded")
	_, err := uc.VerifyWebhook(payload, signPayload(payload), testGatewayID)
	assert.Equal(t, payerrors.KindSignatureInvalid, payerrors.KindOf(err))
}

func TestWebhookUC_ApplyWebhook_CompletesPendingTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, f := newWebhookFixture(t, ctrl)
	f.allowAudit()

	tx := pendingTransaction("tx-1")
	externalID := "op_55"
	tx.ExternalID = &externalID

	f.repo.EXPECT().GetTransactionByExternalID(gomock.Any(), testGatewayID, "op_55").Return(tx, nil)
	f.repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(tx, nil)
	f.gw.EXPECT().MapNativeStatus("succeeded").Return(models.StatusCompleted)

	var statuses []models.PaymentStatus
	f.repo.EXPECT().
		UpdateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *models.PaymentTransaction) error {
			statuses = append(statuses, tx.Status)
			return nil
		}).Times(2)

	err := uc.ApplyWebhook(context.Background(), completedWebhookEvent())
	require.NoError(t, err)

	// A terminal webhook that overtakes the charge response still walks
	// the full path
	assert.Equal(t, []models.PaymentStatus{models.StatusProcessing, models.StatusCompleted}, statuses)
	assert.Equal(t, models.StatusCompleted, tx.Status)
	assert.NotNil(t, tx.CompletedAt)
}

func TestWebhookUC_ApplyWebhook_DuplicateDeliveryIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, f := newWebhookFixture(t, ctrl)
	f.allowAudit()

	tx := pendingTransaction("tx-1")
	externalID := "op_55"
	tx.ExternalID = &externalID

	f.repo.EXPECT().GetTransactionByExternalID(gomock.Any(), testGatewayID, "op_55").Return(tx, nil)
	f.repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(tx, nil)
	f.repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.gw.EXPECT().MapNativeStatus("succeeded").Return(models.StatusCompleted)

	event := completedWebhookEvent()
	require.NoError(t, uc.ApplyWebhook(context.Background(), event))

	// Second delivery of the same event id touches nothing
	require.NoError(t, uc.ApplyWebhook(context.Background(), event))
}

func TestWebhookUC_ApplyWebhook_OrphanArchived(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, f := newWebhookFixture(t, ctrl)

	f.repo.EXPECT().GetTransactionByExternalID(gomock.Any(), testGatewayID, "op_55").Return(nil, nil)

	var archived *models.OrphanWebhookEvent
	f.repo.EXPECT().
		ArchiveOrphanEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, orphan *models.OrphanWebhookEvent) error {
			archived = orphan
			return nil
		})

	event := completedWebhookEvent()
	require.NoError(t, uc.ApplyWebhook(context.Background(), event))

	require.NotNil(t, archived)
	assert.Equal(t, testGatewayID, archived.ProcessorID)
	assert.Equal(t, "evt-1", archived.EventID)
	assert.Equal(t, "op_55", archived.ExternalID)
	assert.Equal(t, string(event.RawPayload), archived.Payload)
}

func TestWebhookUC_ApplyWebhook_StaleStatusIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, f := newWebhookFixture(t, ctrl)

	tx := pendingTransaction("tx-1")
	tx.Status = models.StatusCompleted
	externalID := "op_55"
	tx.ExternalID = &externalID

	f.repo.EXPECT().GetTransactionByExternalID(gomock.Any(), testGatewayID, "op_55").Return(tx, nil)
	f.repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(tx, nil)
	f.gw.EXPECT().MapNativeStatus("processing").Return(models.StatusProcessing)

	// No UpdateTransaction expectation: a stale delivery must not write
	event := completedWebhookEvent()
	event.NativeStatus = "processing"
	require.NoError(t, uc.ApplyWebhook(context.Background(), event))

	assert.Equal(t, models.StatusCompleted, tx.Status)
}

func TestWebhookUC_ApplyWebhook_SameStatusNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, f := newWebhookFixture(t, ctrl)

	tx := pendingTransaction("tx-1")
	tx.Status = models.StatusCompleted
	externalID := "op_55"
	tx.ExternalID = &externalID

	f.repo.EXPECT().GetTransactionByExternalID(gomock.Any(), testGatewayID, "op_55").Return(tx, nil)
	f.repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(tx, nil)
	f.gw.EXPECT().MapNativeStatus("succeeded").Return(models.StatusCompleted)

	require.NoError(t, uc.ApplyWebhook(context.Background(), completedWebhookEvent()))
}

func TestWebhookUC_ApplyWebhook_RedeliveryAfterTransientFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, f := newWebhookFixture(t, ctrl)
	f.allowAudit()

	tx := pendingTransaction("tx-1")
	externalID := "op_55"
	tx.ExternalID = &externalID

	// First delivery hits a transient repo failure after the dedup claim
	f.repo.EXPECT().
		GetTransactionByExternalID(gomock.Any(), testGatewayID, "op_55").
		Return(nil, fmt.Errorf("connection reset"))

	event := completedWebhookEvent()
	require.Error(t, uc.ApplyWebhook(context.Background(), event))

	// The processor redelivers the same event id once the fault clears; it
	// must be applied, not discarded as a duplicate
	f.repo.EXPECT().GetTransactionByExternalID(gomock.Any(), testGatewayID, "op_55").Return(tx, nil)
	f.repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(tx, nil)
	f.repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	f.gw.EXPECT().MapNativeStatus("succeeded").Return(models.StatusCompleted)

	require.NoError(t, uc.ApplyWebhook(context.Background(), event))
	assert.Equal(t, models.StatusCompleted, tx.Status)
}

func TestWebhookUC_ApplyWebhook_RefundWebhookWhilePending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, f := newWebhookFixture(t, ctrl)
	f.allowAudit()

	tx := pendingTransaction("tx-1")
	externalID := "op_55"
	tx.ExternalID = &externalID

	f.repo.EXPECT().GetTransactionByExternalID(gomock.Any(), testGatewayID, "op_55").Return(tx, nil)
	f.repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(tx, nil)
	f.gw.EXPECT().MapNativeStatus("refunded").Return(models.StatusRefunded)

	var statuses []models.PaymentStatus
	f.repo.EXPECT().
		UpdateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *models.PaymentTransaction) error {
			statuses = append(statuses, tx.Status)
			return nil
		}).Times(3)

	event := completedWebhookEvent()
	event.NativeStatus = "refunded"
	require.NoError(t, uc.ApplyWebhook(context.Background(), event))

	// The refund overtook both the charge response and the completion
	// webhook; every skipped status is walked, none is illegal
	assert.Equal(t, []models.PaymentStatus{
		models.StatusProcessing,
		models.StatusCompleted,
		models.StatusRefunded,
	}, statuses)
	assert.Equal(t, models.StatusRefunded, tx.Status)
	assert.NotNil(t, tx.RefundedAt)
}

func TestWebhookUC_ApplyWebhook_RefundAfterCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uc, f := newWebhookFixture(t, ctrl)
	f.allowAudit()

	tx := pendingTransaction("tx-1")
	tx.Status = models.StatusCompleted
	externalID := "op_55"
	tx.ExternalID = &externalID

	f.repo.EXPECT().GetTransactionByExternalID(gomock.Any(), testGatewayID, "op_55").Return(tx, nil)
	f.repo.EXPECT().GetTransaction(gomock.Any(), "tx-1").Return(tx, nil)
	f.repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(nil)
	f.gw.EXPECT().MapNativeStatus("refunded").Return(models.StatusRefunded)

	event := completedWebhookEvent()
	event.NativeStatus = "refunded"
	require.NoError(t, uc.ApplyWebhook(context.Background(), event))

	assert.Equal(t, models.StatusRefunded, tx.Status)
	assert.NotNil(t, tx.RefundedAt)
}
