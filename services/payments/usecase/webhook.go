package usecase

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/givehub/payments/internal/pkg/logger"
	"github.com/givehub/payments/internal/pkg/models"
	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/internal/pkg/security"
	"github.com/givehub/payments/services/payments/gateway"
)

const webhookDedupKeyFormat = "webhook:dedup:%s:%s"

type webhookPayload struct {
	EventID      string    `json:"event_id"`
	ExternalID   string    `json:"transaction_id"`
	NativeStatus string    `json:"status"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// WebhookUC verifies and applies processor webhook notifications. It shares
// the payment use case's per-transaction locks and transition function so
// that webhook deliveries and synchronous processing serialize against the
// same state machine.
type WebhookUC struct {
	payments *PaymentUC
	registry *gateway.Registry
	dedupTTL time.Duration
	logger   *logger.ZapLogger
}

// NewWebhookUC creates the webhook use case
func NewWebhookUC(payments *PaymentUC, registry *gateway.Registry, l *logger.ZapLogger) *WebhookUC {
	ttl := time.Duration(payments.cfg.Payment.WebhookDedupTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &WebhookUC{
		payments: payments,
		registry: registry,
		dedupTTL: ttl,
		logger:   l,
	}
}

// VerifyWebhook authenticates a raw webhook body against the processor's
// shared secret. Fail closed: any mismatch, unknown processor or malformed
// payload is rejected before the body influences anything.
func (uc *WebhookUC) VerifyWebhook(payload []byte, signature string, processorID string) (*models.WebhookEvent, error) {
	gw, err := uc.registry.ByID(processorID)
	if err != nil {
		uc.logger.Warn("Webhook for unknown processor rejected",
			logger.String("processor_id", processorID))
		return nil, payerrors.SignatureInvalid(processorID)
	}

	secret := gw.WebhookSecret()
	if secret == "" {
		uc.logger.Error("Processor has no webhook secret configured",
			logger.String("processor_id", processorID))
		return nil, payerrors.SignatureInvalid(processorID)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		uc.logger.Warn("Webhook signature mismatch",
			logger.String("processor_id", processorID),
			logger.String("fingerprint", security.Fingerprint(fmt.Errorf("sig mismatch %s", processorID))),
			logger.Bool("alert", true))
		return nil, payerrors.SignatureInvalid(processorID)
	}

	var body webhookPayload
	if err := json.Unmarshal(payload, &body); err != nil {
		uc.logger.Warn("Authenticated webhook payload malformed",
			logger.String("processor_id", processorID))
		return nil, payerrors.SignatureInvalid(processorID)
	}
	if body.EventID == "" || body.ExternalID == "" || body.NativeStatus == "" {
		return nil, payerrors.SignatureInvalid(processorID)
	}

	return &models.WebhookEvent{
		ProcessorID:  processorID,
		EventID:      body.EventID,
		ExternalID:   body.ExternalID,
		NativeStatus: body.NativeStatus,
		OccurredAt:   body.OccurredAt,
		RawPayload:   payload,
	}, nil
}

// ApplyWebhook reconciles a verified event against local state. Duplicate
// deliveries and out-of-order stale statuses are acknowledged without
// effect; events for unknown transactions are archived, never dropped.
func (uc *WebhookUC) ApplyWebhook(ctx context.Context, event *models.WebhookEvent) error {
	fresh, err := uc.markProcessed(ctx, event)
	if err != nil {
		return err
	}
	if !fresh {
		uc.logger.Info("Duplicate webhook delivery ignored",
			logger.String("processor_id", event.ProcessorID),
			logger.String("event_id", event.EventID))
		return nil
	}

	if err := uc.reconcile(ctx, event); err != nil {
		// Release the claim so the processor's retry of this delivery is
		// not discarded as a duplicate while the failure lasts.
		uc.releaseClaim(ctx, event)
		return err
	}
	return nil
}

func (uc *WebhookUC) reconcile(ctx context.Context, event *models.WebhookEvent) error {
	tx, err := uc.payments.repo.GetTransactionByExternalID(ctx, event.ProcessorID, event.ExternalID)
	if err != nil {
		if payerrors.KindOf(err) == payerrors.KindValidation {
			return uc.archiveOrphan(ctx, event)
		}
		return err
	}
	if tx == nil {
		return uc.archiveOrphan(ctx, event)
	}

	gw, err := uc.registry.ByID(event.ProcessorID)
	if err != nil {
		return err
	}

	// Unrecognized native codes come back as FAILED, never as a success.
	target := gw.MapNativeStatus(event.NativeStatus)

	lock := uc.payments.locks.get(tx.ID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; a concurrent charge may have moved the state.
	tx, err = uc.payments.repo.GetTransaction(ctx, tx.ID)
	if err != nil {
		return err
	}

	if statusRank[target] < statusRank[tx.Status] {
		uc.logger.Info("Stale webhook status ignored",
			logger.String("transaction_id", tx.ID),
			logger.String("local_status", string(tx.Status)),
			logger.String("webhook_status", string(target)))
		return nil
	}
	if target == tx.Status {
		return nil
	}

	actor := "webhook:" + event.ProcessorID
	detail := fmt.Sprintf("event_id=%s native_status=%s", event.EventID, event.NativeStatus)

	// A notification can overtake earlier ones; walk the skipped statuses
	// so every intermediate transition stays legal and the audit trail
	// records the full path. A refund webhook against a PENDING transaction
	// walks PROCESSING and COMPLETED before landing.
	if tx.Status == models.StatusPending && statusRank[target] > statusRank[models.StatusProcessing] {
		if err := uc.payments.applyTransition(ctx, tx, models.StatusProcessing, actor, detail); err != nil {
			return err
		}
	}
	if tx.Status == models.StatusProcessing && statusRank[target] > statusRank[models.StatusCompleted] {
		if err := uc.payments.applyTransition(ctx, tx, models.StatusCompleted, actor, detail); err != nil {
			return err
		}
	}

	return uc.payments.applyTransition(ctx, tx, target, actor, detail)
}

// releaseClaim drops the dedup key after a failed apply so the processor's
// redelivery is processed instead of swallowed.
func (uc *WebhookUC) releaseClaim(ctx context.Context, event *models.WebhookEvent) {
	key := fmt.Sprintf(webhookDedupKeyFormat, event.ProcessorID, event.EventID)
	if err := uc.payments.redis.Delete(ctx, key); err != nil {
		uc.logger.Error("Failed to release webhook dedup claim",
			logger.String("processor_id", event.ProcessorID),
			logger.String("event_id", event.EventID),
			logger.Err(err))
	}
}

// markProcessed claims the event id atomically. Returns false when another
// delivery already claimed it.
func (uc *WebhookUC) markProcessed(ctx context.Context, event *models.WebhookEvent) (bool, error) {
	key := fmt.Sprintf(webhookDedupKeyFormat, event.ProcessorID, event.EventID)
	ok, err := uc.payments.redis.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), uc.dedupTTL)
	if err != nil {
		return false, fmt.Errorf("failed to deduplicate webhook event: %w", err)
	}
	return ok, nil
}

func (uc *WebhookUC) archiveOrphan(ctx context.Context, event *models.WebhookEvent) error {
	orphan := &models.OrphanWebhookEvent{
		ProcessorID:  event.ProcessorID,
		EventID:      event.EventID,
		ExternalID:   event.ExternalID,
		NativeStatus: event.NativeStatus,
		Payload:      string(event.RawPayload),
		ReceivedAt:   time.Now().UTC(),
	}
	uc.logger.Warn("Webhook references unknown transaction, archiving",
		logger.String("processor_id", event.ProcessorID),
		logger.String("event_id", event.EventID),
		logger.String("external_id", event.ExternalID))
	return uc.payments.repo.ArchiveOrphanEvent(ctx, orphan)
}
