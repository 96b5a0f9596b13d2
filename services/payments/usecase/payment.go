package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/givehub/payments/internal/pkg/logger"
	"github.com/givehub/payments/internal/pkg/models"
	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/internal/pkg/security"
	"github.com/givehub/payments/services/payments"
	"github.com/givehub/payments/services/payments/gateway"
)

const actorOrchestrator = "orchestrator"

// DedupStore marks an event id as processed at most once, with a release
// path for claims that must be retried. Satisfied by the shared Redis client.
type DedupStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// PaymentUC drives the payment lifecycle: it owns transaction creation,
// processing, refunds and the webhook reconciliation entry point, all of
// which funnel through one state-transition function.
type PaymentUC struct {
	cfg        *models.Config
	repo       payments.TransactionRepo
	registry   *gateway.Registry
	ledgerGW   payments.LedgerGW
	campaignGW payments.CampaignGW
	publisher  payments.EventPublisher
	redis      DedupStore
	locks      *lockTable
	logger     *logger.ZapLogger
}

// NewPaymentUC creates the payment use case
func NewPaymentUC(
	cfg *models.Config,
	repo payments.TransactionRepo,
	registry *gateway.Registry,
	ledgerGW payments.LedgerGW,
	campaignGW payments.CampaignGW,
	publisher payments.EventPublisher,
	redis DedupStore,
	l *logger.ZapLogger,
) *PaymentUC {
	return &PaymentUC{
		cfg:        cfg,
		repo:       repo,
		registry:   registry,
		ledgerGW:   ledgerGW,
		campaignGW: campaignGW,
		publisher:  publisher,
		redis:      redis,
		locks:      newLockTable(),
		logger:     l,
	}
}

// CreateTransaction validates the request, selects the servicing gateway
// and persists a PENDING transaction. No external processor is contacted.
func (uc *PaymentUC) CreateTransaction(ctx context.Context, req *models.PaymentRequest) (*models.PaymentTransaction, error) {
	if err := uc.validateRequest(ctx, req); err != nil {
		return nil, err
	}

	gw, err := uc.registry.ForCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	tx := &models.PaymentTransaction{
		ID:            uuid.New().String(),
		Amount:        req.Amount,
		Currency:      req.Currency,
		GatewayID:     gw.ID(),
		DonorID:       req.DonorID,
		AssociationID: req.AssociationID,
		CampaignID:    req.CampaignID,
		Status:        models.StatusPending,
		RefundedTotal: decimal.Zero,
		Metadata:      security.SanitizeMap(req.Metadata),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	entry := models.AuditEntry{
		TransactionID: tx.ID,
		Timestamp:     now,
		Action:        "created",
		Actor:         actorOrchestrator,
		Detail:        fmt.Sprintf("amount=%s currency=%s gateway=%s", tx.Amount.String(), tx.Currency, tx.GatewayID),
	}
	tx.AuditTrail = append(tx.AuditTrail, entry)

	if err := uc.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	if err := uc.repo.AppendAuditEntry(ctx, &entry); err != nil {
		uc.logger.Error("Failed to append audit entry",
			logger.String("transaction_id", tx.ID),
			logger.Err(err))
	}

	uc.publishEvent(tx)
	return tx, nil
}

func (uc *PaymentUC) validateRequest(ctx context.Context, req *models.PaymentRequest) error {
	if req == nil {
		return payerrors.Validation("payment request is required")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return payerrors.Validation("amount must be positive")
	}
	if req.Amount.GreaterThan(decimal.NewFromFloat(uc.cfg.Payment.MaxAmount)) {
		return payerrors.Validationf("amount exceeds maximum of %v", uc.cfg.Payment.MaxAmount)
	}
	if !uc.registry.Supports(req.Currency) {
		return payerrors.Validationf("unsupported currency %q", req.Currency)
	}
	if req.DonorID == "" {
		return payerrors.Validation("donor id is required")
	}
	if req.AssociationID == "" {
		return payerrors.Validation("association id is required")
	}

	if req.CampaignID != "" {
		exists, err := uc.campaignGW.CampaignExists(ctx, req.CampaignID)
		if err != nil {
			return fmt.Errorf("failed to validate campaign: %w", err)
		}
		if !exists {
			return payerrors.Validationf("unknown campaign %q", req.CampaignID)
		}
	}

	return nil
}

// ProcessTransaction charges the transaction through its gateway. The
// charge itself runs on a context detached from the caller: cancelling the
// call abandons only the caller's wait, never the money movement, so a
// cancelled request cannot strand the transaction in PROCESSING.
func (uc *PaymentUC) ProcessTransaction(ctx context.Context, id string, method *models.MethodDetails, sec *models.SecurityContext) (*models.PaymentTransaction, error) {
	type outcome struct {
		tx  *models.PaymentTransaction
		err error
	}

	done := make(chan outcome, 1)
	detached := context.WithoutCancel(ctx)

	go func() {
		tx, err := uc.process(detached, id, method, sec)
		done <- outcome{tx: tx, err: err}
	}()

	select {
	case <-ctx.Done():
		uc.logger.Warn("Caller abandoned in-flight payment processing, completing in background",
			logger.String("transaction_id", id))
		return nil, ctx.Err()
	case out := <-done:
		return out.tx, out.err
	}
}

// process does the actual work under the per-transaction write lock.
func (uc *PaymentUC) process(ctx context.Context, id string, method *models.MethodDetails, sec *models.SecurityContext) (*models.PaymentTransaction, error) {
	lock := uc.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	tx, err := uc.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := uc.applyTransition(ctx, tx, models.StatusProcessing, actorOrchestrator, "charge initiated"); err != nil {
		return nil, err
	}

	// Fraud gate: rejected before any adapter network call. The adapters
	// enforce the same rule independently.
	if sec == nil || !sec.FraudChecksPassed {
		secErr := payerrors.Security("fraud checks not passed")
		uc.recordFailure(ctx, tx, secErr, 0)
		return tx, secErr
	}

	gw, err := uc.registry.ByID(tx.GatewayID)
	if err != nil {
		return nil, err
	}

	handle, err := uc.ensureExternalTransaction(ctx, tx, gw)
	if err != nil {
		uc.recordFailure(ctx, tx, err, payerrors.AttemptsOf(err))
		return tx, err
	}

	// The transaction id doubles as the idempotency key, making the
	// charge safe for the wrapper to retry.
	result, err := gw.Charge(ctx, handle, method, sec, tx.ID)
	if err != nil {
		uc.recordFailure(ctx, tx, err, payerrors.AttemptsOf(err))
		return tx, err
	}

	tx.RetryCount = result.Attempts
	if result.ProcessorRef != "" {
		detail := fmt.Sprintf("processor_ref=%s attempts=%d", result.ProcessorRef, result.Attempts)
		uc.logger.Debug("Charge returned", logger.String("transaction_id", tx.ID), logger.String("detail", detail))
	}

	switch result.Status {
	case models.StatusCompleted:
		if err := uc.applyTransition(ctx, tx, models.StatusCompleted, actorOrchestrator,
			fmt.Sprintf("charge completed after %d attempt(s)", result.Attempts)); err != nil {
			return nil, err
		}
		uc.settleDownstream(ctx, tx)

	case models.StatusProcessing:
		// Processor accepted the charge asynchronously; the webhook
		// reconciler will land the terminal status.
		uc.logger.Info("Charge accepted for asynchronous completion",
			logger.String("transaction_id", tx.ID),
			logger.String("native_status", result.NativeStatus))

	case models.StatusCancelled:
		if err := uc.applyTransition(ctx, tx, models.StatusCancelled, actorOrchestrator, "charge voided by processor"); err != nil {
			return nil, err
		}

	default:
		declineErr := payerrors.Rejected(result.DeclineMessage)
		uc.recordFailure(ctx, tx, declineErr, result.Attempts)
		return tx, declineErr
	}

	return tx, nil
}

// ensureExternalTransaction opens the processor-side transaction exactly
// once; the external id is never overwritten.
func (uc *PaymentUC) ensureExternalTransaction(ctx context.Context, tx *models.PaymentTransaction, gw payments.PaymentGateway) (*models.TransactionHandle, error) {
	if tx.ExternalID != nil && *tx.ExternalID != "" {
		return &models.TransactionHandle{GatewayID: tx.GatewayID, ExternalID: *tx.ExternalID}, nil
	}

	req := &models.PaymentRequest{
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		DonorID:       tx.DonorID,
		AssociationID: tx.AssociationID,
		CampaignID:    tx.CampaignID,
		Metadata:      tx.Metadata,
	}

	handle, err := gw.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	tx.ExternalID = &handle.ExternalID
	if err := uc.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to persist external transaction id: %w", err)
	}

	return handle, nil
}

// recordFailure lands the transaction in FAILED with the redacted error
// and attempt count on the audit trail. The original error is re-raised by
// the caller; a failed payment is never silently swallowed.
func (uc *PaymentUC) recordFailure(ctx context.Context, tx *models.PaymentTransaction, cause error, attempts int) {
	tx.RetryCount = attempts
	tx.LastError = &models.LastError{
		Kind:    payerrors.KindOf(cause).String(),
		Message: security.Sanitize(cause.Error()),
	}

	detail := fmt.Sprintf("%s (attempts=%d)", tx.LastError.Message, attempts)
	if err := uc.applyTransition(ctx, tx, models.StatusFailed, actorOrchestrator, detail); err != nil {
		uc.logger.Error("Failed to record payment failure",
			logger.String("transaction_id", tx.ID),
			logger.Err(err))
	}
}

// settleDownstream runs the post-completion bookkeeping. The payment is
// authoritative: a downstream failure is logged as a discrepancy for
// asynchronous reconciliation, never rolled back.
func (uc *PaymentUC) settleDownstream(ctx context.Context, tx *models.PaymentTransaction) {
	if err := uc.ledgerGW.RecordDonation(ctx, tx); err != nil {
		uc.logger.Error("Ledger update failed after completed payment, discrepancy requires reconciliation",
			logger.String("transaction_id", tx.ID),
			logger.String("amount", tx.Amount.String()),
			logger.String("currency", tx.Currency),
			logger.Err(err))
	}

	if tx.CampaignID != "" {
		if err := uc.campaignGW.UpdateProgress(ctx, tx.CampaignID, tx.Amount, tx.Currency); err != nil {
			uc.logger.Error("Campaign progress update failed after completed payment",
				logger.String("transaction_id", tx.ID),
				logger.String("campaign_id", tx.CampaignID),
				logger.Err(err))
		}
	}
}

// RefundTransaction refunds part or all of a COMPLETED transaction through
// the gateway that serviced it. Currency routing is never re-evaluated.
func (uc *PaymentUC) RefundTransaction(ctx context.Context, id string, amount decimal.Decimal, reason *models.RefundReason) (*models.PaymentTransaction, error) {
	if err := reason.Validate(); err != nil {
		return nil, payerrors.Wrap(payerrors.KindValidation, "invalid refund reason", err)
	}

	lock := uc.locks.get(id)
	lock.Lock()
	defer lock.Unlock()

	tx, err := uc.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}

	if tx.Status != models.StatusCompleted {
		return nil, payerrors.Validationf("cannot refund transaction in status %s", tx.Status)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, payerrors.Validation("refund amount must be positive")
	}
	if amount.GreaterThan(tx.Amount) {
		return nil, payerrors.Validation("refund amount exceeds original amount")
	}
	if tx.ExternalID == nil || *tx.ExternalID == "" {
		return nil, payerrors.Validation("transaction has no external id to refund against")
	}

	gw, err := uc.registry.ByID(tx.GatewayID)
	if err != nil {
		return nil, err
	}

	handle := &models.TransactionHandle{GatewayID: tx.GatewayID, ExternalID: *tx.ExternalID}
	result, err := gw.Refund(ctx, handle, amount, reason)
	if err != nil {
		tx.LastError = &models.LastError{
			Kind:    payerrors.KindOf(err).String(),
			Message: security.Sanitize(err.Error()),
		}
		entry := models.AuditEntry{
			TransactionID: tx.ID,
			Timestamp:     time.Now().UTC(),
			Action:        "refund_failed",
			Actor:         reason.AuthorizedBy,
			Detail:        tx.LastError.Message,
		}
		tx.AuditTrail = append(tx.AuditTrail, entry)
		if repoErr := uc.repo.UpdateTransaction(ctx, tx); repoErr != nil {
			uc.logger.Error("Failed to persist refund failure",
				logger.String("transaction_id", tx.ID), logger.Err(repoErr))
		}
		if repoErr := uc.repo.AppendAuditEntry(ctx, &entry); repoErr != nil {
			uc.logger.Error("Failed to append audit entry",
				logger.String("transaction_id", tx.ID), logger.Err(repoErr))
		}
		return tx, err
	}

	tx.RefundedTotal = tx.RefundedTotal.Add(amount)

	target := models.StatusPartiallyRefunded
	if tx.RefundedTotal.Equal(tx.Amount) {
		target = models.StatusRefunded
	}

	detail := fmt.Sprintf("refunded %s %s, reason=%s, authorized_by=%s, processor_ref=%s",
		amount.String(), tx.Currency, reason.Code, reason.AuthorizedBy, result.ProcessorRef)
	if err := uc.applyTransition(ctx, tx, target, reason.AuthorizedBy, detail); err != nil {
		return nil, err
	}

	return tx, nil
}

// GetStatus returns the transaction under the read lock, concurrent with
// other reads but never with a transition.
func (uc *PaymentUC) GetStatus(ctx context.Context, id string) (*models.PaymentTransaction, error) {
	lock := uc.locks.get(id)
	lock.RLock()
	defer lock.RUnlock()

	return uc.repo.GetTransaction(ctx, id)
}
