package usecase

import (
	"context"
	"time"

	"github.com/givehub/payments/internal/pkg/constants"
	"github.com/givehub/payments/internal/pkg/logger"
	"github.com/givehub/payments/internal/pkg/models"
	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/internal/pkg/security"
)

// statusRank orders statuses along the monotonic axis of the state
// machine, used by webhook reconciliation to tell a stale delivery from a
// missed one.
var statusRank = map[models.PaymentStatus]int{
	models.StatusPending:           0,
	models.StatusProcessing:        1,
	models.StatusCompleted:         2,
	models.StatusFailed:            2,
	models.StatusCancelled:         2,
	models.StatusRefunded:          3,
	models.StatusPartiallyRefunded: 3,
}

// eventSubjects maps each status to the subject its transition event is
// published on.
var eventSubjects = map[models.PaymentStatus]string{
	models.StatusPending:           constants.SubjectPaymentCreated,
	models.StatusProcessing:        constants.SubjectPaymentProcessing,
	models.StatusCompleted:         constants.SubjectPaymentCompleted,
	models.StatusFailed:            constants.SubjectPaymentFailed,
	models.StatusCancelled:         constants.SubjectPaymentFailed,
	models.StatusRefunded:          constants.SubjectPaymentRefunded,
	models.StatusPartiallyRefunded: constants.SubjectPaymentRefunded,
}

// applyTransition is the single state-transition function shared by the
// synchronous orchestration path and the webhook reconciler. It enforces
// the state machine, appends the audit entry, persists the transaction and
// emits the transition event. An illegal transition is a consistency bug:
// it is logged at the highest severity and returned, never swallowed.
func (uc *PaymentUC) applyTransition(ctx context.Context, tx *models.PaymentTransaction, to models.PaymentStatus, actor, detail string) error {
	if !tx.Status.CanTransition(to) {
		err := payerrors.IllegalTransition(string(tx.Status), string(to))
		uc.logger.Error("Illegal status transition attempted",
			logger.String("transaction_id", tx.ID),
			logger.String("from", string(tx.Status)),
			logger.String("to", string(to)),
			logger.String("actor", actor),
			logger.Bool("alert", true))
		return err
	}

	now := time.Now().UTC()
	tx.Status = to
	tx.UpdatedAt = now

	switch to {
	case models.StatusProcessing:
		tx.ProcessedAt = &now
	case models.StatusCompleted:
		tx.CompletedAt = &now
	case models.StatusRefunded, models.StatusPartiallyRefunded:
		tx.RefundedAt = &now
	}

	entry := models.AuditEntry{
		TransactionID: tx.ID,
		Timestamp:     now,
		Action:        "status:" + string(to),
		Actor:         actor,
		Detail:        security.Sanitize(detail),
	}
	tx.AuditTrail = append(tx.AuditTrail, entry)

	if err := uc.repo.UpdateTransaction(ctx, tx); err != nil {
		return err
	}
	if err := uc.repo.AppendAuditEntry(ctx, &entry); err != nil {
		// The transaction update is authoritative; a failed audit insert
		// must still be visible somewhere.
		uc.logger.Error("Failed to append audit entry",
			logger.String("transaction_id", tx.ID),
			logger.Err(err))
	}

	uc.publishEvent(tx)
	return nil
}

// publishEvent emits the transition event; a publish failure never affects
// the persisted transaction state.
func (uc *PaymentUC) publishEvent(tx *models.PaymentTransaction) {
	subject, ok := eventSubjects[tx.Status]
	if !ok {
		return
	}

	event := &models.PaymentEvent{
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Currency:      tx.Currency,
		Status:        tx.Status,
		Timestamp:     time.Now().UTC(),
	}

	if err := uc.publisher.PublishPaymentEvent(subject, event); err != nil {
		uc.logger.Error("Failed to publish payment event",
			logger.String("transaction_id", tx.ID),
			logger.String("subject", subject),
			logger.Err(err))
	}
}
