package payments

import (
	"context"

	"github.com/givehub/payments/internal/pkg/models"
)

// TransactionRepo defines persistence for payment transactions, their
// append-only audit trail and orphaned webhook events.
type TransactionRepo interface {
	CreateTransaction(ctx context.Context, tx *models.PaymentTransaction) error
	GetTransaction(ctx context.Context, id string) (*models.PaymentTransaction, error)
	GetTransactionByExternalID(ctx context.Context, gatewayID, externalID string) (*models.PaymentTransaction, error)
	UpdateTransaction(ctx context.Context, tx *models.PaymentTransaction) error
	AppendAuditEntry(ctx context.Context, entry *models.AuditEntry) error
	ArchiveOrphanEvent(ctx context.Context, event *models.OrphanWebhookEvent) error
}
