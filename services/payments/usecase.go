package payments

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/givehub/payments/internal/pkg/models"
)

// PaymentUseCase drives the payment lifecycle. It is the only component
// allowed to construct transactions; the webhook path may only apply state
// transitions to existing ones.
type PaymentUseCase interface {
	// CreateTransaction validates the request and persists a PENDING
	// transaction without contacting any processor
	CreateTransaction(ctx context.Context, req *models.PaymentRequest) (*models.PaymentTransaction, error)

	// ProcessTransaction charges the transaction through its selected
	// gateway and reconciles the result into the canonical state machine
	ProcessTransaction(ctx context.Context, id string, method *models.MethodDetails, sec *models.SecurityContext) (*models.PaymentTransaction, error)

	// RefundTransaction refunds part or all of a COMPLETED transaction
	// through the same gateway that serviced it
	RefundTransaction(ctx context.Context, id string, amount decimal.Decimal, reason *models.RefundReason) (*models.PaymentTransaction, error)

	// GetStatus returns the transaction without mutating it
	GetStatus(ctx context.Context, id string) (*models.PaymentTransaction, error)
}

// WebhookUseCase reconciles asynchronous processor notifications into the
// same state machine the orchestrator uses.
type WebhookUseCase interface {
	// VerifyWebhook checks the payload signature against the processor's
	// secret; mismatches fail closed without any state change
	VerifyWebhook(payload []byte, signature, processorID string) (*models.WebhookEvent, error)

	// ApplyWebhook applies a verified event idempotently; events for
	// unknown transactions are archived as orphans
	ApplyWebhook(ctx context.Context, event *models.WebhookEvent) error
}
