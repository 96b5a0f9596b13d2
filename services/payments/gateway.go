package payments

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/givehub/payments/internal/pkg/models"
)

// PaymentGateway is the capability every processor adapter implements.
// A transaction is serviced by exactly one gateway for its entire lifetime.
type PaymentGateway interface {
	// ID returns the stable adapter identifier used for routing and breaker
	// state
	ID() string

	// Create opens a transaction with the external processor and returns
	// the processor-native handle
	Create(ctx context.Context, req *models.PaymentRequest) (*models.TransactionHandle, error)

	// Charge executes the funds movement. Implementations must refuse to
	// proceed without a passed fraud check, before any network call. A
	// non-empty idempotencyKey makes the call safe to retry.
	Charge(ctx context.Context, handle *models.TransactionHandle, method *models.MethodDetails, sec *models.SecurityContext, idempotencyKey string) (*models.PaymentResult, error)

	// Refund returns part or all of a captured amount
	Refund(ctx context.Context, handle *models.TransactionHandle, amount decimal.Decimal, reason *models.RefundReason) (*models.PaymentResult, error)

	// Status is an idempotent read-only poll
	Status(ctx context.Context, handle *models.TransactionHandle) (*models.PaymentResult, error)

	// MapNativeStatus translates one of the processor's status codes into a
	// canonical status; unrecognized codes map to FAILED, never to success
	MapNativeStatus(native string) models.PaymentStatus

	// WebhookSecret returns the shared secret used to verify this
	// processor's webhook signatures
	WebhookSecret() string
}

// LedgerGW posts completed donations to the downstream ledger. Best effort:
// a failure after a completed payment is logged as a discrepancy, never
// rolled back.
type LedgerGW interface {
	RecordDonation(ctx context.Context, tx *models.PaymentTransaction) error
}

// CampaignGW exposes the campaign collaborator: existence checks during
// validation and best-effort progress updates after completion.
type CampaignGW interface {
	CampaignExists(ctx context.Context, campaignID string) (bool, error)
	UpdateProgress(ctx context.Context, campaignID string, amount decimal.Decimal, currency string) error
}

// EventPublisher emits one lifecycle event per state transition.
type EventPublisher interface {
	PublishPaymentEvent(subject string, event *models.PaymentEvent) error
}
