package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	errRefundReasonRequired = errors.New("refund reason code is required")
	errRefundActorRequired  = errors.New("refund authorizing actor is required")
)

// PaymentRequest is a donor's intent to pay an association. Immutable once
// constructed; amounts are fixed-point decimals, never floats.
type PaymentRequest struct {
	Amount        decimal.Decimal   `json:"amount"`
	Currency      string            `json:"currency"`
	DonorID       string            `json:"donor_id"`
	AssociationID string            `json:"association_id"`
	CampaignID    string            `json:"campaign_id,omitempty"`
	NationalID    string            `json:"national_id,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	RiskHints     map[string]string `json:"risk_hints,omitempty"`
}

// LastError is the redacted record of the most recent failure on a transaction.
type LastError struct {
	Kind    string `json:"kind" db:"last_error_kind"`
	Message string `json:"message" db:"last_error_message"`
}

// AuditEntry is one append-only line of a transaction's audit trail.
type AuditEntry struct {
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	Timestamp     time.Time `json:"timestamp" db:"timestamp"`
	Action        string    `json:"action" db:"action"`
	Actor         string    `json:"actor" db:"actor"`
	Detail        string    `json:"detail" db:"detail"`
}

// PaymentTransaction is the aggregate root for one donation payment.
// Amount, currency and the servicing gateway never change after creation;
// ExternalID is set at most once.
type PaymentTransaction struct {
	ID            string            `json:"id" db:"id"`
	ExternalID    *string           `json:"external_id,omitempty" db:"external_id"`
	Amount        decimal.Decimal   `json:"amount" db:"amount"`
	Currency      string            `json:"currency" db:"currency"`
	GatewayID     string            `json:"gateway_id" db:"gateway_id"`
	DonorID       string            `json:"donor_id" db:"donor_id"`
	AssociationID string            `json:"association_id" db:"association_id"`
	CampaignID    string            `json:"campaign_id,omitempty" db:"campaign_id"`
	Status        PaymentStatus     `json:"status" db:"status"`
	RetryCount    int               `json:"retry_count" db:"retry_count"`
	LastError     *LastError        `json:"last_error,omitempty"`
	RefundedTotal decimal.Decimal   `json:"refunded_total" db:"refunded_total"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	ProcessedAt   *time.Time        `json:"processed_at,omitempty" db:"processed_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
	RefundedAt    *time.Time        `json:"refunded_at,omitempty" db:"refunded_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
	AuditTrail    []AuditEntry      `json:"audit_trail,omitempty"`
}

// SecurityContext carries the fraud screening result for one request.
// Gateways must reject any charge whose checks did not pass, before any
// network call.
type SecurityContext struct {
	SessionID         string    `json:"session_id"`
	IPAddress         string    `json:"ip_address"`
	UserAgent         string    `json:"user_agent"`
	FraudChecksPassed bool      `json:"fraud_checks_passed"`
	RiskScore         float64   `json:"risk_score"`
	Timestamp         time.Time `json:"timestamp"`
}

// RefundReasonCode enumerates why a refund was authorized.
type RefundReasonCode string

const (
	RefundReasonDonorRequest  RefundReasonCode = "DONOR_REQUEST"
	RefundReasonDuplicate     RefundReasonCode = "DUPLICATE_CHARGE"
	RefundReasonFraud         RefundReasonCode = "FRAUD"
	RefundReasonCampaignClose RefundReasonCode = "CAMPAIGN_CLOSED"
	RefundReasonProcessorErr  RefundReasonCode = "PROCESSOR_ERROR"
)

// RefundReason is required on every refund; it is never defaulted.
type RefundReason struct {
	Code         RefundReasonCode `json:"code"`
	Description  string           `json:"description"`
	AuthorizedBy string           `json:"authorized_by"`
	Documents    []string         `json:"documents,omitempty"`
}

// Validate checks the refund reason is complete.
func (r *RefundReason) Validate() error {
	if r == nil || r.Code == "" {
		return errRefundReasonRequired
	}
	if r.AuthorizedBy == "" {
		return errRefundActorRequired
	}
	return nil
}

// MethodDetails identifies the payment instrument. Token and CVV must never
// be logged; adapters send them to processors only.
type MethodDetails struct {
	Token       string `json:"token"`
	Last4       string `json:"last4,omitempty"`
	ExpiryMonth string `json:"expiry_month,omitempty"`
	ExpiryYear  string `json:"expiry_year,omitempty"`
	HolderName  string `json:"holder_name,omitempty"`
}

// TransactionHandle references a transaction opened with a processor.
type TransactionHandle struct {
	GatewayID  string `json:"gateway_id"`
	ExternalID string `json:"external_id"`
}

// PaymentResult is the normalized outcome of one adapter operation.
type PaymentResult struct {
	ExternalID     string          `json:"external_id"`
	NativeStatus   string          `json:"native_status"`
	Status         PaymentStatus   `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	ProcessorRef   string          `json:"processor_ref,omitempty"`
	DeclineMessage string          `json:"decline_message,omitempty"`
	// Attempts is the number of adapter invocations the call consumed,
	// filled by the resilience wrapper for the audit trail.
	Attempts int `json:"attempts,omitempty"`
}

// PaymentEvent is the payload published on every state transition.
type PaymentEvent struct {
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
	Timestamp     time.Time       `json:"timestamp"`
}

// WebhookEvent is a processor notification after signature verification.
type WebhookEvent struct {
	ProcessorID  string    `json:"processor_id"`
	EventID      string    `json:"event_id"`
	ExternalID   string    `json:"external_id"`
	NativeStatus string    `json:"native_status"`
	OccurredAt   time.Time `json:"occurred_at"`
	RawPayload   []byte    `json:"-"`
}

// OrphanWebhookEvent is a verified webhook whose transaction is unknown
// locally; archived for manual review instead of discarded.
type OrphanWebhookEvent struct {
	ProcessorID  string    `json:"processor_id" db:"processor_id"`
	EventID      string    `json:"event_id" db:"event_id"`
	ExternalID   string    `json:"external_id" db:"external_id"`
	NativeStatus string    `json:"native_status" db:"native_status"`
	Payload      string    `json:"payload" db:"payload"`
	ReceivedAt   time.Time `json:"received_at" db:"received_at"`
}
