package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/givehub/payments/internal/pkg/models"
	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/services/payments"
)

// PostgresTransactionRepo implements the TransactionRepo interface
type PostgresTransactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *sqlx.DB) payments.TransactionRepo {
	return &PostgresTransactionRepo{
		db: db,
	}
}

// transactionRow is the flat database shape of a transaction. Metadata is
// JSONB; the last error is flattened into two nullable columns.
type transactionRow struct {
	ID               string          `db:"id"`
	ExternalID       sql.NullString  `db:"external_id"`
	Amount           decimal.Decimal `db:"amount"`
	Currency         string          `db:"currency"`
	GatewayID        string          `db:"gateway_id"`
	DonorID          string          `db:"donor_id"`
	AssociationID    string          `db:"association_id"`
	CampaignID       sql.NullString  `db:"campaign_id"`
	Status           string          `db:"status"`
	RetryCount       int             `db:"retry_count"`
	LastErrorKind    sql.NullString  `db:"last_error_kind"`
	LastErrorMessage sql.NullString  `db:"last_error_message"`
	RefundedTotal    decimal.Decimal `db:"refunded_total"`
	Metadata         []byte          `db:"metadata"`
	CreatedAt        time.Time       `db:"created_at"`
	ProcessedAt      *time.Time      `db:"processed_at"`
	CompletedAt      *time.Time      `db:"completed_at"`
	RefundedAt       *time.Time      `db:"refunded_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (row *transactionRow) toModel() (*models.PaymentTransaction, error) {
	tx := &models.PaymentTransaction{
		ID:            row.ID,
		Amount:        row.Amount,
		Currency:      row.Currency,
		GatewayID:     row.GatewayID,
		DonorID:       row.DonorID,
		AssociationID: row.AssociationID,
		CampaignID:    row.CampaignID.String,
		Status:        models.PaymentStatus(row.Status),
		RetryCount:    row.RetryCount,
		RefundedTotal: row.RefundedTotal,
		CreatedAt:     row.CreatedAt,
		ProcessedAt:   row.ProcessedAt,
		CompletedAt:   row.CompletedAt,
		RefundedAt:    row.RefundedAt,
		UpdatedAt:     row.UpdatedAt,
	}

	if row.ExternalID.Valid {
		externalID := row.ExternalID.String
		tx.ExternalID = &externalID
	}
	if row.LastErrorKind.Valid {
		tx.LastError = &models.LastError{
			Kind:    row.LastErrorKind.String,
			Message: row.LastErrorMessage.String,
		}
	}
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &tx.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode transaction metadata: %w", err)
		}
	}

	return tx, nil
}

// CreateTransaction creates a new payment transaction record
func (r *PostgresTransactionRepo) CreateTransaction(ctx context.Context, tx *models.PaymentTransaction) error {
	metadata, err := json.Marshal(tx.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode transaction metadata: %w", err)
	}

	txData := map[string]interface{}{
		"id":             tx.ID,
		"amount":         tx.Amount,
		"currency":       tx.Currency,
		"gateway_id":     tx.GatewayID,
		"donor_id":       tx.DonorID,
		"association_id": tx.AssociationID,
		"campaign_id":    nullableString(tx.CampaignID),
		"status":         string(tx.Status),
		"retry_count":    tx.RetryCount,
		"refunded_total": tx.RefundedTotal,
		"metadata":       metadata,
		"created_at":     tx.CreatedAt,
		"updated_at":     tx.UpdatedAt,
	}

	_, err = r.db.NamedExecContext(ctx, `
		INSERT INTO payment_transactions (
			id, amount, currency, gateway_id, donor_id, association_id,
			campaign_id, status, retry_count, refunded_total, metadata,
			created_at, updated_at
		) VALUES (
			:id, :amount, :currency, :gateway_id, :donor_id, :association_id,
			:campaign_id, :status, :retry_count, :refunded_total, :metadata,
			:created_at, :updated_at
		)
	`, txData)

	if err != nil {
		return fmt.Errorf("failed to create payment transaction: %w", err)
	}

	return nil
}

// GetTransaction fetches a transaction and its audit trail by id
func (r *PostgresTransactionRepo) GetTransaction(ctx context.Context, id string) (*models.PaymentTransaction, error) {
	var row transactionRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, external_id, amount, currency, gateway_id, donor_id,
		       association_id, campaign_id, status, retry_count,
		       last_error_kind, last_error_message, refunded_total, metadata,
		       created_at, processed_at, completed_at, refunded_at, updated_at
		FROM payment_transactions
		WHERE id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payerrors.Validationf("transaction %s not found", id)
		}
		return nil, fmt.Errorf("failed to get payment transaction: %w", err)
	}

	tx, err := row.toModel()
	if err != nil {
		return nil, err
	}

	trail, err := r.getAuditTrail(ctx, id)
	if err != nil {
		return nil, err
	}
	tx.AuditTrail = trail

	return tx, nil
}

// GetTransactionByExternalID fetches a transaction by its processor-side id.
// Returns nil without error when no transaction matches, so the caller can
// archive the event as an orphan.
func (r *PostgresTransactionRepo) GetTransactionByExternalID(ctx context.Context, gatewayID, externalID string) (*models.PaymentTransaction, error) {
	var row transactionRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, external_id, amount, currency, gateway_id, donor_id,
		       association_id, campaign_id, status, retry_count,
		       last_error_kind, last_error_message, refunded_total, metadata,
		       created_at, processed_at, completed_at, refunded_at, updated_at
		FROM payment_transactions
		WHERE gateway_id = $1 AND external_id = $2
	`, gatewayID, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment transaction by external id: %w", err)
	}

	return row.toModel()
}

// UpdateTransaction persists the mutable fields of a transaction. The
// external id column is written at most once; amount, currency, gateway and
// party columns are never touched.
func (r *PostgresTransactionRepo) UpdateTransaction(ctx context.Context, tx *models.PaymentTransaction) error {
	txData := map[string]interface{}{
		"id":             tx.ID,
		"external_id":    nullableStringPtr(tx.ExternalID),
		"status":         string(tx.Status),
		"retry_count":    tx.RetryCount,
		"refunded_total": tx.RefundedTotal,
		"updated_at":     tx.UpdatedAt,
		"processed_at":   tx.ProcessedAt,
		"completed_at":   tx.CompletedAt,
		"refunded_at":    tx.RefundedAt,
	}

	if tx.LastError != nil {
		txData["last_error_kind"] = tx.LastError.Kind
		txData["last_error_message"] = tx.LastError.Message
	} else {
		txData["last_error_kind"] = nil
		txData["last_error_message"] = nil
	}

	result, err := r.db.NamedExecContext(ctx, `
		UPDATE payment_transactions
		SET external_id = COALESCE(external_id, :external_id),
		    status = :status,
		    retry_count = :retry_count,
		    last_error_kind = :last_error_kind,
		    last_error_message = :last_error_message,
		    refunded_total = :refunded_total,
		    processed_at = :processed_at,
		    completed_at = :completed_at,
		    refunded_at = :refunded_at,
		    updated_at = :updated_at
		WHERE id = :id
	`, txData)

	if err != nil {
		return fmt.Errorf("failed to update payment transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return payerrors.Validationf("transaction %s not found", tx.ID)
	}

	return nil
}

// AppendAuditEntry inserts one audit line. The table is append only; there
// is no update or delete path.
func (r *PostgresTransactionRepo) AppendAuditEntry(ctx context.Context, entry *models.AuditEntry) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO payment_audit_trail (
			transaction_id, timestamp, action, actor, detail
		) VALUES (
			:transaction_id, :timestamp, :action, :actor, :detail
		)
	`, entry)

	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	return nil
}

// ArchiveOrphanEvent stores a verified webhook event that matched no local
// transaction. Conflicts on (processor_id, event_id) are ignored; redelivery
// of an orphan is not an error.
func (r *PostgresTransactionRepo) ArchiveOrphanEvent(ctx context.Context, event *models.OrphanWebhookEvent) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO orphan_webhook_events (
			processor_id, event_id, external_id, native_status, payload, received_at
		) VALUES (
			:processor_id, :event_id, :external_id, :native_status, :payload, :received_at
		)
		ON CONFLICT (processor_id, event_id) DO NOTHING
	`, event)

	if err != nil {
		return fmt.Errorf("failed to archive orphan webhook event: %w", err)
	}

	return nil
}

func (r *PostgresTransactionRepo) getAuditTrail(ctx context.Context, transactionID string) ([]models.AuditEntry, error) {
	var trail []models.AuditEntry
	err := r.db.SelectContext(ctx, &trail, `
		SELECT transaction_id, timestamp, action, actor, detail
		FROM payment_audit_trail
		WHERE transaction_id = $1
		ORDER BY timestamp ASC, id ASC
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit trail: %w", err)
	}
	return trail, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableStringPtr(s *string) interface{} {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
