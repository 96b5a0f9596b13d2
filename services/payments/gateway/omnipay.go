package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	httpclient "github.com/givehub/payments/internal/pkg/http"
	"github.com/givehub/payments/internal/pkg/logger"
	"github.com/givehub/payments/internal/pkg/models"
	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/internal/pkg/security"
)

// OmniPayID is the adapter identifier for the general card processor.
const OmniPayID = "omnipay"

// omniPayStatuses maps OmniPay's native status vocabulary into the
// canonical statuses. The map is total: anything missing falls back to
// FAILED in MapNativeStatus, never to a success state.
var omniPayStatuses = map[string]models.PaymentStatus{
	"created":            models.StatusPending,
	"requires_capture":   models.StatusProcessing,
	"processing":         models.StatusProcessing,
	"succeeded":          models.StatusCompleted,
	"declined":           models.StatusFailed,
	"failed":             models.StatusFailed,
	"canceled":           models.StatusCancelled,
	"refunded":           models.StatusRefunded,
	"partially_refunded": models.StatusPartiallyRefunded,
}

// OmniPayGateway is the adapter for the general international card
// processor; it services USD, EUR and GBP donations.
type OmniPayGateway struct {
	client *httpclient.Client
	apiKey string
	secret string
	logger *logger.ZapLogger
}

// NewOmniPayGateway creates the OmniPay adapter
func NewOmniPayGateway(cfg models.GatewayConfig, timeout time.Duration, l *logger.ZapLogger) *OmniPayGateway {
	return &OmniPayGateway{
		client: httpclient.NewClient(cfg.BaseURL, timeout),
		apiKey: cfg.APIKey,
		secret: cfg.WebhookSecret,
		logger: l,
	}
}

// ID returns the adapter identifier
func (g *OmniPayGateway) ID() string {
	return OmniPayID
}

// WebhookSecret returns the webhook signing secret
func (g *OmniPayGateway) WebhookSecret() string {
	return g.secret
}

// MapNativeStatus translates an OmniPay status code into a canonical status
func (g *OmniPayGateway) MapNativeStatus(native string) models.PaymentStatus {
	if status, ok := omniPayStatuses[native]; ok {
		return status
	}
	g.logger.Warn("Unrecognized OmniPay status code, defaulting to FAILED",
		logger.String("native_status", native))
	return models.StatusFailed
}

type omniPayTransactionResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	Reference      string `json:"reference,omitempty"`
	DeclineMessage string `json:"decline_message,omitempty"`
}

// Create opens a transaction with OmniPay
func (g *OmniPayGateway) Create(ctx context.Context, req *models.PaymentRequest) (*models.TransactionHandle, error) {
	body := map[string]interface{}{
		"amount":   req.Amount.String(),
		"currency": req.Currency,
		"metadata": security.SanitizeMap(req.Metadata),
		"description": fmt.Sprintf(
			"donation to association %s", req.AssociationID),
	}

	resp, err := g.client.PostJSON(ctx, "/v1/transactions", g.authHeaders(nil), body)
	if err != nil {
		return nil, classifyTransportErr("omnipay create", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classifyHTTPStatus("omnipay create", resp.StatusCode, "")
	}

	var out omniPayTransactionResponse
	if err := resp.Decode(&out); err != nil {
		return nil, payerrors.Wrap(payerrors.KindProcessorUnavailable, "omnipay create returned malformed body", err)
	}

	return &models.TransactionHandle{GatewayID: OmniPayID, ExternalID: out.ID}, nil
}

// Charge executes the funds movement. It refuses to proceed without a
// passed fraud check, before any network call.
func (g *OmniPayGateway) Charge(ctx context.Context, handle *models.TransactionHandle, method *models.MethodDetails, sec *models.SecurityContext, idempotencyKey string) (*models.PaymentResult, error) {
	if sec == nil || !sec.FraudChecksPassed {
		return nil, payerrors.Security("fraud checks not passed")
	}

	headers := g.authHeaders(nil)
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}

	body := map[string]interface{}{
		"method_token": method.Token,
		"session_id":   sec.SessionID,
		"risk_score":   sec.RiskScore,
	}

	path := fmt.Sprintf("/v1/transactions/%s/charge", handle.ExternalID)
	resp, err := g.client.PostJSON(ctx, path, headers, body)
	if err != nil {
		return nil, classifyTransportErr("omnipay charge", err)
	}

	return g.decodeResult(resp, "omnipay charge")
}

// Refund returns part or all of a captured amount
func (g *OmniPayGateway) Refund(ctx context.Context, handle *models.TransactionHandle, amount decimal.Decimal, reason *models.RefundReason) (*models.PaymentResult, error) {
	body := map[string]interface{}{
		"amount":      amount.String(),
		"reason_code": string(reason.Code),
	}

	path := fmt.Sprintf("/v1/transactions/%s/refund", handle.ExternalID)
	resp, err := g.client.PostJSON(ctx, path, g.authHeaders(nil), body)
	if err != nil {
		return nil, classifyTransportErr("omnipay refund", err)
	}
	if resp.StatusCode == http.StatusConflict {
		return nil, refundConflictError(resp)
	}

	return g.decodeResult(resp, "omnipay refund")
}

// Status polls the transaction without side effects
func (g *OmniPayGateway) Status(ctx context.Context, handle *models.TransactionHandle) (*models.PaymentResult, error) {
	path := fmt.Sprintf("/v1/transactions/%s", handle.ExternalID)
	resp, err := g.client.GetJSON(ctx, path, g.authHeaders(nil))
	if err != nil {
		return nil, classifyTransportErr("omnipay status", err)
	}

	return g.decodeResult(resp, "omnipay status")
}

func (g *OmniPayGateway) decodeResult(resp *httpclient.Response, op string) (*models.PaymentResult, error) {
	var out omniPayTransactionResponse
	if resp.StatusCode < http.StatusBadRequest {
		if err := resp.Decode(&out); err != nil {
			return nil, payerrors.Wrap(payerrors.KindProcessorUnavailable, op+" returned malformed body", err)
		}
	} else {
		// Decline bodies still carry the native status; ignore decode
		// failures and classify by HTTP status.
		_ = resp.Decode(&out)
		return nil, classifyHTTPStatus(op, resp.StatusCode, security.Sanitize(out.DeclineMessage))
	}

	amount, _ := decimal.NewFromString(out.Amount)
	return &models.PaymentResult{
		ExternalID:     out.ID,
		NativeStatus:   out.Status,
		Status:         g.MapNativeStatus(out.Status),
		Amount:         amount,
		Currency:       out.Currency,
		ProcessorRef:   out.Reference,
		DeclineMessage: security.Sanitize(out.DeclineMessage),
	}, nil
}

func (g *OmniPayGateway) authHeaders(extra map[string]string) map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + g.apiKey,
	}
	for k, v := range extra {
		headers[k] = v
	}
	return headers
}
