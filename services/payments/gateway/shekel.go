package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
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

// ShekelID is the adapter identifier for the regional ILS processor.
const ShekelID = "shekel"

// shekelStatuses maps the regional processor's numeric response codes into
// canonical statuses. Unknown codes default to FAILED.
var shekelStatuses = map[string]models.PaymentStatus{
	"000": models.StatusCompleted,
	"001": models.StatusProcessing,
	"002": models.StatusPending,
	"051": models.StatusFailed,
	"057": models.StatusFailed,
	"065": models.StatusCancelled,
	"400": models.StatusRefunded,
	"401": models.StatusPartiallyRefunded,
}

// ShekelGateway is the adapter for the regional bank-card processor used
// for ILS donations. Unlike OmniPay it signs every outbound payload with a
// keyed hash and enforces an outbound IP allow-list: a request from a
// non-allow-listed source fails closed before any network call.
type ShekelGateway struct {
	client        *httpclient.Client
	apiKey        string
	webhookSecret string
	signingSecret []byte
	allowedIPs    map[string]struct{}
	sourceIP      string
	logger        *logger.ZapLogger
}

// NewShekelGateway creates the regional processor adapter
func NewShekelGateway(cfg models.GatewayConfig, timeout time.Duration, l *logger.ZapLogger) *ShekelGateway {
	allowed := make(map[string]struct{}, len(cfg.AllowedIPs))
	for _, ip := range cfg.AllowedIPs {
		allowed[ip] = struct{}{}
	}

	return &ShekelGateway{
		client:        httpclient.NewClient(cfg.BaseURL, timeout),
		apiKey:        cfg.APIKey,
		webhookSecret: cfg.WebhookSecret,
		signingSecret: []byte(cfg.SigningSecret),
		allowedIPs:    allowed,
		sourceIP:      cfg.SourceIP,
		logger:        l,
	}
}

// ID returns the adapter identifier
func (g *ShekelGateway) ID() string {
	return ShekelID
}

// WebhookSecret returns the webhook signing secret
func (g *ShekelGateway) WebhookSecret() string {
	return g.webhookSecret
}

// MapNativeStatus translates a response code into a canonical status
func (g *ShekelGateway) MapNativeStatus(native string) models.PaymentStatus {
	if status, ok := shekelStatuses[native]; ok {
		return status
	}
	g.logger.Warn("Unrecognized response code from regional processor, defaulting to FAILED",
		logger.String("native_status", native))
	return models.StatusFailed
}

// checkSourceIP enforces the outbound allow-list. Fails closed: an empty
// allow-list permits everything, but a configured list with a source not on
// it rejects before any network I/O, independent of the fraud check.
func (g *ShekelGateway) checkSourceIP() error {
	if len(g.allowedIPs) == 0 {
		return nil
	}
	if _, ok := g.allowedIPs[g.sourceIP]; !ok {
		g.logger.Warn("Outbound source IP not on processor allow-list",
			logger.String("source_ip", g.sourceIP))
		return payerrors.Security("source IP not allow-listed for regional processor")
	}
	return nil
}

// sign serializes the body and computes an HMAC-SHA256 over the exact bytes
// sent on the wire.
func (g *ShekelGateway) sign(body interface{}) ([]byte, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, "", payerrors.Wrap(payerrors.KindInternal, "failed to serialize signed payload", err)
	}

	mac := hmac.New(sha256.New, g.signingSecret)
	mac.Write(payload)
	return payload, hex.EncodeToString(mac.Sum(nil)), nil
}

// post sends a signed request. Every outbound payload carries the
// signature; the IP allow-list is checked first.
func (g *ShekelGateway) post(ctx context.Context, path string, extraHeaders map[string]string, body interface{}) (*httpclient.Response, error) {
	if err := g.checkSourceIP(); err != nil {
		return nil, err
	}

	payload, signature, err := g.sign(body)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{
		"X-Api-Key":   g.apiKey,
		"X-Signature": signature,
	}
	for k, v := range extraHeaders {
		headers[k] = v
	}

	return g.client.PostRaw(ctx, path, headers, payload)
}

type shekelResponse struct {
	TransactionID string `json:"transaction_id"`
	ResponseCode  string `json:"response_code"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	AuthNumber    string `json:"auth_number,omitempty"`
	Message       string `json:"message,omitempty"`
}

// Create opens a transaction with the regional processor. ILS donations to
// associations that mandate it carry the donor's national id.
func (g *ShekelGateway) Create(ctx context.Context, req *models.PaymentRequest) (*models.TransactionHandle, error) {
	body := map[string]interface{}{
		"amount":      req.Amount.String(),
		"currency":    req.Currency,
		"national_id": req.NationalID,
		"reference":   fmt.Sprintf("assoc-%s", req.AssociationID),
	}

	resp, err := g.post(ctx, "/api/transactions/open", nil, body)
	if err != nil {
		return nil, wrapShekelErr("shekel create", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, classifyHTTPStatus("shekel create", resp.StatusCode, "")
	}

	var out shekelResponse
	if err := resp.Decode(&out); err != nil {
		return nil, payerrors.Wrap(payerrors.KindProcessorUnavailable, "shekel create returned malformed body", err)
	}

	return &models.TransactionHandle{GatewayID: ShekelID, ExternalID: out.TransactionID}, nil
}

// Charge executes the funds movement. The fraud check and the allow-list
// check both run before any network call.
func (g *ShekelGateway) Charge(ctx context.Context, handle *models.TransactionHandle, method *models.MethodDetails, sec *models.SecurityContext, idempotencyKey string) (*models.PaymentResult, error) {
	if sec == nil || !sec.FraudChecksPassed {
		return nil, payerrors.Security("fraud checks not passed")
	}

	var extra map[string]string
	if idempotencyKey != "" {
		extra = map[string]string{"X-Idempotency-Key": idempotencyKey}
	}

	body := map[string]interface{}{
		"transaction_id": handle.ExternalID,
		"card_token":     method.Token,
		"session_id":     sec.SessionID,
	}

	resp, err := g.post(ctx, "/api/transactions/charge", extra, body)
	if err != nil {
		return nil, wrapShekelErr("shekel charge", err)
	}

	return g.decodeResult(resp, "shekel charge")
}

// Refund returns part or all of a captured amount
func (g *ShekelGateway) Refund(ctx context.Context, handle *models.TransactionHandle, amount decimal.Decimal, reason *models.RefundReason) (*models.PaymentResult, error) {
	body := map[string]interface{}{
		"transaction_id": handle.ExternalID,
		"amount":         amount.String(),
		"reason_code":    string(reason.Code),
	}

	resp, err := g.post(ctx, "/api/transactions/refund", nil, body)
	if err != nil {
		return nil, wrapShekelErr("shekel refund", err)
	}
	if resp.StatusCode == http.StatusConflict {
		return nil, refundConflictError(resp)
	}

	return g.decodeResult(resp, "shekel refund")
}

// Status polls the transaction; read-only, no signing required by the
// processor but signed anyway since every outbound payload must carry a
// signature.
func (g *ShekelGateway) Status(ctx context.Context, handle *models.TransactionHandle) (*models.PaymentResult, error) {
	body := map[string]interface{}{
		"transaction_id": handle.ExternalID,
	}

	resp, err := g.post(ctx, "/api/transactions/status", nil, body)
	if err != nil {
		return nil, wrapShekelErr("shekel status", err)
	}

	return g.decodeResult(resp, "shekel status")
}

func (g *ShekelGateway) decodeResult(resp *httpclient.Response, op string) (*models.PaymentResult, error) {
	var out shekelResponse
	if resp.StatusCode >= http.StatusBadRequest {
		_ = resp.Decode(&out)
		return nil, classifyHTTPStatus(op, resp.StatusCode, security.Sanitize(out.Message))
	}
	if err := resp.Decode(&out); err != nil {
		return nil, payerrors.Wrap(payerrors.KindProcessorUnavailable, op+" returned malformed body", err)
	}

	amount, _ := decimal.NewFromString(out.Amount)
	return &models.PaymentResult{
		ExternalID:     out.TransactionID,
		NativeStatus:   out.ResponseCode,
		Status:         g.MapNativeStatus(out.ResponseCode),
		Amount:         amount,
		Currency:       out.Currency,
		ProcessorRef:   out.AuthNumber,
		DeclineMessage: security.Sanitize(out.Message),
	}, nil
}

// wrapShekelErr keeps already-classified errors (allow-list, signing) as-is
// and classifies raw transport errors.
func wrapShekelErr(op string, err error) error {
	var pe *payerrors.Error
	if errors.As(err, &pe) {
		return err
	}
	return classifyTransportErr(op, err)
}
