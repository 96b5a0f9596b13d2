package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givehub/payments/internal/pkg/models"
	"github.com/givehub/payments/internal/pkg/payerrors"
)

func newShekel(t *testing.T, baseURL string, allowedIPs []string, sourceIP string) *ShekelGateway {
	t.Helper()
	cfg := models.GatewayConfig{
		BaseURL:       baseURL,
		APIKey:        "shk_test_key",
		WebhookSecret: "whsec_shekel",
		SigningSecret: "sign_secret",
		AllowedIPs:    allowedIPs,
		SourceIP:      sourceIP,
	}
	return NewShekelGateway(cfg, 2*time.Second, testLogger(t))
}

func TestShekel_SignsExactWireBytes(t *testing.T) {
	var gotSignature string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/transactions/open", r.URL.Path)
		require.Equal(t, "shk_test_key", r.Header.Get("X-Api-Key"))
		gotSignature = r.Header.Get("X-Signature")
		gotBody, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(map[string]string{"transaction_id": "il_9", "response_code": "002"})
	}))
	defer srv.Close()

	g := newShekel(t, srv.URL, nil, "")
	handle, err := g.Create(context.Background(), &models.PaymentRequest{
		Amount:        decimal.RequireFromString("180.50"),
		Currency:      "ILS",
		DonorID:       "donor-1",
		AssociationID: "assoc-9",
		NationalID:    "123456782",
	})

	require.NoError(t, err)
	assert.Equal(t, "il_9", handle.ExternalID)

	mac := hmac.New(sha256.New, []byte("sign_secret"))
	mac.Write(gotBody)
	assert.Equal(t, hex.EncodeToString(mac.Sum(nil)), gotSignature)
}

func TestShekel_SourceIPNotAllowListedFailsClosed(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	g := newShekel(t, srv.URL, []string{"10.0.0.5"}, "192.168.1.9")
	_, err := g.Create(context.Background(), &models.PaymentRequest{
		Amount:   decimal.RequireFromString("10"),
		Currency: "ILS",
	})

	assert.Equal(t, payerrors.KindSecurityRejected, payerrors.KindOf(err))
	assert.False(t, called)
}

func TestShekel_AllowListedSourcePasses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"transaction_id": "il_1", "response_code": "002"})
	}))
	defer srv.Close()

	g := newShekel(t, srv.URL, []string{"10.0.0.5"}, "10.0.0.5")
	_, err := g.Create(context.Background(), &models.PaymentRequest{
		Amount:   decimal.RequireFromString("10"),
		Currency: "ILS",
	})

	assert.NoError(t, err)
}

func TestShekel_ChargeMapsNumericCodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/transactions/charge", r.URL.Path)
		require.Equal(t, "tx-7", r.Header.Get("X-Idempotency-Key"))
		json.NewEncoder(w).Encode(map[string]string{
			"transaction_id": "il_9",
			"response_code":  "000",
			"amount":         "180.5",
			"currency":       "ILS",
			"auth_number":    "A5521",
		})
	}))
	defer srv.Close()

	g := newShekel(t, srv.URL, nil, "")
	handle := &models.TransactionHandle{GatewayID: ShekelID, ExternalID: "il_9"}
	result, err := g.Charge(context.Background(), handle, &models.MethodDetails{Token: "tok_ilcard99"}, passedSecurity(), "tx-7")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, result.Status)
	assert.Equal(t, "000", result.NativeStatus)
	assert.Equal(t, "A5521", result.ProcessorRef)
}

func TestShekel_ChargeWithoutFraudCheckNeverCallsProcessor(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	g := newShekel(t, srv.URL, nil, "")
	handle := &models.TransactionHandle{GatewayID: ShekelID, ExternalID: "il_9"}
	_, err := g.Charge(context.Background(), handle, &models.MethodDetails{Token: "tok_ilcard99"}, nil, "tx-7")

	assert.Equal(t, payerrors.KindSecurityRejected, payerrors.KindOf(err))
	assert.False(t, called)
}

func TestShekel_DeclineCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"transaction_id": "il_9",
			"response_code":  "051",
			"message":        "card declined by issuer",
		})
	}))
	defer srv.Close()

	g := newShekel(t, srv.URL, nil, "")
	handle := &models.TransactionHandle{GatewayID: ShekelID, ExternalID: "il_9"}
	result, err := g.Charge(context.Background(), handle, &models.MethodDetails{Token: "tok_ilcard99"}, passedSecurity(), "tx-7")

	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, result.Status)
	assert.Equal(t, "card declined by issuer", result.DeclineMessage)
}

func TestShekel_MapNativeStatus(t *testing.T) {
	g := newShekel(t, "http://unused", nil, "")

	assert.Equal(t, models.StatusCompleted, g.MapNativeStatus("000"))
	assert.Equal(t, models.StatusProcessing, g.MapNativeStatus("001"))
	assert.Equal(t, models.StatusPending, g.MapNativeStatus("002"))
	assert.Equal(t, models.StatusCancelled, g.MapNativeStatus("065"))
	assert.Equal(t, models.StatusRefunded, g.MapNativeStatus("400"))
	assert.Equal(t, models.StatusFailed, g.MapNativeStatus("999"))
}

func TestShekel_RefundConflictInsufficientCaptured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error_code": "insufficient_captured_amount"})
	}))
	defer srv.Close()

	g := newShekel(t, srv.URL, nil, "")
	handle := &models.TransactionHandle{GatewayID: ShekelID, ExternalID: "il_9"}
	reason := &models.RefundReason{Code: models.RefundReasonDonorRequest, AuthorizedBy: "ops"}
	_, err := g.Refund(context.Background(), handle, decimal.RequireFromString("200"), reason)

	assert.Equal(t, payerrors.KindInsufficientCaptured, payerrors.KindOf(err))
}
