package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givehub/payments/internal/pkg/models"
	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/services/payments/mocks"
)

func TestCreatePayment_Success(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaymentUC := mocks.NewMockPaymentUseCase(ctrl)
	mockWebhookUC := mocks.NewMockWebhookUseCase(ctrl)
	h := NewPaymentHandler(mockPaymentUC, mockWebhookUC)

	e := echo.New()
	requestBody := `{
		"amount": "25.00",
		"currency": "USD",
		"donor_id": "donor-1",
		"association_id": "assoc-1"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(requestBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mockPaymentUC.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, r *models.PaymentRequest) (*models.PaymentTransaction, error) {
			assert.Equal(t, "USD", r.Currency)
			assert.Equal(t, "donor-1", r.DonorID)
			assert.True(t, r.Amount.Equal(decimal.RequireFromString("25.00")))
			return &models.PaymentTransaction{
				ID:       "tx-1",
				Amount:   r.Amount,
				Currency: r.Currency,
				Status:   models.StatusPending,
			}, nil
		})

	// Act
	err := h.CreatePayment(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "tx-1", response["id"])
	assert.Equal(t, string(models.StatusPending), response["status"])
}

func TestCreatePayment_InvalidPayload(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaymentUC := mocks.NewMockPaymentUseCase(ctrl)
	mockWebhookUC := mocks.NewMockWebhookUseCase(ctrl)
	h := NewPaymentHandler(mockPaymentUC, mockWebhookUC)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", strings.NewReader(`{not json`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Act
	err := h.CreatePayment(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProcessPayment_BindsMethodDetails(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaymentUC := mocks.NewMockPaymentUseCase(ctrl)
	mockWebhookUC := mocks.NewMockWebhookUseCase(ctrl)
	h := NewPaymentHandler(mockPaymentUC, mockWebhookUC)

	e := echo.New()
	requestBody := `{
		"method": {
			"token": "tok_abc12345",
			"last4": "4242",
			"expiry_month": "09",
			"expiry_year": "2027"
		},
		"security": {"fraud_checks_passed": true}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/tx-1/process", strings.NewReader(requestBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("tx-1")

	mockPaymentUC.EXPECT().
		ProcessTransaction(gomock.Any(), "tx-1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, _ string, method *models.MethodDetails, sec *models.SecurityContext) (*models.PaymentTransaction, error) {
			require.NotNil(t, method)
			assert.Equal(t, "tok_abc12345", method.Token)
			assert.Equal(t, "4242", method.Last4)
			assert.Equal(t, "09", method.ExpiryMonth)
			assert.Equal(t, "2027", method.ExpiryYear)
			require.NotNil(t, sec)
			assert.True(t, sec.FraudChecksPassed)
			return &models.PaymentTransaction{ID: "tx-1", Status: models.StatusCompleted}, nil
		})

	// Act
	err := h.ProcessPayment(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProcessPayment_ErrorKindStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"validation", payerrors.Validation("bad input"), http.StatusBadRequest, "VALIDATION"},
		{"security rejected", payerrors.Security("fraud checks not passed"), http.StatusForbidden, "SECURITY_REJECTED"},
		{"processor decline", payerrors.Rejected("card declined"), http.StatusPaymentRequired, "PROCESSOR_REJECTED"},
		{"circuit open", payerrors.CircuitOpen("omnipay"), http.StatusServiceUnavailable, "CIRCUIT_OPEN"},
		{"processor unavailable", payerrors.Unavailable("charge", nil), http.StatusServiceUnavailable, "PROCESSOR_UNAVAILABLE"},
		{"processor timeout", payerrors.Timeout("charge", nil), http.StatusGatewayTimeout, "PROCESSOR_TIMEOUT"},
		{"illegal transition", payerrors.IllegalTransition(string(models.StatusCompleted), string(models.StatusProcessing)), http.StatusConflict, "ILLEGAL_TRANSITION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockPaymentUC := mocks.NewMockPaymentUseCase(ctrl)
			mockWebhookUC := mocks.NewMockWebhookUseCase(ctrl)
			h := NewPaymentHandler(mockPaymentUC, mockWebhookUC)

			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/tx-1/process", strings.NewReader(`{}`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues("tx-1")

			mockPaymentUC.EXPECT().
				ProcessTransaction(gomock.Any(), "tx-1", gomock.Any(), gomock.Any()).
				Return(nil, tt.err)

			// Act
			err := h.ProcessPayment(c)

			// Assert
			assert.NoError(t, err)
			assert.Equal(t, tt.wantCode, rec.Code)

			var response map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, tt.wantKind, response["kind"])
		})
	}
}

func TestRefundPayment_Success(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaymentUC := mocks.NewMockPaymentUseCase(ctrl)
	mockWebhookUC := mocks.NewMockWebhookUseCase(ctrl)
	h := NewPaymentHandler(mockPaymentUC, mockWebhookUC)

	e := echo.New()
	requestBody := `{
		"amount": "10.00",
		"reason": {"code": "DONOR_REQUEST", "authorized_by": "ops@givehub.org"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/tx-1/refund", strings.NewReader(requestBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("tx-1")

	mockPaymentUC.EXPECT().
		RefundTransaction(gomock.Any(), "tx-1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ interface{}, _ string, amount decimal.Decimal, reason *models.RefundReason) (*models.PaymentTransaction, error) {
			assert.True(t, amount.Equal(decimal.RequireFromString("10.00")))
			require.NotNil(t, reason)
			assert.Equal(t, models.RefundReasonDonorRequest, reason.Code)
			assert.Equal(t, "ops@givehub.org", reason.AuthorizedBy)
			return &models.PaymentTransaction{
				ID:            "tx-1",
				Status:        models.StatusPartiallyRefunded,
				RefundedTotal: amount,
			}, nil
		})

	// Act
	err := h.RefundPayment(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, string(models.StatusPartiallyRefunded), response["status"])
}

func TestGetPayment_NotFound(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaymentUC := mocks.NewMockPaymentUseCase(ctrl)
	mockWebhookUC := mocks.NewMockWebhookUseCase(ctrl)
	h := NewPaymentHandler(mockPaymentUC, mockWebhookUC)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/nope", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("nope")

	mockPaymentUC.EXPECT().
		GetStatus(gomock.Any(), "nope").
		Return(nil, payerrors.Validationf("transaction %s not found", "nope"))

	// Act
	err := h.GetPayment(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
