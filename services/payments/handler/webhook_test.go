package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/givehub/payments/internal/pkg/models"
	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/services/payments/mocks"
)

func TestHandleWebhook_Accepted(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaymentUC := mocks.NewMockPaymentUseCase(ctrl)
	mockWebhookUC := mocks.NewMockWebhookUseCase(ctrl)
	h := NewPaymentHandler(mockPaymentUC, mockWebhookUC)

	e := echo.New()
	body := `{"event_id":"evt-1","transaction_id":"op_55","status":"succeeded"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/omnipay", strings.NewReader(body))
	req.Header.Set(signatureHeader, "deadbeef")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("processor")
	c.SetParamValues("omnipay")

	event := &models.WebhookEvent{
		ProcessorID:  "omnipay",
		EventID:      "evt-1",
		ExternalID:   "op_55",
		NativeStatus: "succeeded",
	}

	// The signature is verified over the exact bytes received
	mockWebhookUC.EXPECT().
		VerifyWebhook([]byte(body), "deadbeef", "omnipay").
		Return(event, nil)
	mockWebhookUC.EXPECT().
		ApplyWebhook(gomock.Any(), event).
		Return(nil)

	// Act
	err := h.HandleWebhook(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "accepted", response["status"])
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaymentUC := mocks.NewMockPaymentUseCase(ctrl)
	mockWebhookUC := mocks.NewMockWebhookUseCase(ctrl)
	h := NewPaymentHandler(mockPaymentUC, mockWebhookUC)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/omnipay", strings.NewReader(`{}`))
	req.Header.Set(signatureHeader, "bad")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("processor")
	c.SetParamValues("omnipay")

	mockWebhookUC.EXPECT().
		VerifyWebhook(gomock.Any(), "bad", "omnipay").
		Return(nil, payerrors.SignatureInvalid("omnipay"))

	// Act
	err := h.HandleWebhook(c)

	// Assert: rejected without ApplyWebhook ever being called
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleWebhook_ApplyFailure(t *testing.T) {
	// Arrange
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockPaymentUC := mocks.NewMockPaymentUseCase(ctrl)
	mockWebhookUC := mocks.NewMockWebhookUseCase(ctrl)
	h := NewPaymentHandler(mockPaymentUC, mockWebhookUC)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/shekel", strings.NewReader(`{}`))
	req.Header.Set(signatureHeader, "sig")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("processor")
	c.SetParamValues("shekel")

	event := &models.WebhookEvent{ProcessorID: "shekel", EventID: "evt-2"}
	mockWebhookUC.EXPECT().VerifyWebhook(gomock.Any(), "sig", "shekel").Return(event, nil)
	mockWebhookUC.EXPECT().ApplyWebhook(gomock.Any(), event).Return(payerrors.Validation("archive failed"))

	// Act
	err := h.HandleWebhook(c)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
