package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/services/payments"
)

// PaymentHandler handles HTTP requests for payment operations
type PaymentHandler struct {
	paymentUC payments.PaymentUseCase
	webhookUC payments.WebhookUseCase
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentUC payments.PaymentUseCase, webhookUC payments.WebhookUseCase) *PaymentHandler {
	return &PaymentHandler{
		paymentUC: paymentUC,
		webhookUC: webhookUC,
	}
}

// RegisterRoutes registers the payment and webhook routes
func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/payments")

	g.POST("", h.CreatePayment)
	g.POST("/:id/process", h.ProcessPayment)
	g.POST("/:id/refund", h.RefundPayment)
	g.GET("/:id", h.GetPayment)

	e.POST("/webhooks/:processor", h.HandleWebhook)
}

// httpStatus maps an error's kind to the response status code.
func httpStatus(err error) int {
	switch payerrors.KindOf(err) {
	case payerrors.KindValidation:
		return http.StatusBadRequest
	case payerrors.KindSecurityRejected:
		return http.StatusForbidden
	case payerrors.KindSignatureInvalid:
		return http.StatusUnauthorized
	case payerrors.KindProcessorRejected:
		return http.StatusPaymentRequired
	case payerrors.KindCircuitOpen, payerrors.KindProcessorUnavailable:
		return http.StatusServiceUnavailable
	case payerrors.KindProcessorTimeout:
		return http.StatusGatewayTimeout
	case payerrors.KindIllegalTransition:
		return http.StatusConflict
	case payerrors.KindRefundWindowExpired, payerrors.KindInsufficientCaptured:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(c echo.Context, err error) error {
	return c.JSON(httpStatus(err), map[string]string{
		"error": err.Error(),
		"kind":  payerrors.KindOf(err).String(),
	})
}
