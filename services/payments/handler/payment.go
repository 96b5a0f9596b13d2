package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/givehub/payments/internal/pkg/models"
)

type processRequest struct {
	Method   *models.MethodDetails   `json:"method"`
	Security *models.SecurityContext `json:"security"`
}

type refundRequest struct {
	Amount decimal.Decimal      `json:"amount"`
	Reason *models.RefundReason `json:"reason"`
}

// CreatePayment handles payment creation requests
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req models.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	tx, err := h.paymentUC.CreateTransaction(c.Request().Context(), &req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, tx)
}

// ProcessPayment charges a previously created payment
func (h *PaymentHandler) ProcessPayment(c echo.Context) error {
	var req processRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	tx, err := h.paymentUC.ProcessTransaction(c.Request().Context(), c.Param("id"), req.Method, req.Security)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, tx)
}

// RefundPayment refunds part or all of a completed payment
func (h *PaymentHandler) RefundPayment(c echo.Context) error {
	var req refundRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	tx, err := h.paymentUC.RefundTransaction(c.Request().Context(), c.Param("id"), req.Amount, req.Reason)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, tx)
}

// GetPayment returns a payment with its audit trail
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	tx, err := h.paymentUC.GetStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, tx)
}
