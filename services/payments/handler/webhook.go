package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

const signatureHeader = "X-Signature"

// HandleWebhook verifies and applies a processor notification. The raw
// body is read before any parsing; the signature covers the exact bytes
// the processor sent.
func (h *PaymentHandler) HandleWebhook(c echo.Context) error {
	processorID := c.Param("processor")

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Failed to read request body"})
	}

	signature := c.Request().Header.Get(signatureHeader)
	event, err := h.webhookUC.VerifyWebhook(payload, signature, processorID)
	if err != nil {
		return errorResponse(c, err)
	}

	if err := h.webhookUC.ApplyWebhook(c.Request().Context(), event); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "accepted"})
}
