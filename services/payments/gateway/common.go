package gateway

import (
	"context"
	"errors"
	"net"
	"net/http"

	httpclient "github.com/givehub/payments/internal/pkg/http"
	"github.com/givehub/payments/internal/pkg/payerrors"
)

// classifyTransportErr maps a transport-level failure from the HTTP client
// into the payment error taxonomy. Deadline and timeout failures are
// retryable timeouts; everything else on the wire is an availability
// failure.
func classifyTransportErr(op string, err error) *payerrors.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return payerrors.Timeout(op, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return payerrors.Timeout(op, err)
	}

	return payerrors.Unavailable(op, err)
}

// refundConflictBody is the error shape processors return when a refund is
// no longer possible.
type refundConflictBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// refundConflictError maps a 409 refund response into the taxonomy.
func refundConflictError(resp *httpclient.Response) *payerrors.Error {
	var body refundConflictBody
	_ = resp.Decode(&body)

	switch body.ErrorCode {
	case "refund_window_expired":
		return payerrors.New(payerrors.KindRefundWindowExpired, "refund window expired at processor")
	case "insufficient_captured_amount":
		return payerrors.New(payerrors.KindInsufficientCaptured, "refund exceeds captured amount")
	default:
		return payerrors.Rejected("refund rejected by processor")
	}
}

// classifyHTTPStatus maps a non-2xx processor response into the taxonomy.
// 5xx responses are retryable availability failures; 4xx responses are
// business declines and never retried.
func classifyHTTPStatus(op string, status int, declineMessage string) *payerrors.Error {
	switch {
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return payerrors.New(payerrors.KindProcessorTimeout, op+" timed out at processor")
	case status >= http.StatusInternalServerError:
		return payerrors.New(payerrors.KindProcessorUnavailable, op+" failed at processor")
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return payerrors.Security(op + " credentials rejected by processor")
	default:
		if declineMessage == "" {
			declineMessage = op + " rejected by processor"
		}
		return payerrors.Rejected(declineMessage)
	}
}
