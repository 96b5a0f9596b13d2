package payerrors

import (
	"errors"
	"fmt"
)

// Kind classifies a payment error for retry, breaker and HTTP mapping decisions.
type Kind int

const (
	// KindInternal is an unclassified internal failure
	KindInternal Kind = iota
	// KindValidation is a bad request shape, amount or currency
	KindValidation
	// KindSecurityRejected is a failed fraud or IP allow-list check
	KindSecurityRejected
	// KindProcessorTimeout is a timed-out call to an external processor
	KindProcessorTimeout
	// KindProcessorUnavailable is a network or availability failure of a processor
	KindProcessorUnavailable
	// KindProcessorRejected is a business decline by the processor
	KindProcessorRejected
	// KindCircuitOpen means the adapter's circuit breaker refused the call
	KindCircuitOpen
	// KindSignatureInvalid is a webhook integrity failure
	KindSignatureInvalid
	// KindIllegalTransition is a state machine invariant violation
	KindIllegalTransition
	// KindRefundWindowExpired means the processor no longer accepts refunds
	KindRefundWindowExpired
	// KindInsufficientCaptured means the refund exceeds the captured amount
	KindInsufficientCaptured
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindSecurityRejected:
		return "SECURITY_REJECTED"
	case KindProcessorTimeout:
		return "PROCESSOR_TIMEOUT"
	case KindProcessorUnavailable:
		return "PROCESSOR_UNAVAILABLE"
	case KindProcessorRejected:
		return "PROCESSOR_REJECTED"
	case KindCircuitOpen:
		return "CIRCUIT_OPEN"
	case KindSignatureInvalid:
		return "SIGNATURE_INVALID"
	case KindIllegalTransition:
		return "ILLEGAL_TRANSITION"
	case KindRefundWindowExpired:
		return "REFUND_WINDOW_EXPIRED"
	case KindInsufficientCaptured:
		return "INSUFFICIENT_CAPTURED"
	default:
		return "INTERNAL"
	}
}

// Error is a kinded payment error. Message must already be safe to log;
// callers sanitize before construction.
type Error struct {
	Kind    Kind
	Message string
	Wrapped error
	// Attempts is the number of adapter invocations consumed before this
	// error became terminal; zero when no adapter was contacted.
	Attempts int
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is matches errors of the same kind so sentinel comparisons work with errors.Is.
func (e *Error) Is(target error) bool {
	var pe *Error
	if errors.As(target, &pe) {
		return pe.Kind == e.Kind
	}
	return false
}

// Retryable reports whether the failure is transient and safe to retry.
// Only availability failures qualify; declines, validation and security
// rejections never do.
func (e *Error) Retryable() bool {
	return e.Kind == KindProcessorTimeout || e.Kind == KindProcessorUnavailable
}

// New creates an error of the given kind
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an error of the given kind wrapping a cause
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Wrapped: err}
}

// Validation creates a validation error
func Validation(msg string) *Error {
	return New(KindValidation, msg)
}

// Validationf creates a formatted validation error
func Validationf(format string, args ...interface{}) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

// Security creates a security rejection
func Security(msg string) *Error {
	return New(KindSecurityRejected, msg)
}

// Timeout creates a processor timeout error
func Timeout(op string, err error) *Error {
	return Wrap(KindProcessorTimeout, op+" timed out", err)
}

// Unavailable creates a processor availability error
func Unavailable(op string, err error) *Error {
	return Wrap(KindProcessorUnavailable, op+" unavailable", err)
}

// Rejected creates a processor business decline
func Rejected(msg string) *Error {
	return New(KindProcessorRejected, msg)
}

// CircuitOpen creates a circuit-open error for the named adapter
func CircuitOpen(gatewayID string) *Error {
	return New(KindCircuitOpen, fmt.Sprintf("gateway %s temporarily unavailable", gatewayID))
}

// SignatureInvalid creates a webhook integrity error
func SignatureInvalid(processorID string) *Error {
	return New(KindSignatureInvalid, fmt.Sprintf("invalid signature for processor %s", processorID))
}

// IllegalTransition creates a state machine violation error. These indicate
// a reconciliation bug and must never be swallowed.
func IllegalTransition(from, to string) *Error {
	return New(KindIllegalTransition, fmt.Sprintf("illegal status transition %s -> %s", from, to))
}

// KindOf extracts the kind from any error, defaulting to KindInternal.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

// WithAttempts annotates any error with the adapter invocation count,
// preserving an existing payment error's kind.
func WithAttempts(err error, attempts int) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		clone := *pe
		clone.Attempts = attempts
		return &clone
	}
	return &Error{Kind: KindInternal, Message: err.Error(), Wrapped: err, Attempts: attempts}
}

// AttemptsOf extracts the attempt count from an error, zero if absent.
func AttemptsOf(err error) int {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Attempts
	}
	return 0
}

// IsRetryable reports whether any error is a retryable payment error.
func IsRetryable(err error) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return false
}
