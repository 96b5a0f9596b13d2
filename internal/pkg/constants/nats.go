package constants

// NATS subjects for payment lifecycle events. One event is published per
// state transition; subscribers are the real-time UI and the ledger
// reconciler.
const (
	SubjectPaymentCreated    = "payment.created"
	SubjectPaymentProcessing = "payment.processing"
	SubjectPaymentCompleted  = "payment.completed"
	SubjectPaymentFailed     = "payment.failed"
	SubjectPaymentRefunded   = "payment.refunded"
)
