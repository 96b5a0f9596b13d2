package models

// PaymentStatus is the canonical transaction status shared by the
// synchronous orchestration path and the webhook reconciliation path.
type PaymentStatus string

const (
	StatusPending           PaymentStatus = "PENDING"
	StatusProcessing        PaymentStatus = "PROCESSING"
	StatusCompleted         PaymentStatus = "COMPLETED"
	StatusFailed            PaymentStatus = "FAILED"
	StatusCancelled         PaymentStatus = "CANCELLED"
	StatusRefunded          PaymentStatus = "REFUNDED"
	StatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// statusTransitions is the single source of truth for legal transitions.
// PENDING -> PROCESSING -> {COMPLETED, FAILED, CANCELLED};
// COMPLETED -> {REFUNDED, PARTIALLY_REFUNDED}. Nothing else.
var statusTransitions = map[PaymentStatus][]PaymentStatus{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
	StatusCompleted:  {StatusRefunded, StatusPartiallyRefunded},
}

// CanTransition reports whether moving from s to next is a legal transition.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible from s.
func (s PaymentStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// Valid reports whether s is one of the canonical statuses.
func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed,
		StatusCancelled, StatusRefunded, StatusPartiallyRefunded:
		return true
	}
	return false
}
