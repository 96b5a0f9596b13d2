package gateway

import (
	"fmt"

	"github.com/givehub/payments/internal/pkg/models"
	natspkg "github.com/givehub/payments/internal/pkg/nats"
)

// NATSEventGW publishes payment lifecycle events for the real-time UI and
// the ledger reconciler.
type NATSEventGW struct {
	producer *natspkg.Producer
}

// NewNATSEventGW creates the event gateway
func NewNATSEventGW(producer *natspkg.Producer) *NATSEventGW {
	return &NATSEventGW{producer: producer}
}

// PublishPaymentEvent publishes one lifecycle event. Failures surface to
// the caller, which logs and continues: event emission never affects the
// transaction's persisted state.
func (gw *NATSEventGW) PublishPaymentEvent(subject string, event *models.PaymentEvent) error {
	if err := gw.producer.Publish(subject, event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", subject, err)
	}
	return nil
}
