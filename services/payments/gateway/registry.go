package gateway

import (
	"strings"

	"github.com/givehub/payments/internal/pkg/payerrors"
	"github.com/givehub/payments/services/payments"
)

// Registry routes currencies to gateways. The currency map is total over
// the supported set; an unsupported currency is a validation failure, never
// a fallback to a default processor. Lookups are pure and side-effect free.
type Registry struct {
	gateways map[string]payments.PaymentGateway
	routes   map[string]string
}

// NewRegistry builds a registry from the configured currency routes.
// A route pointing at an unregistered gateway id is dropped.
func NewRegistry(routes map[string]string, gateways ...payments.PaymentGateway) *Registry {
	byID := make(map[string]payments.PaymentGateway, len(gateways))
	for _, gw := range gateways {
		byID[gw.ID()] = gw
	}

	validRoutes := make(map[string]string, len(routes))
	for currency, id := range routes {
		if _, ok := byID[id]; ok {
			validRoutes[strings.ToUpper(currency)] = id
		}
	}

	return &Registry{
		gateways: byID,
		routes:   validRoutes,
	}
}

// ForCurrency returns the gateway that must service the given currency.
func (r *Registry) ForCurrency(currency string) (payments.PaymentGateway, error) {
	id, ok := r.routes[strings.ToUpper(currency)]
	if !ok {
		return nil, payerrors.Validationf("unsupported currency %q", currency)
	}
	return r.gateways[id], nil
}

// ByID returns the gateway with the given identifier. Refunds use this so a
// transaction is always serviced by the adapter that created it, even if
// the currency later routes elsewhere.
func (r *Registry) ByID(id string) (payments.PaymentGateway, error) {
	gw, ok := r.gateways[id]
	if !ok {
		return nil, payerrors.Validationf("unknown gateway %q", id)
	}
	return gw, nil
}

// Supports reports whether a currency has a route.
func (r *Registry) Supports(currency string) bool {
	_, ok := r.routes[strings.ToUpper(currency)]
	return ok
}
