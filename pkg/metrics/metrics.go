package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckoutResults counts createOrder outcomes by result label.
	CheckoutResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "checkout",
		Name:      "orders_total",
		Help:      "Order creation attempts by result.",
	}, []string{"result"})

	// StockReservationFailures counts conditional decrements that affected zero rows.
	StockReservationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "inventory",
		Name:      "reservation_failures_total",
		Help:      "Stock decrements rejected because stock was insufficient.",
	})

	VariantDeactivations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "inventory",
		Name:      "variant_deactivations_total",
		Help:      "Variants automatically deactivated at zero stock.",
	})

	// GatewayResults counts inbound gateway calls by entry point and outcome.
	GatewayResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "payment",
		Name:      "gateway_results_total",
		Help:      "Inbound gateway callbacks and notifications by outcome.",
	}, []string{"entry", "outcome"})

	// ReconciliationRows counts sweep rows by result (synced, skipped, error).
	ReconciliationRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "payment",
		Name:      "reconciliation_rows_total",
		Help:      "Payment rows visited by the reconciliation sweep.",
	}, []string{"result"})

	PaymentStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "payment",
		Name:      "status_changes_total",
		Help:      "Payment rows moved to a new status.",
	}, []string{"to"})

	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "shop",
		Subsystem: "order",
		Name:      "status_transitions_total",
		Help:      "Order status transitions by target status.",
	}, []string{"to"})
)
