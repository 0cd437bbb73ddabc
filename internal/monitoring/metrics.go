package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors
type Metrics struct {
	TicketsIssued *prometheus.CounterVec
	ScanOutcomes  *prometheus.CounterVec
	PaymentVolume *prometheus.CounterVec
	RefundsTotal  prometheus.Counter
	PayoutsTotal  prometheus.Counter
}

// New registers the engine's collectors with the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TicketsIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "boxoffice_tickets_issued_total",
			Help: "Tickets issued, by kind (individual or bundle).",
		}, []string{"kind"}),
		ScanOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "boxoffice_scan_outcomes_total",
			Help: "Check-in attempts by outcome.",
		}, []string{"result"}),
		PaymentVolume: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "boxoffice_payment_volume_cents_total",
			Help: "Gross payment volume in cents, by provider.",
		}, []string{"provider"}),
		RefundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "boxoffice_refunds_total",
			Help: "Refunds processed.",
		}),
		PayoutsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "boxoffice_payouts_completed_total",
			Help: "Seller payouts completed.",
		}),
	}
}
