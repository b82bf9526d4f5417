package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	redemptionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingrezzi_redemption_outcomes_total",
			Help: "Ticket redemption attempts by outcome",
		},
		[]string{"outcome"},
	)

	redemptionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingrezzi_redemption_duration_seconds",
			Help:    "End-to-end duration of redemption requests",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
	)

	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingrezzi_tickets_issued_total",
			Help: "Tickets issued by payment status",
		},
		[]string{"payment_status"},
	)

	grantMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingrezzi_authorization_grants_total",
			Help: "Authorization grant mutations by action",
		},
		[]string{"action"},
	)

	scanCooldownHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ingrezzi_scan_cooldown_hits_total",
			Help: "Scans suppressed by the duplicate-submission cooldown",
		},
	)
)

func ObserveRedemption(outcome string, start time.Time) {
	redemptionOutcomes.WithLabelValues(outcome).Inc()
	redemptionDuration.Observe(time.Since(start).Seconds())
}

func TicketIssued(paymentStatus string) {
	ticketsIssued.WithLabelValues(paymentStatus).Inc()
}

func GrantMutated(action string) {
	grantMutations.WithLabelValues(action).Inc()
}

func ScanCooldownHit() {
	scanCooldownHits.Inc()
}
