// Package metrics adapts the daemon's counters and gauges onto
// prometheus/client_golang, using a "pohwd_*" metric naming
// convention.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	TicksProcessed   prometheus.Counter
	ChargesAccepted  prometheus.Counter
	ChargesRejected  *prometheus.CounterVec
	BatteryBalance   prometheus.Gauge
	CNSScore         prometheus.Gauge
	PuzzleDuration   prometheus.Histogram
	CommitsAccepted  prometheus.Counter
	CommitsRejected  *prometheus.CounterVec
	KeystrokesTotal  prometheus.Counter
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		TicksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pohwd_ticks_processed_total",
			Help: "Number of entropy-engine analysis ticks processed.",
		}),
		ChargesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pohwd_charges_accepted_total",
			Help: "Number of battery charge ticks accepted.",
		}),
		ChargesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pohwd_charges_rejected_total",
			Help: "Number of battery charge ticks rejected, by reason.",
		}, []string{"reason"}),
		BatteryBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pohwd_battery_balance_credit_seconds",
			Help: "Current attention battery balance in credit-seconds.",
		}),
		CNSScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pohwd_cns_score",
			Help: "Most recent Cognitive Noise Signature score.",
		}),
		PuzzleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pohwd_puzzle_duration_seconds",
			Help:    "Wall-clock duration of the commit-gate proof-of-work search.",
			Buckets: prometheus.DefBuckets,
		}),
		CommitsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pohwd_commits_accepted_total",
			Help: "Number of commit-gate verify-work calls that produced a trailer.",
		}),
		CommitsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pohwd_commits_rejected_total",
			Help: "Number of commit-gate verify-work calls that failed, by kind.",
		}, []string{"kind"}),
		KeystrokesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pohwd_keystrokes_total",
			Help: "Count of keyboard events observed (counts only, never content).",
		}),
	}

	reg.MustRegister(
		r.TicksProcessed, r.ChargesAccepted, r.ChargesRejected,
		r.BatteryBalance, r.CNSScore, r.PuzzleDuration,
		r.CommitsAccepted, r.CommitsRejected, r.KeystrokesTotal,
	)
	return r
}

// Handler exposes the registry over /metrics for a local Prometheus
// scrape target, or for internal diagnostics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
