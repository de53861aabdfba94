package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed remediation actions.
	OutcomeSuccess = "success"
	// OutcomeError labels failed remediation actions.
	OutcomeError = "error"
)

var (
	samplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "remedy_engine",
			Name:      "samples_total",
			Help:      "Total number of metric samples ingested.",
		},
	)

	anomaliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remedy_engine",
			Name:      "anomalies_total",
			Help:      "Total number of anomalies flagged, partitioned by severity and dimension.",
		},
		[]string{"severity", "dimension"},
	)

	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remedy_engine",
			Name:      "actions_total",
			Help:      "Total number of remediation actions executed, partitioned by type and outcome.",
		},
		[]string{"type", "outcome"},
	)

	actionSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "remedy_engine",
			Name:      "action_seconds",
			Help:      "Remediation action execution latency in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	forecastAlertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "remedy_engine",
			Name:      "forecast_alerts_total",
			Help:      "Total number of proactive forecast alerts emitted, partitioned by metric.",
		},
		[]string{"metric"},
	)
)

// Register attaches remedy-engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		samplesTotal,
		anomaliesTotal,
		actionsTotal,
		actionSeconds,
		forecastAlertsTotal,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveSample counts one ingested sample.
func ObserveSample() {
	samplesTotal.Inc()
}

// ObserveAnomaly counts one flagged anomaly.
func ObserveAnomaly(severity, dimension string) {
	anomaliesTotal.WithLabelValues(severity, dimension).Inc()
}

// ObserveAction records an action outcome and its execution latency.
func ObserveAction(actionType, outcome string, duration time.Duration) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	actionsTotal.WithLabelValues(actionType, label).Inc()
	if duration < 0 {
		duration = 0
	}
	actionSeconds.Observe(duration.Seconds())
}

// ObserveForecastAlert counts one advisory forecast alert.
func ObserveForecastAlert(metric string) {
	forecastAlertsTotal.WithLabelValues(metric).Inc()
}
