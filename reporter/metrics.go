package reporter

import (
	"github.com/NinesStack/crypto-log-emitter/generator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crypto_log_emitter_events_generated_total",
		Help: "Synthetic events generated, whether or not they reached Loki",
	}, []string{"service", "level", "action"})

	eventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crypto_log_emitter_events_total",
		Help: "Synthetic events pushed to Loki, by outcome",
	}, []string{"service", "level", "action", "outcome"})

	pushesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crypto_log_emitter_pushes_total",
		Help: "Push attempts to Loki, by outcome",
	}, []string{"outcome"})
)

// CountGenerated records one freshly generated event
func CountGenerated(labels map[string]string) {
	eventsGenerated.WithLabelValues(
		labels[generator.LabelService], labels[generator.LabelLevel], labels[generator.LabelAction],
	).Inc()
}
