package reporter

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/NinesStack/crypto-log-emitter/generator"
	"github.com/NinesStack/crypto-log-emitter/loki"
	director "github.com/relistan/go-director"
	log "github.com/sirupsen/logrus"
)

// Totals is a snapshot of push outcomes
type Totals struct {
	Delivered uint64
	Rejected  uint64
	Failed    uint64
}

func (t Totals) Sum() uint64 {
	return t.Delivered + t.Rejected + t.Failed
}

func (t Totals) String() string {
	return fmt.Sprintf("delivered %d, rejected %d, failed %d", t.Delivered, t.Rejected, t.Failed)
}

// A DeliveryReporter tallies what happened to every push. Cumulative totals
// feed the final summary; the windowed counts are logged and reset by the
// ReportLooper on each tick.
type DeliveryReporter struct {
	ReportLooper director.Looper

	total  [3]uint64
	window [3]uint64
}

// NewDeliveryReporter returns a reporter that logs a window summary every
// interval once Run is called. Only call Run with a positive interval.
func NewDeliveryReporter(interval time.Duration) *DeliveryReporter {
	return &DeliveryReporter{
		ReportLooper: director.NewTimedLooper(director.FOREVER, interval, make(chan error)),
	}
}

// Record counts one push. Safe to call from any goroutine.
func (r *DeliveryReporter) Record(outcome loki.Outcome, labels map[string]string) {
	idx := index(outcome)
	if idx < 0 {
		log.Warnf("Ignoring unknown push outcome %d", outcome)
		return
	}

	atomic.AddUint64(&r.total[idx], 1)
	atomic.AddUint64(&r.window[idx], 1)

	pushesTotal.WithLabelValues(outcome.String()).Inc()
	eventsEmitted.WithLabelValues(
		labels[generator.LabelService], labels[generator.LabelLevel], labels[generator.LabelAction],
		outcome.String(),
	).Inc()
}

// Totals returns the cumulative counts since startup
func (r *DeliveryReporter) Totals() Totals {
	return Totals{
		Delivered: atomic.LoadUint64(&r.total[0]),
		Rejected:  atomic.LoadUint64(&r.total[1]),
		Failed:    atomic.LoadUint64(&r.total[2]),
	}
}

// Run starts a background goroutine that logs the outcomes seen since the
// previous report.
func (r *DeliveryReporter) Run() {
	log.Info("Starting up delivery reporter")

	go r.ReportLooper.Loop(func() error {
		// Subtract what we read rather than zeroing so no increment is lost
		var counts [3]uint64
		for i := range r.window {
			counts[i] = atomic.LoadUint64(&r.window[i])
			atomic.AddUint64(&r.window[i], 0-counts[i])
		}

		window := Totals{Delivered: counts[0], Rejected: counts[1], Failed: counts[2]}
		if window.Sum() > 0 {
			log.Infof("Pushes since last report: %s", window)
		}

		return nil
	})
}

func index(outcome loki.Outcome) int {
	switch outcome {
	case loki.Delivered:
		return 0
	case loki.Rejected:
		return 1
	case loki.Failed:
		return 2
	}
	return -1
}
