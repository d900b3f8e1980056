package main

import (
	"github.com/NinesStack/crypto-log-emitter/generator"
	"github.com/NinesStack/crypto-log-emitter/loki"
	"github.com/NinesStack/crypto-log-emitter/reporter"
)

// LogOutput is where the Driver sends each generated Record. Implementations
// must not fail back to the caller.
type LogOutput interface {
	Log(rec *generator.Record)
	Stop()
}

// A LokiOutput is a LogOutput that pushes to Loki and tallies the outcome of
// every push on a DeliveryReporter.
type LokiOutput struct {
	pusher   *loki.Pusher
	reporter *reporter.DeliveryReporter
}

func NewLokiOutput(pusher *loki.Pusher, deliveries *reporter.DeliveryReporter) *LokiOutput {
	return &LokiOutput{
		pusher:   pusher,
		reporter: deliveries,
	}
}

// Log makes a single push attempt for the record
func (o *LokiOutput) Log(rec *generator.Record) {
	outcome := o.pusher.Push(rec.Message, rec.Labels)
	o.reporter.Record(outcome, rec.Labels)
}

// Stop releases idle connections
func (o *LokiOutput) Stop() {
	o.pusher.Close()
}
