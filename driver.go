package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NinesStack/crypto-log-emitter/generator"
	"github.com/NinesStack/crypto-log-emitter/reporter"
	director "github.com/relistan/go-director"
	log "github.com/sirupsen/logrus"
)

// ErrStopped ends the loop when the operator asks us to stop
var ErrStopped = errors.New("stopped by operator")

// RunConfig is everything the Driver needs to know about a run. It is not
// modified once the Driver has it.
type RunConfig struct {
	LokiURL  string
	Interval time.Duration
	MaxLogs  int // 0 or less runs until stopped
}

// Bounded reports whether the run stops on its own
func (c RunConfig) Bounded() bool {
	return c.MaxLogs > 0
}

func (c RunConfig) loopCount() int {
	if c.Bounded() {
		return c.MaxLogs
	}
	return director.FOREVER
}

func (c RunConfig) describeMaxLogs() string {
	if c.Bounded() {
		return fmt.Sprintf("%d", c.MaxLogs)
	}
	return "unbounded"
}

// RecordGenerator is satisfied by generator.Generator
type RecordGenerator interface {
	Generate() *generator.Record
}

// A Driver generates a record, hands it to the LogOutput, then sleeps, until
// either MaxLogs records were sent or Stop is called. Output failures never
// end the loop.
type Driver struct {
	config RunConfig
	gen    RecordGenerator
	output LogOutput
	looper director.Looper

	sent     int64
	quit     chan struct{}
	stopOnce sync.Once
}

func NewDriver(config RunConfig, gen RecordGenerator, output LogOutput) *Driver {
	return &Driver{
		config: config,
		gen:    gen,
		output: output,
		looper: director.NewFreeLooper(config.loopCount(), make(chan error)),
		quit:   make(chan struct{}),
	}
}

// Run announces the configuration and blocks running the loop. Call Wait from
// another goroutine to find out when it ends.
func (d *Driver) Run() {
	log.Info("Starting log emitter...")
	log.Infof("   Loki URL: %s", d.config.LokiURL)
	log.Infof("   Interval: %g sec", d.config.Interval.Seconds())
	log.Infof("   Max logs: %s", d.config.describeMaxLogs())
	log.Info(strings.Repeat("-", 50))

	d.looper.Loop(d.iterate)
}

// Wait blocks until the loop ends and logs the summary. Stopping by operator
// is a normal exit.
func (d *Driver) Wait() error {
	err := d.looper.Wait()
	d.output.Stop()

	if errors.Is(err, ErrStopped) {
		log.Infof("Stopped by user. Total sent: %d logs", d.Sent())
		return nil
	}

	if err != nil {
		return fmt.Errorf("emitter loop failed after %d logs: %w", d.Sent(), err)
	}

	log.Infof("Sent %d logs. Finishing.", d.Sent())
	return nil
}

// Stop ends the loop before the next record, or cuts the current sleep short.
// A push already in flight is allowed to finish. Safe to call more than once.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.quit) })
}

// Sent is the number of records handed to the output so far
func (d *Driver) Sent() int64 {
	return atomic.LoadInt64(&d.sent)
}

func (d *Driver) iterate() error {
	select {
	case <-d.quit:
		return ErrStopped
	default:
	}

	rec := d.gen.Generate()
	reporter.CountGenerated(rec.Labels)
	d.output.Log(rec)
	sent := atomic.AddInt64(&d.sent, 1)

	// The looper is counting too and ends the run after this call
	if d.config.Bounded() && sent >= int64(d.config.MaxLogs) {
		return nil
	}

	if !d.sleep() {
		return ErrStopped
	}

	return nil
}

// sleep waits out the interval, returning false if we were stopped first
func (d *Driver) sleep() bool {
	if d.config.Interval <= 0 {
		return true
	}

	timer := time.NewTimer(d.config.Interval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-d.quit:
		return false
	}
}
