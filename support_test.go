package main

import (
	"bytes"
	"os"
	"sync"

	"github.com/NinesStack/crypto-log-emitter/generator"
	log "github.com/sirupsen/logrus"
)

// LogCapture logs for async testing where we can't get a nice handle on things
func LogCapture(fn func()) string {
	capture := &bytes.Buffer{}
	log.SetOutput(capture)
	fn()
	log.SetOutput(os.Stdout)

	return capture.String()
}

// mockLogOutput implements the LogOutput interface, for testing
type mockLogOutput struct {
	sync.Mutex

	CallCount     int
	LastLogged    *generator.Record
	StopWasCalled bool

	// OnLog runs after each record is recorded, outside the lock
	OnLog func(count int)
}

func (m *mockLogOutput) Log(rec *generator.Record) {
	m.Lock()
	m.CallCount++
	m.LastLogged = rec
	count := m.CallCount
	m.Unlock()

	if m.OnLog != nil {
		m.OnLog(count)
	}
}

func (m *mockLogOutput) Stop() {
	m.Lock()
	defer m.Unlock()
	m.StopWasCalled = true
}

func (m *mockLogOutput) Calls() int {
	m.Lock()
	defer m.Unlock()
	return m.CallCount
}

// countingGenerator wraps the real generator and counts calls
type countingGenerator struct {
	gen   *generator.Generator
	Calls int
}

func newCountingGenerator() *countingGenerator {
	return &countingGenerator{gen: generator.NewGenerator(nil)}
}

func (g *countingGenerator) Generate() *generator.Record {
	g.Calls++
	return g.gen.Generate()
}
