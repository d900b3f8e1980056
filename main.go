package main

import (
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/NinesStack/crypto-log-emitter/generator"
	"github.com/NinesStack/crypto-log-emitter/loki"
	"github.com/NinesStack/crypto-log-emitter/reporter"
	cli "github.com/jawher/mow.cli"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/relistan/rubberneck"
	log "github.com/sirupsen/logrus"
)

const (
	appDescription = "Emits synthetic crypto exchange logs to Loki"

	defaultLokiURL  = "http://localhost:3100/loki/api/v1/push"
	defaultInterval = "3.0"
)

// Config holds the ambient settings that come from the environment. The run
// itself is configured on the command line.
type Config struct {
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
	LogJSON        bool          `envconfig:"LOG_JSON" default:"false"`
	DebugHTTP      bool          `envconfig:"DEBUG_HTTP" default:"false"`
	MetricsAddr    string        `envconfig:"METRICS_ADDR" default:""`
	ReportInterval time.Duration `envconfig:"REPORT_INTERVAL" default:"1m"`
}

func configureLogging(config Config) error {
	level, err := log.ParseLevel(config.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)

	if config.LogJSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	return nil
}

// newRunConfig validates the command line values
func newRunConfig(lokiURL string, interval string, maxLogs int) (RunConfig, error) {
	seconds, err := strconv.ParseFloat(interval, 64)
	if err != nil {
		return RunConfig{}, fmt.Errorf("invalid interval '%s': %w", interval, err)
	}

	if seconds < 0 || math.IsNaN(seconds) || seconds > math.MaxInt64/float64(time.Second) {
		return RunConfig{}, fmt.Errorf("invalid interval '%s': must be a non-negative number of seconds", interval)
	}

	return RunConfig{
		LokiURL:  lokiURL,
		Interval: time.Duration(seconds * float64(time.Second)),
		MaxLogs:  maxLogs,
	}, nil
}

func initApp(config Config) *cli.Cli {
	app := cli.App("crypto-log-emitter", appDescription)
	lokiURL := app.String(cli.StringOpt{
		Name:  "loki-url",
		Value: defaultLokiURL,
		Desc:  "Loki push endpoint",
	})
	interval := app.String(cli.StringOpt{
		Name:  "interval",
		Value: defaultInterval,
		Desc:  "Seconds to wait between log lines",
	})
	maxLogs := app.Int(cli.IntOpt{
		Name:  "max-logs",
		Value: 0,
		Desc:  "Stop after this many log lines (0 = run until interrupted)",
	})

	app.Action = func() {
		runConfig, err := newRunConfig(*lokiURL, *interval, *maxLogs)
		if err != nil {
			log.Fatal(err.Error())
		}

		run(config, runConfig)
	}

	return app
}

func run(config Config, runConfig RunConfig) {
	if config.MetricsAddr != "" {
		serveMetrics(config.MetricsAddr)
	}

	deliveries := reporter.NewDeliveryReporter(config.ReportInterval)
	if config.ReportInterval > 0 {
		deliveries.Run()
	}

	pusher := loki.NewPusher(runConfig.LokiURL, loki.NewHTTPClient(loki.DefaultTimeout, config.DebugHTTP))
	driver := NewDriver(runConfig, generator.NewGenerator(nil), NewLokiOutput(pusher, deliveries))

	done := make(chan struct{})
	go stopOnSignal(driver, watchSignals(), done)
	go driver.Run()

	if err := driver.Wait(); err != nil {
		log.Error(err.Error())
	}
	close(done)

	log.Infof("Push outcomes: %s", deliveries.Totals())
}

func watchSignals() chan os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	return signals
}

// stopOnSignal stops the driver on the first signal, then hands signal
// handling back so a second SIGINT kills the process. It returns early if
// done is closed.
func stopOnSignal(driver *Driver, signals chan os.Signal, done <-chan struct{}) {
	defer signal.Stop(signals)

	select {
	case <-signals:
		log.Info("Received shutdown signal...")
		driver.Stop()
	case <-done:
	}
}

func serveMetrics(addr string) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		log.Infof("Metrics server starting on %s...", addr)
		err := http.ListenAndServe(addr, mux)
		if err != nil {
			log.Error(err.Error())
		}
	}()
}

func main() {
	var config Config
	err := envconfig.Process("emitter", &config)
	if err != nil {
		log.Fatal(err.Error())
	}

	err = configureLogging(config)
	if err != nil {
		log.Fatal(err.Error())
	}
	rubberneck.Print(config)

	err = initApp(config).Run(os.Args)
	if err != nil {
		log.Fatal(err.Error())
	}
}
