package lib

import (
	"context"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/* This file implements dev-ops telemetry for the node in the form of prometheus metrics */

const metricsPattern = "/metrics"

// measurement names submitted by the services
const (
	MeasurementVoteNative     = "vote-native"     // fields: count
	MeasurementLeaderFinality = "leader-finality" // fields: duration_ms
	MeasurementPoHTick        = "poh-tick"        // fields: tick_height, num_hashes
	MeasurementBanking        = "banking-entries" // fields: entries, transactions
)

// MetricsSinkI is a fire-and-forget telemetry sink
type MetricsSinkI interface {
	Submit(measurement string, fields map[string]int64)
}

var (
	_ MetricsSinkI = &Metrics{}
	_ MetricsSinkI = NullSink{}
	_ MetricsSinkI = &MemorySink{}
)

// Metrics represents a server that exposes Prometheus metrics
type Metrics struct {
	server *http.Server  // the http prometheus server
	config MetricsConfig // the configuration
	log    LoggerI       // the logger

	PoHMetrics                           // clock telemetry
	VoteMetrics                          // vote program telemetry
	FinalityMetrics                      // leader finality telemetry
	BankingMetrics                       // entry consumer telemetry
	Generic         *prometheus.GaugeVec // any other measurement
}

// PoHMetrics represents the telemetry of the proof of history clock
type PoHMetrics struct {
	Ticks      prometheus.Counter // how many ticks has the clock produced?
	TickHeight prometheus.Gauge   // what's the current tick height?
	TickHashes prometheus.Gauge   // how many hashes were in the last tick?
}

// VoteMetrics represents the telemetry of the vote program
type VoteMetrics struct {
	VotesAccepted prometheus.Counter // how many votes were applied?
}

// FinalityMetrics represents the telemetry of the leader finality service
type FinalityMetrics struct {
	FinalityMS       prometheus.Gauge     // what's the current confirmation lag?
	FinalityDuration prometheus.Histogram // distribution of the confirmation lag in seconds
}

// BankingMetrics represents the telemetry of the delivered entry consumer
type BankingMetrics struct {
	Entries      prometheus.Counter // how many entries were delivered?
	Transactions prometheus.Counter // how many transactions were delivered?
}

// NewMetricsServer() creates a new telemetry server with its own registry
func NewMetricsServer(config MetricsConfig, log LoggerI) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	mux := http.NewServeMux()
	mux.Handle(metricsPattern, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	return &Metrics{
		server: &http.Server{Addr: config.PrometheusAddress, Handler: mux},
		config: config,
		log:    log,
		PoHMetrics: PoHMetrics{
			Ticks: factory.NewCounter(prometheus.CounterOpts{
				Name: "poh_ticks_total",
				Help: "Total number of ticks produced",
			}),
			TickHeight: factory.NewGauge(prometheus.GaugeOpts{
				Name: "poh_tick_height",
				Help: "Current tick height",
			}),
			TickHashes: factory.NewGauge(prometheus.GaugeOpts{
				Name: "poh_tick_num_hashes",
				Help: "Number of hashes in the last tick entry",
			}),
		},
		VoteMetrics: VoteMetrics{
			VotesAccepted: factory.NewCounter(prometheus.CounterOpts{
				Name: "poh_vote_native_total",
				Help: "Total number of votes applied by the vote program",
			}),
		},
		FinalityMetrics: FinalityMetrics{
			FinalityMS: factory.NewGauge(prometheus.GaugeOpts{
				Name: "poh_leader_finality_ms",
				Help: "Milliseconds between the confirmed tick and its confirmation",
			}),
			FinalityDuration: factory.NewHistogram(prometheus.HistogramOpts{
				Name:    "poh_leader_finality_seconds",
				Help:    "Leader finality in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
			}),
		},
		BankingMetrics: BankingMetrics{
			Entries: factory.NewCounter(prometheus.CounterOpts{
				Name: "poh_entries_total",
				Help: "Total number of entries delivered",
			}),
			Transactions: factory.NewCounter(prometheus.CounterOpts{
				Name: "poh_entry_transactions_total",
				Help: "Total number of transactions delivered in entries",
			}),
		},
		Generic: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "poh_measurement",
			Help: "Last value of an ad-hoc measurement field",
		}, []string{"measurement", "field"}),
	}
}

// Start() starts the telemetry server
func (m *Metrics) Start() {
	// exit if empty
	if m == nil {
		return
	}
	// if the metrics server is enabled
	if m.config.Enabled {
		go func() {
			m.log.Infof("Starting metrics server on %s", m.config.PrometheusAddress)
			// run the server
			if err := m.server.ListenAndServe(); err != nil {
				if err != http.ErrServerClosed {
					m.log.Errorf("Metrics server failed with err: %s", err.Error())
				}
			}
		}()
	}
}

// Stop() gracefully stops the telemetry server
func (m *Metrics) Stop() {
	// exit if empty
	if m == nil {
		return
	}
	// if the metrics server isn't enabled
	if m.config.Enabled {
		// shutdown the server
		if err := m.server.Shutdown(context.Background()); err != nil {
			m.log.Error(err.Error())
		}
	}
}

// Handler() exposes the prometheus handler, used by tests and embedding servers
func (m *Metrics) Handler() http.Handler { return m.server.Handler }

// Submit() maps a measurement onto the prometheus collectors
func (m *Metrics) Submit(measurement string, fields map[string]int64) {
	// exit if empty
	if m == nil {
		return
	}
	switch measurement {
	case MeasurementVoteNative:
		m.VotesAccepted.Add(float64(fields["count"]))
	case MeasurementLeaderFinality:
		ms := fields["duration_ms"]
		m.FinalityMS.Set(float64(ms))
		m.FinalityDuration.Observe(float64(ms) / 1000)
	case MeasurementPoHTick:
		m.Ticks.Inc()
		m.TickHeight.Set(float64(fields["tick_height"]))
		m.TickHashes.Set(float64(fields["num_hashes"]))
	case MeasurementBanking:
		m.Entries.Add(float64(fields["entries"]))
		m.Transactions.Add(float64(fields["transactions"]))
	default:
		for field, value := range fields {
			m.Generic.WithLabelValues(measurement, field).Set(float64(value))
		}
	}
}

// NullSink discards every measurement
type NullSink struct{}

// Submit() is a no-op
func (NullSink) Submit(string, map[string]int64) {}

// Measurement is a single submission captured by a MemorySink
type Measurement struct {
	Name   string
	Fields map[string]int64
}

// MemorySink keeps every submission in memory
type MemorySink struct {
	mu           sync.Mutex
	measurements []Measurement
}

// Submit() appends a copy of the measurement
func (s *MemorySink) Submit(measurement string, fields map[string]int64) {
	cp := make(map[string]int64, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.measurements = append(s.measurements, Measurement{Name: measurement, Fields: cp})
}

// Measurements() returns the captured submissions with the name, in order
func (s *MemorySink) Measurements(name string) (out []Measurement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.measurements {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return
}
