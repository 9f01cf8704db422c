package factlog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	registry *prometheus.Registry

	// Counters
	statements     *prometheus.CounterVec
	queries        *prometheus.CounterVec
	errors         *prometheus.CounterVec
	factsAsserted  prometheus.Counter
	nextConnection prometheus.Counter

	// Gauges
	openSessions prometheus.Gauge

	// Latency
	statementLatency prometheus.Summary
}

func NewMetrics() *Metrics {
	m := &Metrics{
		statements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statements_total",
				Help: "statements executed, by kind",
			},
			[]string{"kind"},
		),
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queries_total",
				Help: "queries answered, by outcome",
			},
			[]string{"outcome"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "errors_total",
				Help: "failed lines, by the stage that failed",
			},
			[]string{"stage"},
		),
		factsAsserted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "facts_asserted_total",
				Help: "facts added to a store",
			},
		),
		nextConnection: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "connections_total",
				Help: "number of connections to this server over its lifetime",
			},
		),
		openSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "open_sessions",
				Help: "number of sessions currently open",
			},
		),
		statementLatency: prometheus.NewSummary(
			prometheus.SummaryOpts{
				Name: "line_latency_ns",
				Help: "latency to tokenize, parse and execute one line of input",
			},
		),
	}
	m.registry = prometheus.NewPedanticRegistry()
	reg := m.registry

	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector())

	reg.MustRegister(m.statements)
	reg.MustRegister(m.queries)
	reg.MustRegister(m.errors)
	reg.MustRegister(m.factsAsserted)
	reg.MustRegister(m.nextConnection)
	reg.MustRegister(m.openSessions)
	reg.MustRegister(m.statementLatency)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
