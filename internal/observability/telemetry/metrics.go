package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Assistant metrics
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aria_commands_total",
		Help: "Total de comandos executados",
	}, []string{"action", "source"})

	UtterancesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aria_utterances_dropped_total",
		Help: "Utterances descartadas antes da execução",
	}, []string{"reason"})

	InterpretLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aria_interpret_latency_seconds",
		Help:    "Latência da interpretação remota",
		Buckets: prometheus.DefBuckets,
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "aria_active_voice_sessions",
		Help: "Sessões de voz ativas",
	})

	HistoryWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aria_history_write_failures_total",
		Help: "Falhas ao gravar histórico de comandos",
	})

	// Infra metrics
	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "aria_database_latency_seconds",
		Help:    "Latência de queries no banco",
		Buckets: prometheus.DefBuckets,
	})
)
