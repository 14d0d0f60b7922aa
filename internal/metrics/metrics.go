package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ============================================
	// Proof pipeline
	// ============================================
	ProofGenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backend_proof_generation_duration_seconds",
		Help:    "Groth16 proof generation duration in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	ProofGenerationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_proof_generation_total",
			Help: "Total number of proof generation attempts",
		},
		[]string{"result"},
	)

	ProofQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "backend_proof_queue_depth",
		Help: "Number of proof requests waiting for a worker slot",
	})

	// ============================================
	// Settlement pipeline
	// ============================================
	SettlementStageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_settlement_stage_total",
			Help: "Settlement attempts reaching each stage",
		},
		[]string{"stage"},
	)

	SettlementFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_settlement_failures_total",
			Help: "Settlement attempts failed, by error code",
		},
		[]string{"code"},
	)

	SettlementDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backend_settlement_duration_seconds",
		Help:    "End-to-end settlement attempt duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// ============================================
	// Fee relayer
	// ============================================
	RelayerRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_relayer_requests_total",
			Help: "Total requests sent to the fee relayer",
		},
		[]string{"operation", "result"},
	)

	RelayerPollAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "backend_relayer_poll_attempts",
		Help:    "Poll attempts needed per transfer confirmation",
		Buckets: []float64{1, 2, 5, 10, 20, 40, 60},
	})

	// ============================================
	// NATS
	// ============================================
	NATSConnectionStatus = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "backend_nats_connection_status",
		Help: "NATS connection status (1=connected, 0=disconnected)",
	})

	NATSEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_nats_events_published_total",
			Help: "Total number of NATS events published",
		},
		[]string{"event_type"},
	)
)
