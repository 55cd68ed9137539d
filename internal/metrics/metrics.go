package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const EcoGardenNamespace = "ecogarden"

var (
	IngestBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "ingest_batches_total",
		Namespace: EcoGardenNamespace,
		Help:      "The total number of telemetry batches applied to the store.",
	})

	PlantUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "plant_updates_total",
			Namespace: EcoGardenNamespace,
			Help:      "The total number of plant sensor-data fields written by ingest.",
		},
		[]string{"kind"},
	)

	SimulatorDeliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "simulator_deliveries_total",
		Namespace: EcoGardenNamespace,
		Help:      "The total number of batches delivered by the telemetry simulator.",
	})

	DuplicateBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name:      "duplicate_batches_total",
		Namespace: EcoGardenNamespace,
		Help:      "The total number of external telemetry batches dropped as replays.",
	})

	StoreCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name:      "store_commands_total",
			Namespace: EcoGardenNamespace,
			Help:      "The total number of store commands by kind and outcome.",
		},
		[]string{"command", "outcome"},
	)

	Entities = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name:      "entities",
			Namespace: EcoGardenNamespace,
			Help:      "The current number of entities held by the store.",
		},
		[]string{"kind"},
	)

	HttpRequestLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:      "http_request_latency_seconds",
			Namespace: EcoGardenNamespace,
			Buckets:   prometheus.DefBuckets,
			Help:      "The latency of http operations in seconds.",
		},
		[]string{"method", "route", "status"},
	)
)
