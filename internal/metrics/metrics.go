package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	snapshotLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hallkal",
			Name:      "snapshot_load_total",
			Help:      "Count of snapshot load attempts by result.",
		},
		[]string{"result"},
	)

	snapshotFacilities = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hallkal",
			Name:      "snapshot_facilities",
			Help:      "Facilities in the current snapshot.",
		},
	)

	snapshotReservations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hallkal",
			Name:      "snapshot_reservations",
			Help:      "Reservations in the current snapshot.",
		},
	)

	indexRebuilds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hallkal",
			Name:      "index_rebuild_total",
			Help:      "Count of full date-index rebuilds.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hallkal",
			Name:      "http_requests_total",
			Help:      "Count of API requests by path and status.",
		},
		[]string{"path", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			snapshotLoads,
			snapshotFacilities,
			snapshotReservations,
			indexRebuilds,
			httpRequests,
		)
	})
}

func IncSnapshotLoad(result string) {
	snapshotLoads.WithLabelValues(result).Inc()
}

func SetSnapshotSize(facilities, reservations int) {
	snapshotFacilities.Set(float64(facilities))
	snapshotReservations.Set(float64(reservations))
}

func IncIndexRebuild() {
	indexRebuilds.Inc()
}

func IncHTTPRequest(path, status string) {
	httpRequests.WithLabelValues(path, status).Inc()
}
