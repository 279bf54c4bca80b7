package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names used as the "operation" label.
const (
	OperationSearch       = "search"
	OperationBarcodeScan  = "barcode_scan"
	OperationDirectSearch = "direct_search"
)

// Recorder is the latency and progress sink for the seeder and the search
// coordinator.
type Recorder interface {
	ObserveQuery(operation string, elapsed time.Duration, rows int)
	SetSeedProgress(percent int)
	AddSeeded(n int)
}

// Prometheus implements Recorder on top of a prometheus registry.
type Prometheus struct {
	queryDuration *prometheus.HistogramVec
	queryRows     *prometheus.HistogramVec
	seedProgress  prometheus.Gauge
	seeded        prometheus.Counter
}

// NewPrometheus registers the catalog metrics on reg. A nil reg uses the
// default registerer.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Prometheus{
		queryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalog",
			Name:      "query_duration_seconds",
			Help:      "Latency of catalog queries.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		queryRows: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "catalog",
			Name:      "query_rows",
			Help:      "Rows returned by catalog queries.",
			Buckets:   []float64{0, 1, 10, 50, 100},
		}, []string{"operation"}),
		seedProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "catalog",
			Name:      "seed_progress_percent",
			Help:      "Progress of the current seeding run.",
		}),
		seeded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "catalog",
			Name:      "seeded_products_total",
			Help:      "Products written by seeding runs.",
		}),
	}
}

func (p *Prometheus) ObserveQuery(operation string, elapsed time.Duration, rows int) {
	p.queryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	p.queryRows.WithLabelValues(operation).Observe(float64(rows))
}

func (p *Prometheus) SetSeedProgress(percent int) {
	p.seedProgress.Set(float64(percent))
}

func (p *Prometheus) AddSeeded(n int) {
	p.seeded.Add(float64(n))
}

// Nop discards everything.
type Nop struct{}

func (Nop) ObserveQuery(string, time.Duration, int) {}
func (Nop) SetSeedProgress(int)                     {}
func (Nop) AddSeeded(int)                           {}
