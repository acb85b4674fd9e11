package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/riskibarqy/fantaqb/internal/usecase"
)

var _ usecase.EngineMetrics = (*Metrics)(nil)

// Metrics is the prometheus implementation of usecase.EngineMetrics.
type Metrics struct {
	WeekCalculations     *prometheus.CounterVec
	FormationSubmissions *prometheus.CounterVec
	DerivationDuration   *prometheus.HistogramVec
	LiveWatches          prometheus.Gauge
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewMetrics creates and registers the engine metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewMetrics(registerer ...prometheus.Registerer) *Metrics {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	m := &Metrics{
		WeekCalculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fantaqb_week_calculations_total",
			Help: "Week calculation attempts by outcome.",
		}, []string{"outcome"}),
		FormationSubmissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fantaqb_formation_submissions_total",
			Help: "Formation submissions by outcome.",
		}, []string{"outcome"}),
		DerivationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fantaqb_view_derivation_duration_seconds",
			Help:    "Time spent re-deriving a ranking or formation view.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"view"}),
		LiveWatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fantaqb_live_watches",
			Help: "Open live view subscriptions.",
		}),
	}

	reg.MustRegister(
		m.WeekCalculations,
		m.FormationSubmissions,
		m.DerivationDuration,
		m.LiveWatches,
	)

	return m
}

func (m *Metrics) IncWeekCalculation(outcome string) {
	m.WeekCalculations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncFormationSubmission(outcome string) {
	m.FormationSubmissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDerivation(view string, elapsed time.Duration) {
	m.DerivationDuration.WithLabelValues(view).Observe(elapsed.Seconds())
}

func (m *Metrics) AddLiveWatches(delta int) {
	m.LiveWatches.Add(float64(delta))
}
