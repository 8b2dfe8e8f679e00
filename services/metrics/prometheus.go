package metricsvc

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/smartgrades/core"
)

const namespace = "smartgrades"

// PrometheusMetrics exposes application events as Prometheus collectors.
type PrometheusMetrics struct {
	predictions  *prometheus.CounterVec
	gradeWrites  prometheus.Counter
	importedRows prometheus.Counter
	failedRows   prometheus.Counter
	imports      prometheus.Counter
}

var _ core.Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the collectors with `reg` (prometheus.DefaultRegisterer if nil).
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PrometheusMetrics{
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Missing score predictions by mode and whether the fallback answered.",
		}, []string{"mode", "fallback"}),
		gradeWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grade_writes_total",
			Help:      "Recorded grades.",
		}),
		imports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "csv",
			Name:      "imports_total",
			Help:      "CSV imports.",
		}),
		importedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "csv",
			Name:      "imported_rows_total",
			Help:      "CSV rows imported.",
		}),
		failedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "csv",
			Name:      "failed_rows_total",
			Help:      "CSV rows rejected.",
		}),
	}

	for _, c := range []prometheus.Collector{m.predictions, m.gradeWrites, m.imports, m.importedRows, m.failedRows} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMetrics) ObservePrediction(mode string, fallback bool) {
	m.predictions.WithLabelValues(mode, strconv.FormatBool(fallback)).Inc()
}

func (m *PrometheusMetrics) ObserveGradeWrite() {
	m.gradeWrites.Inc()
}

func (m *PrometheusMetrics) ObserveImport(rows, failed int) {
	m.imports.Inc()
	m.importedRows.Add(float64(rows))
	m.failedRows.Add(float64(failed))
}
