package metrics

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sentinel/internal/models"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_analyses_total",
			Help: "Total analysed feedback texts by mode and sentiment label",
		},
		[]string{"mode", "label"},
	)

	keywordHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentinel_keyword_hits_total",
			Help: "Total keyword matches by category and term",
		},
		[]string{"category", "term"},
	)

	rowFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentinel_batch_row_failures_total",
			Help: "Total batch rows that could not be analysed",
		},
	)

	inferenceSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentinel_analysis_duration_seconds",
			Help:    "Time spent analysing a single text or a whole batch",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
		[]string{"mode"},
	)

	batchRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentinel_batch_rows",
			Help:    "Number of rows per batch upload",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	modelReadyDesc = prometheus.NewDesc(
		"sentinel_model_ready",
		"Whether the sentiment model is loaded (1) or not (0)",
		[]string{"model", "provider"},
		nil,
	)

	modelLoadedDesc = prometheus.NewDesc(
		"sentinel_model_loaded_timestamp_seconds",
		"Unix time the sentiment model finished loading",
		[]string{"model", "provider"},
		nil,
	)
)

// ModelStatus reports the state of the shared classifier.
type ModelStatus interface {
	ModelID() string
	ProviderName() string
	Ready() bool
	LoadedAt() time.Time
}

// ModelCollector is a custom Prometheus collector that reads the model
// state on each scrape.
type ModelCollector struct {
	model ModelStatus
}

// Describe sends the metric descriptors to the channel.
func (c *ModelCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- modelReadyDesc
	ch <- modelLoadedDesc
}

// Collect emits the readiness gauge, and the load time once loaded.
func (c *ModelCollector) Collect(ch chan<- prometheus.Metric) {
	model, provider := c.model.ModelID(), c.model.ProviderName()

	ready := 0.0
	if c.model.Ready() {
		ready = 1
	}
	ch <- prometheus.MustNewConstMetric(modelReadyDesc, prometheus.GaugeValue, ready, model, provider)

	if loaded := c.model.LoadedAt(); !loaded.IsZero() {
		ch <- prometheus.MustNewConstMetric(modelLoadedDesc, prometheus.GaugeValue, float64(loaded.Unix()), model, provider)
	}
}

var initOnce sync.Once

// Init registers all collectors with the default registry.
// Must be called once at startup.
func Init(model ModelStatus) {
	initOnce.Do(func() {
		prometheus.MustRegister(collectors(model)...)
	})
}

// Register adds all collectors to reg.
func Register(reg prometheus.Registerer, model ModelStatus) error {
	for _, c := range collectors(model) {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func collectors(model ModelStatus) []prometheus.Collector {
	return []prometheus.Collector{
		analysesTotal,
		keywordHitsTotal,
		rowFailuresTotal,
		inferenceSeconds,
		batchRows,
		&ModelCollector{model: model},
	}
}

// Handler serves the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// RecordAnalysis counts one analysed text and its keyword hits.
func RecordAnalysis(mode string, r *models.AnalysisResult) {
	analysesTotal.WithLabelValues(mode, string(r.Label)).Inc()
	for _, term := range r.FrictionHits {
		keywordHitsTotal.WithLabelValues(models.CategoryFriction, term).Inc()
	}
	for _, term := range r.SecurityHits {
		keywordHitsTotal.WithLabelValues(models.CategorySecurity, term).Inc()
	}
}

// RecordRow counts one finished batch row. It runs as rows complete, so a
// long batch shows progress before it ends.
func RecordRow(row models.RowResult) {
	if !row.IsOK() {
		rowFailuresTotal.Inc()
		return
	}
	RecordAnalysis(models.ModeBatch, row.Result)
}

// RecordBatch records the size and duration of a finished batch.
func RecordBatch(rows int, elapsed time.Duration) {
	batchRows.Observe(float64(rows))
	inferenceSeconds.WithLabelValues(models.ModeBatch).Observe(elapsed.Seconds())
}

// ObserveDuration records how long a single analysis took.
func ObserveDuration(mode string, elapsed time.Duration) {
	inferenceSeconds.WithLabelValues(mode).Observe(elapsed.Seconds())
}
