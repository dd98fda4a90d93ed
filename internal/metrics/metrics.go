package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pyhub-apps/pdfdiff-golang/pkg/compare"
)

// Batch holds the Prometheus collectors of one comparison run.
type Batch struct {
	registry *prometheus.Registry

	pairsTotal   *prometheus.CounterVec
	pairDuration *prometheus.HistogramVec
	pagesTotal   *prometheus.CounterVec
	diffPixels   prometheus.Counter
	wordOps      *prometheus.CounterVec
}

// NewBatch creates the collectors on a private registry.
func NewBatch() *Batch {
	m := &Batch{
		registry: prometheus.NewRegistry(),

		pairsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pdfdiff",
			Name:      "pairs_total",
			Help:      "Document pairs processed, by outcome",
		}, []string{"status"}),

		pairDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pdfdiff",
			Name:      "pair_duration_seconds",
			Help:      "Time spent on one document pair",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"status"}),

		pagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pdfdiff",
			Name:      "pages_total",
			Help:      "Pages compared, by page status and whether they differ",
		}, []string{"status", "difference"}),

		diffPixels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pdfdiff",
			Name:      "diff_pixels_total",
			Help:      "Differing pixels across all compared pages",
		}),

		wordOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pdfdiff",
			Name:      "word_changes_total",
			Help:      "Added and removed words",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(m.pairsTotal, m.pairDuration, m.pagesTotal, m.diffPixels, m.wordOps)
	return m
}

// PairDone records the outcome of one pair.
func (m *Batch) PairDone(status string, elapsed time.Duration) {
	m.pairsTotal.WithLabelValues(status).Inc()
	m.pairDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// PagesDone records the pages of a compared pair.
func (m *Batch) PagesDone(res compare.DocumentResult) {
	for _, p := range res.Pages {
		m.pagesTotal.WithLabelValues(p.Status.String(), fmt.Sprint(p.HasDifference)).Inc()
		m.diffPixels.Add(float64(p.DiffPixels))
		for _, op := range p.Ops {
			m.wordOps.WithLabelValues(op.Kind.String()).Inc()
		}
	}
}

// WriteToTextfile writes the current values in the text exposition format,
// for node_exporter's textfile collector.
func (m *Batch) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
