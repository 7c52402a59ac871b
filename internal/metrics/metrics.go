package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Source outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Run holds the counters for a single generate run. A nil *Run is valid and
// records nothing.
type Run struct {
	registry *prometheus.Registry

	companies      prometheus.Counter
	sourceOutcomes *prometheus.CounterVec
	sourceDuration *prometheus.HistogramVec
	entities       *prometheus.CounterVec
	relations      *prometheus.CounterVec
	graphNodes     *prometheus.GaugeVec
	graphEdges     *prometheus.GaugeVec
}

func NewRun() *Run {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Run{
		registry: reg,
		companies: factory.NewCounter(prometheus.CounterOpts{
			Name: "ecmgraph_companies_processed_total",
			Help: "Companies folded into the document",
		}),
		sourceOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecmgraph_source_runs_total",
				Help: "Source pipeline runs by outcome",
			},
			[]string{"source", "outcome"},
		),
		sourceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecmgraph_source_duration_seconds",
				Help:    "Wall time of a source pipeline run",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
			},
			[]string{"source"},
		),
		entities: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecmgraph_entities_total",
				Help: "Classified entities by label",
			},
			[]string{"label"},
		),
		relations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecmgraph_relations_total",
				Help: "Mapped relations by property; unmapped properties count as ignored",
			},
			[]string{"property"},
		),
		graphNodes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ecmgraph_document_nodes",
				Help: "Node records in the document",
			},
			[]string{"node_type"},
		),
		graphEdges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ecmgraph_document_relationships",
				Help: "Relationship records in the document",
			},
			[]string{"relationship_type"},
		),
	}
}

func (r *Run) CompanyProcessed() {
	if r == nil {
		return
	}
	r.companies.Inc()
}

func (r *Run) SourceFinished(source, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.sourceOutcomes.WithLabelValues(source, outcome).Inc()
	r.sourceDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

func (r *Run) EntityFolded(label string) {
	if r == nil {
		return
	}
	if label == "" {
		label = "none"
	}
	r.entities.WithLabelValues(label).Inc()
}

func (r *Run) RelationFolded(property string, mapped bool) {
	if r == nil {
		return
	}
	if !mapped {
		property = "ignored"
	}
	r.relations.WithLabelValues(property).Inc()
}

// ObserveDocument sets the document gauges from per-type counts.
func (r *Run) ObserveDocument(nodes, relationships map[string]int) {
	if r == nil {
		return
	}
	for name, n := range nodes {
		r.graphNodes.WithLabelValues(name).Set(float64(n))
	}
	for name, n := range relationships {
		r.graphEdges.WithLabelValues(name).Set(float64(n))
	}
}

func (r *Run) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteFile dumps the registry in text exposition format.
func (r *Run) WriteFile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics file: %w", err)
	}
	return nil
}
