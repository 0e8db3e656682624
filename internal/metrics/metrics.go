// Package metrics exports the outcome of a cleanup run in Prometheus text format.
//
// Runs are one-shot processes, so nothing is served over HTTP. The CLI writes
// the registry to a file that node_exporter's textfile collector picks up.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/pfrederiksen/aqua-events/internal/pipeline"
)

// Metrics holds the gauges of one run.
type Metrics struct {
	registry *prometheus.Registry

	RecordsAnalyzed  prometheus.Gauge
	Verdicts         *prometheus.GaugeVec
	Reasons          *prometheus.GaugeVec
	Corrections      *prometheus.GaugeVec
	Duplicates       prometheus.Gauge
	Deleted          prometheus.Gauge
	Updated          prometheus.Gauge
	CollectionSize   *prometheus.GaugeVec
	VerificationOK   prometheus.Gauge
	RunDuration      prometheus.Gauge
	RunSuccess       prometheus.Gauge
	LastRunTimestamp prometheus.Gauge
}

// New creates a Metrics instance on its own registry. Every series carries the
// profile and mode of the run as constant labels.
func New(profile string, dryRun bool) *Metrics {
	reg := prometheus.NewRegistry()
	mode := "commit"
	if dryRun {
		mode = "dry_run"
	}
	labels := prometheus.Labels{"profile": profile, "mode": mode}
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RecordsAnalyzed: f.NewGauge(prometheus.GaugeOpts{
			Name:        "aqua_events_records_analyzed",
			Help:        "Number of event records read by the last run",
			ConstLabels: labels,
		}),
		Verdicts: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "aqua_events_verdicts",
			Help:        "Records per verdict in the last run",
			ConstLabels: labels,
		}, []string{"verdict"}),
		Reasons: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "aqua_events_reasons",
			Help:        "Records flagged per reason code in the last run",
			ConstLabels: labels,
		}, []string{"reason"}),
		Corrections: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "aqua_events_corrections",
			Help:        "Planned field corrections on surviving records in the last run",
			ConstLabels: labels,
		}, []string{"field"}),
		Duplicates: f.NewGauge(prometheus.GaugeOpts{
			Name:        "aqua_events_duplicates",
			Help:        "Records that lost a duplicate group in the last run",
			ConstLabels: labels,
		}),
		Deleted: f.NewGauge(prometheus.GaugeOpts{
			Name:        "aqua_events_deleted",
			Help:        "Records deleted by the last run",
			ConstLabels: labels,
		}),
		Updated: f.NewGauge(prometheus.GaugeOpts{
			Name:        "aqua_events_updated",
			Help:        "Records updated by the last run",
			ConstLabels: labels,
		}),
		CollectionSize: f.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "aqua_events_collection_size",
			Help:        "Size of the events collection before and after the last run",
			ConstLabels: labels,
		}, []string{"when", "subset"}),
		VerificationOK: f.NewGauge(prometheus.GaugeOpts{
			Name:        "aqua_events_verification_ok",
			Help:        "1 if the post-commit count matched the plan",
			ConstLabels: labels,
		}),
		RunDuration: f.NewGauge(prometheus.GaugeOpts{
			Name:        "aqua_events_run_duration_seconds",
			Help:        "Wall time of the last run",
			ConstLabels: labels,
		}),
		RunSuccess: f.NewGauge(prometheus.GaugeOpts{
			Name:        "aqua_events_run_success",
			Help:        "1 if the last run finished without error",
			ConstLabels: labels,
		}),
		LastRunTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name:        "aqua_events_last_run_timestamp_seconds",
			Help:        "Unix time the last run finished",
			ConstLabels: labels,
		}),
	}
}

// Registry returns the registry holding the run's metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObservePlan records the analysis and, when present, the commit of plan.
func (m *Metrics) ObservePlan(plan *pipeline.Plan) {
	if m == nil || plan == nil {
		return
	}

	m.RecordsAnalyzed.Set(float64(plan.Total()))
	m.Verdicts.WithLabelValues("keep").Set(float64(plan.Kept()))
	m.Verdicts.WithLabelValues("delete").Set(float64(len(plan.Deletions)))
	m.Duplicates.Set(float64(plan.Duplicates()))

	for _, d := range plan.Deletions {
		for _, code := range d.Reasons {
			m.Reasons.WithLabelValues(string(code)).Inc()
		}
	}
	for _, c := range plan.Applicable() {
		m.Corrections.WithLabelValues(c.Field).Inc()
	}

	m.CollectionSize.WithLabelValues("before", "all").Set(float64(plan.BeforeTotal))
	m.CollectionSize.WithLabelValues("before", "with_contact").Set(float64(plan.BeforeWithContact))

	if plan.Commit != nil {
		m.Deleted.Set(float64(plan.Commit.Deleted))
		m.Updated.Set(float64(plan.Commit.Updated))
	}
	if v := plan.Verification; v != nil {
		m.CollectionSize.WithLabelValues("after", "all").Set(float64(v.AfterTotal))
		m.CollectionSize.WithLabelValues("after", "with_contact").Set(float64(v.AfterWithContact))
		if v.OK {
			m.VerificationOK.Set(1)
		} else {
			m.VerificationOK.Set(0)
		}
	}
}

// ObserveRun records the duration and outcome of a run.
func (m *Metrics) ObserveRun(start, end time.Time, err error) {
	if m == nil {
		return
	}
	m.RunDuration.Set(end.Sub(start).Seconds())
	m.LastRunTimestamp.Set(float64(end.Unix()))
	if err != nil {
		m.RunSuccess.Set(0)
	} else {
		m.RunSuccess.Set(1)
	}
}

// WriteTextfile writes the registry to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
