package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/aqua-events/internal/event"
	"github.com/pfrederiksen/aqua-events/internal/fixes"
	"github.com/pfrederiksen/aqua-events/internal/pipeline"
	"github.com/pfrederiksen/aqua-events/internal/rules"
)

func samplePlan() *pipeline.Plan {
	a := event.FromDocument(map[string]interface{}{"_id": "a"})
	b := event.FromDocument(map[string]interface{}{"_id": "b"})
	c := event.FromDocument(map[string]interface{}{"_id": "c"})
	return &pipeline.Plan{
		Records: []*event.Record{a, b, c},
		Deletions: []pipeline.Deletion{
			{Record: a, Reasons: []rules.Code{rules.NoContactInfo, rules.MissingDate}},
			{Record: b, Reasons: []rules.Code{rules.NoContactInfo}},
		},
		Corrections:       []fixes.Correction{{RecordID: "c", Field: fixes.FieldCity, To: "Vigo"}},
		BeforeTotal:       3,
		BeforeWithContact: 1,
		Commit:            &pipeline.Commit{Deleted: 2, Updated: 1},
		Verification:      &pipeline.Verification{AfterTotal: 1, AfterWithContact: 1, ExpectedTotal: 1, OK: true},
	}
}

func TestObservePlan(t *testing.T) {
	m := New("full", false)
	m.ObservePlan(samplePlan())

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsAnalyzed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("keep")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Verdicts.WithLabelValues("delete")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Reasons.WithLabelValues("no_contact_info")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Reasons.WithLabelValues("missing_date")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Corrections.WithLabelValues(fixes.FieldCity)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Deleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VerificationOK))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CollectionSize.WithLabelValues("after", "all")))
}

func TestRegistry_GathersRunMetrics(t *testing.T) {
	m := New("smart", true)
	m.ObservePlan(samplePlan())

	n, err := testutil.GatherAndCount(m.Registry(), "aqua_events_records_analyzed", "aqua_events_verdicts")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			assert.Equal(t, "smart", labels["profile"], mf.GetName())
			assert.Equal(t, "dry_run", labels["mode"], mf.GetName())
		}
	}
}

func TestObserveRun(t *testing.T) {
	m := New("full", true)
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	m.ObserveRun(start, start.Add(1500*time.Millisecond), nil)
	assert.Equal(t, 1.5, testutil.ToFloat64(m.RunDuration))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunSuccess))
	assert.Equal(t, float64(start.Unix()+1), testutil.ToFloat64(m.LastRunTimestamp))

	m.ObserveRun(start, start, errors.New("boom"))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RunSuccess))
}

func TestWriteTextfile(t *testing.T) {
	m := New("smart", true)
	m.ObservePlan(samplePlan())
	m.ObserveRun(time.Now(), time.Now(), nil)

	path := filepath.Join(t.TempDir(), "aqua_events.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.Contains(out, `aqua_events_records_analyzed{mode="dry_run",profile="smart"} 3`), out)
	assert.Contains(t, out, `reason="no_contact_info"`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObservePlan(samplePlan())
	m.ObserveRun(time.Now(), time.Now(), nil)
	assert.NoError(t, m.WriteTextfile("/nonexistent/metrics.prom"))
}
