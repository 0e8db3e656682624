package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/aqua-events/internal/cities"
	"github.com/pfrederiksen/aqua-events/internal/dedup"
	"github.com/pfrederiksen/aqua-events/internal/fixes"
	"github.com/pfrederiksen/aqua-events/internal/logger"
	"github.com/pfrederiksen/aqua-events/internal/rules"
)

var runClock = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

func goodDoc(id, title, city string) map[string]interface{} {
	return map[string]interface{}{
		"_id":       id,
		"name":      map[string]interface{}{"es": title},
		"date":      "2026-09-15",
		"location":  map[string]interface{}{"city": city, "region": "Galicia"},
		"contact":   map[string]interface{}{"email": "info@club.example"},
		"updatedAt": runClock.Add(-48 * time.Hour),
	}
}

func fixture() *fakeStore {
	newer := goodDoc("dup-new", "Travesía Ría de Vigo", "Vigo")
	newer["updatedAt"] = runClock.Add(-24 * time.Hour)

	return newFakeStore(
		goodDoc("keep-1", "Campeonato Gallego de Invierno", "Lugo"),
		goodDoc("dup-old", "Travesía Ría de Vigo", "Vigo"),
		newer,
		map[string]interface{}{"_id": "bad-1", "name": "Calendario"},
		goodDoc("fix-1", "Travesía Ría de Pontevedra - Pontevedra 2026", "Vigo"),
		goodDoc("fix-doomed", "Calendario - Pontevedra", "Vigo"),
	)
}

func newTestRunner(store Store, opts Options, mutate func(*Deps)) *Runner {
	correctors, _ := fixes.New([]string{"city"}, cities.Known)
	deps := Deps{
		Store:      store,
		Classifier: rules.NewClassifier(rules.DefaultTable(), rules.Canonical(), rules.Params{Now: runClock}),
		Correctors: correctors,
		Grouper:    dedup.New(dedup.Submission, dedup.Content),
		Gate:       &openGate{},
		Clock:      func() time.Time { return runClock },
		Log:        logger.New(logger.LevelError, io.Discard),
	}
	if mutate != nil {
		mutate(&deps)
	}
	return NewRunner(deps, opts)
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	store := fixture()
	archiver := &fakeArchiver{}
	r := newTestRunner(store, Options{DryRun: true, RunID: "r1", Profile: "full"}, func(d *Deps) {
		d.Archiver = archiver
	})

	plan, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Done, r.State())
	assert.Equal(t, Done, plan.State)
	assert.Zero(t, store.writes())
	assert.Empty(t, archiver.ids)
	assert.Nil(t, plan.Commit)
	assert.Nil(t, plan.Verification)

	assert.Equal(t, 6, plan.Total())
	assert.Equal(t, []string{"dup-old", "bad-1", "fix-doomed"}, plan.DeletionIDs())
	assert.Equal(t, 3, plan.Kept())
	assert.Equal(t, 1, plan.Duplicates())
	assert.Equal(t, rules.Version, plan.RulesVersion)
}

func TestRun_CommitDeletesOnceAndUpdatesSurvivors(t *testing.T) {
	store := fixture()
	archiver := &fakeArchiver{}
	gate := &openGate{}
	r := newTestRunner(store, Options{RunID: "r2"}, func(d *Deps) {
		d.Archiver = archiver
		d.Gate = gate
	})

	plan, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, gate.calls)
	require.Len(t, store.deleteCalls, 1)
	assert.ElementsMatch(t, []string{"dup-old", "bad-1", "fix-doomed"}, store.deleteCalls[0])
	assert.Equal(t, "r2", archiver.runID)
	assert.Equal(t, store.deleteCalls[0], archiver.ids)

	assert.Equal(t, []string{"fix-1"}, store.updateOrder)
	assert.Equal(t, map[string]interface{}{fixes.FieldCity: "Pontevedra"}, store.updates["fix-1"])

	require.NotNil(t, plan.Commit)
	assert.Equal(t, int64(3), plan.Commit.Deleted)
	assert.Equal(t, 1, plan.Commit.Updated)
	assert.Equal(t, 1, plan.Commit.Skipped)

	require.NotNil(t, plan.Verification)
	assert.True(t, plan.Verification.OK)
	assert.Equal(t, int64(6), plan.Verification.BeforeTotal)
	assert.Equal(t, int64(3), plan.Verification.AfterTotal)
	assert.Equal(t, Done, r.State())
}

func TestRun_DuplicateReasonOnLoser(t *testing.T) {
	store := fixture()
	plan, err := newTestRunner(store, Options{DryRun: true}, nil).Run(context.Background())
	require.NoError(t, err)

	for _, d := range plan.Deletions {
		if d.Record.ID == "dup-old" {
			assert.Equal(t, "duplicate", reasonsString(d))
		}
	}
	for i, rec := range plan.Records {
		res := plan.Results[i]
		assert.Equal(t, res.Verdict == rules.Delete, len(res.Reasons) > 0, rec.ID)
	}
}

func TestRun_GateRefusal(t *testing.T) {
	store := fixture()
	var out bytes.Buffer
	r := newTestRunner(store, Options{}, func(d *Deps) {
		d.Gate = &ConfirmGate{Confirmed: false, Out: &out}
	})

	plan, err := r.Run(context.Background())
	require.ErrorIs(t, err, ErrNotConfirmed)
	require.NotNil(t, plan)
	assert.Equal(t, Failed, r.State())
	assert.Zero(t, store.writes())
}

func TestRun_MissingGateIsNotConfirmed(t *testing.T) {
	store := fixture()
	r := newTestRunner(store, Options{}, func(d *Deps) { d.Gate = nil })

	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Zero(t, store.writes())
}

func TestRun_StoreErrorsAbort(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name    string
		setup   func(s *fakeStore, a *fakeArchiver)
		wantMsg string
		writes  int
	}{
		{"find", func(s *fakeStore, a *fakeArchiver) { s.findErr = boom }, "reading events", 0},
		{"count", func(s *fakeStore, a *fakeArchiver) { s.countErr = boom }, "counting events", 0},
		{"archive", func(s *fakeStore, a *fakeArchiver) { a.err = boom }, "archiving deleted events", 0},
		{"delete", func(s *fakeStore, a *fakeArchiver) { s.deleteErr = boom }, "deleting events", 0},
		{"update", func(s *fakeStore, a *fakeArchiver) { s.updateErr = boom }, "updating event fix-1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := fixture()
			archiver := &fakeArchiver{}
			tt.setup(store, archiver)

			r := newTestRunner(store, Options{}, func(d *Deps) { d.Archiver = archiver })
			_, err := r.Run(context.Background())

			require.Error(t, err)
			assert.ErrorIs(t, err, boom)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, Failed, r.State())
			assert.Equal(t, tt.writes, store.writes())
		})
	}
}

func TestRun_RequiresStoreAndClassifier(t *testing.T) {
	r := NewRunner(Deps{}, Options{DryRun: true})
	_, err := r.Run(context.Background())
	assert.Error(t, err)
}

func TestRun_EmptyCollection(t *testing.T) {
	store := newFakeStore()
	plan, err := newTestRunner(store, Options{}, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Empty(t, store.deleteCalls)
	assert.Zero(t, plan.Commit.Deleted)
	assert.True(t, plan.Verification.OK)
}

func TestPlan_Updates(t *testing.T) {
	p := &Plan{
		Corrections: []fixes.Correction{
			{RecordID: "a", Field: fixes.FieldCity, To: "Vigo"},
			{RecordID: "b", Field: fixes.FieldDiscipline, To: "natacion"},
			{RecordID: "a", Field: fixes.FieldFederation, To: "RFEN"},
		},
	}

	order, updates := p.Updates()
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, map[string]interface{}{fixes.FieldCity: "Vigo", fixes.FieldFederation: "RFEN"}, updates["a"])
}
