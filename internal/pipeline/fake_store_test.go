package pipeline

import (
	"context"
	"strings"

	"github.com/pfrederiksen/aqua-events/internal/event"
)

// fakeStore is an in-memory Store that records every write.
type fakeStore struct {
	records []*event.Record

	findErr   error
	deleteErr error
	updateErr error
	countErr  error

	deleteCalls [][]string
	updates     map[string]map[string]interface{}
	updateOrder []string
}

func newFakeStore(docs ...map[string]interface{}) *fakeStore {
	s := &fakeStore{updates: make(map[string]map[string]interface{})}
	for _, doc := range docs {
		s.records = append(s.records, event.FromDocument(doc))
	}
	return s
}

func (s *fakeStore) FindAll(ctx context.Context) ([]*event.Record, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	out := make([]*event.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *fakeStore) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	s.deleteCalls = append(s.deleteCalls, ids)
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []*event.Record
	var n int64
	for _, r := range s.records {
		if drop[r.ID] {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return n, nil
}

func (s *fakeStore) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates[id] = fields
	s.updateOrder = append(s.updateOrder, id)
	return nil
}

func (s *fakeStore) Count(ctx context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return int64(len(s.records)), nil
}

func (s *fakeStore) CountWithContact(ctx context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	var n int64
	for _, r := range s.records {
		if r.Contact.Any() {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) writes() int {
	return len(s.deleteCalls) + len(s.updateOrder)
}

// fakeArchiver records archived ids.
type fakeArchiver struct {
	runID string
	ids   []string
	err   error
}

func (a *fakeArchiver) Archive(ctx context.Context, runID string, deletions []Deletion) error {
	if a.err != nil {
		return a.err
	}
	a.runID = runID
	for _, d := range deletions {
		a.ids = append(a.ids, d.Record.ID)
	}
	return nil
}

// openGate lets every commit through immediately.
type openGate struct{ calls int }

func (g *openGate) Wait(ctx context.Context, plan *Plan) error {
	g.calls++
	return nil
}

func reasonsString(d Deletion) string {
	parts := make([]string, len(d.Reasons))
	for i, c := range d.Reasons {
		parts[i] = string(c)
	}
	return strings.Join(parts, ",")
}
