package storage

import (
	"sort"

	"github.com/pfrederiksen/aqua-events/internal/event"
	"github.com/pfrederiksen/aqua-events/internal/fixes"
)

// Change is one field that differs between two snapshots of the same event
type Change struct {
	EventID string `json:"event_id"`
	Title   string `json:"title"`
	Field   string `json:"field"`
	Old     string `json:"old"`
	New     string `json:"new"`
}

// DiffResult is the outcome of comparing two snapshots by event id
type DiffResult struct {
	Removed []string `json:"removed"`
	Added   []string `json:"added"`
	Changes []Change `json:"changes"`
}

// Empty reports whether the snapshots hold the same events with the same values.
func (d *DiffResult) Empty() bool {
	return len(d.Removed) == 0 && len(d.Added) == 0 && len(d.Changes) == 0
}

// Diff compares before with after. Removed and Added are sorted by id; Changes
// follow the order of after. A nil snapshot counts as empty.
func Diff(before, after *Snapshot) *DiffResult {
	prev := make(map[string]*event.Record)
	for _, r := range snapshotRecords(before) {
		prev[r.ID] = r
	}

	result := &DiffResult{}
	seen := make(map[string]bool)
	for _, r := range snapshotRecords(after) {
		seen[r.ID] = true
		old, ok := prev[r.ID]
		if !ok {
			result.Added = append(result.Added, r.ID)
			continue
		}
		result.Changes = append(result.Changes, detectChanges(old, r)...)
	}
	for id := range prev {
		if !seen[id] {
			result.Removed = append(result.Removed, id)
		}
	}

	sort.Strings(result.Removed)
	sort.Strings(result.Added)
	return result
}

func snapshotRecords(s *Snapshot) []*event.Record {
	if s == nil {
		return nil
	}
	out := make([]*event.Record, 0, len(s.Events))
	for _, doc := range s.Events {
		out = append(out, event.FromDocument(doc))
	}
	return out
}

// detectChanges compares the fields the pipeline reads or corrects.
func detectChanges(previous, current *event.Record) []Change {
	pv, cv := event.Normalize(previous), event.Normalize(current)
	fields := []struct {
		name     string
		old, new string
	}{
		{"title", pv.TitleEs, cv.TitleEs},
		{"date", pv.DateRaw, cv.DateRaw},
		{fixes.FieldCity, pv.City, cv.City},
		{"location.region", pv.Region, cv.Region},
		{fixes.FieldDiscipline, pv.Discipline, cv.Discipline},
		{fixes.FieldFederation, previous.Federation, current.Federation},
	}

	var changes []Change
	for _, f := range fields {
		if f.old != f.new {
			changes = append(changes, Change{
				EventID: current.ID,
				Title:   cv.TitleEs,
				Field:   f.name,
				Old:     f.old,
				New:     f.new,
			})
		}
	}
	return changes
}
