package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pfrederiksen/aqua-events/internal/event"
	"github.com/pfrederiksen/aqua-events/internal/pipeline"
	"github.com/pfrederiksen/aqua-events/internal/rules"
)

var _ pipeline.Archiver = (*Archive)(nil)

func openTemp(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive", "deleted.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() }) // nolint:errcheck
	return a
}

func deletion(id, title string, reasons ...rules.Code) pipeline.Deletion {
	return pipeline.Deletion{
		Record: event.FromDocument(map[string]interface{}{
			"_id":  id,
			"name": primitive.M{"es": title},
			"date": primitive.NewDateTimeFromTime(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)),
		}),
		Reasons: reasons,
	}
}

func TestArchive_RoundTrip(t *testing.T) {
	a := openTemp(t)
	a.now = func() time.Time { return time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	err := a.Archive(ctx, "run-1", []pipeline.Deletion{
		deletion("a", "Calendario", rules.CalendarUIElement, rules.MissingDate),
		deletion("b", "Copa de Invierno", rules.Duplicate),
	})
	require.NoError(t, err)

	entries, err := a.Entries(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "a", entries[0].EventID)
	assert.Equal(t, "Calendario", entries[0].Title)
	assert.Equal(t, []string{"calendar_ui_element", "missing_date"}, entries[0].Reasons)
	assert.Equal(t, "2025-01-01T00:00:00Z", entries[0].Document["date"])
	assert.Equal(t, map[string]interface{}{"es": "Calendario"}, entries[0].Document["name"])
	assert.Equal(t, time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC), entries[0].ArchivedAt)

	assert.Equal(t, []string{"duplicate"}, entries[1].Reasons)
}

func TestArchive_Runs(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()

	a.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, a.Archive(ctx, "older", []pipeline.Deletion{deletion("x", "Liga", rules.SuspiciousNamePattern)}))

	a.now = func() time.Time { return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, a.Archive(ctx, "newer", []pipeline.Deletion{
		deletion("y", "Liga", rules.SuspiciousNamePattern),
		deletion("z", "Liga", rules.SuspiciousNamePattern),
	}))

	runs, err := a.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "newer", runs[0].RunID)
	assert.Equal(t, 2, runs[0].Count)
	assert.Equal(t, "older", runs[1].RunID)
	assert.Equal(t, 1, runs[1].Count)
}

func TestArchive_LargeBatch(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()

	var ds []pipeline.Deletion
	for i := 0; i < batchSize*2+7; i++ {
		ds = append(ds, deletion(primitive.NewObjectID().Hex(), "Liga", rules.SuspiciousNamePattern))
	}
	require.NoError(t, a.Archive(ctx, "bulk", ds))

	entries, err := a.Entries(ctx, "bulk")
	require.NoError(t, err)
	assert.Len(t, entries, len(ds))
}

func TestArchive_EmptyIsNoop(t *testing.T) {
	a := openTemp(t)
	require.NoError(t, a.Archive(context.Background(), "none", nil))

	runs, err := a.Runs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestArchive_CorruptTimestamp(t *testing.T) {
	a := openTemp(t)
	ctx := context.Background()

	_, err := a.db.ExecContext(ctx,
		`INSERT INTO deleted_events (run_id, event_id, document, archived_at) VALUES (?, ?, ?, ?)`,
		"broken", "x", "{}", "yesterday")
	require.NoError(t, err)

	_, err = a.Runs(ctx)
	assert.ErrorContains(t, err, "parsing archive time of run broken")

	_, err = a.Entries(ctx, "broken")
	assert.ErrorContains(t, err, "parsing archive time of event x")
}
