package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pfrederiksen/aqua-events/internal/event"
)

// Snapshot is the on-disk form of an exported collection
type Snapshot struct {
	ExportedAt string                   `json:"exported_at"`
	Source     string                   `json:"source,omitempty"`
	Events     []map[string]interface{} `json:"events"`
}

// Storage is a pipeline store backed by a snapshot file
type Storage struct {
	path     string
	snapshot *Snapshot
	now      func() time.Time
}

// New opens the snapshot at path. A missing file yields an empty store that is
// created on the first write.
func New(path string) (*Storage, error) {
	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	snapshot, err := LoadSnapshot(path)
	if err != nil {
		return nil, err
	}

	return &Storage{
		path:     path,
		snapshot: snapshot,
		now:      time.Now,
	}, nil
}

// Path returns the snapshot file the store reads and writes.
func (s *Storage) Path() string {
	return s.path
}

// LoadSnapshot loads a snapshot from disk
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No previous snapshot, return empty one
			return &Snapshot{}, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	return &snapshot, nil
}

// SaveSnapshot saves a snapshot to disk, creating parent directories.
func SaveSnapshot(path string, snapshot *Snapshot) error {
	path, err := expandHome(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	// Write a sibling file and rename it into place.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// WriteSnapshot exports records to path.
func WriteSnapshot(path string, records []*event.Record, source string, exportedAt time.Time) error {
	snapshot := &Snapshot{
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		Source:     source,
		Events:     make([]map[string]interface{}, 0, len(records)),
	}
	for _, r := range records {
		doc := r.Doc
		if doc == nil {
			doc = map[string]interface{}{"_id": r.ID}
		}
		snapshot.Events = append(snapshot.Events, JSONDocument(doc))
	}
	return SaveSnapshot(path, snapshot)
}

// FindAll returns every record of the snapshot.
func (s *Storage) FindAll(ctx context.Context) ([]*event.Record, error) {
	records := make([]*event.Record, 0, len(s.snapshot.Events))
	for _, doc := range s.snapshot.Events {
		records = append(records, event.FromDocument(doc))
	}
	return records, nil
}

// DeleteByIDs removes the given ids and persists the snapshot.
func (s *Storage) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}

	kept := s.snapshot.Events[:0:0]
	var deleted int64
	for _, doc := range s.snapshot.Events {
		if drop[event.IDString(doc["_id"])] {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	if deleted == 0 {
		return 0, nil
	}

	s.snapshot.Events = kept
	if err := SaveSnapshot(s.path, s.snapshot); err != nil {
		return 0, err
	}
	return deleted, nil
}

// UpdateFields sets dotted field paths on one document, stamps updatedAt and
// persists the snapshot.
func (s *Storage) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	for _, doc := range s.snapshot.Events {
		if event.IDString(doc["_id"]) != id {
			continue
		}
		for path, value := range fields {
			setPath(doc, path, value)
		}
		doc["updatedAt"] = s.now().UTC().Format(time.RFC3339)
		return SaveSnapshot(s.path, s.snapshot)
	}
	return fmt.Errorf("event not found: %s", id)
}

// Count returns the number of documents.
func (s *Storage) Count(ctx context.Context) (int64, error) {
	return int64(len(s.snapshot.Events)), nil
}

// CountWithContact returns the number of documents with a usable contact channel.
func (s *Storage) CountWithContact(ctx context.Context) (int64, error) {
	var n int64
	for _, doc := range s.snapshot.Events {
		if event.FromDocument(doc).Contact.Any() {
			n++
		}
	}
	return n, nil
}

// setPath assigns value at a dotted path such as "location.city", creating
// intermediate objects as needed.
func setPath(doc map[string]interface{}, path string, value interface{}) {
	parts := strings.Split(path, ".")
	cur := doc
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

// JSONDocument converts BSON-decoded values into plain JSON values.
func JSONDocument(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = jsonValue(v)
	}
	return out
}

func jsonValue(v interface{}) interface{} {
	switch val := v.(type) {
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339Nano)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case primitive.M:
		return JSONDocument(val)
	case map[string]interface{}:
		return JSONDocument(val)
	case primitive.D:
		m := make(map[string]interface{}, len(val))
		for _, e := range val {
			m[e.Key] = jsonValue(e.Value)
		}
		return m
	case primitive.A:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = jsonValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = jsonValue(item)
		}
		return out
	default:
		return val
	}
}

func expandHome(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
