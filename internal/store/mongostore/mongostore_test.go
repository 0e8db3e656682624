package mongostore

import (
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/pfrederiksen/aqua-events/internal/pipeline"
)

var _ pipeline.Store = (*Store)(nil)

func TestDatabaseFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"mongodb://localhost:27017/aqua", "aqua"},
		{"mongodb://user:pw@db.example:27017/events_prod?authSource=admin", "events_prod"},
		{"mongodb://localhost:27017", DefaultDatabase},
		{"not a uri", DefaultDatabase},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			if got := DatabaseFromURI(tt.uri); got != tt.want {
				t.Errorf("DatabaseFromURI(%q) = %q, want %q", tt.uri, got, tt.want)
			}
		})
	}
}

func TestStoredID(t *testing.T) {
	oid := primitive.NewObjectID()
	s := New(nil, nil)
	s.ids["legacy"] = int32(42)

	tests := []struct {
		name string
		id   string
		want interface{}
	}{
		{"seen id keeps stored type", "legacy", int32(42)},
		{"hex parses as object id", oid.Hex(), oid},
		{"other strings stay strings", "evt-2026-01", "evt-2026-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.storedID(tt.id); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("storedID(%q) = %#v, want %#v", tt.id, got, tt.want)
			}
		})
	}
}

func TestContactFilter(t *testing.T) {
	f := ContactFilter()
	or, ok := f["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("ContactFilter() = %v, want $or of three channels", f)
	}

	email := or[0].(bson.M)["contact.email"].(bson.M)
	nin := email["$nin"].(bson.A)
	if !reflect.DeepEqual(nin, bson.A{"", nil, "None"}) {
		t.Errorf("$nin = %v", nin)
	}
}
