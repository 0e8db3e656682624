package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/pfrederiksen/aqua-events/internal/event"
	"github.com/pfrederiksen/aqua-events/internal/logger"
)

const (
	// DefaultDatabase is used when neither the configuration nor the URI names one.
	DefaultDatabase = "aquaevents_db"

	// DefaultCollection holds the event records.
	DefaultCollection = "events"

	connectTimeout = 10 * time.Second
)

// Store is a pipeline store backed by a MongoDB collection
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection

	// ids maps the string id of every record read by FindAll to its stored _id.
	ids map[string]interface{}
	now func() time.Time
}

// Connect opens a client for uri and verifies it with a ping. An empty
// database falls back to the one named in the URI path, then DefaultDatabase.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongodb uri is empty")
	}
	if database == "" {
		database = DatabaseFromURI(uri)
	}
	if collection == "" {
		collection = DefaultCollection
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	logger.Debug("connected to mongodb", logger.Fields{
		"database":   database,
		"collection": collection,
	})

	return New(client, client.Database(database).Collection(collection)), nil
}

// New wraps an existing client and collection.
func New(client *mongo.Client, collection *mongo.Collection) *Store {
	return &Store{
		client:     client,
		collection: collection,
		ids:        make(map[string]interface{}),
		now:        time.Now,
	}
}

// DatabaseFromURI returns the database named in the URI path, or DefaultDatabase.
func DatabaseFromURI(uri string) string {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil || cs.Database == "" {
		return DefaultDatabase
	}
	return cs.Database
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting from mongodb: %w", err)
	}
	return nil
}

// FindAll reads the whole collection.
func (s *Store) FindAll(ctx context.Context) ([]*event.Record, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("finding events: %w", err)
	}
	defer cursor.Close(ctx) // nolint:errcheck

	var records []*event.Record
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding event: %w", err)
		}
		r := event.FromDocument(doc)
		s.ids[r.ID] = doc["_id"]
		records = append(records, r)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return records, nil
}

// DeleteByIDs removes every listed record with one DeleteMany.
func (s *Store) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": s.storedIDs(ids)}})
	if err != nil {
		return 0, fmt.Errorf("deleting events: %w", err)
	}
	return res.DeletedCount, nil
}

// UpdateFields applies a $set of fields plus updatedAt to one record.
func (s *Store) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	set := bson.M{"updatedAt": primitive.NewDateTimeFromTime(s.now())}
	for k, v := range fields {
		set[k] = v
	}

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": s.storedID(id)}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("updating event %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("event not found: %s", id)
	}
	return nil
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("counting events: %w", err)
	}
	return n, nil
}

// CountWithContact counts documents with at least one usable contact channel.
func (s *Store) CountWithContact(ctx context.Context) (int64, error) {
	n, err := s.collection.CountDocuments(ctx, ContactFilter())
	if err != nil {
		return 0, fmt.Errorf("counting events with contact: %w", err)
	}
	return n, nil
}

// ContactFilter matches documents where email, phone or website holds a value
// other than "" and the "None" sentinel.
func ContactFilter() bson.M {
	channels := []string{"contact.email", "contact.phone", "contact.website"}
	or := make(bson.A, 0, len(channels))
	for _, field := range channels {
		or = append(or, bson.M{field: bson.M{
			"$exists": true,
			"$nin":    bson.A{"", nil, event.NoneSentinel},
		}})
	}
	return bson.M{"$or": or}
}

func (s *Store) storedIDs(ids []string) bson.A {
	out := make(bson.A, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.storedID(id))
	}
	return out
}

// storedID returns the _id value as stored. Ids not seen by FindAll are
// interpreted as ObjectID hex when they parse as one.
func (s *Store) storedID(id string) interface{} {
	if v, ok := s.ids[id]; ok {
		return v
	}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}
