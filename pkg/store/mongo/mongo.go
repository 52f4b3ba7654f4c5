// Package mongo reads assessment records from a MongoDB collection.
//
// Documents mirror the assessments row: _id holds the record id, dates are
// BSON dates and structured columns are embedded documents or JSON
// strings.
package mongo

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/secassess/pkg/errors"
	"github.com/matzehuels/secassess/pkg/record"
	"github.com/matzehuels/secassess/pkg/store"
)

// DefaultCollection is the collection holding assessments.
const DefaultCollection = "assessments"

// Store reads records from MongoDB.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Open connects to uri and selects database and collection. An empty
// collection uses DefaultCollection.
func Open(ctx context.Context, uri, database, collection string) (*Store, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	opts := options.Client().
		ApplyURI(uri).
		SetAppName("secassess").
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping mongo")
	}
	return &Store{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// Get loads one record by _id.
func (s *Store) Get(ctx context.Context, id string) (*record.Assessment, error) {
	if err := errors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	raw, err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Raw()
	if err == mongo.ErrNoDocuments {
		return nil, store.NotFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load assessment %s", id)
	}
	return Decode(raw)
}

// List returns summaries, most recently updated first.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list assessments")
	}
	defer cur.Close(ctx)

	var out []store.Summary
	for cur.Next(ctx) {
		rec, err := Decode(cur.Current)
		if err != nil {
			continue
		}
		out = append(out, store.Summarize(rec))
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list assessments")
	}
	return out, nil
}

// Ping checks the connection to the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Decode converts a stored document into a record. The document is
// rendered as relaxed Extended JSON and rewritten into row form: _id
// becomes id and {"$date": ...} and {"$oid": ...} wrappers are unwrapped.
func Decode(doc bson.Raw) (*record.Assessment, error) {
	ext, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode document")
	}

	var row map[string]json.RawMessage
	if err := json.Unmarshal(ext, &row); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode document")
	}
	if id, ok := row["_id"]; ok {
		row["id"] = unwrap(id)
		delete(row, "_id")
	}
	for _, k := range []string{"created_at", "updated_at"} {
		if v, ok := row[k]; ok {
			row[k] = unwrap(v)
		}
	}

	data, err := json.Marshal(row)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode document")
	}
	var rec record.Assessment
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode document")
	}
	return &rec, nil
}

// unwrap returns the inner value of a single-key Extended JSON wrapper
// such as {"$oid": "..."} or {"$date": "..."}, or v unchanged. Dates
// outside years 1970 to 9999 keep a nested wrapper and decode as zero.
func unwrap(v json.RawMessage) json.RawMessage {
	if !bytes.HasPrefix(bytes.TrimSpace(v), []byte("{")) {
		return v
	}
	var w map[string]json.RawMessage
	if err := json.Unmarshal(v, &w); err != nil || len(w) != 1 {
		return v
	}
	for _, key := range []string{"$oid", "$date"} {
		if inner, ok := w[key]; ok {
			return inner
		}
	}
	return v
}
