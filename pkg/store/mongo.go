package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/persona"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "kintree"
	DefaultMongoCollection = "snapshots"
)

// MongoOptions configures a MongoStore.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore inserts one document per save and never overwrites.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	now    func() time.Time
}

// NewMongoStore connects, pings the primary and ensures an index on
// created_at.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.URI == "" {
		return nil, kerrors.New(kerrors.ErrCodeInvalidInput, "mongo uri is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(opts.Database).Collection(opts.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo index: %w", err)
	}

	return &MongoStore{client: client, coll: coll, now: time.Now}, nil
}

// Save inserts a snapshot document with a fresh UUID.
func (s *MongoStore) Save(ctx context.Context, people []persona.Person) (Snapshot, error) {
	snap := Snapshot{
		ID:        uuid.NewString(),
		People:    withParents(people),
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.coll.InsertOne(ctx, snap); err != nil {
		return Snapshot{}, kerrors.Wrap(kerrors.ErrCodeInternal, err, "insert snapshot")
	}
	snap.Location = s.location()
	return snap, nil
}

// Latest returns the newest snapshot by creation time.
func (s *MongoStore) Latest(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := s.coll.FindOne(ctx, bson.D{}, opts).Decode(&snap)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Snapshot{}, kerrors.New(kerrors.ErrCodeNotFound, "no saved personas in %s", s.location())
	}
	if err != nil {
		return Snapshot{}, kerrors.Wrap(kerrors.ErrCodeInternal, err, "find snapshot")
	}
	snap.People = withParents(snap.People)
	snap.Location = s.location()
	return snap, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) location() string {
	return fmt.Sprintf("mongodb:%s/%s", s.coll.Database().Name(), s.coll.Name())
}

// withParents copies people so every record has a non-nil parent list.
func withParents(people []persona.Person) []persona.Person {
	out := make([]persona.Person, len(people))
	for i, p := range people {
		out[i] = p.Clone()
		if out[i].Parents == nil {
			out[i].Parents = []string{}
		}
	}
	return out
}

var _ Store = (*MongoStore)(nil)
