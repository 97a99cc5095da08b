// Package store persists edited person lists and uploaded avatar images.
//
// A [Store] keeps snapshots of the person list. [FileStore] overwrites a
// single personas.json, which is what the CLI and a single-node server use;
// [MongoStore] appends one document per save so earlier snapshots survive.
//
// [AvatarStore] writes uploaded images as "<person id><ext>" under an
// uploads directory and hands back the URL they are served from.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/kintree/pkg/persona"
)

// Snapshot is one saved person list.
type Snapshot struct {
	ID        string           `json:"id" bson:"_id"`
	People    []persona.Person `json:"personas" bson:"personas"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`

	// Location describes where the snapshot was written: a file path or a
	// mongodb database/collection pair.
	Location string `json:"path" bson:"-"`
}

// Store is the interface for person list storage backends.
type Store interface {
	// Save persists people as a new snapshot.
	Save(ctx context.Context, people []persona.Person) (Snapshot, error)

	// Latest returns the most recent snapshot. It fails with a NOT_FOUND
	// error when nothing was saved yet.
	Latest(ctx context.Context) (Snapshot, error)

	// Close releases connections held by the store.
	Close(ctx context.Context) error
}
