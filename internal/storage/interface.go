package storage

import (
	"context"
	"encoding/json"
)

// Adapter is the document store the planner runs against. Documents are JSON
// objects grouped in collections and keyed by id.
type Adapter interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error

	// Reads
	List(ctx context.Context, coll Collection) (Snapshot, error)
	Get(ctx context.Context, coll Collection, id string) (Record, error)
	// Subscribe delivers the current snapshot of coll and then a fresh one
	// after every change. The channel is closed when ctx is done.
	Subscribe(ctx context.Context, coll Collection) (<-chan Snapshot, error)

	// Writes
	Add(ctx context.Context, coll Collection, data json.RawMessage) (string, error)
	Set(ctx context.Context, coll Collection, id string, data json.RawMessage) error
	Update(ctx context.Context, coll Collection, id string, partial json.RawMessage) error
	Remove(ctx context.Context, coll Collection, id string) error
	// BatchWrite applies every write or none of them.
	BatchWrite(ctx context.Context, writes []Write) error

	// Utils
	GetConfigPath() string
}

// Migrator is implemented by adapters backed by a versioned SQL schema.
type Migrator interface {
	// Migrate applies pending schema migrations and reports progress through
	// logFn. It returns the number of migrations applied.
	Migrate(logFn func(string)) (int, error)
	// SchemaVersion returns the applied and the latest known schema version.
	SchemaVersion() (current, latest int, err error)
}
