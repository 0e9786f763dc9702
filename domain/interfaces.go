// Package domain contains the interfaces, entities and option types shared by
// every kiva component.
//
// The packages under internal/adapter provide the default implementations;
// all of them are replaceable through functional options on the collection
// and the registry.
package domain

import (
	"context"
	"iter"
	"os"
)

// Document represents a single record: a mapping from field names to
// JSON-like values (nil, bool, numbers, string, []any or nested Document).
// Document is read by one goroutine at a time and doesn't need to be
// concurrency safe.
type Document interface {
	// ID returns the document's _id, or an empty string when unset or not
	// a string.
	ID() string
	// D returns the subdocument for the given key, or nil if the value is
	// not a Document.
	D(string) Document
	// Get returns the value under the given key, or nil if unset.
	Get(string) any
	// Set sets the value under the given key.
	Set(string, any)
	// Unset removes the given key.
	Unset(string)
	// Has reports whether a value is set under the given key.
	Has(string) bool
	// Iter returns an unordered sequence of key-value pairs.
	Iter() iter.Seq2[string, any]
	// Keys returns an unordered sequence of keys.
	Keys() iter.Seq[string]
	// Values returns an unordered sequence of values.
	Values() iter.Seq[any]
	// Len returns the number of set fields.
	Len() int
}

// Predicate is an in-process query hook usable as the $where operand. It is
// never part of a persisted or transmitted query.
type Predicate = func(Document) bool

// Comparer classifies values into kinds and compares them without implicit
// coercion.
type Comparer interface {
	// KindOf returns the dynamic kind of a value.
	KindOf(any) Kind
	// Equal reports strict equality: values of different kinds are never
	// equal, arrays and objects compare recursively.
	Equal(any, any) bool
	// Comparable reports whether two values share an ordered primitive
	// kind (both numbers or both strings).
	Comparable(any, any) bool
	// Compare returns -1, 0 or 1 for two comparable values.
	Compare(any, any) (int, error)
	// Number converts any numeric width to float64.
	Number(any) (float64, bool)
}

// Validator checks query syntax without evaluating it.
type Validator interface {
	// Validate reports whether the query is well formed. Failures are
	// diagnosed through the logger, never returned as errors.
	Validate(query Document) bool
}

// Matcher evaluates a validated query against a document.
type Matcher interface {
	// Match reports whether the document satisfies the query. An empty
	// query matches everything.
	Match(doc Document, query Document) bool
}

// Projector derives a filtered deep copy of a document.
type Projector interface {
	// Project returns a deep copy of the document restricted by the
	// projection flags. A mixed projection returns ErrMixedProjection.
	Project(doc Document, projection map[string]uint8) (Document, error)
}

// Modifier applies declarative field mutations to a document in place.
type Modifier interface {
	// Apply mutates the document and reports whether anything changed.
	// Failing sub-operations are skipped with a diagnostic.
	Apply(doc Document, update Document) bool
}

// IDGenerator creates unique document ids.
type IDGenerator interface {
	// Generate returns a fresh id, regenerating while taken reports a
	// collision. A nil taken func disables the collision check.
	Generate(taken func(string) bool) (string, error)
}

// Serializer converts a snapshot document to bytes for storage.
type Serializer interface {
	Serialize(context.Context, Document) ([]byte, error)
}

// Deserializer converts snapshot bytes back to a document.
type Deserializer interface {
	Deserialize(context.Context, []byte, *Document) error
}

// Decoder converts between loosely typed and structured representations.
type Decoder interface {
	Decode(src any, target any) error
}

// Storage provides low-level file operations with crash-safety guarantees.
type Storage interface {
	// Exists checks if a file exists.
	Exists(string) (bool, error)
	// EnsureParentDirectoryExists creates parent directories if needed.
	EnsureParentDirectoryExists(string, os.FileMode) error
	// EnsureDatafileIntegrity recovers a datafile from an interrupted
	// crash-safe write.
	EnsureDatafileIntegrity(string, os.FileMode) error
	// CrashSafeWriteFile atomically replaces a file's contents.
	CrashSafeWriteFile(filename string, data []byte, dirMode os.FileMode, fileMode os.FileMode) error
	// ReadFile reads a whole file.
	ReadFile(string, os.FileMode) ([]byte, error)
	// Remove deletes a file.
	Remove(string) error
}

// Persistence manages snapshot files, one per database name. Saves are
// fire-and-forget and serialized per name; failures are routed to an error
// hook, never to the caller.
type Persistence interface {
	// Load reads the snapshot for a database. A missing snapshot is
	// reported as ErrNotFound, an unreadable one as ErrStoreUnavailable.
	Load(ctx context.Context, name string) ([]byte, error)
	// Save schedules a snapshot write for the database. It never blocks
	// on IO and the most recently scheduled snapshot wins.
	Save(name string, snapshot []byte)
	// Wait blocks until all scheduled writes have completed.
	Wait(ctx context.Context) error
}

// Logger receives diagnostics. Diagnostics accompany validation and refusal
// outcomes and never change control flow.
type Logger interface {
	Emit(level Level, message string, origin string)
}

// Collection is the top-level API over one named document store.
//
// Queries, projections and updates arrive as any (maps, structs or Document)
// and are converted at the boundary. Malformed shapes yield empty results
// with a diagnostic; only store-level failures surface as errors.
type Collection interface {
	// Name returns the database name backing this collection.
	Name() string
	// Len returns the number of stored documents.
	Len() int
	// Count returns the number of documents matching the query.
	Count(ctx context.Context, query any) (int64, error)
	// Find returns deep copies of all matching documents in insertion
	// order, each filtered by the projection option.
	Find(ctx context.Context, query any, options ...FindOption) ([]Document, error)
	// FindOne returns the first match or nil.
	FindOne(ctx context.Context, query any, options ...FindOption) (Document, error)
	// Insert stores a deep copy of the document and returns its id. The
	// empty string signals a rejected document or an _id collision.
	Insert(ctx context.Context, doc any, options ...InsertOption) (string, error)
	// Remove deletes matching documents and returns how many were
	// removed. More than one match requires WithRemoveMulti.
	Remove(ctx context.Context, query any, options ...RemoveOption) (int64, error)
	// Update applies the update to matching documents and returns how
	// many documents changed. More than one match requires
	// WithUpdateMulti.
	Update(ctx context.Context, query any, update any, options ...UpdateOption) (int64, error)
	// Save forces a snapshot write.
	Save(ctx context.Context) error
}

// Registry owns the open databases of one process. Databases load from disk
// on first reference and are evicted only by an explicit close.
type Registry interface {
	// Open returns the collection for a database name, loading or
	// creating it on first reference.
	Open(ctx context.Context, name string) (Collection, error)
	// Close flushes pending writes and evicts the database.
	Close(ctx context.Context, name string) error
	// CloseAll closes every open database.
	CloseAll(ctx context.Context) error
}
