// Package kiva provides an embedded document database: in-memory collections
// of JSON-like documents with a declarative query, projection and update
// language, persisted as one snapshot file per database.
//
// The basic usage starts with a [Registry] created by [NewRegistry]; calling
// [Registry.Open] loads or creates a named database and returns its
// [Collection].
package kiva

import (
	"io"
	"log/slog"
	"os"

	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/collection"
	"github.com/kivadb/kiva/internal/adapter/comparer"
	"github.com/kivadb/kiva/internal/adapter/data"
	"github.com/kivadb/kiva/internal/adapter/decoder"
	"github.com/kivadb/kiva/internal/adapter/deserializer"
	"github.com/kivadb/kiva/internal/adapter/dispatcher"
	"github.com/kivadb/kiva/internal/adapter/idgenerator"
	"github.com/kivadb/kiva/internal/adapter/logger"
	"github.com/kivadb/kiva/internal/adapter/matcher"
	"github.com/kivadb/kiva/internal/adapter/modifier"
	"github.com/kivadb/kiva/internal/adapter/persistence"
	"github.com/kivadb/kiva/internal/adapter/projector"
	"github.com/kivadb/kiva/internal/adapter/registry"
	"github.com/kivadb/kiva/internal/adapter/serializer"
	"github.com/kivadb/kiva/internal/adapter/storage"
	"github.com/kivadb/kiva/internal/adapter/validator"
)

var (
	// ErrNotFound is returned when a referenced database has no snapshot
	// on disk, or when closing a database that isn't open.
	ErrNotFound = domain.ErrNotFound
	// ErrMixedProjection is returned by [Projector.Project] when a
	// projection mixes inclusion and exclusion flags.
	ErrMixedProjection = domain.ErrMixedProjection
	// ErrCannotModifyID is diagnosed when an update operation targets a
	// document _id.
	ErrCannotModifyID = domain.ErrCannotModifyID
	// ErrMultiNotAllowed is diagnosed when a remove or update matches more
	// than one document without the multi option.
	ErrMultiNotAllowed = domain.ErrMultiNotAllowed
)

// ErrStoreUnavailable is returned when a database snapshot exists but cannot
// be read or parsed.
type ErrStoreUnavailable = domain.ErrStoreUnavailable

// ErrDatabaseName is returned when a database name cannot map to a snapshot
// file, usually because it contains a path separator or the suffix reserved
// for crash backup files.
type ErrDatabaseName = domain.ErrDatabaseName

// ErrDocumentType is returned when a value is invalid, or contains an invalid
// sub value, for creating a document.
type ErrDocumentType = domain.ErrDocumentType

// ErrFieldName represents an invalid field name, usually a reserved
// $-prefixed name in a stored document.
type ErrFieldName = domain.ErrFieldName

// Document represents a record: a mapping from field names to JSON-like
// values.
type Document = domain.Document

// Predicate is an in-process query hook usable as the $where operand.
type Predicate = domain.Predicate

// Collection is the API over one named document store.
type Collection = domain.Collection

// Registry owns the open databases of one process.
type Registry = domain.Registry

// Persistence manages snapshot files, one per database name.
type Persistence = domain.Persistence

// Storage provides low-level file operations with crash-safety guarantees.
type Storage = domain.Storage

// Serializer converts snapshots to bytes for storage.
type Serializer = domain.Serializer

// Deserializer converts snapshot bytes back to documents.
type Deserializer = domain.Deserializer

// Comparer classifies values into kinds and compares them without implicit
// coercion.
type Comparer = domain.Comparer

// Validator checks query syntax without evaluating it.
type Validator = domain.Validator

// Matcher evaluates queries against documents.
type Matcher = domain.Matcher

// Projector derives filtered deep copies of documents.
type Projector = domain.Projector

// Modifier applies declarative field mutations to documents.
type Modifier = domain.Modifier

// IDGenerator creates unique document ids.
type IDGenerator = domain.IDGenerator

// Decoder converts between loosely typed and structured representations.
type Decoder = domain.Decoder

// Logger receives diagnostics from every component.
type Logger = domain.Logger

// Level is the severity of a diagnostic.
type Level = domain.Level

// Kind classifies document values.
type Kind = domain.Kind

// DocumentFactory converts maps, structs or nil into a [Document]. For
// structs, unexported fields are ignored; a "kiva" struct tag replaces the
// field name, ",omitempty" drops nil values and ",omitzero" drops
// uninitialized fields.
type DocumentFactory = domain.DocumentFactory

// ErrorHook receives asynchronous persistence failures.
type ErrorHook = domain.ErrorHook

// Dispatcher routes loosely typed requests to collections.
type Dispatcher = dispatcher.Dispatcher

// Request is one dispatchable operation.
type Request = dispatcher.Request

// RequestOptions carries the per-operation flags of a request.
type RequestOptions = dispatcher.RequestOptions

// Response is the outcome of a dispatched request.
type Response = dispatcher.Response

// NewDocument converts maps, structs or nil into a [Document]. It is the
// default [DocumentFactory].
func NewDocument(in any) (Document, error) {
	return data.New(in)
}

// NewRegistry creates a registry with the provided configuration options:
//
// - [WithRegistryPersistence]: sets the persistence shared by all databases.
//
// - [WithRegistryDeserializer]: sets the snapshot deserializer.
//
// - [WithRegistryLogger]: sets the diagnostics logger.
//
// - [WithRegistryCollectionOptions]: forwards options to opened collections.
func NewRegistry(options ...RegistryOption) Registry {
	return registry.NewRegistry(options...)
}

// NewCollection creates a standalone collection, outside any registry.
// Without [WithCollectionPersistence] it is memory-only.
func NewCollection(name string, options ...CollectionOption) (Collection, error) {
	return collection.NewCollection(name, options...)
}

// NewPersistence creates the default snapshot persistence.
func NewPersistence(options ...PersistenceOption) Persistence {
	return persistence.NewPersistence(options...)
}

// NewDispatcher creates a dispatcher routing requests through a registry.
func NewDispatcher(options ...DispatcherOption) *Dispatcher {
	return dispatcher.NewDispatcher(options...)
}

// NewStorage creates the default crash-safe file storage.
func NewStorage() Storage {
	return storage.NewStorage()
}

// NewSerializer creates the default JSON snapshot serializer.
func NewSerializer() Serializer {
	return serializer.NewSerializer()
}

// NewDeserializer creates the default JSON snapshot deserializer.
func NewDeserializer() Deserializer {
	return deserializer.NewDeserializer()
}

// NewComparer creates the default strict comparer.
func NewComparer() Comparer {
	return comparer.NewComparer()
}

// NewValidator creates the default query validator.
func NewValidator(options ...ValidatorOption) Validator {
	return validator.NewValidator(options...)
}

// NewMatcher creates the default query evaluator.
func NewMatcher(options ...MatcherOption) Matcher {
	return matcher.NewMatcher(options...)
}

// NewProjector creates the default projection engine.
func NewProjector() Projector {
	return projector.NewProjector()
}

// NewModifier creates the default update engine.
func NewModifier(options ...ModifierOption) Modifier {
	return modifier.NewModifier(options...)
}

// NewIDGenerator creates the default 16-character id generator.
func NewIDGenerator(options ...IDGeneratorOption) IDGenerator {
	return idgenerator.NewIDGenerator(options...)
}

// NewDecoder creates the default decoder.
func NewDecoder() Decoder {
	return decoder.NewDecoder()
}

// NewLogger creates a logger emitting through the given slog handler. A nil
// handler falls back to text output on stderr.
func NewLogger(handler slog.Handler) Logger {
	return logger.NewLogger(handler)
}

// NewNopLogger creates a logger discarding every diagnostic.
func NewNopLogger() Logger {
	return logger.NewNopLogger()
}

// FindOption configures query behavior through the functional options
// pattern.
type FindOption = domain.FindOption

// WithProjection specifies which fields to include or exclude from query
// results.
func WithProjection(p any) FindOption {
	return domain.WithProjection(p)
}

// InsertOption configures insert behavior through the functional options
// pattern.
type InsertOption = domain.InsertOption

// WithInsertSkipSave disables the snapshot write triggered by the insert.
func WithInsertSkipSave(skip bool) InsertOption {
	return domain.WithInsertSkipSave(skip)
}

// RemoveOption configures remove behavior through the functional options
// pattern.
type RemoveOption = domain.RemoveOption

// WithRemoveMulti enables removing multiple documents that match the query.
func WithRemoveMulti(m bool) RemoveOption {
	return domain.WithRemoveMulti(m)
}

// WithRemoveSkipSave disables the snapshot write triggered by the remove.
func WithRemoveSkipSave(skip bool) RemoveOption {
	return domain.WithRemoveSkipSave(skip)
}

// UpdateOption configures update behavior through the functional options
// pattern.
type UpdateOption = domain.UpdateOption

// WithUpdateMulti enables updating multiple documents that match the query.
func WithUpdateMulti(m bool) UpdateOption {
	return domain.WithUpdateMulti(m)
}

// WithUpdateSkipSave disables the snapshot write triggered by the update.
func WithUpdateSkipSave(skip bool) UpdateOption {
	return domain.WithUpdateSkipSave(skip)
}

// CollectionOption configures a collection through the functional options
// pattern.
type CollectionOption = domain.CollectionOption

// WithCollectionLogger sets the diagnostics logger.
func WithCollectionLogger(l Logger) CollectionOption {
	return domain.WithCollectionLogger(l)
}

// WithCollectionPersistence sets the persistence used for snapshot writes.
func WithCollectionPersistence(p Persistence) CollectionOption {
	return domain.WithCollectionPersistence(p)
}

// WithCollectionComparer sets the comparer shared by the operators.
func WithCollectionComparer(c Comparer) CollectionOption {
	return domain.WithCollectionComparer(c)
}

// WithCollectionValidator sets the query validator.
func WithCollectionValidator(v Validator) CollectionOption {
	return domain.WithCollectionValidator(v)
}

// WithCollectionMatcher sets the query evaluator.
func WithCollectionMatcher(m Matcher) CollectionOption {
	return domain.WithCollectionMatcher(m)
}

// WithCollectionProjector sets the projection engine.
func WithCollectionProjector(p Projector) CollectionOption {
	return domain.WithCollectionProjector(p)
}

// WithCollectionModifier sets the update engine.
func WithCollectionModifier(m Modifier) CollectionOption {
	return domain.WithCollectionModifier(m)
}

// WithCollectionIDGenerator sets the generator for inserted documents without
// a usable _id.
func WithCollectionIDGenerator(g IDGenerator) CollectionOption {
	return domain.WithCollectionIDGenerator(g)
}

// WithCollectionSerializer sets the snapshot serializer.
func WithCollectionSerializer(s Serializer) CollectionOption {
	return domain.WithCollectionSerializer(s)
}

// WithCollectionDecoder sets the decoder for projection flags.
func WithCollectionDecoder(d Decoder) CollectionOption {
	return domain.WithCollectionDecoder(d)
}

// WithCollectionDocumentFactory sets the factory converting caller input into
// documents.
func WithCollectionDocumentFactory(f DocumentFactory) CollectionOption {
	return domain.WithCollectionDocumentFactory(f)
}

// WithCollectionSnapshot seeds the collection with a loaded snapshot: a
// document whose keys are ids and whose values are stored documents.
func WithCollectionSnapshot(snapshot Document) CollectionOption {
	return domain.WithCollectionSnapshot(snapshot)
}

// PersistenceOption configures persistence through the functional options
// pattern.
type PersistenceOption = domain.PersistenceOption

// WithPersistenceDirectory sets the directory holding snapshot files.
func WithPersistenceDirectory(dir string) PersistenceOption {
	return domain.WithPersistenceDirectory(dir)
}

// WithPersistenceExtension sets the snapshot file extension.
func WithPersistenceExtension(ext string) PersistenceOption {
	return domain.WithPersistenceExtension(ext)
}

// WithPersistenceFileMode sets the snapshot file permissions.
func WithPersistenceFileMode(m os.FileMode) PersistenceOption {
	return domain.WithPersistenceFileMode(m)
}

// WithPersistenceDirMode sets the snapshot directory permissions.
func WithPersistenceDirMode(m os.FileMode) PersistenceOption {
	return domain.WithPersistenceDirMode(m)
}

// WithPersistenceStorage sets the low-level file operations implementation.
func WithPersistenceStorage(s Storage) PersistenceOption {
	return domain.WithPersistenceStorage(s)
}

// WithPersistenceLogger sets the diagnostics logger.
func WithPersistenceLogger(l Logger) PersistenceOption {
	return domain.WithPersistenceLogger(l)
}

// WithPersistenceErrorHook routes asynchronous write failures to the hook.
func WithPersistenceErrorHook(h ErrorHook) PersistenceOption {
	return domain.WithPersistenceErrorHook(h)
}

// RegistryOption configures the registry through the functional options
// pattern.
type RegistryOption = domain.RegistryOption

// WithRegistryPersistence sets the persistence shared by all databases.
func WithRegistryPersistence(p Persistence) RegistryOption {
	return domain.WithRegistryPersistence(p)
}

// WithRegistryDeserializer sets the snapshot deserializer.
func WithRegistryDeserializer(d Deserializer) RegistryOption {
	return domain.WithRegistryDeserializer(d)
}

// WithRegistryLogger sets the diagnostics logger.
func WithRegistryLogger(l Logger) RegistryOption {
	return domain.WithRegistryLogger(l)
}

// WithRegistryCollectionOptions forwards options to every opened collection.
func WithRegistryCollectionOptions(opts ...CollectionOption) RegistryOption {
	return domain.WithRegistryCollectionOptions(opts...)
}

// ValidatorOption configures the validator through the functional options
// pattern.
type ValidatorOption = domain.ValidatorOption

// WithValidatorLogger sets the diagnostics logger.
func WithValidatorLogger(l Logger) ValidatorOption {
	return domain.WithValidatorLogger(l)
}

// MatcherOption configures the matcher through the functional options
// pattern.
type MatcherOption = domain.MatcherOption

// WithMatcherComparer sets the comparer used by the operator library.
func WithMatcherComparer(c Comparer) MatcherOption {
	return domain.WithMatcherComparer(c)
}

// WithMatcherLogger sets the diagnostics logger.
func WithMatcherLogger(l Logger) MatcherOption {
	return domain.WithMatcherLogger(l)
}

// ModifierOption configures the modifier through the functional options
// pattern.
type ModifierOption = domain.ModifierOption

// WithModifierComparer sets the comparer used by the update operators.
func WithModifierComparer(c Comparer) ModifierOption {
	return domain.WithModifierComparer(c)
}

// WithModifierLogger sets the diagnostics logger.
func WithModifierLogger(l Logger) ModifierOption {
	return domain.WithModifierLogger(l)
}

// IDGeneratorOption configures the id generator through the functional
// options pattern.
type IDGeneratorOption = domain.IDGeneratorOption

// WithRandomReader sets the entropy source for generated ids.
func WithRandomReader(r io.Reader) IDGeneratorOption {
	return domain.WithRandomReader(r)
}

// DispatcherOption configures the dispatcher through the functional options
// pattern.
type DispatcherOption = domain.DispatcherOption

// WithDispatcherRegistry sets the registry resolving database names.
func WithDispatcherRegistry(r Registry) DispatcherOption {
	return domain.WithDispatcherRegistry(r)
}

// WithDispatcherDecoder sets the decoder for request parameters.
func WithDispatcherDecoder(d Decoder) DispatcherOption {
	return domain.WithDispatcherDecoder(d)
}

// WithDispatcherLogger sets the diagnostics logger.
func WithDispatcherLogger(l Logger) DispatcherOption {
	return domain.WithDispatcherLogger(l)
}
