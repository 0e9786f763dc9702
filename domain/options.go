package domain

import (
	"io"
	"os"
)

// DocumentFactory converts maps, structs or nil into a [Document].
type DocumentFactory = func(any) (Document, error)

// ErrorHook receives asynchronous persistence failures together with the
// database name they belong to.
type ErrorHook = func(name string, err error)

// FindOptions configures a Find or FindOne call.
type FindOptions struct {
	Projection any
}

// FindOption configures query behavior through the functional options
// pattern.
type FindOption func(*FindOptions)

// WithProjection sets the field allow/deny list applied to returned
// documents. Accepts any mapping decodable to field name -> 1/0.
func WithProjection(p any) FindOption {
	return func(o *FindOptions) { o.Projection = p }
}

// InsertOptions configures an Insert call.
type InsertOptions struct {
	SkipSave bool
}

// InsertOption configures insert behavior through the functional options
// pattern.
type InsertOption func(*InsertOptions)

// WithInsertSkipSave disables the snapshot write triggered by the insert.
func WithInsertSkipSave(skip bool) InsertOption {
	return func(o *InsertOptions) { o.SkipSave = skip }
}

// RemoveOptions configures a Remove call.
type RemoveOptions struct {
	Multi    bool
	SkipSave bool
}

// RemoveOption configures remove behavior through the functional options
// pattern.
type RemoveOption func(*RemoveOptions)

// WithRemoveMulti allows a remove to affect more than one document.
func WithRemoveMulti(multi bool) RemoveOption {
	return func(o *RemoveOptions) { o.Multi = multi }
}

// WithRemoveSkipSave disables the snapshot write triggered by the remove.
func WithRemoveSkipSave(skip bool) RemoveOption {
	return func(o *RemoveOptions) { o.SkipSave = skip }
}

// UpdateOptions configures an Update call.
type UpdateOptions struct {
	Multi    bool
	SkipSave bool
}

// UpdateOption configures update behavior through the functional options
// pattern.
type UpdateOption func(*UpdateOptions)

// WithUpdateMulti allows an update to affect more than one document.
func WithUpdateMulti(multi bool) UpdateOption {
	return func(o *UpdateOptions) { o.Multi = multi }
}

// WithUpdateSkipSave disables the snapshot write triggered by the update.
func WithUpdateSkipSave(skip bool) UpdateOption {
	return func(o *UpdateOptions) { o.SkipSave = skip }
}

// CollectionOptions carries the pluggable parts of a collection.
type CollectionOptions struct {
	Logger          Logger
	Persistence     Persistence
	Comparer        Comparer
	Validator       Validator
	Matcher         Matcher
	Projector       Projector
	Modifier        Modifier
	IDGenerator     IDGenerator
	Serializer      Serializer
	Decoder         Decoder
	DocumentFactory DocumentFactory
	Snapshot        Document
}

// CollectionOption configures a collection through the functional options
// pattern.
type CollectionOption func(*CollectionOptions)

// WithCollectionLogger sets the diagnostics logger.
func WithCollectionLogger(l Logger) CollectionOption {
	return func(o *CollectionOptions) { o.Logger = l }
}

// WithCollectionPersistence sets the persistence used for snapshot writes.
// A nil persistence keeps the collection in-memory only.
func WithCollectionPersistence(p Persistence) CollectionOption {
	return func(o *CollectionOptions) { o.Persistence = p }
}

// WithCollectionComparer sets the comparer shared by the operators.
func WithCollectionComparer(c Comparer) CollectionOption {
	return func(o *CollectionOptions) { o.Comparer = c }
}

// WithCollectionValidator sets the query validator.
func WithCollectionValidator(v Validator) CollectionOption {
	return func(o *CollectionOptions) { o.Validator = v }
}

// WithCollectionMatcher sets the query evaluator.
func WithCollectionMatcher(m Matcher) CollectionOption {
	return func(o *CollectionOptions) { o.Matcher = m }
}

// WithCollectionProjector sets the projection engine.
func WithCollectionProjector(p Projector) CollectionOption {
	return func(o *CollectionOptions) { o.Projector = p }
}

// WithCollectionModifier sets the update engine.
func WithCollectionModifier(m Modifier) CollectionOption {
	return func(o *CollectionOptions) { o.Modifier = m }
}

// WithCollectionIDGenerator sets the generator used for inserted documents
// without a usable _id.
func WithCollectionIDGenerator(g IDGenerator) CollectionOption {
	return func(o *CollectionOptions) { o.IDGenerator = g }
}

// WithCollectionSerializer sets the snapshot serializer.
func WithCollectionSerializer(s Serializer) CollectionOption {
	return func(o *CollectionOptions) { o.Serializer = s }
}

// WithCollectionDecoder sets the decoder for projection flags.
func WithCollectionDecoder(d Decoder) CollectionOption {
	return func(o *CollectionOptions) { o.Decoder = d }
}

// WithCollectionDocumentFactory sets the factory converting caller input
// into documents.
func WithCollectionDocumentFactory(f DocumentFactory) CollectionOption {
	return func(o *CollectionOptions) { o.DocumentFactory = f }
}

// WithCollectionSnapshot seeds the collection with a loaded snapshot: a
// document whose keys are ids and whose values are stored documents.
func WithCollectionSnapshot(s Document) CollectionOption {
	return func(o *CollectionOptions) { o.Snapshot = s }
}

// PersistenceOptions configures the snapshot persistence.
type PersistenceOptions struct {
	Directory string
	Extension string
	FileMode  os.FileMode
	DirMode   os.FileMode
	Storage   Storage
	Logger    Logger
	ErrorHook ErrorHook
}

// PersistenceOption configures persistence through the functional options
// pattern.
type PersistenceOption func(*PersistenceOptions)

// WithPersistenceDirectory sets the directory holding snapshot files.
func WithPersistenceDirectory(dir string) PersistenceOption {
	return func(o *PersistenceOptions) { o.Directory = dir }
}

// WithPersistenceExtension sets the snapshot file extension.
func WithPersistenceExtension(ext string) PersistenceOption {
	return func(o *PersistenceOptions) { o.Extension = ext }
}

// WithPersistenceFileMode sets the snapshot file permissions.
func WithPersistenceFileMode(m os.FileMode) PersistenceOption {
	return func(o *PersistenceOptions) { o.FileMode = m }
}

// WithPersistenceDirMode sets the snapshot directory permissions.
func WithPersistenceDirMode(m os.FileMode) PersistenceOption {
	return func(o *PersistenceOptions) { o.DirMode = m }
}

// WithPersistenceStorage sets the low-level file operations implementation.
func WithPersistenceStorage(s Storage) PersistenceOption {
	return func(o *PersistenceOptions) { o.Storage = s }
}

// WithPersistenceLogger sets the diagnostics logger.
func WithPersistenceLogger(l Logger) PersistenceOption {
	return func(o *PersistenceOptions) { o.Logger = l }
}

// WithPersistenceErrorHook routes asynchronous write failures to the hook.
func WithPersistenceErrorHook(h ErrorHook) PersistenceOption {
	return func(o *PersistenceOptions) { o.ErrorHook = h }
}

// RegistryOptions configures the database registry.
type RegistryOptions struct {
	Persistence       Persistence
	Deserializer      Deserializer
	Logger            Logger
	CollectionOptions []CollectionOption
}

// RegistryOption configures the registry through the functional options
// pattern.
type RegistryOption func(*RegistryOptions)

// WithRegistryPersistence sets the persistence shared by all databases.
func WithRegistryPersistence(p Persistence) RegistryOption {
	return func(o *RegistryOptions) { o.Persistence = p }
}

// WithRegistryDeserializer sets the snapshot deserializer.
func WithRegistryDeserializer(d Deserializer) RegistryOption {
	return func(o *RegistryOptions) { o.Deserializer = d }
}

// WithRegistryLogger sets the diagnostics logger.
func WithRegistryLogger(l Logger) RegistryOption {
	return func(o *RegistryOptions) { o.Logger = l }
}

// WithRegistryCollectionOptions forwards options to every opened collection.
func WithRegistryCollectionOptions(opts ...CollectionOption) RegistryOption {
	return func(o *RegistryOptions) {
		o.CollectionOptions = append(o.CollectionOptions, opts...)
	}
}

// MatcherOptions configures the query evaluator.
type MatcherOptions struct {
	Comparer Comparer
	Logger   Logger
}

// MatcherOption configures the matcher through the functional options
// pattern.
type MatcherOption func(*MatcherOptions)

// WithMatcherComparer sets the comparer used by the operator library.
func WithMatcherComparer(c Comparer) MatcherOption {
	return func(o *MatcherOptions) { o.Comparer = c }
}

// WithMatcherLogger sets the diagnostics logger.
func WithMatcherLogger(l Logger) MatcherOption {
	return func(o *MatcherOptions) { o.Logger = l }
}

// ValidatorOptions configures the query validator.
type ValidatorOptions struct {
	Logger Logger
}

// ValidatorOption configures the validator through the functional options
// pattern.
type ValidatorOption func(*ValidatorOptions)

// WithValidatorLogger sets the diagnostics logger.
func WithValidatorLogger(l Logger) ValidatorOption {
	return func(o *ValidatorOptions) { o.Logger = l }
}

// ModifierOptions configures the update engine.
type ModifierOptions struct {
	Comparer Comparer
	Logger   Logger
}

// ModifierOption configures the modifier through the functional options
// pattern.
type ModifierOption func(*ModifierOptions)

// WithModifierComparer sets the comparer used by the operators.
func WithModifierComparer(c Comparer) ModifierOption {
	return func(o *ModifierOptions) { o.Comparer = c }
}

// WithModifierLogger sets the diagnostics logger.
func WithModifierLogger(l Logger) ModifierOption {
	return func(o *ModifierOptions) { o.Logger = l }
}

// IDGeneratorOptions configures the id generator.
type IDGeneratorOptions struct {
	Reader io.Reader
}

// IDGeneratorOption configures the generator through the functional options
// pattern.
type IDGeneratorOption func(*IDGeneratorOptions)

// WithRandomReader sets the entropy source for generated ids.
func WithRandomReader(r io.Reader) IDGeneratorOption {
	return func(o *IDGeneratorOptions) { o.Reader = r }
}

// DispatcherOptions configures the action dispatch facade.
type DispatcherOptions struct {
	Registry Registry
	Decoder  Decoder
	Logger   Logger
}

// DispatcherOption configures the dispatcher through the functional options
// pattern.
type DispatcherOption func(*DispatcherOptions)

// WithDispatcherRegistry sets the registry resolving database names.
func WithDispatcherRegistry(r Registry) DispatcherOption {
	return func(o *DispatcherOptions) { o.Registry = r }
}

// WithDispatcherDecoder sets the decoder for request parameters.
func WithDispatcherDecoder(d Decoder) DispatcherOption {
	return func(o *DispatcherOptions) { o.Decoder = d }
}

// WithDispatcherLogger sets the diagnostics logger.
func WithDispatcherLogger(l Logger) DispatcherOption {
	return func(o *DispatcherOptions) { o.Logger = l }
}
